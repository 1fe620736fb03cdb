package domain

import "time"

const (
	OrderStatusPending = "Pending"
	OrderStatusPaid    = "Paid"
	OrderStatusShipped = "Shipped"
)

// Order is the immutable record created from a cart at checkout; only the
// status field may change after creation.
type Order struct {
	ID         int64     `json:"id,string"`
	UserID     int64     `gorm:"index" json:"user_id,string"`
	TotalPrice float64   `json:"total_price"`
	Status     string    `gorm:"size:50" json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

// TableName Specify table name
func (Order) TableName() string {
	return "orders"
}

// OrderItem freezes quantity and price at purchase time; Price is never
// re-read from the product after creation.
type OrderItem struct {
	ID        int64     `json:"id,string"`
	OrderID   int64     `gorm:"index" json:"order_id,string"`
	ProductID int64     `gorm:"index" json:"product_id,string"`
	Quantity  int       `json:"quantity"`
	Price     float64   `json:"price"`
	CreatedAt time.Time `json:"created_at"`

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// TableName Specify table name
func (OrderItem) TableName() string {
	return "order_items"
}
