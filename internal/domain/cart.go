package domain

import "time"

// Cart holds a user's pending selection, exactly one per user.
type Cart struct {
	ID        int64     `json:"id,string"`
	UserID    int64     `gorm:"uniqueIndex" json:"user_id,string"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName Specify table name
func (Cart) TableName() string {
	return "carts"
}

// CartItem is one (cart, product) line; repeated adds bump Quantity
// instead of inserting a second row.
type CartItem struct {
	ID        int64     `json:"id,string"`
	CartID    int64     `gorm:"index;uniqueIndex:idx_cart_product" json:"cart_id,string"`
	ProductID int64     `gorm:"uniqueIndex:idx_cart_product" json:"product_id,string"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// TableName Specify table name
func (CartItem) TableName() string {
	return "cart_items"
}
