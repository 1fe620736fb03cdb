package domain

import "time"

type Category struct {
	ID        int64     `json:"id,string" form:"id"`
	Name      string    `gorm:"uniqueIndex;size:50" json:"name" form:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName Specify table name
func (Category) TableName() string {
	return "categories"
}

// Product is a listing owned by a seller within a category.
type Product struct {
	ID          int64     `json:"id,string" form:"id"`
	SellerID    int64     `gorm:"index" json:"seller_id,string" form:"seller_id"`
	CategoryID  int64     `gorm:"index" json:"category_id,string" form:"category_id"`
	Title       string    `gorm:"index;size:100" json:"title" form:"title"`
	Description string    `gorm:"type:text" json:"description" form:"description"`
	Price       float64   `json:"price" form:"price"`
	Stock       int       `json:"stock" form:"stock"`
	Image       string    `gorm:"size:255" json:"image" form:"image"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// TableName Specify table name
func (Product) TableName() string {
	return "products"
}
