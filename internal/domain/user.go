package domain

import "time"

const (
	RoleAdmin  = "admin"
	RoleSeller = "seller"
	RoleBuyer  = "buyer"
)

const DefaultAvatar = "/static/images/default_avatar.png"

type User struct {
	ID        int64     `json:"id,string" form:"id"`
	Username  string    `gorm:"uniqueIndex;size:50" json:"username" form:"username"`
	Email     string    `gorm:"uniqueIndex;size:100" json:"email" form:"email"`
	Password  string    `gorm:"size:255" json:"-" form:"-"`
	Role      string    `gorm:"size:16" json:"role" form:"role"`
	Avatar    string    `gorm:"size:255" json:"avatar" form:"avatar"`
	LastLogin time.Time `json:"last_login"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName Specify table name
func (User) TableName() string {
	return "users"
}

// ValidRole reports whether role is one of the assignable roles.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleSeller, RoleBuyer:
		return true
	}
	return false
}
