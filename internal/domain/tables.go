package domain

var Tables = []interface{}{
	// System
	&SysConfig{},
	&AuditLog{},
	// Identity
	&User{},
	// Catalog
	&Category{},
	&Product{},
	// Cart
	&Cart{},
	&CartItem{},
	// Orders
	&Order{},
	&OrderItem{},
}
