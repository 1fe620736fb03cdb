package webapi

import (
	"github.com/Iam-Iftekhar/animerch/internal/cart"
	"github.com/Iam-Iftekhar/animerch/internal/catalog"
	"github.com/Iam-Iftekhar/animerch/internal/identity"
	"github.com/Iam-Iftekhar/animerch/internal/order"
	"github.com/Iam-Iftekhar/animerch/internal/reporting"
	"github.com/Iam-Iftekhar/animerch/internal/webserver"
	"github.com/Iam-Iftekhar/animerch/pkg/filestore"
)

// Handler bundles the core services behind the HTTP surface.
type Handler struct {
	ws        *webserver.WebServer
	identity  *identity.Service
	catalog   *catalog.Service
	cart      *cart.Service
	orders    *order.Service
	reporting *reporting.Service
	files     *filestore.Store
}

func NewHandler(
	ws *webserver.WebServer,
	identitySvc *identity.Service,
	catalogSvc *catalog.Service,
	cartSvc *cart.Service,
	orderSvc *order.Service,
	reportingSvc *reporting.Service,
	files *filestore.Store,
) *Handler {
	return &Handler{
		ws:        ws,
		identity:  identitySvc,
		catalog:   catalogSvc,
		cart:      cartSvc,
		orders:    orderSvc,
		reporting: reportingSvc,
		files:     files,
	}
}

// Register attaches all routes. Public pages resolve an identity when a
// cookie is present; cart/orders/profile demand one; /admin additionally
// demands the seller or admin role.
func (h *Handler) Register() {
	e := h.ws.Echo()

	e.GET("/", h.home, h.ws.OptionalIdentity())
	e.GET("/products", h.listProducts, h.ws.OptionalIdentity())
	e.GET("/products/:id", h.getProduct, h.ws.OptionalIdentity())
	e.GET("/merch", h.merchPage, h.ws.OptionalIdentity())

	auth := e.Group("/auth")
	auth.POST("/register", h.register)
	auth.POST("/login", h.login)
	auth.GET("/logout", h.logout)

	cartGroup := e.Group("/cart", h.ws.AuthRequired()...)
	cartGroup.GET("", h.viewCart)
	cartGroup.POST("/add/:product_id", h.addToCart)
	cartGroup.POST("/remove/:item_id", h.removeFromCart)

	orders := e.Group("/orders", h.ws.AuthRequired()...)
	orders.GET("/checkout", h.checkout)
	orders.POST("/place", h.placeOrder)
	orders.GET("/success", h.orderSuccess)
	orders.GET("", h.myOrders)
	orders.GET("/:id", h.getOrder)

	profile := e.Group("/profile", h.ws.AuthRequired()...)
	profile.GET("", h.profileDashboard)
	profile.POST("/update", h.updateProfile)
	profile.GET("/sales.csv", h.exportSales, h.ws.RequireSeller())

	admin := e.Group("/admin", h.ws.AuthRequired()...)
	admin.Use(h.ws.RequireSeller())
	admin.GET("/products", h.sellerProducts)
	admin.POST("/products", h.createProduct)
	admin.POST("/products/:id/delete", h.deleteProduct)
	admin.GET("/status", h.systemStatus, h.ws.RequireAdmin())
	admin.GET("/metrics/:name", h.metricsRange, h.ws.RequireAdmin())
}
