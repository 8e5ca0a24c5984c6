package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/pawshop-api/auth"
	"github.com/junaidrashid-git/pawshop-api/cart"
	"github.com/junaidrashid-git/pawshop-api/catalog"
	"github.com/junaidrashid-git/pawshop-api/events"
	"github.com/junaidrashid-git/pawshop-api/middleware"
	"github.com/junaidrashid-git/pawshop-api/orders"
	"go.uber.org/zap"
)

// Deps is everything the HTTP layer needs, built once in main.
type Deps struct {
	Auth         *auth.Service
	Admins       *auth.Admins
	Catalog      *catalog.Service
	Orders       *orders.Service
	Carts        *cart.Sessions
	Hub          *events.Hub
	TrackLimiter *middleware.IPRateLimiter
	AdminAPIKey  string
	PageSize     int
	Logger       *zap.Logger
}

// SetupRoutes is the single entry-point that wires up every route group.
func SetupRoutes(r *gin.Engine, d Deps) {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.PageSize <= 0 {
		d.PageSize = catalog.DefaultPageSize
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Public auth routes
	SetupAuthRoutes(r, d)

	// Catalog browsing (public)
	SetupProductRoutes(r, d)

	// Cart and checkout (guest or signed-in session)
	SetupUserRoutes(r, d)

	// Order history and tracking
	SetupOrderRoutes(r, d)

	// Admin panel (API key or admin grant)
	SetupAdminRoutes(r, d)
}
