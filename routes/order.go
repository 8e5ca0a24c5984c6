package routes

import (
	"github.com/gin-gonic/gin"
	orderControllers "github.com/junaidrashid-git/pawshop-api/controllers/order"
	"github.com/junaidrashid-git/pawshop-api/middleware"
)

func SetupOrderRoutes(r *gin.Engine, d Deps) {
	orders := r.Group("/orders")
	{
		// Public lookup by order number; rate limited per client IP
		track := []gin.HandlerFunc{orderControllers.TrackOrder(d.Orders, d.Logger)}
		if d.TrackLimiter != nil {
			track = append([]gin.HandlerFunc{d.TrackLimiter.Middleware()}, track...)
		}
		orders.GET("/track/:order_number", track...)

		// Signed-in customers only
		mine := orders.Group("")
		mine.Use(middleware.RequireUser(d.Auth))
		{
			mine.GET("/mine", orderControllers.MyOrders(d.Orders, d.Logger))
			mine.GET("/:id/timeline", orderControllers.OrderTimeline(d.Orders, d.Logger))
		}
	}
}
