package routes

import (
	"github.com/gin-gonic/gin"
	adminController "github.com/junaidrashid-git/pawshop-api/controllers/admin"
	orderControllers "github.com/junaidrashid-git/pawshop-api/controllers/order"
	productcontroller "github.com/junaidrashid-git/pawshop-api/controllers/product"
	"github.com/junaidrashid-git/pawshop-api/middleware"
)

// SetupAdminRoutes registers all “/admin/*” endpoints. Requires the API key or an admin grant.
func SetupAdminRoutes(r *gin.Engine, d Deps) {
	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.RequireAdmin(d.Auth, d.Admins, d.AdminAPIKey, d.Logger))
	{
		adminGroup.GET("/check", adminController.CheckAdmin())

		// ─────────── Admin & User Management ───────────
		adminGroup.GET("/admins", adminController.GetAllAdmins(d.Admins, d.Logger))
		adminGroup.POST("/admins", adminController.GrantAdmin(d.Admins, d.Logger))
		adminGroup.DELETE("/admins/:user_id", adminController.RevokeAdmin(d.Admins, d.Logger))
		adminGroup.GET("/users", adminController.GetAllUsers(d.Admins, d.Logger))

		// ─────────── Product Management ───────────
		productAdmin := adminGroup.Group("/products")
		{
			productAdmin.POST("", productcontroller.CreateProduct(d.Catalog, d.Logger))
			productAdmin.PUT("/:id", productcontroller.UpdateProduct(d.Catalog, d.Logger))
			productAdmin.DELETE("/:id", productcontroller.DeleteProduct(d.Catalog, d.Logger))
			productAdmin.POST("/import-excel", productcontroller.ImportProductsFromExcel(d.Catalog, d.Logger))
			productAdmin.GET("/export-excel", productcontroller.ExportProductsToExcel(d.Catalog, d.Logger))

			productAdmin.POST("/:id/images", productcontroller.AddProductImage(d.Catalog, d.Logger))
			productAdmin.DELETE("/:id/images/:image_id", productcontroller.DeleteProductImage(d.Catalog, d.Logger))
			productAdmin.PUT("/:id/images/:image_id/order", productcontroller.ReorderProductImage(d.Catalog, d.Logger))
			productAdmin.PUT("/:id/images/:image_id/primary", productcontroller.SetPrimaryImage(d.Catalog, d.Logger))
		}

		// ─────────── Order Management ───────────
		orderAdmin := adminGroup.Group("/orders")
		{
			orderAdmin.GET("", orderControllers.GetAllOrders(d.Orders, d.Logger))
			orderAdmin.GET("/ws", orderControllers.OrderWebSocketHandler(d.Hub))
			orderAdmin.GET("/:id", orderControllers.GetOrder(d.Orders, d.Logger))
			orderAdmin.PUT("/:id/status", orderControllers.UpdateOrderStatus(d.Orders, d.Logger))
			orderAdmin.PUT("/:id/tracking", orderControllers.SetOrderTracking(d.Orders, d.Logger))
			orderAdmin.DELETE("/:id", orderControllers.DeleteOrder(d.Orders, d.Logger))
		}
	}
}
