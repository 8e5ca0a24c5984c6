package routes

import (
	"github.com/gin-gonic/gin"
	cartControllers "github.com/junaidrashid-git/pawshop-api/controllers/cart"
	orderControllers "github.com/junaidrashid-git/pawshop-api/controllers/order"
	productcontroller "github.com/junaidrashid-git/pawshop-api/controllers/product"
	"github.com/junaidrashid-git/pawshop-api/middleware"
)

// SetupProductRoutes registers the public catalog endpoints.
func SetupProductRoutes(r *gin.Engine, d Deps) {
	products := r.Group("/products")
	{
		products.GET("", productcontroller.GetProducts(d.Catalog, d.PageSize, d.Logger))
		products.GET("/categories", productcontroller.GetCategories(d.Catalog, d.Logger))
		products.GET("/:id", productcontroller.GetProduct(d.Catalog, d.Logger))
		products.GET("/:id/images", productcontroller.GetProductImages(d.Catalog, d.Logger))
	}
}

// SetupUserRoutes registers cart and checkout endpoints. Guests and signed-in users
// both get a cart.
func SetupUserRoutes(r *gin.Engine, d Deps) {
	session := middleware.RequireSession(d.Auth)

	cartGroup := r.Group("/cart")
	cartGroup.Use(session)
	{
		cartGroup.GET("", cartControllers.GetCart(d.Carts))
		cartGroup.POST("/items", cartControllers.AddCartItem(d.Carts, d.Catalog, d.Logger))
		cartGroup.PUT("/items/:product_id", cartControllers.UpdateCartItem(d.Carts, d.Logger))
		cartGroup.DELETE("/items/:product_id", cartControllers.DeleteCartItem(d.Carts, d.Logger))
		cartGroup.DELETE("", cartControllers.ClearCart(d.Carts, d.Logger))
	}

	r.POST("/checkout", session, orderControllers.Checkout(d.Carts, d.Orders, d.Logger))
}
