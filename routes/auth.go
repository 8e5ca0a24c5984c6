package routes

import (
	"github.com/gin-gonic/gin"
	userControllers "github.com/junaidrashid-git/pawshop-api/controllers/user"
	"github.com/junaidrashid-git/pawshop-api/middleware"
)

// SetupAuthRoutes registers all “/auth/*” endpoints.
func SetupAuthRoutes(r *gin.Engine, d Deps) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/signup", userControllers.SignUp(d.Auth, d.Carts, d.Logger))
		authGroup.POST("/signin", userControllers.SignIn(d.Auth, d.Carts, d.Logger))
		authGroup.POST("/guest", userControllers.CreateGuest(d.Auth, d.Logger))

		authGroup.POST("/signout", middleware.RequireSession(d.Auth), userControllers.SignOut(d.Auth, d.Carts, d.Logger))
		authGroup.GET("/me", middleware.RequireUser(d.Auth), userControllers.GetMe(d.Auth, d.Logger))
	}
}
