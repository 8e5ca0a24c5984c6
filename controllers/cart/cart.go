package cartControllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/pawshop-api/cart"
	"github.com/junaidrashid-git/pawshop-api/catalog"
	"github.com/junaidrashid-git/pawshop-api/middleware"
	"go.uber.org/zap"
)

type AddItemInput struct {
	ProductID uint `json:"product_id" binding:"required"`
}

type UpdateQuantityInput struct {
	Quantity *int `json:"quantity" binding:"required"`
}

func sessionStore(c *gin.Context, sessions *cart.Sessions) (*cart.Store, bool) {
	key, ok := middleware.CartKey(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return nil, false
	}
	return sessions.Open(c.Request.Context(), key), true
}

// respond sends the cart after a mutation. A failed snapshot write is logged; the
// mutation itself has already been applied.
func respond(c *gin.Context, st *cart.Store, err error, logger *zap.Logger) {
	if err != nil {
		logger.Warn("cart snapshot not saved", zap.String("session", st.Key()), zap.Error(err))
	}
	c.JSON(http.StatusOK, st.Summary())
}

func productIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("product_id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product_id"})
		return 0, false
	}
	return uint(id), true
}

// GET /cart
func GetCart(sessions *cart.Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		st, ok := sessionStore(c, sessions)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, st.Summary())
	}
}

// POST /cart/items
func AddCartItem(sessions *cart.Sessions, products *catalog.Service, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input AddItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		product, err := products.GetProduct(c.Request.Context(), input.ProductID)
		if err != nil {
			if errors.Is(err, catalog.ErrProductNotFound) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Product does not exist"})
				return
			}
			logger.Error("product lookup failed", zap.Uint("product_id", input.ProductID), zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to validate product"})
			return
		}

		st, ok := sessionStore(c, sessions)
		if !ok {
			return
		}
		err = st.AddItem(c.Request.Context(), cart.LineItem{
			ProductID: product.ID,
			Name:      product.Name,
			UnitPrice: product.Price,
			ImageRef:  product.Image,
		})
		respond(c, st, err, logger)
	}
}

// PUT /cart/items/:product_id
func UpdateCartItem(sessions *cart.Sessions, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, ok := productIDParam(c)
		if !ok {
			return
		}
		var input UpdateQuantityInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		st, ok := sessionStore(c, sessions)
		if !ok {
			return
		}
		err := st.UpdateQuantity(c.Request.Context(), productID, *input.Quantity)
		respond(c, st, err, logger)
	}
}

// DELETE /cart/items/:product_id
func DeleteCartItem(sessions *cart.Sessions, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, ok := productIDParam(c)
		if !ok {
			return
		}
		st, ok := sessionStore(c, sessions)
		if !ok {
			return
		}
		err := st.RemoveItem(c.Request.Context(), productID)
		respond(c, st, err, logger)
	}
}

// DELETE /cart
func ClearCart(sessions *cart.Sessions, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		st, ok := sessionStore(c, sessions)
		if !ok {
			return
		}
		err := st.Clear(c.Request.Context())
		respond(c, st, err, logger)
	}
}
