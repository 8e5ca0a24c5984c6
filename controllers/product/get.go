package productcontroller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/pawshop-api/catalog"
	"github.com/junaidrashid-git/pawshop-api/models"
	"go.uber.org/zap"
)

// ProductPage is one "load more" window of a filtered listing.
type ProductPage struct {
	Products []models.Product `json:"products"`
	Category string           `json:"category"`
	Total    int              `json:"total"`
	Visible  int              `json:"visible"`
	HasMore  bool             `json:"has_more"`
	NextPage int              `json:"next_visible,omitempty"`
}

func productID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
		return 0, false
	}
	return uint(id), true
}

// GET /products?category=&visible=
func GetProducts(svc *catalog.Service, pageSize int, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		category := c.DefaultQuery("category", catalog.AllCategories)
		visible := 0
		if raw := c.Query("visible"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid visible"})
				return
			}
			visible = n
		}

		products, err := svc.ListProducts(c.Request.Context(), category)
		if err != nil {
			logger.Error("list products failed", zap.String("category", category), zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch products"})
			return
		}

		window := catalog.WindowAt(pageSize, visible)
		page := ProductPage{
			Products: window.Visible(products),
			Category: category,
			Total:    len(products),
			Visible:  window.Size(),
			HasMore:  window.HasMore(len(products)),
		}
		if page.HasMore {
			window.LoadMore()
			page.NextPage = window.Size()
		}
		c.JSON(http.StatusOK, page)
	}
}

// GET /products/categories
func GetCategories(svc *catalog.Service, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		categories, err := svc.Categories(c.Request.Context())
		if err != nil {
			logger.Error("list categories failed", zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch categories"})
			return
		}
		c.JSON(http.StatusOK, categories)
	}
}

// GET /products/:id
func GetProduct(svc *catalog.Service, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := productID(c)
		if !ok {
			return
		}
		product, err := svc.GetProduct(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, catalog.ErrProductNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
				return
			}
			logger.Error("get product failed", zap.Uint("product_id", id), zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch product"})
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

// GET /products/:id/images
func GetProductImages(svc *catalog.Service, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := productID(c)
		if !ok {
			return
		}
		images, err := svc.ListImages(c.Request.Context(), id)
		if err != nil {
			logger.Error("list product images failed", zap.Uint("product_id", id), zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch product images"})
			return
		}
		c.JSON(http.StatusOK, images)
	}
}
