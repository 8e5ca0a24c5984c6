package productcontroller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/pawshop-api/catalog"
	"go.uber.org/zap"
)

type ReorderImageRequest struct {
	DisplayOrder *int `json:"display_order" binding:"required"`
}

func writeCatalogError(c *gin.Context, err error, logger *zap.Logger, msg string) {
	switch {
	case errors.Is(err, catalog.ErrInvalidProduct):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, catalog.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
	case errors.Is(err, catalog.ErrImageNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Image not found"})
	default:
		logger.Error(msg, zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": msg})
	}
}

// POST /admin/products
func CreateProduct(svc *catalog.Service, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in catalog.ProductInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		product, err := svc.CreateProduct(c.Request.Context(), in)
		if err != nil {
			writeCatalogError(c, err, logger, "Failed to create product")
			return
		}
		c.JSON(http.StatusCreated, product)
	}
}

// PUT /admin/products/:id
func UpdateProduct(svc *catalog.Service, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := productID(c)
		if !ok {
			return
		}
		var in catalog.ProductInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		product, err := svc.UpdateProduct(c.Request.Context(), id, in)
		if err != nil {
			writeCatalogError(c, err, logger, "Failed to update product")
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

// DELETE /admin/products/:id
func DeleteProduct(svc *catalog.Service, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := productID(c)
		if !ok {
			return
		}
		if err := svc.DeleteProduct(c.Request.Context(), id); err != nil {
			writeCatalogError(c, err, logger, "Failed to delete product")
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
	}
}

// POST /admin/products/:id/images (multipart "image")
func AddProductImage(svc *catalog.Service, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := productID(c)
		if !ok {
			return
		}
		file, err := c.FormFile("image")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Image is required"})
			return
		}
		f, err := file.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read image"})
			return
		}
		defer f.Close()

		img, err := svc.AddImage(c.Request.Context(), id, file.Filename, file.Header.Get("Content-Type"), f)
		if err != nil {
			writeCatalogError(c, err, logger, "Failed to save image")
			return
		}
		c.JSON(http.StatusCreated, img)
	}
}

// DELETE /admin/products/images/:image_id
func DeleteProductImage(svc *catalog.Service, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.DeleteImage(c.Request.Context(), c.Param("image_id")); err != nil {
			writeCatalogError(c, err, logger, "Failed to delete image")
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Image deleted successfully"})
	}
}

// PUT /admin/products/images/:image_id/order
func ReorderProductImage(svc *catalog.Service, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ReorderImageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		if err := svc.ReorderImage(c.Request.Context(), c.Param("image_id"), *req.DisplayOrder); err != nil {
			writeCatalogError(c, err, logger, "Failed to update image order")
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Image order updated"})
	}
}

// PUT /admin/products/images/:image_id/primary
func SetPrimaryImage(svc *catalog.Service, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.SetPrimary(c.Request.Context(), c.Param("image_id")); err != nil {
			writeCatalogError(c, err, logger, "Failed to set primary image")
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Primary image updated"})
	}
}
