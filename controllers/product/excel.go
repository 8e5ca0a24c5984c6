package productcontroller

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/pawshop-api/catalog"
	"go.uber.org/zap"
)

// POST /admin/products/import-excel (multipart "file")
func ImportProductsFromExcel(svc *catalog.Service, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Excel file is required"})
			return
		}
		file, err := header.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open Excel file"})
			return
		}
		defer file.Close()

		res, err := svc.ImportXLSX(c.Request.Context(), file, header.Size)
		if err != nil {
			if errors.Is(err, catalog.ErrInvalidProduct) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			logger.Warn("excel import failed", zap.String("file", header.Filename), zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse Excel file"})
			return
		}
		logger.Info("products imported",
			zap.Int("created", res.Created), zap.Int("updated", res.Updated), zap.Int("skipped", res.Skipped))
		c.JSON(http.StatusOK, res)
	}
}

// GET /admin/products/export-excel
func ExportProductsToExcel(svc *catalog.Service, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var buf bytes.Buffer
		if err := svc.ExportXLSX(c.Request.Context(), &buf); err != nil {
			logger.Error("excel export failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write Excel file"})
			return
		}
		c.Header("Content-Disposition", "attachment; filename=products.xlsx")
		c.Header("Expires", "0")
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
	}
}
