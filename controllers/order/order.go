package orderControllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/pawshop-api/cart"
	"github.com/junaidrashid-git/pawshop-api/events"
	"github.com/junaidrashid-git/pawshop-api/middleware"
	"github.com/junaidrashid-git/pawshop-api/models"
	"github.com/junaidrashid-git/pawshop-api/orders"
	"go.uber.org/zap"
)

const retryMessage = "There was an error processing your order. Please try again."

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Note   string `json:"note"`
}

type SetTrackingRequest struct {
	TrackingNumber        string     `json:"tracking_number"`
	EstimatedDeliveryDate *time.Time `json:"estimated_delivery_date"`
}

// OrderView is an order together with its progress.
type OrderView struct {
	Order    *models.Order      `json:"order"`
	Timeline []orders.Milestone `json:"timeline"`
}

// POST /checkout
func Checkout(sessions *cart.Sessions, svc *orders.Service, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var form orders.CheckoutForm
		if err := c.ShouldBindJSON(&form); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		claims, ok := middleware.Claims(c)
		key, keyOK := middleware.CartKey(c)
		if !ok || !keyOK {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		form.UserID = ""
		if !claims.IsGuest() {
			form.UserID = claims.Subject
		}

		st := sessions.Open(c.Request.Context(), key)
		summary := st.Summary()

		order, err := svc.CreateOrder(c.Request.Context(), form, summary.Items, summary.Subtotal)
		if err != nil {
			var verr *orders.ValidationError
			switch {
			case errors.As(err, &verr):
				c.JSON(http.StatusBadRequest, gin.H{"error": "Please fill in all required fields", "fields": verr.Fields})
			case errors.Is(err, orders.ErrEmptyCart):
				c.JSON(http.StatusBadRequest, gin.H{"error": "Your cart is empty"})
			default:
				logger.Error("checkout failed", zap.String("session", key), zap.Error(err))
				c.JSON(http.StatusBadGateway, gin.H{"error": retryMessage})
			}
			return
		}

		// only the ordered lines leave the cart; anything added meanwhile stays
		if err := st.Subtract(c.Request.Context(), summary.Items); err != nil {
			logger.Warn("cart not cleared after checkout", zap.String("session", key), zap.String("order_number", order.OrderNumber), zap.Error(err))
		}
		c.JSON(http.StatusCreated, order)
	}
}

// GET /orders/mine
func MyOrders(svc *orders.Service, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := middleware.Claims(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		list, err := svc.ListForUser(c.Request.Context(), claims.Subject)
		if err != nil {
			logger.Error("list user orders failed", zap.String("user_id", claims.Subject), zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch orders"})
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// GET /orders/:id/timeline
func OrderTimeline(svc *orders.Service, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := middleware.Claims(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		order, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err == nil && (order.UserID == nil || *order.UserID != claims.Subject) {
			err = orders.ErrOrderNotFound
		}
		respondWithTimeline(c, svc, order, err, logger)
	}
}

// GET /orders/track/:order_number
func TrackOrder(svc *orders.Service, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		order, err := svc.TrackByOrderNumber(c.Request.Context(), c.Param("order_number"))
		respondWithTimeline(c, svc, order, err, logger)
	}
}

func respondWithTimeline(c *gin.Context, svc *orders.Service, order *models.Order, err error, logger *zap.Logger) {
	if err != nil {
		if errors.Is(err, orders.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		logger.Error("order lookup failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch order. Please try again."})
		return
	}
	timeline, err := svc.Timeline(c.Request.Context(), *order)
	if err != nil {
		logger.Error("order history lookup failed", zap.String("order_number", order.OrderNumber), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch order. Please try again."})
		return
	}
	c.JSON(http.StatusOK, OrderView{Order: order, Timeline: timeline})
}

// GET /admin/orders?status=
func GetAllOrders(svc *orders.Service, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var status models.OrderStatus
		if raw := strings.TrimSpace(c.Query("status")); raw != "" && raw != "all" {
			parsed, err := orders.ParseStatus(strings.ToLower(raw))
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order status"})
				return
			}
			status = parsed
		}
		list, err := svc.ListAll(c.Request.Context(), status)
		if err != nil {
			logger.Error("list orders failed", zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch orders"})
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// GET /admin/orders/:id
func GetOrder(svc *orders.Service, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		order, err := svc.Get(c.Request.Context(), c.Param("id"))
		respondWithTimeline(c, svc, order, err, logger)
	}
}

// PUT /admin/orders/:id/status
func UpdateOrderStatus(svc *orders.Service, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		status, err := orders.ParseStatus(strings.ToLower(strings.TrimSpace(req.Status)))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order status"})
			return
		}

		order, err := svc.UpdateStatus(c.Request.Context(), c.Param("id"), status, strings.TrimSpace(req.Note))
		switch {
		case err == nil:
			c.JSON(http.StatusOK, order)
		case errors.Is(err, orders.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		case errors.Is(err, orders.ErrInvalidTransition):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			logger.Error("update order status failed", zap.String("order_id", c.Param("id")), zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to update order status"})
		}
	}
}

// PUT /admin/orders/:id/tracking
func SetOrderTracking(svc *orders.Service, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SetTrackingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		order, err := svc.SetTracking(c.Request.Context(), c.Param("id"), req.TrackingNumber, req.EstimatedDeliveryDate)
		switch {
		case err == nil:
			c.JSON(http.StatusOK, order)
		case errors.Is(err, orders.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		default:
			logger.Error("set order tracking failed", zap.String("order_id", c.Param("id")), zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to update tracking"})
		}
	}
}

// DELETE /admin/orders/:id
func DeleteOrder(svc *orders.Service, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := svc.Delete(c.Request.Context(), c.Param("id"))
		switch {
		case err == nil:
			c.JSON(http.StatusOK, gin.H{"message": "Order deleted successfully"})
		case errors.Is(err, orders.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		default:
			logger.Error("delete order failed", zap.String("order_id", c.Param("id")), zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to delete order"})
		}
	}
}

// GET /admin/orders/ws
func OrderWebSocketHandler(hub *events.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		hub.ServeWS(c.Writer, c.Request)
	}
}
