package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/aurelia-atelier/aurelia-backend/internal/app/service"
	"github.com/aurelia-atelier/aurelia-backend/internal/cart"
	"github.com/aurelia-atelier/aurelia-backend/internal/cartstore"
	apperrors "github.com/aurelia-atelier/aurelia-backend/internal/errors"
	"github.com/aurelia-atelier/aurelia-backend/internal/middleware"
)

type OrderController struct {
	orderService service.OrderService
	manager      *cartstore.Manager
}

func NewOrderController(orderService service.OrderService, manager *cartstore.Manager) *OrderController {
	return &OrderController{
		orderService: orderService,
		manager:      manager,
	}
}

type CheckoutRequest struct {
	CustomerName    string `json:"customer_name" binding:"required"`
	CustomerEmail   string `json:"customer_email" binding:"required,email"`
	CustomerPhone   string `json:"customer_phone"`
	ShippingAddress string `json:"shipping_address" binding:"required"`
}

// Checkout creates an order from the session's cart and clears the cart on
// success.
// POST /api/v1/checkout
func (ctrl *OrderController) Checkout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	sessionID, ok := middleware.GetCartSession(c)
	if !ok {
		apperrors.BadRequest(c, apperrors.CartSessionMissing, "Cart session missing")
		return
	}

	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid checkout request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	store, err := ctrl.manager.Get(c.Request.Context(), sessionID)
	if err != nil {
		log.Error("Failed to open cart store for checkout", err, map[string]interface{}{
			"session_id": sessionID,
		})
		apperrors.InternalError(c, "Failed to open cart")
		return
	}

	order, err := ctrl.orderService.Checkout(sessionID, store.State(), service.CheckoutInput{
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		ShippingAddress: req.ShippingAddress,
	})
	if err != nil {
		if errors.Is(err, service.ErrEmptyCart) {
			apperrors.BadRequest(c, apperrors.CartEmpty, "Cart is empty")
			return
		}
		var stockErr *service.StockError
		if errors.As(err, &stockErr) {
			log.Warn("Checkout blocked by stock check", map[string]interface{}{
				"session_id": sessionID,
				"issues":     len(stockErr.Report.Issues),
			})
			c.JSON(http.StatusConflict, gin.H{
				"error":   apperrors.CartStockUnavailable,
				"message": "Some items are no longer available",
				"report":  stockErr.Report,
			})
			return
		}
		log.Error("Failed to create order", err, map[string]interface{}{
			"session_id": sessionID,
		})
		apperrors.InternalError(c, "Failed to create order")
		return
	}

	// The order owns the purchased lines now.
	store.Dispatch(c.Request.Context(), cart.Clear{})

	log.Info("Checkout completed", map[string]interface{}{
		"session_id": sessionID,
		"order_id":   order.ID,
	})
	c.JSON(http.StatusCreated, gin.H{"order": order})
}

// GetOrders lists the session's orders.
// GET /api/v1/orders
func (ctrl *OrderController) GetOrders(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	sessionID, ok := middleware.GetCartSession(c)
	if !ok {
		apperrors.BadRequest(c, apperrors.CartSessionMissing, "Cart session missing")
		return
	}

	orders, err := ctrl.orderService.GetSessionOrders(sessionID)
	if err != nil {
		log.Error("Failed to fetch orders", err, map[string]interface{}{
			"session_id": sessionID,
		})
		apperrors.InternalError(c, "Failed to fetch orders")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"count":  len(orders),
	})
}

// GetOrderByID returns one of the session's orders.
// GET /api/v1/orders/:id
func (ctrl *OrderController) GetOrderByID(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	sessionID, ok := middleware.GetCartSession(c)
	if !ok {
		apperrors.BadRequest(c, apperrors.CartSessionMissing, "Cart session missing")
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid order ID")
		return
	}

	order, err := ctrl.orderService.GetOrderByID(sessionID, uint(id))
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			apperrors.NotFound(c, apperrors.OrderNotFound, "Order not found")
			return
		}
		log.Error("Failed to fetch order", err, map[string]interface{}{
			"order_id": id,
		})
		apperrors.InternalError(c, "Failed to fetch order")
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order})
}
