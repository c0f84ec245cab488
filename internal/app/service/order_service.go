package service

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/aurelia-atelier/aurelia-backend/internal/app/model"
	"github.com/aurelia-atelier/aurelia-backend/internal/app/repository"
	"github.com/aurelia-atelier/aurelia-backend/internal/cart"
	"github.com/aurelia-atelier/aurelia-backend/pkg/logger"
)

var (
	ErrOrderNotFound    = errors.New("order not found")
	ErrEmptyCart        = errors.New("cart is empty")
	ErrStockUnavailable = errors.New("stock unavailable")
)

// CheckoutInput is the customer-facing part of an order.
type CheckoutInput struct {
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	ShippingAddress string
}

// StockError carries the advisory stock report that blocked a checkout.
type StockError struct {
	Report cart.StockReport
}

func (e *StockError) Error() string { return ErrStockUnavailable.Error() }

func (e *StockError) Unwrap() error { return ErrStockUnavailable }

type OrderService interface {
	// Checkout turns the current cart state into an order. It runs the
	// advisory stock check first; the cart engine itself never blocks on
	// stock, so this is the one place that acts on the report.
	Checkout(sessionID string, state cart.State, in CheckoutInput) (*model.Order, error)
	GetSessionOrders(sessionID string) ([]model.Order, error)
	GetOrderByID(sessionID string, orderID uint) (*model.Order, error)
}

type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	db          *gorm.DB
	taxRate     decimal.Decimal
	currency    string
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	db *gorm.DB,
	taxRate decimal.Decimal,
	currency string,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		db:          db,
		taxRate:     taxRate,
		currency:    currency,
	}
}

func (s *orderService) Checkout(sessionID string, state cart.State, in CheckoutInput) (*model.Order, error) {
	logger.Info("Creating order from cart", map[string]interface{}{
		"session_id": sessionID,
		"item_count": state.ItemCount,
	})

	if state.IsEmpty() {
		logger.Warn("Cannot create order: cart is empty", map[string]interface{}{
			"session_id": sessionID,
		})
		return nil, ErrEmptyCart
	}

	if report := cart.CheckStock(state.Lines); !report.Available {
		logger.Warn("Cannot create order: stock check failed", map[string]interface{}{
			"session_id": sessionID,
			"issues":     len(report.Issues),
		})
		return nil, &StockError{Report: report}
	}

	summary := cart.Summarize(state.Lines, s.taxRate)

	order := &model.Order{
		SessionID:       sessionID,
		CustomerName:    in.CustomerName,
		CustomerEmail:   in.CustomerEmail,
		CustomerPhone:   in.CustomerPhone,
		ShippingAddress: in.ShippingAddress,
		Subtotal:        summary.Totals.Subtotal,
		Tax:             summary.Totals.Tax,
		Shipping:        summary.Totals.Shipping,
		Total:           summary.Totals.Total,
		Currency:        s.currency,
		Status:          model.OrderStatusPending,
	}

	for _, line := range summary.Lines {
		item := model.OrderItem{
			ProductID: line.ProductID,
			Name:      line.Name,
			SKU:       line.SKU,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			LineTotal: line.LineTotal,
		}
		if line.Variant != nil || line.Engraving != nil {
			snapshot, err := json.Marshal(map[string]interface{}{
				"variant":   line.Variant,
				"engraving": line.Engraving,
			})
			if err != nil {
				return nil, fmt.Errorf("failed to snapshot customization: %w", err)
			}
			item.CustomizationSnapshot = string(snapshot)
		}
		order.Items = append(order.Items, item)
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during order creation, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"session_id": sessionID,
			})
		}
	}()

	if err := s.orderRepo.Create(tx, order); err != nil {
		tx.Rollback()
		return nil, err
	}

	for _, line := range summary.Lines {
		if err := s.productRepo.DecrementStock(tx, line.ProductID, line.Quantity); err != nil {
			tx.Rollback()
			logger.Error("Failed to decrement stock", err, map[string]interface{}{
				"session_id": sessionID,
				"product_id": line.ProductID,
			})
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit order", err, map[string]interface{}{
			"session_id": sessionID,
		})
		return nil, err
	}

	logger.Info("Order created successfully", map[string]interface{}{
		"order_id":   order.ID,
		"session_id": sessionID,
		"total":      order.Total.String(),
	})
	return order, nil
}

func (s *orderService) GetSessionOrders(sessionID string) ([]model.Order, error) {
	return s.orderRepo.FindBySessionID(sessionID)
}

func (s *orderService) GetOrderByID(sessionID string, orderID uint) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		logger.Error("Failed to fetch order", err, map[string]interface{}{
			"order_id": orderID,
		})
		return nil, err
	}

	// Orders are scoped to the cart session that placed them.
	if order.SessionID != sessionID {
		logger.Warn("Order access denied: session mismatch", map[string]interface{}{
			"order_id":   orderID,
			"session_id": sessionID,
		})
		return nil, ErrOrderNotFound
	}
	return order, nil
}
