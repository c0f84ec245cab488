package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/aurelia-atelier/aurelia-backend/internal/app/service"
	"github.com/aurelia-atelier/aurelia-backend/internal/cart"
	"github.com/aurelia-atelier/aurelia-backend/internal/cartstore"
	apperrors "github.com/aurelia-atelier/aurelia-backend/internal/errors"
	"github.com/aurelia-atelier/aurelia-backend/internal/middleware"
)

// CartController exposes the session cart over HTTP. Every handler resolves
// the caller's cart store, dispatches a command, and returns the fresh
// state; the engine's clamping/no-op semantics mean most requests cannot
// fail once the referenced catalog entities resolve.
type CartController struct {
	manager  *cartstore.Manager
	catalog  service.CatalogService
	taxRate  decimal.Decimal
	currency string
}

func NewCartController(
	manager *cartstore.Manager,
	catalog service.CatalogService,
	taxRate decimal.Decimal,
	currency string,
) *CartController {
	return &CartController{
		manager:  manager,
		catalog:  catalog,
		taxRate:  taxRate,
		currency: currency,
	}
}

type AddItemRequest struct {
	ProductID uint              `json:"product_id" binding:"required"`
	VariantID *uint             `json:"variant_id"`
	Engraving *EngravingRequest `json:"engraving"`
	Quantity  int               `json:"quantity"`
}

type EngravingRequest struct {
	Text      string `json:"text" binding:"required"`
	Font      string `json:"font"`
	Placement string `json:"placement"`
}

type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type UpdateVariantRequest struct {
	VariantID *uint `json:"variant_id"`
}

type UpdateEngravingRequest struct {
	Engraving *EngravingRequest `json:"engraving"`
}

type ToggleRequest struct {
	IsOpen *bool `json:"is_open"`
}

type cartResponse struct {
	Cart     cart.State  `json:"cart"`
	Totals   cart.Totals `json:"totals"`
	Currency string      `json:"currency"`
}

func (ctrl *CartController) respond(c *gin.Context, status int, state cart.State) {
	c.JSON(status, cartResponse{
		Cart:     state,
		Totals:   cart.CartTotals(state.Lines, ctrl.taxRate),
		Currency: ctrl.currency,
	})
}

// store resolves the caller's cart store, writing the error response itself
// when that fails.
func (ctrl *CartController) store(c *gin.Context) (*cartstore.Store, bool) {
	log := middleware.GetLoggerFromContext(c)

	sessionID, ok := middleware.GetCartSession(c)
	if !ok {
		log.Warn("Cart request without session", nil)
		apperrors.BadRequest(c, apperrors.CartSessionMissing, "Cart session missing")
		return nil, false
	}

	store, err := ctrl.manager.Get(c.Request.Context(), sessionID)
	if err != nil {
		log.Error("Failed to open cart store", err, map[string]interface{}{
			"session_id": sessionID,
		})
		apperrors.InternalError(c, "Failed to open cart")
		return nil, false
	}
	return store, true
}

// GetCart returns the session's cart with totals.
// GET /api/v1/cart
func (ctrl *CartController) GetCart(c *gin.Context) {
	store, ok := ctrl.store(c)
	if !ok {
		return
	}
	ctrl.respond(c, http.StatusOK, store.State())
}

// AddItem adds a product to the cart, snapshotting the catalog record.
// POST /api/v1/cart/items
func (ctrl *CartController) AddItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	store, ok := ctrl.store(c)
	if !ok {
		return
	}

	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid add item request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	snapshot, err := ctrl.catalog.Snapshot(req.ProductID)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			log.Warn("Cannot add to cart: product not found", map[string]interface{}{
				"product_id": req.ProductID,
			})
			apperrors.NotFound(c, apperrors.CatalogProductNotFound, "Product not found")
			return
		}
		log.Error("Failed to snapshot product", err, map[string]interface{}{
			"product_id": req.ProductID,
		})
		apperrors.InternalError(c, "Failed to add item to cart")
		return
	}

	var variant *cart.Variant
	if req.VariantID != nil {
		variant, err = ctrl.catalog.Variant(req.ProductID, *req.VariantID)
		if err != nil {
			if errors.Is(err, service.ErrInvalidVariant) {
				log.Warn("Invalid variant for cart item", map[string]interface{}{
					"product_id": req.ProductID,
					"variant_id": *req.VariantID,
				})
				apperrors.BadRequest(c, apperrors.CatalogInvalidVariant, "Invalid product variant")
				return
			}
			log.Error("Failed to resolve variant", err, map[string]interface{}{
				"variant_id": *req.VariantID,
			})
			apperrors.InternalError(c, "Failed to add item to cart")
			return
		}
	}

	state := store.Dispatch(c.Request.Context(), cart.AddItem{
		Product:   snapshot,
		Variant:   variant,
		Engraving: req.Engraving.toCart(),
		Quantity:  req.Quantity,
	})

	log.Info("Item added to cart", map[string]interface{}{
		"product_id": req.ProductID,
		"quantity":   req.Quantity,
		"item_count": state.ItemCount,
	})
	ctrl.respond(c, http.StatusCreated, state)
}

// UpdateQuantity sets a line's quantity; zero or less removes the line.
// PUT /api/v1/cart/items/:lineId
func (ctrl *CartController) UpdateQuantity(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	store, ok := ctrl.store(c)
	if !ok {
		return
	}

	var req UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid update quantity request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	state := store.Dispatch(c.Request.Context(), cart.UpdateQuantity{
		LineID:   c.Param("lineId"),
		Quantity: req.Quantity,
	})
	ctrl.respond(c, http.StatusOK, state)
}

// UpdateVariant replaces a line's variant (null clears it).
// PUT /api/v1/cart/items/:lineId/variant
func (ctrl *CartController) UpdateVariant(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	store, ok := ctrl.store(c)
	if !ok {
		return
	}

	var req UpdateVariantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid update variant request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	lineID := c.Param("lineId")
	line, found := findLine(store.State(), lineID)
	if !found {
		apperrors.NotFound(c, apperrors.CartLineNotFound, "Cart line not found")
		return
	}

	var variant *cart.Variant
	if req.VariantID != nil {
		resolved, err := ctrl.catalog.Variant(line.ProductID, *req.VariantID)
		if err != nil {
			if errors.Is(err, service.ErrInvalidVariant) {
				apperrors.BadRequest(c, apperrors.CatalogInvalidVariant, "Invalid product variant")
				return
			}
			log.Error("Failed to resolve variant", err, map[string]interface{}{
				"variant_id": *req.VariantID,
			})
			apperrors.InternalError(c, "Failed to update cart line")
			return
		}
		variant = resolved
	}

	state := store.Dispatch(c.Request.Context(), cart.UpdateVariant{
		LineID:  lineID,
		Variant: variant,
	})
	ctrl.respond(c, http.StatusOK, state)
}

// UpdateEngraving replaces a line's engraving (null clears it).
// PUT /api/v1/cart/items/:lineId/engraving
func (ctrl *CartController) UpdateEngraving(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	store, ok := ctrl.store(c)
	if !ok {
		return
	}

	var req UpdateEngravingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid update engraving request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	state := store.Dispatch(c.Request.Context(), cart.UpdateEngraving{
		LineID:    c.Param("lineId"),
		Engraving: req.Engraving.toCart(),
	})
	ctrl.respond(c, http.StatusOK, state)
}

// RemoveItem removes a line. Unknown line ids are a quiet no-op.
// DELETE /api/v1/cart/items/:lineId
func (ctrl *CartController) RemoveItem(c *gin.Context) {
	store, ok := ctrl.store(c)
	if !ok {
		return
	}

	state := store.Dispatch(c.Request.Context(), cart.RemoveItem{
		LineID: c.Param("lineId"),
	})
	ctrl.respond(c, http.StatusOK, state)
}

// ClearCart empties the cart, keeping the panel visibility flag.
// DELETE /api/v1/cart
func (ctrl *CartController) ClearCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	store, ok := ctrl.store(c)
	if !ok {
		return
	}

	state := store.Dispatch(c.Request.Context(), cart.Clear{})
	log.Info("Cart cleared", nil)
	ctrl.respond(c, http.StatusOK, state)
}

// Toggle sets or flips the cart panel visibility.
// POST /api/v1/cart/toggle
func (ctrl *CartController) Toggle(c *gin.Context) {
	store, ok := ctrl.store(c)
	if !ok {
		return
	}

	var req ToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	state := store.Dispatch(c.Request.Context(), cart.Toggle{Open: req.IsOpen})
	ctrl.respond(c, http.StatusOK, state)
}

// GetSummary returns the checkout-ready projection of the cart.
// GET /api/v1/cart/summary
func (ctrl *CartController) GetSummary(c *gin.Context) {
	store, ok := ctrl.store(c)
	if !ok {
		return
	}

	state := store.State()
	c.JSON(http.StatusOK, gin.H{
		"summary":  cart.Summarize(state.Lines, ctrl.taxRate),
		"currency": ctrl.currency,
	})
}

// CheckStock returns the advisory stock report for the cart.
// GET /api/v1/cart/stock
func (ctrl *CartController) CheckStock(c *gin.Context) {
	store, ok := ctrl.store(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, cart.CheckStock(store.State().Lines))
}

func (r *EngravingRequest) toCart() *cart.Engraving {
	if r == nil {
		return nil
	}
	return &cart.Engraving{
		Text:      r.Text,
		Font:      r.Font,
		Placement: r.Placement,
	}
}

func findLine(state cart.State, lineID string) (cart.Line, bool) {
	for _, l := range state.Lines {
		if l.ID == lineID {
			return l, true
		}
	}
	return cart.Line{}, false
}
