package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/aurelia-atelier/aurelia-backend/internal/app/model"
	"github.com/aurelia-atelier/aurelia-backend/internal/app/repository"
	"github.com/aurelia-atelier/aurelia-backend/internal/app/service"
	"github.com/aurelia-atelier/aurelia-backend/internal/cart"
	apperrors "github.com/aurelia-atelier/aurelia-backend/internal/errors"
	"github.com/aurelia-atelier/aurelia-backend/internal/middleware"
)

type ProductController struct {
	catalog service.CatalogService
}

func NewProductController(catalog service.CatalogService) *ProductController {
	return &ProductController{catalog: catalog}
}

// ListProducts returns catalog products with optional filters.
// GET /api/v1/products
func (ctrl *ProductController) ListProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	opts := repository.ProductListOptions{
		Search: c.Query("search"),
		OnSale: c.Query("on_sale") == "true",
	}
	if category := c.Query("category"); category != "" {
		cat := model.ProductCategory(category)
		opts.Category = &cat
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		opts.Limit = limit
	}
	if offset, err := strconv.Atoi(c.DefaultQuery("offset", "0")); err == nil {
		opts.Offset = offset
	}

	products, err := ctrl.catalog.ListProducts(opts)
	if err != nil {
		log.Error("Failed to list products", err, nil)
		apperrors.InternalError(c, "Failed to fetch products")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
	})
}

// GetProduct returns one product by numeric id or slug.
// GET /api/v1/products/:idOrSlug
func (ctrl *ProductController) GetProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	idOrSlug := c.Param("idOrSlug")

	var (
		product *model.Product
		err     error
	)
	if id, parseErr := strconv.ParseUint(idOrSlug, 10, 32); parseErr == nil {
		product, err = ctrl.catalog.GetProductByID(uint(id))
	} else {
		product, err = ctrl.catalog.GetProductBySlug(idOrSlug)
	}

	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.CatalogProductNotFound, "Product not found")
			return
		}
		log.Error("Failed to fetch product", err, map[string]interface{}{
			"id_or_slug": idOrSlug,
		})
		apperrors.InternalError(c, "Failed to fetch product")
		return
	}

	response := gin.H{"product": product}
	if product.SalePrice != nil {
		response["discount_percentage"] = cart.DiscountPercentage(product.Price, *product.SalePrice)
	}
	c.JSON(http.StatusOK, response)
}
