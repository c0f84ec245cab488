package service

import (
	"errors"

	"gorm.io/gorm"

	"github.com/aurelia-atelier/aurelia-backend/internal/app/model"
	"github.com/aurelia-atelier/aurelia-backend/internal/app/repository"
	"github.com/aurelia-atelier/aurelia-backend/internal/cart"
	"github.com/aurelia-atelier/aurelia-backend/pkg/logger"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidVariant  = errors.New("invalid product variant")
)

// CatalogService is the catalog side of the storefront. The cart engine
// consumes it exactly once per added line, through Snapshot; cart prices
// never track later catalog changes.
type CatalogService interface {
	ListProducts(opts repository.ProductListOptions) ([]model.Product, error)
	GetProductByID(id uint) (*model.Product, error)
	GetProductBySlug(slug string) (*model.Product, error)
	Snapshot(productID uint) (cart.Snapshot, error)
	Variant(productID, variantID uint) (*cart.Variant, error)
}

type catalogService struct {
	productRepo repository.ProductRepository
}

func NewCatalogService(productRepo repository.ProductRepository) CatalogService {
	return &catalogService{productRepo: productRepo}
}

func (s *catalogService) ListProducts(opts repository.ProductListOptions) ([]model.Product, error) {
	products, err := s.productRepo.List(opts)
	if err != nil {
		logger.Error("Failed to list products", err, nil)
		return nil, err
	}
	return products, nil
}

func (s *catalogService) GetProductByID(id uint) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		logger.Error("Failed to fetch product", err, map[string]interface{}{
			"product_id": id,
		})
		return nil, err
	}
	return product, nil
}

func (s *catalogService) GetProductBySlug(slug string) (*model.Product, error) {
	product, err := s.productRepo.FindBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		logger.Error("Failed to fetch product by slug", err, map[string]interface{}{
			"slug": slug,
		})
		return nil, err
	}
	return product, nil
}

// Snapshot captures the catalog fields the cart needs, as of now.
func (s *catalogService) Snapshot(productID uint) (cart.Snapshot, error) {
	product, err := s.GetProductByID(productID)
	if err != nil {
		return cart.Snapshot{}, err
	}

	images := make([]string, 0, len(product.Images))
	for _, img := range product.Images {
		images = append(images, img.URL)
	}

	snapshot := cart.Snapshot{
		ProductID: product.ID,
		Name:      product.Name,
		Slug:      product.Slug,
		Price:     product.Price,
		SalePrice: product.SalePrice,
		Images:    images,
		Category:  string(product.Category),
		SKU:       product.SKU,
	}
	if product.TrackInventory {
		snapshot.Inventory = &cart.Inventory{
			Stock:          product.StockQuantity,
			TrackInventory: true,
			AllowBackorder: product.AllowBackorder,
		}
	}

	logger.Debug("Built cart snapshot", map[string]interface{}{
		"product_id": product.ID,
		"sku":        product.SKU,
	})
	return snapshot, nil
}

// Variant resolves a catalog variant for the given product into the cart's
// variant shape, rejecting variants belonging to another product.
func (s *catalogService) Variant(productID, variantID uint) (*cart.Variant, error) {
	variant, err := s.productRepo.FindVariantByID(variantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Product variant not found", map[string]interface{}{
				"variant_id": variantID,
			})
			return nil, ErrInvalidVariant
		}
		logger.Error("Failed to fetch product variant", err, map[string]interface{}{
			"variant_id": variantID,
		})
		return nil, err
	}

	if variant.ProductID != productID {
		logger.Warn("Product variant mismatch", map[string]interface{}{
			"product_id": productID,
			"variant_id": variantID,
		})
		return nil, ErrInvalidVariant
	}

	return &cart.Variant{
		Name:            variant.Name,
		Value:           variant.Value,
		PriceAdjustment: variant.PriceAdjustment,
	}, nil
}
