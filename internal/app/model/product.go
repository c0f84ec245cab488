package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProductCategory string

const (
	CategoryRings     ProductCategory = "rings"
	CategoryNecklaces ProductCategory = "necklaces"
	CategoryEarrings  ProductCategory = "earrings"
	CategoryBracelets ProductCategory = "bracelets"
)

type Product struct {
	ID             uint             `gorm:"primarykey" json:"id"`
	Name           string           `gorm:"not null" json:"name"`
	Slug           string           `gorm:"uniqueIndex;not null" json:"slug"`
	Description    string           `gorm:"type:text" json:"description"`
	Price          decimal.Decimal  `gorm:"type:numeric(12,2);not null" json:"price"`
	SalePrice      *decimal.Decimal `gorm:"type:numeric(12,2)" json:"sale_price,omitempty"`
	Category       ProductCategory  `gorm:"type:varchar(50);index" json:"category"`
	SKU            string           `gorm:"uniqueIndex;not null" json:"sku"`
	StockQuantity  int              `gorm:"default:0" json:"stock_quantity"`
	TrackInventory bool             `gorm:"default:true" json:"track_inventory"`
	AllowBackorder bool             `gorm:"default:false" json:"allow_backorder"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
	DeletedAt      gorm.DeletedAt   `gorm:"index" json:"-"`

	// Relationships
	Images   []ProductImage   `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"images,omitempty"`
	Variants []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"variants,omitempty"`
}

func (Product) TableName() string {
	return "products"
}

type ProductImage struct {
	ID        uint   `gorm:"primarykey" json:"id"`
	ProductID uint   `gorm:"not null;index" json:"product_id"`
	URL       string `gorm:"not null" json:"url"`
	Position  int    `gorm:"default:0" json:"position"` // 0 is the primary image
}

func (ProductImage) TableName() string {
	return "product_images"
}

// ProductVariant is a selectable option (size, chain length) with a fixed
// price adjustment relative to the product's effective price.
type ProductVariant struct {
	ID              uint            `gorm:"primarykey" json:"id"`
	ProductID       uint            `gorm:"not null;index" json:"product_id"`
	Name            string          `gorm:"not null" json:"name"`
	Value           string          `gorm:"not null" json:"value"`
	PriceAdjustment decimal.Decimal `gorm:"type:numeric(12,2);default:0" json:"price_adjustment"`
}

func (ProductVariant) TableName() string {
	return "product_variants"
}
