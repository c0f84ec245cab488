package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipping  OrderStatus = "shipping"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

type Order struct {
	ID              uint            `gorm:"primarykey" json:"id"`
	SessionID       string          `gorm:"type:varchar(64);not null;index" json:"session_id"`
	CustomerName    string          `gorm:"not null" json:"customer_name"`
	CustomerEmail   string          `gorm:"not null;index" json:"customer_email"`
	CustomerPhone   string          `json:"customer_phone,omitempty"`
	ShippingAddress string          `gorm:"type:text;not null" json:"shipping_address"`
	Subtotal        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"subtotal"`
	Tax             decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"tax"`
	Shipping        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"shipping"`
	Total           decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total"`
	Currency        string          `gorm:"type:varchar(3);not null" json:"currency"`
	Status          OrderStatus     `gorm:"type:varchar(20);default:'pending'" json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	DeletedAt       gorm.DeletedAt  `gorm:"index" json:"-"`

	// Relationships
	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderItem stores the cart line as it was priced at checkout. Variant and
// engraving details go into CustomizationSnapshot verbatim so the order
// survives later catalog edits.
type OrderItem struct {
	ID                    uint            `gorm:"primarykey" json:"id"`
	OrderID               uint            `gorm:"not null;index" json:"order_id"`
	ProductID             uint            `gorm:"not null;index" json:"product_id"`
	Name                  string          `gorm:"not null" json:"name"`
	SKU                   string          `gorm:"not null" json:"sku"`
	Quantity              int             `gorm:"not null" json:"quantity"`
	UnitPrice             decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	LineTotal             decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"line_total"`
	CustomizationSnapshot string          `gorm:"type:text" json:"customization_snapshot,omitempty"`
	CreatedAt             time.Time       `json:"created_at"`

	Order   Order   `gorm:"foreignKey:OrderID" json:"-"`
	Product Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (OrderItem) TableName() string {
	return "order_items"
}
