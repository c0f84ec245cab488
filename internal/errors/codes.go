package errors

// Error code constants, format CATEGORY_SPECIFIC_DETAIL. The storefront
// maps these to user-facing messages.

const (
	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID    = "VALIDATION_INVALID_ID"
	ValidationRequired     = "VALIDATION_REQUIRED"

	// ==================== Catalog (CATALOG_) ====================
	CatalogProductNotFound = "CATALOG_PRODUCT_NOT_FOUND"
	CatalogInvalidVariant  = "CATALOG_INVALID_VARIANT"

	// ==================== Cart (CART_) ====================
	CartLineNotFound     = "CART_LINE_NOT_FOUND"
	CartSessionMissing   = "CART_SESSION_MISSING"
	CartEmpty            = "CART_EMPTY"
	CartStockUnavailable = "CART_STOCK_UNAVAILABLE"

	// ==================== Orders (ORDER_) ====================
	OrderNotFound     = "ORDER_NOT_FOUND"
	OrderCreateFailed = "ORDER_CREATE_FAILED"

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
)
