package controller

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/aurelia-atelier/aurelia-backend/internal/app/model"
	"github.com/aurelia-atelier/aurelia-backend/internal/app/repository"
	"github.com/aurelia-atelier/aurelia-backend/internal/app/service"
	"github.com/aurelia-atelier/aurelia-backend/internal/db"
)

func setupProductControllerTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	gin.SetMode(gin.TestMode)

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	productRepo := repository.NewProductRepository(testDB)
	catalog := service.NewCatalogService(productRepo)
	productController := NewProductController(catalog)

	engine := gin.New()
	engine.GET("/products", productController.ListProducts)
	engine.GET("/products/:idOrSlug", productController.GetProduct)

	sale := decimal.NewFromInt(150)
	require.NoError(t, testDB.Create(&model.Product{
		Name:      "Gold Solitaire Ring",
		Slug:      "gold-solitaire-ring",
		Price:     decimal.NewFromInt(200),
		SalePrice: &sale,
		Category:  model.CategoryRings,
		SKU:       "AUR-RIN-0001",
	}).Error)
	require.NoError(t, testDB.Create(&model.Product{
		Name:     "Pearl Drop Earrings",
		Slug:     "pearl-drop-earrings",
		Price:    decimal.NewFromInt(90),
		Category: model.CategoryEarrings,
		SKU:      "AUR-EAR-0001",
	}).Error)

	return engine, testDB
}

func getJSON(t *testing.T, engine *gin.Engine, path string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	var body map[string]interface{}
	if len(w.Body.Bytes()) > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	}
	return w, body
}

func TestProductController_ListProducts(t *testing.T) {
	engine, _ := setupProductControllerTest(t)

	w, body := getJSON(t, engine, "/products")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), body["count"])

	w, body = getJSON(t, engine, "/products?category=earrings")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), body["count"])

	w, body = getJSON(t, engine, "/products?on_sale=true")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), body["count"])

	w, body = getJSON(t, engine, "/products?search=Pearl")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, float64(1), body["count"])
	products := body["products"].([]interface{})
	assert.Equal(t, "pearl-drop-earrings", products[0].(map[string]interface{})["slug"])
}

func TestProductController_GetProductBySlug(t *testing.T) {
	engine, _ := setupProductControllerTest(t)

	w, body := getJSON(t, engine, "/products/gold-solitaire-ring")
	require.Equal(t, http.StatusOK, w.Code)

	product := body["product"].(map[string]interface{})
	assert.Equal(t, "Gold Solitaire Ring", product["name"])
	// 200 -> 150 is a 25% discount.
	assert.Equal(t, float64(25), body["discount_percentage"])
}

func TestProductController_GetProductByID(t *testing.T) {
	engine, testDB := setupProductControllerTest(t)

	var product model.Product
	require.NoError(t, testDB.Where("slug = ?", "pearl-drop-earrings").First(&product).Error)

	w, body := getJSON(t, engine, fmt.Sprintf("/products/%d", product.ID))
	require.Equal(t, http.StatusOK, w.Code)

	got := body["product"].(map[string]interface{})
	assert.Equal(t, "AUR-EAR-0001", got["sku"])
	// Not on sale, so no discount field.
	_, present := body["discount_percentage"]
	assert.False(t, present)
}

func TestProductController_GetProductNotFound(t *testing.T) {
	engine, _ := setupProductControllerTest(t)

	w, _ := getJSON(t, engine, "/products/99999")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = getJSON(t, engine, "/products/no-such-slug")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
