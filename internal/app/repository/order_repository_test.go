package repository

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/aurelia-atelier/aurelia-backend/internal/app/model"
	"github.com/aurelia-atelier/aurelia-backend/internal/db"
)

func setupOrderRepositoryTest(t *testing.T) (OrderRepository, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})
	return NewOrderRepository(testDB), testDB
}

func sampleOrder(session string) *model.Order {
	return &model.Order{
		SessionID:       session,
		CustomerName:    "Jamie Doe",
		CustomerEmail:   "jamie@example.com",
		ShippingAddress: "1 Jewellers Row",
		Subtotal:        decimal.NewFromInt(300),
		Tax:             decimal.NewFromInt(24),
		Shipping:        decimal.NewFromInt(5),
		Total:           decimal.NewFromInt(329),
		Currency:        "KRW",
		Status:          model.OrderStatusPending,
		Items: []model.OrderItem{
			{
				ProductID: 1,
				Name:      "Gold Band",
				SKU:       "AUR-RIN-0001",
				Quantity:  3,
				UnitPrice: decimal.NewFromInt(100),
				LineTotal: decimal.NewFromInt(300),
			},
		},
	}
}

func TestOrderRepository_CreateAndFindByID(t *testing.T) {
	repo, testDB := setupOrderRepositoryTest(t)

	order := sampleOrder("session-1")
	require.NoError(t, repo.Create(testDB, order))
	require.NotZero(t, order.ID)

	found, err := repo.FindByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, "session-1", found.SessionID)
	require.Len(t, found.Items, 1)
	assert.Equal(t, 3, found.Items[0].Quantity)

	_, err = repo.FindByID(99999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestOrderRepository_FindBySessionID(t *testing.T) {
	repo, testDB := setupOrderRepositoryTest(t)

	require.NoError(t, repo.Create(testDB, sampleOrder("session-1")))
	require.NoError(t, repo.Create(testDB, sampleOrder("session-1")))
	require.NoError(t, repo.Create(testDB, sampleOrder("session-2")))

	mine, err := repo.FindBySessionID("session-1")
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	none, err := repo.FindBySessionID("session-3")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestOrderRepository_UpdateStatus(t *testing.T) {
	repo, testDB := setupOrderRepositoryTest(t)

	order := sampleOrder("session-1")
	require.NoError(t, repo.Create(testDB, order))

	require.NoError(t, repo.UpdateStatus(order.ID, model.OrderStatusConfirmed))

	found, err := repo.FindByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusConfirmed, found.Status)
}
