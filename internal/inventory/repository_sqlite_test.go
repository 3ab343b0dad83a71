package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rahulmenon/billstack-backend/pkg/db/models"
	"github.com/rahulmenon/billstack-backend/pkg/pagination"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupProductsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	products := `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  name TEXT NOT NULL,
  price NUMERIC NOT NULL DEFAULT 0,
  unit TEXT NOT NULL,
  quantity INTEGER NOT NULL DEFAULT 0,
  barcode_id TEXT,
  total_stock_in INTEGER NOT NULL DEFAULT 0,
  total_stock_out INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, conn.Exec(products).Error)
	return conn
}

func newProduct(t *testing.T, repo Repository, userID uuid.UUID, name string, qty int, created time.Time) *models.Product {
	t.Helper()

	product := &models.Product{
		ID:           uuid.New(),
		UserID:       userID,
		Name:         name,
		Price:        decimal.NewFromInt(25),
		Unit:         "pcs",
		Quantity:     qty,
		TotalStockIn: qty,
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	require.NoError(t, repo.Create(context.Background(), product))
	return product
}

func TestRepositoryFindByIDForUpdate_scopedToUser(t *testing.T) {
	conn := setupProductsTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	userID := uuid.New()

	product := newProduct(t, repo, userID, "Widget", 8, time.Now().UTC())

	locked, err := repo.FindByIDForUpdate(ctx, userID, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, locked.Quantity)

	// The counters written through the locked row persist.
	locked.Quantity = 5
	locked.TotalStockOut = 3
	require.NoError(t, repo.Save(ctx, locked))

	reloaded, err := repo.FindByID(ctx, userID, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, reloaded.Quantity)
	assert.Equal(t, 3, reloaded.TotalStockOut)

	// Another user cannot lock the row.
	_, err = repo.FindByIDForUpdate(ctx, uuid.New(), product.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryListByUser_keysetPagination(t *testing.T) {
	conn := setupProductsTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	userID := uuid.New()

	now := time.Now().UTC().Truncate(time.Second)
	newProduct(t, repo, userID, "Oldest", 1, now.Add(-2*time.Hour))
	newProduct(t, repo, userID, "Middle", 2, now.Add(-time.Hour))
	newProduct(t, repo, userID, "Newest", 3, now)
	newProduct(t, repo, uuid.New(), "Foreign", 4, now)

	page, err := repo.ListByUser(ctx, userID, nil, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "Newest", page[0].Name)
	assert.Equal(t, "Middle", page[1].Name)

	cursor := &pagination.Cursor{CreatedAt: page[1].CreatedAt, ID: page[1].ID}
	rest, err := repo.ListByUser(ctx, userID, cursor, 2)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, "Oldest", rest[0].Name)
}
