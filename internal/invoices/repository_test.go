package invoices

import (
	"context"
	"encoding/json"
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

func setupInvoicesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	invoices := `
CREATE TABLE IF NOT EXISTS invoices (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  invoice_number TEXT NOT NULL,
  sender TEXT NOT NULL,
  customer TEXT NOT NULL,
  tax_rate NUMERIC NOT NULL DEFAULT 0,
  discount_rate NUMERIC NOT NULL DEFAULT 0,
  subtotal NUMERIC NOT NULL DEFAULT 0,
  discount_amount NUMERIC NOT NULL DEFAULT 0,
  tax_amount NUMERIC NOT NULL DEFAULT 0,
  grand_total NUMERIC NOT NULL DEFAULT 0,
  notes TEXT,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (user_id, invoice_number)
);`
	lineItems := `
CREATE TABLE IF NOT EXISTS invoice_line_items (
  id TEXT PRIMARY KEY,
  invoice_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  name TEXT NOT NULL,
  unit_price NUMERIC NOT NULL DEFAULT 0,
  unit TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  position INTEGER NOT NULL DEFAULT 0
);`
	counters := `
CREATE TABLE IF NOT EXISTS invoice_counters (
  user_id TEXT PRIMARY KEY,
  count INTEGER NOT NULL DEFAULT 0,
  updated_at DATETIME
);`
	require.NoError(t, conn.Exec(invoices).Error)
	require.NoError(t, conn.Exec(lineItems).Error)
	require.NoError(t, conn.Exec(counters).Error)
	return conn
}

func newInvoice(t *testing.T, repo Repository, userID uuid.UUID, number string, created time.Time) *models.Invoice {
	t.Helper()

	invoice := &models.Invoice{
		ID:            uuid.New(),
		UserID:        userID,
		InvoiceNumber: number,
		Sender:        json.RawMessage(`{"company":"Acme"}`),
		Customer:      json.RawMessage(`{"name":"Bob"}`),
		Subtotal:      decimal.NewFromInt(100),
		GrandTotal:    decimal.NewFromInt(100),
		LineItems: []models.InvoiceLineItem{
			{ID: uuid.New(), ProductID: uuid.New(), Name: "Widget", UnitPrice: decimal.NewFromInt(50), Unit: "pcs", Quantity: 2},
		},
		CreatedAt: created,
		UpdatedAt: created,
	}
	require.NoError(t, repo.Create(context.Background(), invoice))
	return invoice
}

func TestRepositoryNextInvoiceNumber_sequencesPerUser(t *testing.T) {
	conn := setupInvoicesTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	alice := uuid.New()
	bob := uuid.New()

	for _, want := range []string{"INV-0001", "INV-0002", "INV-0003"} {
		number, err := repo.NextInvoiceNumber(ctx, alice)
		require.NoError(t, err)
		assert.Equal(t, want, number)
	}

	// A second user gets an independent counter.
	number, err := repo.NextInvoiceNumber(ctx, bob)
	require.NoError(t, err)
	assert.Equal(t, "INV-0001", number)
}

func TestRepositoryNextInvoiceNumber_growsPastPadding(t *testing.T) {
	conn := setupInvoicesTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, conn.Create(&models.InvoiceCounter{UserID: userID, Count: 9999}).Error)

	number, err := repo.NextInvoiceNumber(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "INV-10000", number)
}

func TestRepositoryFindByID_scopedWithOrderedLines(t *testing.T) {
	conn := setupInvoicesTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	userID := uuid.New()

	invoice := &models.Invoice{
		ID:            uuid.New(),
		UserID:        userID,
		InvoiceNumber: "INV-0001",
		Sender:        json.RawMessage(`{}`),
		Customer:      json.RawMessage(`{}`),
		LineItems: []models.InvoiceLineItem{
			{ID: uuid.New(), ProductID: uuid.New(), Name: "Second", UnitPrice: decimal.NewFromInt(10), Unit: "pcs", Quantity: 1, Position: 1},
			{ID: uuid.New(), ProductID: uuid.New(), Name: "First", UnitPrice: decimal.NewFromInt(20), Unit: "pcs", Quantity: 1, Position: 0},
		},
	}
	require.NoError(t, repo.Create(ctx, invoice))

	loaded, err := repo.FindByID(ctx, userID, invoice.ID)
	require.NoError(t, err)
	require.Len(t, loaded.LineItems, 2)
	assert.Equal(t, "First", loaded.LineItems[0].Name)
	assert.Equal(t, "Second", loaded.LineItems[1].Name)

	// Another user never sees the row.
	_, err = repo.FindByID(ctx, uuid.New(), invoice.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryListByUser_keysetPagination(t *testing.T) {
	conn := setupInvoicesTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	userID := uuid.New()

	now := time.Now().UTC().Truncate(time.Second)
	newInvoice(t, repo, userID, "INV-0001", now.Add(-2*time.Hour))
	newInvoice(t, repo, userID, "INV-0002", now.Add(-time.Hour))
	newInvoice(t, repo, userID, "INV-0003", now)

	page, err := repo.ListByUser(ctx, userID, nil, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "INV-0003", page[0].InvoiceNumber)
	assert.Equal(t, "INV-0002", page[1].InvoiceNumber)

	cursor := &pagination.Cursor{CreatedAt: page[1].CreatedAt, ID: page[1].ID}
	rest, err := repo.ListByUser(ctx, userID, cursor, 2)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, "INV-0001", rest[0].InvoiceNumber)
}
