package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rahulmenon/billstack-backend/pkg/db/models"
	"github.com/shopspring/decimal"
)

func TestRepositoryRoundTrip(t *testing.T) {
	conn := openTestDB(t)
	tx := conn.Begin()
	t.Cleanup(func() { tx.Rollback() })

	repo := NewRepository(tx)
	ctx := context.Background()
	userID := uuid.New()

	product := &models.Product{
		ID:           uuid.New(),
		UserID:       userID,
		Name:         "Repo Widget",
		Price:        decimal.NewFromInt(25),
		Unit:         "pcs",
		Quantity:     8,
		TotalStockIn: 8,
	}
	if err := repo.Create(ctx, product); err != nil {
		t.Fatalf("create product: %v", err)
	}

	loaded, err := repo.FindByIDForUpdate(ctx, userID, product.ID)
	if err != nil {
		t.Fatalf("find for update: %v", err)
	}
	if loaded.Quantity != 8 {
		t.Fatalf("expected quantity 8, got %d", loaded.Quantity)
	}

	loaded.Quantity = 5
	loaded.TotalStockOut = 3
	if err := repo.Save(ctx, loaded); err != nil {
		t.Fatalf("save product: %v", err)
	}

	again, err := repo.FindByID(ctx, userID, product.ID)
	if err != nil {
		t.Fatalf("find by id: %v", err)
	}
	if again.Quantity != 5 || again.TotalStockOut != 3 {
		t.Fatalf("unexpected persisted counters: %+v", again)
	}

	// Scoped to the owning user.
	if _, err := repo.FindByID(ctx, uuid.New(), product.ID); err == nil {
		t.Fatal("expected not found for foreign user")
	}

	if err := repo.Delete(ctx, userID, product.ID); err != nil {
		t.Fatalf("delete product: %v", err)
	}
	if _, err := repo.FindByID(ctx, userID, product.ID); err == nil {
		t.Fatal("expected not found after delete")
	}
}

func TestRepositoryListOrdering(t *testing.T) {
	conn := openTestDB(t)
	tx := conn.Begin()
	t.Cleanup(func() { tx.Rollback() })

	repo := NewRepository(tx)
	ctx := context.Background()
	userID := uuid.New()

	for i := 0; i < 3; i++ {
		product := &models.Product{
			ID:     uuid.New(),
			UserID: userID,
			Name:   "Widget",
			Price:  decimal.NewFromInt(int64(i)),
		}
		if err := repo.Create(ctx, product); err != nil {
			t.Fatalf("create product: %v", err)
		}
	}

	products, err := repo.ListByUser(ctx, userID, nil, 10)
	if err != nil {
		t.Fatalf("list products: %v", err)
	}
	if len(products) != 3 {
		t.Fatalf("expected 3 products, got %d", len(products))
	}
	for i := 1; i < len(products); i++ {
		if products[i].CreatedAt.After(products[i-1].CreatedAt) {
			t.Fatal("expected newest-first ordering")
		}
	}
}
