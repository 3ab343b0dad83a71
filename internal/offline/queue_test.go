package offline

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rahulmenon/billstack-backend/internal/invoices"
	"github.com/rahulmenon/billstack-backend/pkg/kv"
	"github.com/shopspring/decimal"
)

func newTestQueue(t *testing.T) *Queue {
	t.Helper()
	store, err := kv.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	queue, err := NewQueue(store, nil)
	if err != nil {
		t.Fatalf("NewQueue: %v", err)
	}
	return queue
}

func sampleInput(qty int) invoices.CreateInvoiceInput {
	return invoices.CreateInvoiceInput{
		Items: []invoices.LineItemInput{
			{ProductID: uuid.New(), Name: "Widget", UnitPrice: decimal.NewFromInt(50), Quantity: qty},
		},
	}
}

func TestQueueEnqueueAssignsLocalID(t *testing.T) {
	queue := newTestQueue(t)
	ctx := context.Background()

	item, err := queue.Enqueue(ctx, uuid.New(), sampleInput(1))
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if !strings.HasPrefix(item.LocalID, "local_") {
		t.Fatalf("expected local_ prefix, got %s", item.LocalID)
	}
	if item.InvoiceNumber != "PENDING" {
		t.Fatalf("expected PENDING sentinel, got %q", item.InvoiceNumber)
	}
	if item.QueuedAt.IsZero() {
		t.Fatal("expected queued_at to be stamped")
	}
}

func TestQueuePersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	userID := uuid.New()

	store, err := kv.NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	queue, err := NewQueue(store, nil)
	if err != nil {
		t.Fatalf("NewQueue: %v", err)
	}
	if _, err := queue.Enqueue(ctx, userID, sampleInput(2)); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if _, err := queue.Enqueue(ctx, userID, sampleInput(3)); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	// A fresh queue over the same directory sees the same items.
	store2, err := kv.NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	reopened, err := NewQueue(store2, nil)
	if err != nil {
		t.Fatalf("NewQueue: %v", err)
	}

	pending, err := reopened.List(ctx, userID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 items after reopen, got %d", len(pending))
	}
	if pending[0].Input.Items[0].Quantity != 2 || pending[1].Input.Items[0].Quantity != 3 {
		t.Fatalf("enqueue order lost: %+v", pending)
	}
	if !pending[0].Input.Items[0].UnitPrice.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("unit price not round-tripped: %s", pending[0].Input.Items[0].UnitPrice)
	}
}

func TestQueueRemove(t *testing.T) {
	queue := newTestQueue(t)
	ctx := context.Background()
	userID := uuid.New()

	first, err := queue.Enqueue(ctx, userID, sampleInput(1))
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	second, err := queue.Enqueue(ctx, userID, sampleInput(2))
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	if err := queue.Remove(ctx, userID, first.LocalID); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	pending, err := queue.List(ctx, userID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(pending) != 1 || pending[0].LocalID != second.LocalID {
		t.Fatalf("unexpected queue after remove: %+v", pending)
	}

	// Removing an unknown id is a no-op.
	if err := queue.Remove(ctx, userID, "local_missing"); err != nil {
		t.Fatalf("Remove unknown: %v", err)
	}
}

func TestQueueScopesToOwningUser(t *testing.T) {
	queue := newTestQueue(t)
	ctx := context.Background()
	alice := uuid.New()
	bob := uuid.New()

	aliceItem, err := queue.Enqueue(ctx, alice, sampleInput(1))
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if _, err := queue.Enqueue(ctx, bob, sampleInput(2)); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	// Each user sees only their own entries.
	bobPending, err := queue.List(ctx, bob)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(bobPending) != 1 || bobPending[0].UserID != bob {
		t.Fatalf("expected only bob's entry, got %+v", bobPending)
	}

	// Removing another user's local id leaves it queued.
	if err := queue.Remove(ctx, bob, aliceItem.LocalID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	alicePending, err := queue.List(ctx, alice)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(alicePending) != 1 || alicePending[0].LocalID != aliceItem.LocalID {
		t.Fatalf("expected alice's entry to survive, got %+v", alicePending)
	}
}

func TestQueueLen(t *testing.T) {
	queue := newTestQueue(t)
	ctx := context.Background()

	n, err := queue.Len(ctx)
	if err != nil {
		t.Fatalf("Len: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected empty queue, got %d", n)
	}

	if _, err := queue.Enqueue(ctx, uuid.New(), sampleInput(1)); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if n, _ = queue.Len(ctx); n != 1 {
		t.Fatalf("expected 1 item, got %d", n)
	}
}

func TestQueueRejectsMissingUser(t *testing.T) {
	queue := newTestQueue(t)
	if _, err := queue.Enqueue(context.Background(), uuid.Nil, sampleInput(1)); err == nil {
		t.Fatal("expected error for missing user id")
	}
}
