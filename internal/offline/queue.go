package offline

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rahulmenon/billstack-backend/internal/invoices"
	"github.com/rahulmenon/billstack-backend/pkg/kv"
	"github.com/rahulmenon/billstack-backend/pkg/metrics"
)

// queueKey is the single storage key holding the whole pending array. Every
// mutation rewrites the array atomically through the kv store.
const queueKey = "pending_invoices"

// localIDPrefix marks identifiers assigned before the store accepted the
// invoice. They are replaced by real invoice ids during replay.
const localIDPrefix = "local_"

// pendingNumber is the sentinel shown in place of a real invoice number until
// replay assigns one.
const pendingNumber = "PENDING"

// PendingInvoice is one queued invoice awaiting replay.
type PendingInvoice struct {
	LocalID       string                      `json:"local_id"`
	UserID        uuid.UUID                   `json:"user_id"`
	InvoiceNumber string                      `json:"invoice_number"`
	QueuedAt      time.Time                   `json:"queued_at"`
	Input         invoices.CreateInvoiceInput `json:"input"`
}

// Queue persists invoices captured while the ledger store was unreachable.
type Queue struct {
	store kv.Store
	met   *metrics.LedgerMetrics
	mu    sync.Mutex
}

// NewQueue wires a queue over the provided key-value store.
func NewQueue(store kv.Store, met *metrics.LedgerMetrics) (*Queue, error) {
	if store == nil {
		return nil, fmt.Errorf("kv store required")
	}
	return &Queue{store: store, met: met}, nil
}

// List returns the user's queued invoices in enqueue order. A nil user id
// returns the whole queue; only the reconnect replay path uses that form.
func (q *Queue) List(ctx context.Context, userID uuid.UUID) ([]PendingInvoice, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	pending, err := q.load(ctx)
	if err != nil {
		return nil, err
	}
	if userID == uuid.Nil {
		return pending, nil
	}

	var owned []PendingInvoice
	for _, item := range pending {
		if item.UserID == userID {
			owned = append(owned, item)
		}
	}
	return owned, nil
}

// Enqueue appends the invoice with a fresh local id and persists the array.
func (q *Queue) Enqueue(ctx context.Context, userID uuid.UUID, input invoices.CreateInvoiceInput) (*PendingInvoice, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("user id is required")
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	pending, err := q.load(ctx)
	if err != nil {
		return nil, err
	}

	item := PendingInvoice{
		LocalID:       localIDPrefix + uuid.NewString(),
		UserID:        userID,
		InvoiceNumber: pendingNumber,
		QueuedAt:      time.Now().UTC(),
		Input:         input,
	}
	pending = append(pending, item)

	if err := q.save(ctx, pending); err != nil {
		return nil, err
	}
	return &item, nil
}

// Remove deletes the user's entry with the given local id, if present.
// Entries owned by other users are left untouched, even on a matching id.
func (q *Queue) Remove(ctx context.Context, userID uuid.UUID, localID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	pending, err := q.load(ctx)
	if err != nil {
		return err
	}

	kept := pending[:0]
	for _, item := range pending {
		if item.LocalID != localID || item.UserID != userID {
			kept = append(kept, item)
		}
	}
	return q.save(ctx, kept)
}

// Replace overwrites the queue with the provided items. Used by the syncer to
// persist the survivors of a replay pass in one write.
func (q *Queue) Replace(ctx context.Context, items []PendingInvoice) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.save(ctx, items)
}

// Len reports the number of queued invoices.
func (q *Queue) Len(ctx context.Context) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	pending, err := q.load(ctx)
	if err != nil {
		return 0, err
	}
	return len(pending), nil
}

func (q *Queue) load(ctx context.Context) ([]PendingInvoice, error) {
	raw, ok, err := q.store.GetItem(ctx, queueKey)
	if err != nil {
		return nil, fmt.Errorf("offline queue: reading store: %w", err)
	}
	if !ok || raw == "" {
		return nil, nil
	}

	var pending []PendingInvoice
	if err := json.Unmarshal([]byte(raw), &pending); err != nil {
		return nil, fmt.Errorf("offline queue: corrupt payload: %w", err)
	}
	return pending, nil
}

func (q *Queue) save(ctx context.Context, pending []PendingInvoice) error {
	if len(pending) == 0 {
		if err := q.store.RemoveItem(ctx, queueKey); err != nil {
			return fmt.Errorf("offline queue: clearing store: %w", err)
		}
		q.met.SetQueueDepth(0)
		return nil
	}

	raw, err := json.Marshal(pending)
	if err != nil {
		return fmt.Errorf("offline queue: encoding payload: %w", err)
	}
	if err := q.store.SetItem(ctx, queueKey, string(raw)); err != nil {
		return fmt.Errorf("offline queue: writing store: %w", err)
	}
	q.met.SetQueueDepth(len(pending))
	return nil
}
