package offline

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rahulmenon/billstack-backend/internal/invoices"
	pkgerrors "github.com/rahulmenon/billstack-backend/pkg/errors"
)

type scriptedCreator struct {
	// results maps the call index to an error; missing entries succeed.
	results map[int]error
	calls   []invoices.CreateInvoiceInput
}

func (s *scriptedCreator) CreateInvoice(_ context.Context, _ uuid.UUID, input invoices.CreateInvoiceInput) (*invoices.InvoiceDTO, error) {
	idx := len(s.calls)
	s.calls = append(s.calls, input)
	if err, ok := s.results[idx]; ok {
		return nil, err
	}
	return &invoices.InvoiceDTO{}, nil
}

func newTestSyncer(t *testing.T, creator InvoiceCreator) (*Syncer, *Queue) {
	t.Helper()
	queue := newTestQueue(t)
	syncer, err := NewSyncer(queue, creator, nil, nil)
	if err != nil {
		t.Fatalf("NewSyncer: %v", err)
	}
	return syncer, queue
}

func TestReplayQueueDrainsInOrder(t *testing.T) {
	creator := &scriptedCreator{}
	syncer, queue := newTestSyncer(t, creator)
	ctx := context.Background()
	userID := uuid.New()

	for qty := 1; qty <= 3; qty++ {
		if _, err := queue.Enqueue(ctx, userID, sampleInput(qty)); err != nil {
			t.Fatalf("Enqueue: %v", err)
		}
	}

	result, err := syncer.ReplayQueue(ctx, userID)
	if err != nil {
		t.Fatalf("ReplayQueue: %v", err)
	}
	if result.Replayed != 3 || result.Failed != 0 || result.Remaining != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}

	// Enqueue order is submission order.
	for i, call := range creator.calls {
		if call.Items[0].Quantity != i+1 {
			t.Fatalf("call %d out of order: qty %d", i, call.Items[0].Quantity)
		}
	}

	if n, _ := queue.Len(ctx); n != 0 {
		t.Fatalf("expected drained queue, got %d items", n)
	}
}

func TestReplayQueueStopsOnConnectivityError(t *testing.T) {
	creator := &scriptedCreator{results: map[int]error{
		1: pkgerrors.New(pkgerrors.CodeConnectivity, "store gone"),
	}}
	syncer, queue := newTestSyncer(t, creator)
	ctx := context.Background()
	userID := uuid.New()

	for qty := 1; qty <= 3; qty++ {
		if _, err := queue.Enqueue(ctx, userID, sampleInput(qty)); err != nil {
			t.Fatalf("Enqueue: %v", err)
		}
	}

	result, err := syncer.ReplayQueue(ctx, userID)
	if err != nil {
		t.Fatalf("ReplayQueue: %v", err)
	}
	if result.Replayed != 1 || result.Remaining != 2 {
		t.Fatalf("unexpected result: %+v", result)
	}

	pending, err := queue.List(ctx, userID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	// The failed item and everything after it survive in order.
	if len(pending) != 2 || pending[0].Input.Items[0].Quantity != 2 || pending[1].Input.Items[0].Quantity != 3 {
		t.Fatalf("unexpected survivors: %+v", pending)
	}
}

func TestReplayQueueKeepsRejectedItems(t *testing.T) {
	creator := &scriptedCreator{results: map[int]error{
		0: pkgerrors.New(pkgerrors.CodeValidation, "bad payload"),
	}}
	syncer, queue := newTestSyncer(t, creator)
	ctx := context.Background()
	userID := uuid.New()

	if _, err := queue.Enqueue(ctx, userID, sampleInput(1)); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if _, err := queue.Enqueue(ctx, userID, sampleInput(2)); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	result, err := syncer.ReplayQueue(ctx, userID)
	if err != nil {
		t.Fatalf("ReplayQueue: %v", err)
	}
	// The rejected item stays queued; the pass continues past it.
	if result.Replayed != 1 || result.Failed != 1 || result.Remaining != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}

	pending, _ := queue.List(ctx, userID)
	if len(pending) != 1 || pending[0].Input.Items[0].Quantity != 1 {
		t.Fatalf("unexpected survivors: %+v", pending)
	}
}

func TestReplayQueueEmptyIsNoOp(t *testing.T) {
	creator := &scriptedCreator{}
	syncer, _ := newTestSyncer(t, creator)

	result, err := syncer.ReplayQueue(context.Background(), uuid.Nil)
	if err != nil {
		t.Fatalf("ReplayQueue: %v", err)
	}
	if result.Replayed != 0 || result.Remaining != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(creator.calls) != 0 {
		t.Fatalf("expected no calls, got %d", len(creator.calls))
	}
}

func TestReplayQueueScopedToUser(t *testing.T) {
	creator := &scriptedCreator{}
	syncer, queue := newTestSyncer(t, creator)
	ctx := context.Background()
	alice := uuid.New()
	bob := uuid.New()

	if _, err := queue.Enqueue(ctx, alice, sampleInput(1)); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if _, err := queue.Enqueue(ctx, bob, sampleInput(2)); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	result, err := syncer.ReplayQueue(ctx, alice)
	if err != nil {
		t.Fatalf("ReplayQueue: %v", err)
	}
	if result.Replayed != 1 || result.Remaining != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(creator.calls) != 1 || creator.calls[0].Items[0].Quantity != 1 {
		t.Fatalf("expected only alice's entry to replay, got %+v", creator.calls)
	}

	// Bob's entry is untouched by alice's pass.
	bobPending, err := queue.List(ctx, bob)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(bobPending) != 1 {
		t.Fatalf("expected bob's entry to survive, got %+v", bobPending)
	}
}

func TestReplayQueueDrainsAllUsersOnReconnect(t *testing.T) {
	creator := &scriptedCreator{}
	syncer, queue := newTestSyncer(t, creator)
	ctx := context.Background()

	if _, err := queue.Enqueue(ctx, uuid.New(), sampleInput(1)); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if _, err := queue.Enqueue(ctx, uuid.New(), sampleInput(2)); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	result, err := syncer.ReplayQueue(ctx, uuid.Nil)
	if err != nil {
		t.Fatalf("ReplayQueue: %v", err)
	}
	if result.Replayed != 2 || result.Remaining != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if n, _ := queue.Len(ctx); n != 0 {
		t.Fatalf("expected drained queue, got %d items", n)
	}
}
