package offline

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rahulmenon/billstack-backend/internal/invoices"
	pkgerrors "github.com/rahulmenon/billstack-backend/pkg/errors"
	"github.com/rahulmenon/billstack-backend/pkg/logger"
	"github.com/rahulmenon/billstack-backend/pkg/metrics"
)

// InvoiceCreator is the slice of the invoicing service the syncer needs.
type InvoiceCreator interface {
	CreateInvoice(ctx context.Context, userID uuid.UUID, input invoices.CreateInvoiceInput) (*invoices.InvoiceDTO, error)
}

// ReplayResult summarizes one replay pass over the queue.
type ReplayResult struct {
	Replayed  int `json:"replayed"`
	Failed    int `json:"failed"`
	Remaining int `json:"remaining"`
}

// Syncer drains the offline queue into the invoicing service. Items replay
// strictly in enqueue order so invoice numbers follow the order sales were
// recorded.
type Syncer struct {
	queue   *Queue
	creator InvoiceCreator
	logg    *logger.Logger
	met     *metrics.LedgerMetrics
}

// NewSyncer wires a syncer over the queue and invoicing service.
func NewSyncer(queue *Queue, creator InvoiceCreator, logg *logger.Logger, met *metrics.LedgerMetrics) (*Syncer, error) {
	if queue == nil {
		return nil, fmt.Errorf("offline queue required")
	}
	if creator == nil {
		return nil, fmt.Errorf("invoice creator required")
	}
	return &Syncer{queue: queue, creator: creator, logg: logg, met: met}, nil
}

// ReplayQueue submits each pending invoice sequentially. A non-nil userID
// replays only that user's entries and leaves everyone else's untouched; the
// reconnect path passes uuid.Nil to drain the whole queue. Successes leave the
// queue; a connectivity failure stops the pass with the remaining items
// untouched; any other failure keeps its item queued and moves on.
func (s *Syncer) ReplayQueue(ctx context.Context, userID uuid.UUID) (*ReplayResult, error) {
	pending, err := s.queue.List(ctx, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		return &ReplayResult{}, nil
	}

	result := &ReplayResult{}
	remaining := make([]PendingInvoice, 0, len(pending))
	halted := false

	for _, item := range pending {
		if userID != uuid.Nil && item.UserID != userID {
			remaining = append(remaining, item)
			continue
		}
		if halted {
			result.Remaining++
			remaining = append(remaining, item)
			continue
		}
		if _, err := s.creator.CreateInvoice(ctx, item.UserID, item.Input); err != nil {
			if pkgerrors.HasCode(err, pkgerrors.CodeConnectivity) {
				// Store went away again; keep this and everything after it.
				halted = true
				result.Remaining++
				remaining = append(remaining, item)
				s.met.IncReplayOutcome("interrupted")
				if s.logg != nil {
					s.logg.Warn(ctx, "replay interrupted, store unreachable")
				}
				continue
			}
			result.Failed++
			result.Remaining++
			remaining = append(remaining, item)
			s.met.IncReplayOutcome("failed")
			if s.logg != nil {
				s.logg.Error(s.logg.WithField(ctx, "local_id", item.LocalID), "queued invoice replay failed", err)
			}
			continue
		}
		result.Replayed++
		s.met.IncReplayOutcome("replayed")
	}

	if err := s.queue.Replace(ctx, remaining); err != nil {
		return nil, err
	}
	return result, nil
}
