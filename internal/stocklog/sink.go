package stocklog

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rahulmenon/billstack-backend/pkg/config"
	"github.com/rahulmenon/billstack-backend/pkg/db/models"
	"github.com/rahulmenon/billstack-backend/pkg/enums"
	"github.com/rahulmenon/billstack-backend/pkg/logger"
	"github.com/rahulmenon/billstack-backend/pkg/metrics"
)

// Entry is one audit record queued for the append-only stock log. Entries are
// written outside the business transaction that caused them: a lost entry
// never rolls back a committed sale.
type Entry struct {
	UserID      uuid.UUID
	ProductID   uuid.UUID
	ProductName string
	Direction   enums.StockDirection
	Quantity    int
	OccurredAt  time.Time
	RelatedID   *string
}

// EventPublisher pushes committed stock movements to external consumers.
type EventPublisher interface {
	PublishStockEvent(ctx context.Context, payload []byte) error
}

// Sink buffers audit entries and writes them asynchronously with bounded
// retries. Writes are best effort: after MaxAttempts the entry is dropped and
// counted, never re-queued.
type Sink struct {
	repo      Repository
	publisher EventPublisher
	logg      *logger.Logger
	met       *metrics.LedgerMetrics
	cfg       config.StockLogConfig

	entries chan Entry
	wg      sync.WaitGroup

	closeOnce sync.Once
}

// NewSink starts the background writer and returns the sink.
func NewSink(repo Repository, publisher EventPublisher, logg *logger.Logger, met *metrics.LedgerMetrics, cfg config.StockLogConfig) (*Sink, error) {
	if repo == nil {
		return nil, fmt.Errorf("stock log repository required")
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 256
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}

	s := &Sink{
		repo:      repo,
		publisher: publisher,
		logg:      logg,
		met:       met,
		cfg:       cfg,
		entries:   make(chan Entry, cfg.BufferSize),
	}
	s.wg.Add(1)
	go s.run()
	return s, nil
}

// Append queues an entry without blocking. A full buffer drops the entry.
func (s *Sink) Append(ctx context.Context, entry Entry) {
	if !entry.Direction.IsValid() || entry.Quantity <= 0 {
		return
	}
	if entry.OccurredAt.IsZero() {
		entry.OccurredAt = time.Now().UTC()
	}

	select {
	case s.entries <- entry:
	default:
		s.met.IncStockLogDropped()
		if s.logg != nil {
			ctx = s.logg.WithProductID(ctx, entry.ProductID.String())
			s.logg.Warn(ctx, "stock log buffer full, dropping entry")
		}
	}
}

// Close stops accepting entries and blocks until the buffer drains.
func (s *Sink) Close() {
	s.closeOnce.Do(func() {
		close(s.entries)
	})
	s.wg.Wait()
}

func (s *Sink) run() {
	defer s.wg.Done()
	for entry := range s.entries {
		s.write(entry)
	}
}

func (s *Sink) write(entry Entry) {
	ctx := context.Background()
	record := &models.StockTransaction{
		ID:          uuid.New(),
		UserID:      entry.UserID,
		ProductID:   entry.ProductID,
		ProductName: entry.ProductName,
		Direction:   entry.Direction,
		Quantity:    entry.Quantity,
		OccurredAt:  entry.OccurredAt,
		RelatedID:   entry.RelatedID,
	}

	var err error
	for attempt := 0; attempt < s.cfg.MaxAttempts; attempt++ {
		if attempt > 0 && s.cfg.RetryDelay > 0 {
			time.Sleep(s.cfg.RetryDelay)
		}
		if err = s.repo.Create(ctx, record); err == nil {
			s.met.IncStockAppend(entry.Direction.String())
			s.publish(ctx, record)
			return
		}
	}

	s.met.IncStockLogDropped()
	if s.logg != nil {
		ctx = s.logg.WithProductID(ctx, entry.ProductID.String())
		s.logg.Error(ctx, "stock log entry dropped after retries", err)
	}
}

func (s *Sink) publish(ctx context.Context, record *models.StockTransaction) {
	if s.publisher == nil {
		return
	}
	payload, err := json.Marshal(stockEventPayload{
		ID:          record.ID,
		UserID:      record.UserID,
		ProductID:   record.ProductID,
		ProductName: record.ProductName,
		Direction:   record.Direction.String(),
		Quantity:    record.Quantity,
		OccurredAt:  record.OccurredAt,
	})
	if err != nil {
		return
	}
	if err := s.publisher.PublishStockEvent(ctx, payload); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithProductID(ctx, record.ProductID.String()), "stock event publish failed")
	}
}

type stockEventPayload struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Direction   string    `json:"direction"`
	Quantity    int       `json:"quantity"`
	OccurredAt  time.Time `json:"occurred_at"`
}
