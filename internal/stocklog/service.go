package stocklog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rahulmenon/billstack-backend/pkg/db/models"
	"github.com/rahulmenon/billstack-backend/pkg/pagination"
)

// Service exposes the stock history read paths.
type Service interface {
	History(ctx context.Context, userID uuid.UUID, params pagination.Params) (*HistoryResult, error)
	ProductHistory(ctx context.Context, userID, productID uuid.UUID) ([]EntryDTO, error)
}

// EntryDTO is a stock transaction as returned to clients.
type EntryDTO struct {
	ID          uuid.UUID `json:"id"`
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Direction   string    `json:"direction"`
	Quantity    int       `json:"quantity"`
	OccurredAt  time.Time `json:"occurred_at"`
	RelatedID   *string   `json:"related_id,omitempty"`
}

// HistoryResult is one page of the stock history feed.
type HistoryResult struct {
	Entries    []EntryDTO `json:"entries"`
	NextCursor *string    `json:"next_cursor,omitempty"`
}

type service struct {
	repo Repository
}

// NewService wires a stock history service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("stock log repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) History(ctx context.Context, userID uuid.UUID, params pagination.Params) (*HistoryResult, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("user id is required")
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	limit := pagination.NormalizeLimit(params.Limit)

	entries, err := s.repo.ListByUser(ctx, userID, cursor, limit+1)
	if err != nil {
		return nil, err
	}

	result := &HistoryResult{}
	if len(entries) > limit {
		entries = entries[:limit]
		last := entries[len(entries)-1]
		next := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		result.NextCursor = &next
	}

	result.Entries = make([]EntryDTO, 0, len(entries))
	for _, entry := range entries {
		result.Entries = append(result.Entries, toEntryDTO(entry))
	}
	return result, nil
}

func (s *service) ProductHistory(ctx context.Context, userID, productID uuid.UUID) ([]EntryDTO, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("user id is required")
	}
	if productID == uuid.Nil {
		return nil, fmt.Errorf("product id is required")
	}

	entries, err := s.repo.ListByProduct(ctx, userID, productID)
	if err != nil {
		return nil, err
	}

	dtos := make([]EntryDTO, 0, len(entries))
	for _, entry := range entries {
		dtos = append(dtos, toEntryDTO(entry))
	}
	return dtos, nil
}

func toEntryDTO(entry models.StockTransaction) EntryDTO {
	return EntryDTO{
		ID:          entry.ID,
		ProductID:   entry.ProductID,
		ProductName: entry.ProductName,
		Direction:   entry.Direction.String(),
		Quantity:    entry.Quantity,
		OccurredAt:  entry.OccurredAt,
		RelatedID:   entry.RelatedID,
	}
}
