package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rahulmenon/billstack-backend/pkg/enums"
)

const (
	// DefaultWindowDays is the lookback applied when the caller omits one.
	DefaultWindowDays = 7
	// MaxWindowDays caps the daily aggregation window.
	MaxWindowDays = 365

	// SourceCounters marks results read from the catalog's cumulative counters.
	SourceCounters = "counters"
	// SourceTransactionLog marks results computed by scanning the stock log.
	// Only used when both counters are zero but log entries exist.
	SourceTransactionLog = "transaction_log"
)

// StockFlowDTO is the cumulative stock movement summary returned to clients.
// Current may be negative under the permissive depletion policy.
type StockFlowDTO struct {
	StockIn  int    `json:"stock_in"`
	StockOut int    `json:"stock_out"`
	Current  int    `json:"current"`
	Source   string `json:"source"`
}

// DayFlow is one day's aggregate stock movement.
type DayFlow struct {
	Date     string `json:"date"`
	StockIn  int    `json:"stock_in"`
	StockOut int    `json:"stock_out"`
}

// DailyFlowDTO is the per-day movement report for charting.
type DailyFlowDTO struct {
	Days     []DayFlow `json:"days"`
	TotalIn  int       `json:"total_in"`
	TotalOut int       `json:"total_out"`
}

// Service exposes the aggregated analytics views.
type Service interface {
	GetStockFlow(ctx context.Context, userID uuid.UUID, productID *uuid.UUID) (*StockFlowDTO, error)
	GetDailyFlow(ctx context.Context, userID uuid.UUID, windowDays int) (*DailyFlowDTO, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService wires the analytics service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("analytics repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

// GetStockFlow answers a cumulative stock-flow query from the catalog
// counters, per product when productID is given or summed across the catalog
// otherwise. The transaction log is scanned only when both counters are zero
// yet log entries exist, which happens for rows that predate the counters.
// Non-zero counters are never overridden by the scan.
func (s *service) GetStockFlow(ctx context.Context, userID uuid.UUID, productID *uuid.UUID) (*StockFlowDTO, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("user id is required")
	}

	in, out, err := s.repo.ProductTotals(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	source := SourceCounters

	if in == 0 && out == 0 {
		count, err := s.repo.CountEntries(ctx, userID, productID)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			in, out, err = s.repo.LogTotals(ctx, userID, productID)
			if err != nil {
				return nil, err
			}
			source = SourceTransactionLog
		}
	}

	return &StockFlowDTO{
		StockIn:  in,
		StockOut: out,
		Current:  in - out,
		Source:   source,
	}, nil
}

// GetDailyFlow aggregates the stock log per day over the window, zero-filling
// days with no movement.
func (s *service) GetDailyFlow(ctx context.Context, userID uuid.UUID, windowDays int) (*DailyFlowDTO, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("user id is required")
	}
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	if windowDays > MaxWindowDays {
		windowDays = MaxWindowDays
	}

	end := s.now().UTC().Truncate(24 * time.Hour)
	since := end.AddDate(0, 0, -(windowDays - 1))

	rows, err := s.repo.FlowSince(ctx, userID, since)
	if err != nil {
		return nil, err
	}

	result := &DailyFlowDTO{}
	byDay := map[string]*DayFlow{}
	for i := 0; i < windowDays; i++ {
		date := since.AddDate(0, 0, i).Format("2006-01-02")
		byDay[date] = &DayFlow{Date: date}
	}

	for _, row := range rows {
		flow, ok := byDay[normalizeDay(row.Day)]
		if !ok {
			continue
		}
		switch enums.StockDirection(row.Direction) {
		case enums.StockDirectionIn:
			flow.StockIn += row.Total
			result.TotalIn += row.Total
		case enums.StockDirectionOut:
			flow.StockOut += row.Total
			result.TotalOut += row.Total
		}
	}

	result.Days = make([]DayFlow, 0, windowDays)
	for i := 0; i < windowDays; i++ {
		date := since.AddDate(0, 0, i).Format("2006-01-02")
		result.Days = append(result.Days, *byDay[date])
	}
	return result, nil
}

// normalizeDay trims driver-specific time suffixes from grouped date values.
func normalizeDay(day string) string {
	if len(day) >= 10 {
		return day[:10]
	}
	return day
}
