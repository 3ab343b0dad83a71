package analytics

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rahulmenon/billstack-backend/pkg/db/models"
	"gorm.io/gorm"
)

// FlowRow is one aggregated bucket of stock movement.
type FlowRow struct {
	Day       string `gorm:"column:day"`
	Direction string `gorm:"column:direction"`
	Total     int    `gorm:"column:total"`
}

// Repository exposes the aggregate read paths behind the analytics views.
// A nil productID scopes queries to the whole catalog.
type Repository interface {
	ProductTotals(ctx context.Context, userID uuid.UUID, productID *uuid.UUID) (in int, out int, err error)
	LogTotals(ctx context.Context, userID uuid.UUID, productID *uuid.UUID) (in int, out int, err error)
	CountEntries(ctx context.Context, userID uuid.UUID, productID *uuid.UUID) (int64, error)
	FlowSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]FlowRow, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an analytics repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

type totalsRow struct {
	In  int `gorm:"column:total_in"`
	Out int `gorm:"column:total_out"`
}

// ProductTotals sums the catalog counters, per product or across the catalog.
// An unknown product yields zeros rather than an error.
func (r *repository) ProductTotals(ctx context.Context, userID uuid.UUID, productID *uuid.UUID) (int, int, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Select("COALESCE(SUM(total_stock_in), 0) AS total_in, COALESCE(SUM(total_stock_out), 0) AS total_out").
		Where("user_id = ?", userID)
	if productID != nil {
		query = query.Where("id = ?", *productID)
	}

	var row totalsRow
	if err := query.Scan(&row).Error; err != nil {
		return 0, 0, err
	}
	return row.In, row.Out, nil
}

// LogTotals sums the transaction log by direction.
func (r *repository) LogTotals(ctx context.Context, userID uuid.UUID, productID *uuid.UUID) (int, int, error) {
	query := r.db.WithContext(ctx).
		Model(&models.StockTransaction{}).
		Select("COALESCE(SUM(CASE WHEN direction = 'IN' THEN quantity ELSE 0 END), 0) AS total_in, "+
			"COALESCE(SUM(CASE WHEN direction = 'OUT' THEN quantity ELSE 0 END), 0) AS total_out").
		Where("user_id = ?", userID)
	if productID != nil {
		query = query.Where("product_id = ?", *productID)
	}

	var row totalsRow
	if err := query.Scan(&row).Error; err != nil {
		return 0, 0, err
	}
	return row.In, row.Out, nil
}

func (r *repository) CountEntries(ctx context.Context, userID uuid.UUID, productID *uuid.UUID) (int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.StockTransaction{}).
		Where("user_id = ?", userID)
	if productID != nil {
		query = query.Where("product_id = ?", *productID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FlowSince aggregates the stock log per day and direction in one query.
func (r *repository) FlowSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]FlowRow, error) {
	var rows []FlowRow
	err := r.db.WithContext(ctx).
		Model(&models.StockTransaction{}).
		Select("date(occurred_at) AS day, direction, SUM(quantity) AS total").
		Where("user_id = ? AND occurred_at >= ?", userID, since).
		Group("date(occurred_at), direction").
		Order("day ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
