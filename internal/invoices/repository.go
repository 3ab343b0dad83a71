package invoices

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rahulmenon/billstack-backend/pkg/db"
	"github.com/rahulmenon/billstack-backend/pkg/db/models"
	"github.com/rahulmenon/billstack-backend/pkg/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// invoiceNumberFormat yields INV-0001 style numbers. The counter keeps
// counting past 9999; the number just grows wider.
const invoiceNumberFormat = "INV-%04d"

// Repository manages persistence for invoices and the per-user number counter.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	NextInvoiceNumber(ctx context.Context, userID uuid.UUID) (string, error)
	Create(ctx context.Context, invoice *models.Invoice) error
	Save(ctx context.Context, invoice *models.Invoice) error
	Delete(ctx context.Context, userID, invoiceID uuid.UUID) error
	FindByID(ctx context.Context, userID, invoiceID uuid.UUID) (*models.Invoice, error)
	ListByUser(ctx context.Context, userID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Invoice, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an invoice repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// NextInvoiceNumber locks the user's counter row, increments it, and returns
// the formatted number. Must run inside the invoice-creation transaction so an
// abort returns the number to the pool.
func (r *repository) NextInvoiceNumber(ctx context.Context, userID uuid.UUID) (string, error) {
	query := r.db.WithContext(ctx)
	if r.db.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var counter models.InvoiceCounter
	err := query.First(&counter, "user_id = ?", userID).Error
	if err != nil {
		if !db.IsNotFound(err) {
			return "", err
		}
		counter = models.InvoiceCounter{UserID: userID}
		if err := r.db.WithContext(ctx).Create(&counter).Error; err != nil {
			// A concurrent first invoice may have created the row; surface
			// the violation as a conflict so the transaction retries.
			return "", err
		}
	}

	counter.Count++
	if err := r.db.WithContext(ctx).Save(&counter).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf(invoiceNumberFormat, counter.Count), nil
}

func (r *repository) Create(ctx context.Context, invoice *models.Invoice) error {
	return r.db.WithContext(ctx).Create(invoice).Error
}

func (r *repository) Save(ctx context.Context, invoice *models.Invoice) error {
	return r.db.WithContext(ctx).Save(invoice).Error
}

func (r *repository) Delete(ctx context.Context, userID, invoiceID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.Invoice{}, "id = ?", invoiceID).Error
}

func (r *repository) FindByID(ctx context.Context, userID, invoiceID uuid.UUID) (*models.Invoice, error) {
	var invoice models.Invoice
	if err := r.db.WithContext(ctx).
		Preload("LineItems", func(q *gorm.DB) *gorm.DB {
			return q.Order("position ASC")
		}).
		Where("user_id = ?", userID).
		First(&invoice, "id = ?", invoiceID).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Invoice, error) {
	query := r.db.WithContext(ctx).
		Preload("LineItems", func(q *gorm.DB) *gorm.DB {
			return q.Order("position ASC")
		}).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit)

	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var invoices []models.Invoice
	if err := query.Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}
