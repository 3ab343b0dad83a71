package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rahulmenon/billstack-backend/internal/stocklog"
	"github.com/rahulmenon/billstack-backend/pkg/db"
	"github.com/rahulmenon/billstack-backend/pkg/db/models"
	"github.com/rahulmenon/billstack-backend/pkg/enums"
	pkgerrors "github.com/rahulmenon/billstack-backend/pkg/errors"
	"github.com/rahulmenon/billstack-backend/pkg/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service exposes catalog and stock mutation operations.
type Service interface {
	CreateProduct(ctx context.Context, userID uuid.UUID, input CreateProductInput) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, userID, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, userID, productID uuid.UUID) error
	GetProduct(ctx context.Context, userID, productID uuid.UUID) (*ProductDTO, error)
	ListProducts(ctx context.Context, userID uuid.UUID, params pagination.Params) (*ProductListResult, error)
}

// Depleter decrements stock for invoice line items inside the caller's
// transaction. Invoicing depends on this narrow surface rather than the full
// catalog service.
type Depleter interface {
	DepleteForInvoice(ctx context.Context, tx *gorm.DB, userID uuid.UUID, lines []DepletionLine) ([]Depletion, error)
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Name      string
	Price     decimal.Decimal
	Unit      string
	Quantity  int
	BarcodeID *string
}

// UpdateProductInput holds optional mutation values for a product. Quantity is
// the new absolute on-hand count, not a delta.
type UpdateProductInput struct {
	Name      *string
	Price     *decimal.Decimal
	Unit      *string
	Quantity  *int
	BarcodeID *string
}

// DepletionLine names one product quantity an invoice consumes.
type DepletionLine struct {
	ProductID uuid.UUID
	Quantity  int
}

// Depletion records one applied stock decrement for post-commit audit logging.
type Depletion struct {
	ProductID   uuid.UUID
	ProductName string
	Quantity    int
}

type auditSink interface {
	Append(ctx context.Context, entry stocklog.Entry)
}

type txRunner interface {
	WithTxRetry(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo Repository
	tx   txRunner
	sink auditSink
}

// NewService constructs the inventory engine.
func NewService(repo Repository, dbClient *db.Client, sink auditSink) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if sink == nil {
		return nil, fmt.Errorf("audit sink required")
	}
	return &service{repo: repo, tx: dbClient, sink: sink}, nil
}

// NewDepleter exposes the depletion surface over a bare repository. The
// invoicing service runs it inside its own transaction, so no db client or
// sink is involved.
func NewDepleter(repo Repository) (Depleter, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo}, nil
}

// CreateProduct inserts the product and records the opening balance. The audit
// entry is written after the insert commits: a sink failure never undoes the
// product.
func (s *service) CreateProduct(ctx context.Context, userID uuid.UUID, input CreateProductInput) (*ProductDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if input.Quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}
	if input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}

	product := &models.Product{
		ID:           uuid.New(),
		UserID:       userID,
		Name:         name,
		Price:        input.Price,
		Unit:         strings.TrimSpace(input.Unit),
		Quantity:     input.Quantity,
		BarcodeID:    input.BarcodeID,
		TotalStockIn: input.Quantity,
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, classifyStoreError(err)
	}

	if input.Quantity > 0 {
		s.sink.Append(ctx, stocklog.Entry{
			UserID:      userID,
			ProductID:   product.ID,
			ProductName: product.Name,
			Direction:   enums.StockDirectionIn,
			Quantity:    input.Quantity,
			OccurredAt:  time.Now().UTC(),
		})
	}

	return toProductDTO(product), nil
}

// UpdateProduct applies field changes and reconciles the stock counters from
// the absolute quantity. The counter math runs inside one transaction with the
// row locked; the audit entry goes to the sink after commit.
func (s *service) UpdateProduct(ctx context.Context, userID, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	var updated *models.Product
	var delta int

	err := s.tx.WithTxRetry(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		product, err := repo.FindByIDForUpdate(ctx, userID, productID)
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return err
		}

		delta = 0
		applyUpdateToProduct(product, input)
		if input.Quantity != nil {
			delta = *input.Quantity - product.Quantity
			product.Quantity = *input.Quantity
			if delta > 0 {
				product.TotalStockIn += delta
			} else if delta < 0 {
				product.TotalStockOut += -delta
			}
		}

		if err := repo.Save(ctx, product); err != nil {
			return err
		}
		updated = product
		return nil
	})
	if err != nil {
		return nil, classifyStoreError(err)
	}

	if delta != 0 {
		entry := stocklog.Entry{
			UserID:      userID,
			ProductID:   updated.ID,
			ProductName: updated.Name,
			OccurredAt:  time.Now().UTC(),
		}
		if delta > 0 {
			entry.Direction = enums.StockDirectionIn
			entry.Quantity = delta
		} else {
			entry.Direction = enums.StockDirectionOut
			entry.Quantity = -delta
		}
		s.sink.Append(ctx, entry)
	}

	return toProductDTO(updated), nil
}

// DeleteProduct removes the catalog row. Stock transactions referencing the
// product are left in place.
func (s *service) DeleteProduct(ctx context.Context, userID, productID uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, userID, productID); err != nil {
		if db.IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return classifyStoreError(err)
	}
	if err := s.repo.Delete(ctx, userID, productID); err != nil {
		return classifyStoreError(err)
	}
	return nil
}

func (s *service) GetProduct(ctx context.Context, userID, productID uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, userID, productID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, classifyStoreError(err)
	}
	return toProductDTO(product), nil
}

func (s *service) ListProducts(ctx context.Context, userID uuid.UUID, params pagination.Params) (*ProductListResult, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(params.Limit)

	products, err := s.repo.ListByUser(ctx, userID, cursor, limit+1)
	if err != nil {
		return nil, classifyStoreError(err)
	}

	result := &ProductListResult{}
	if len(products) > limit {
		products = products[:limit]
		last := products[len(products)-1]
		next := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		result.NextCursor = &next
	}

	result.Products = make([]ProductDTO, 0, len(products))
	for i := range products {
		result.Products = append(result.Products, *toProductDTO(&products[i]))
	}
	return result, nil
}

// DepleteForInvoice decrements on-hand quantity for each line inside the
// caller's transaction. Lines whose product no longer exists are skipped:
// the invoice still commits, mirroring a sale recorded against a product
// deleted mid-flight. Quantity may go negative; the catalog tolerates
// overselling and surfaces it as a negative on-hand count.
func (s *service) DepleteForInvoice(ctx context.Context, tx *gorm.DB, userID uuid.UUID, lines []DepletionLine) ([]Depletion, error) {
	repo := s.repo.WithTx(tx)

	depletions := make([]Depletion, 0, len(lines))
	for _, line := range lines {
		if line.Quantity <= 0 {
			continue
		}

		product, err := repo.FindByIDForUpdate(ctx, userID, line.ProductID)
		if err != nil {
			if db.IsNotFound(err) {
				continue
			}
			return nil, err
		}

		product.Quantity -= line.Quantity
		product.TotalStockOut += line.Quantity
		if err := repo.Save(ctx, product); err != nil {
			return nil, err
		}

		depletions = append(depletions, Depletion{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    line.Quantity,
		})
	}
	return depletions, nil
}

func applyUpdateToProduct(product *models.Product, input UpdateProductInput) {
	if input.Name != nil {
		if name := strings.TrimSpace(*input.Name); name != "" {
			product.Name = name
		}
	}
	if input.Price != nil && !input.Price.IsNegative() {
		product.Price = *input.Price
	}
	if input.Unit != nil {
		product.Unit = strings.TrimSpace(*input.Unit)
	}
	if input.BarcodeID != nil {
		product.BarcodeID = input.BarcodeID
	}
}

// classifyStoreError maps low-level store failures onto the shared taxonomy so
// callers can route unreachable-store errors to the offline queue.
func classifyStoreError(err error) error {
	if err == nil {
		return nil
	}
	if typed := pkgerrors.As(err); typed != nil {
		return err
	}
	if db.IsConnectivityError(err) {
		return pkgerrors.Wrap(pkgerrors.CodeConnectivity, err, "ledger store unreachable")
	}
	if db.IsRetryableConflict(err) {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "write conflict")
	}
	return err
}
