package invoices

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rahulmenon/billstack-backend/internal/inventory"
	"github.com/rahulmenon/billstack-backend/internal/stocklog"
	"github.com/rahulmenon/billstack-backend/pkg/db"
	"github.com/rahulmenon/billstack-backend/pkg/db/models"
	"github.com/rahulmenon/billstack-backend/pkg/enums"
	pkgerrors "github.com/rahulmenon/billstack-backend/pkg/errors"
	"github.com/rahulmenon/billstack-backend/pkg/metrics"
	"github.com/rahulmenon/billstack-backend/pkg/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service exposes invoice lifecycle operations.
type Service interface {
	CreateInvoice(ctx context.Context, userID uuid.UUID, input CreateInvoiceInput) (*InvoiceDTO, error)
	GetInvoice(ctx context.Context, userID, invoiceID uuid.UUID) (*InvoiceDTO, error)
	ListInvoices(ctx context.Context, userID uuid.UUID, params pagination.Params) (*InvoiceListResult, error)
	UpdateInvoice(ctx context.Context, userID, invoiceID uuid.UUID, input UpdateInvoiceInput) (*InvoiceDTO, error)
	DeleteInvoice(ctx context.Context, userID, invoiceID uuid.UUID) error
}

// CreateInvoiceInput holds the validated payload to create an invoice. The
// offline queue serializes it as-is, so the JSON shape is part of the queue's
// wire format.
type CreateInvoiceInput struct {
	Sender       json.RawMessage `json:"sender"`
	Customer     json.RawMessage `json:"customer"`
	TaxRate      decimal.Decimal `json:"tax_rate"`
	DiscountRate decimal.Decimal `json:"discount_rate"`
	Notes        *string         `json:"notes,omitempty"`
	Items        []LineItemInput `json:"items"`
}

// LineItemInput is one sale line as submitted by the client. Name, price, and
// unit are snapshots the client captured when the line was added.
type LineItemInput struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Unit      string          `json:"unit"`
	Quantity  int             `json:"quantity"`
}

// UpdateInvoiceInput carries the mutable fields of a committed invoice.
// Numbers, line items, and totals are immutable once assigned.
type UpdateInvoiceInput struct {
	Customer json.RawMessage
	Notes    *string
}

type auditSink interface {
	Append(ctx context.Context, entry stocklog.Entry)
}

type txRunner interface {
	WithTxRetry(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo     Repository
	tx       txRunner
	depleter inventory.Depleter
	sink     auditSink
	met      *metrics.LedgerMetrics
}

// NewService constructs the invoicing service.
func NewService(repo Repository, dbClient *db.Client, depleter inventory.Depleter, sink auditSink, met *metrics.LedgerMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("invoice repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if depleter == nil {
		return nil, fmt.Errorf("stock depleter required")
	}
	if sink == nil {
		return nil, fmt.Errorf("audit sink required")
	}
	return &service{repo: repo, tx: dbClient, depleter: depleter, sink: sink, met: met}, nil
}

// CreateInvoice runs the numbering, depletion, and insert as one transaction.
// The number is assigned inside the transaction, so an abort never burns it
// and two commits can never share it. Audit entries go out after commit.
func (s *service) CreateInvoice(ctx context.Context, userID uuid.UUID, input CreateInvoiceInput) (*InvoiceDTO, error) {
	if err := validateCreateInput(input); err != nil {
		return nil, err
	}

	started := time.Now()
	var created *models.Invoice
	var depletions []inventory.Depletion
	attempt := 0

	err := s.tx.WithTxRetry(ctx, func(tx *gorm.DB) error {
		attempt++
		if attempt > 1 {
			s.met.IncNumberRetry()
		}
		repo := s.repo.WithTx(tx)

		number, err := repo.NextInvoiceNumber(ctx, userID)
		if err != nil {
			return err
		}

		lines := make([]inventory.DepletionLine, 0, len(input.Items))
		for _, item := range input.Items {
			lines = append(lines, inventory.DepletionLine{ProductID: item.ProductID, Quantity: item.Quantity})
		}
		depletions, err = s.depleter.DepleteForInvoice(ctx, tx, userID, lines)
		if err != nil {
			return err
		}

		invoice := buildInvoice(userID, number, input)
		if err := repo.Create(ctx, invoice); err != nil {
			return err
		}
		created = invoice
		return nil
	})
	if err != nil {
		return nil, classifyStoreError(err)
	}

	s.met.IncInvoiceCreated()
	s.met.ObserveTxDuration("create_invoice", time.Since(started))

	occurred := time.Now().UTC()
	for _, depletion := range depletions {
		related := created.ID.String()
		s.sink.Append(ctx, stocklog.Entry{
			UserID:      userID,
			ProductID:   depletion.ProductID,
			ProductName: depletion.ProductName,
			Direction:   enums.StockDirectionOut,
			Quantity:    depletion.Quantity,
			OccurredAt:  occurred,
			RelatedID:   &related,
		})
	}

	return toInvoiceDTO(created), nil
}

func (s *service) GetInvoice(ctx context.Context, userID, invoiceID uuid.UUID) (*InvoiceDTO, error) {
	invoice, err := s.repo.FindByID(ctx, userID, invoiceID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "invoice not found")
		}
		return nil, classifyStoreError(err)
	}
	return toInvoiceDTO(invoice), nil
}

func (s *service) ListInvoices(ctx context.Context, userID uuid.UUID, params pagination.Params) (*InvoiceListResult, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(params.Limit)

	invoices, err := s.repo.ListByUser(ctx, userID, cursor, limit+1)
	if err != nil {
		return nil, classifyStoreError(err)
	}

	result := &InvoiceListResult{}
	if len(invoices) > limit {
		invoices = invoices[:limit]
		last := invoices[len(invoices)-1]
		next := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		result.NextCursor = &next
	}

	result.Invoices = make([]InvoiceDTO, 0, len(invoices))
	for i := range invoices {
		result.Invoices = append(result.Invoices, *toInvoiceDTO(&invoices[i]))
	}
	return result, nil
}

// UpdateInvoice mutates the customer snapshot and notes. Financial fields and
// the assigned number stay as committed.
func (s *service) UpdateInvoice(ctx context.Context, userID, invoiceID uuid.UUID, input UpdateInvoiceInput) (*InvoiceDTO, error) {
	invoice, err := s.repo.FindByID(ctx, userID, invoiceID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "invoice not found")
		}
		return nil, classifyStoreError(err)
	}

	if len(input.Customer) > 0 {
		invoice.Customer = input.Customer
	}
	if input.Notes != nil {
		invoice.Notes = input.Notes
	}

	if err := s.repo.Save(ctx, invoice); err != nil {
		return nil, classifyStoreError(err)
	}
	return toInvoiceDTO(invoice), nil
}

// DeleteInvoice removes the invoice and its line items. Depleted stock is not
// restored; a correction is a new stock adjustment, not a silent rollback.
func (s *service) DeleteInvoice(ctx context.Context, userID, invoiceID uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, userID, invoiceID); err != nil {
		if db.IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "invoice not found")
		}
		return classifyStoreError(err)
	}
	if err := s.repo.Delete(ctx, userID, invoiceID); err != nil {
		return classifyStoreError(err)
	}
	return nil
}

func validateCreateInput(input CreateInvoiceInput) error {
	if len(input.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invoice requires at least one line item")
	}
	for i, item := range input.Items {
		if item.ProductID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("line %d: product id is required", i+1))
		}
		if strings.TrimSpace(item.Name) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("line %d: name is required", i+1))
		}
		if item.Quantity <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("line %d: quantity must be positive", i+1))
		}
		if item.UnitPrice.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("line %d: unit price cannot be negative", i+1))
		}
	}
	if input.TaxRate.IsNegative() || input.DiscountRate.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "rates cannot be negative")
	}
	return nil
}

func buildInvoice(userID uuid.UUID, number string, input CreateInvoiceInput) *models.Invoice {
	invoiceID := uuid.New()
	hundred := decimal.NewFromInt(100)

	subtotal := decimal.Zero
	items := make([]models.InvoiceLineItem, 0, len(input.Items))
	for i, item := range input.Items {
		lineTotal := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		subtotal = subtotal.Add(lineTotal)
		items = append(items, models.InvoiceLineItem{
			ID:        uuid.New(),
			InvoiceID: invoiceID,
			ProductID: item.ProductID,
			Name:      strings.TrimSpace(item.Name),
			UnitPrice: item.UnitPrice,
			Unit:      strings.TrimSpace(item.Unit),
			Quantity:  item.Quantity,
			Position:  i,
		})
	}

	subtotal = subtotal.Round(2)
	discountAmt := subtotal.Mul(input.DiscountRate).Div(hundred).Round(2)
	taxable := subtotal.Sub(discountAmt)
	taxAmt := taxable.Mul(input.TaxRate).Div(hundred).Round(2)
	grandTotal := taxable.Add(taxAmt).Round(2)

	sender := input.Sender
	if len(sender) == 0 {
		sender = json.RawMessage(`{}`)
	}
	customer := input.Customer
	if len(customer) == 0 {
		customer = json.RawMessage(`{}`)
	}

	return &models.Invoice{
		ID:            invoiceID,
		UserID:        userID,
		InvoiceNumber: number,
		Sender:        sender,
		Customer:      customer,
		TaxRate:       input.TaxRate,
		DiscountRate:  input.DiscountRate,
		Subtotal:      subtotal,
		DiscountAmt:   discountAmt,
		TaxAmt:        taxAmt,
		GrandTotal:    grandTotal,
		Notes:         input.Notes,
		LineItems:     items,
	}
}

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
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "invoice transaction conflicted repeatedly")
	}
	if db.IsUniqueViolation(err, "") {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "duplicate invoice number")
	}
	return err
}
