package customers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rahulmenon/billstack-backend/pkg/db"
	"github.com/rahulmenon/billstack-backend/pkg/db/models"
	pkgerrors "github.com/rahulmenon/billstack-backend/pkg/errors"
)

// Service exposes address-book operations.
type Service interface {
	CreateCustomer(ctx context.Context, userID uuid.UUID, input CustomerInput) (*CustomerDTO, error)
	UpdateCustomer(ctx context.Context, userID, customerID uuid.UUID, input CustomerInput) (*CustomerDTO, error)
	DeleteCustomer(ctx context.Context, userID, customerID uuid.UUID) error
	GetCustomer(ctx context.Context, userID, customerID uuid.UUID) (*CustomerDTO, error)
	ListCustomers(ctx context.Context, userID uuid.UUID) ([]CustomerDTO, error)
}

// CustomerInput holds the validated customer payload.
type CustomerInput struct {
	Name            string
	Email           string
	Phone           string
	GSTNumber       *string
	CompanyName     string
	BillingAddress  string
	ShippingAddress string
}

// CustomerDTO represents the customer payload returned to clients.
type CustomerDTO struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	GSTNumber       *string   `json:"gst_number,omitempty"`
	CompanyName     string    `json:"company_name"`
	BillingAddress  string    `json:"billing_address"`
	ShippingAddress string    `json:"shipping_address"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type service struct {
	repo Repository
}

// NewService wires the customer service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("customer repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) CreateCustomer(ctx context.Context, userID uuid.UUID, input CustomerInput) (*CustomerDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer name is required")
	}

	customer := &models.Customer{
		ID:              uuid.New(),
		UserID:          userID,
		Name:            name,
		Email:           strings.TrimSpace(input.Email),
		Phone:           strings.TrimSpace(input.Phone),
		GSTNumber:       input.GSTNumber,
		CompanyName:     strings.TrimSpace(input.CompanyName),
		BillingAddress:  strings.TrimSpace(input.BillingAddress),
		ShippingAddress: strings.TrimSpace(input.ShippingAddress),
	}
	if err := s.repo.Create(ctx, customer); err != nil {
		return nil, err
	}
	return toCustomerDTO(customer), nil
}

func (s *service) UpdateCustomer(ctx context.Context, userID, customerID uuid.UUID, input CustomerInput) (*CustomerDTO, error) {
	customer, err := s.repo.FindByID(ctx, userID, customerID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, err
	}

	if name := strings.TrimSpace(input.Name); name != "" {
		customer.Name = name
	}
	customer.Email = strings.TrimSpace(input.Email)
	customer.Phone = strings.TrimSpace(input.Phone)
	customer.GSTNumber = input.GSTNumber
	customer.CompanyName = strings.TrimSpace(input.CompanyName)
	customer.BillingAddress = strings.TrimSpace(input.BillingAddress)
	customer.ShippingAddress = strings.TrimSpace(input.ShippingAddress)

	if err := s.repo.Save(ctx, customer); err != nil {
		return nil, err
	}
	return toCustomerDTO(customer), nil
}

func (s *service) DeleteCustomer(ctx context.Context, userID, customerID uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, userID, customerID); err != nil {
		if db.IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return err
	}
	return s.repo.Delete(ctx, userID, customerID)
}

func (s *service) GetCustomer(ctx context.Context, userID, customerID uuid.UUID) (*CustomerDTO, error) {
	customer, err := s.repo.FindByID(ctx, userID, customerID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, err
	}
	return toCustomerDTO(customer), nil
}

func (s *service) ListCustomers(ctx context.Context, userID uuid.UUID) ([]CustomerDTO, error) {
	customers, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	dtos := make([]CustomerDTO, 0, len(customers))
	for i := range customers {
		dtos = append(dtos, *toCustomerDTO(&customers[i]))
	}
	return dtos, nil
}

func toCustomerDTO(customer *models.Customer) *CustomerDTO {
	return &CustomerDTO{
		ID:              customer.ID,
		Name:            customer.Name,
		Email:           customer.Email,
		Phone:           customer.Phone,
		GSTNumber:       customer.GSTNumber,
		CompanyName:     customer.CompanyName,
		BillingAddress:  customer.BillingAddress,
		ShippingAddress: customer.ShippingAddress,
		CreatedAt:       customer.CreatedAt,
		UpdatedAt:       customer.UpdatedAt,
	}
}
