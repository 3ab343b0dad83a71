package customers

import (
	"context"

	"github.com/google/uuid"
	"github.com/rahulmenon/billstack-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository manages persistence for address-book customers.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, customer *models.Customer) error
	Save(ctx context.Context, customer *models.Customer) error
	Delete(ctx context.Context, userID, customerID uuid.UUID) error
	FindByID(ctx context.Context, userID, customerID uuid.UUID) (*models.Customer, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Customer, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a customer repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, customer *models.Customer) error {
	return r.db.WithContext(ctx).Create(customer).Error
}

func (r *repository) Save(ctx context.Context, customer *models.Customer) error {
	return r.db.WithContext(ctx).Save(customer).Error
}

func (r *repository) Delete(ctx context.Context, userID, customerID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.Customer{}, "id = ?", customerID).Error
}

func (r *repository) FindByID(ctx context.Context, userID, customerID uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&customer, "id = ?", customerID).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Customer, error) {
	var customers []models.Customer
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("name ASC").
		Find(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}
