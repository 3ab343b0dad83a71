package profiles

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rahulmenon/billstack-backend/pkg/db"
	"github.com/rahulmenon/billstack-backend/pkg/db/models"
	pkgerrors "github.com/rahulmenon/billstack-backend/pkg/errors"
)

// Service exposes the sender profile operations.
type Service interface {
	SaveProfile(ctx context.Context, userID uuid.UUID, input ProfileInput) (*ProfileDTO, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*ProfileDTO, error)
	SenderSnapshot(ctx context.Context, userID uuid.UUID) (json.RawMessage, error)
}

// ProfileInput holds the validated profile payload.
type ProfileInput struct {
	FullName        string
	PhoneNumber     string
	CompanyName     string
	DispatchAddress string
	Notes           string
	Terms           []string
}

// ProfileDTO represents the profile payload returned to clients.
type ProfileDTO struct {
	FullName        string    `json:"full_name"`
	PhoneNumber     string    `json:"phone_number"`
	CompanyName     string    `json:"company_name"`
	DispatchAddress string    `json:"dispatch_address"`
	Notes           string    `json:"notes,omitempty"`
	Terms           []string  `json:"terms"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type service struct {
	repo Repository
}

// NewService wires the profile service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("profile repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) SaveProfile(ctx context.Context, userID uuid.UUID, input ProfileInput) (*ProfileDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	name := strings.TrimSpace(input.FullName)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "full name is required")
	}

	profile := &models.UserProfile{
		UserID:          userID,
		FullName:        name,
		PhoneNumber:     strings.TrimSpace(input.PhoneNumber),
		CompanyName:     strings.TrimSpace(input.CompanyName),
		DispatchAddress: strings.TrimSpace(input.DispatchAddress),
		Notes:           strings.TrimSpace(input.Notes),
		Terms:           pq.StringArray(input.Terms),
	}
	if err := s.repo.Upsert(ctx, profile); err != nil {
		return nil, err
	}
	return toProfileDTO(profile), nil
}

func (s *service) GetProfile(ctx context.Context, userID uuid.UUID) (*ProfileDTO, error) {
	profile, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")
		}
		return nil, err
	}
	return toProfileDTO(profile), nil
}

// SenderSnapshot renders the profile as the JSON blob stamped onto invoices.
// A missing profile yields an empty snapshot rather than an error: invoices
// can be cut before the user fills in their details.
func (s *service) SenderSnapshot(ctx context.Context, userID uuid.UUID) (json.RawMessage, error) {
	profile, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if db.IsNotFound(err) {
			return json.RawMessage(`{}`), nil
		}
		return nil, err
	}

	snapshot, err := json.Marshal(map[string]any{
		"full_name":        profile.FullName,
		"phone_number":     profile.PhoneNumber,
		"company_name":     profile.CompanyName,
		"dispatch_address": profile.DispatchAddress,
		"terms":            []string(profile.Terms),
	})
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

func toProfileDTO(profile *models.UserProfile) *ProfileDTO {
	return &ProfileDTO{
		FullName:        profile.FullName,
		PhoneNumber:     profile.PhoneNumber,
		CompanyName:     profile.CompanyName,
		DispatchAddress: profile.DispatchAddress,
		Notes:           profile.Notes,
		Terms:           []string(profile.Terms),
		UpdatedAt:       profile.UpdatedAt,
	}
}
