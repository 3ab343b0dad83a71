package controllers

import (
	"net/http"

	"github.com/rahulmenon/billstack-backend/api/responses"
	"github.com/rahulmenon/billstack-backend/api/validators"
	"github.com/rahulmenon/billstack-backend/internal/profiles"
	"github.com/rahulmenon/billstack-backend/pkg/logger"
)

// GetProfile returns the caller's sender profile.
func GetProfile(svc profiles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := authedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profile, err := svc.GetProfile(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, profile)
	}
}

// SaveProfile upserts the sender details stamped onto future invoices.
func SaveProfile(svc profiles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := authedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload profileRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profile, err := svc.SaveProfile(r.Context(), userID, profiles.ProfileInput{
			FullName:        payload.FullName,
			PhoneNumber:     payload.PhoneNumber,
			CompanyName:     payload.CompanyName,
			DispatchAddress: payload.DispatchAddress,
			Notes:           payload.Notes,
			Terms:           payload.Terms,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, profile)
	}
}

type profileRequest struct {
	FullName        string   `json:"full_name" validate:"required"`
	PhoneNumber     string   `json:"phone_number,omitempty"`
	CompanyName     string   `json:"company_name,omitempty"`
	DispatchAddress string   `json:"dispatch_address,omitempty"`
	Notes           string   `json:"notes,omitempty"`
	Terms           []string `json:"terms,omitempty"`
}
