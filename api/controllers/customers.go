package controllers

import (
	"net/http"

	"github.com/rahulmenon/billstack-backend/api/responses"
	"github.com/rahulmenon/billstack-backend/api/validators"
	"github.com/rahulmenon/billstack-backend/internal/customers"
	"github.com/rahulmenon/billstack-backend/pkg/logger"
)

// CreateCustomer adds an entry to the caller's address book.
func CreateCustomer(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := authedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload customerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		customer, err := svc.CreateCustomer(r.Context(), userID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, customer)
	}
}

// UpdateCustomer replaces the stored contact details.
func UpdateCustomer(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := authedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		customerID, err := pathUUID(r, "customerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload customerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		customer, err := svc.UpdateCustomer(r.Context(), userID, customerID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, customer)
	}
}

// DeleteCustomer removes an address book entry. Invoices keep their customer
// snapshots.
func DeleteCustomer(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := authedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		customerID, err := pathUUID(r, "customerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteCustomer(r.Context(), userID, customerID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// GetCustomer fetches one address book entry.
func GetCustomer(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := authedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		customerID, err := pathUUID(r, "customerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		customer, err := svc.GetCustomer(r.Context(), userID, customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, customer)
	}
}

// ListCustomers returns the caller's full address book.
func ListCustomers(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := authedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListCustomers(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"customers": list})
	}
}

type customerRequest struct {
	Name            string  `json:"name" validate:"required"`
	Email           string  `json:"email,omitempty" validate:"omitempty,email"`
	Phone           string  `json:"phone,omitempty"`
	GSTNumber       *string `json:"gst_number,omitempty"`
	CompanyName     string  `json:"company_name,omitempty"`
	BillingAddress  string  `json:"billing_address,omitempty"`
	ShippingAddress string  `json:"shipping_address,omitempty"`
}

func (r customerRequest) toInput() customers.CustomerInput {
	return customers.CustomerInput{
		Name:            r.Name,
		Email:           r.Email,
		Phone:           r.Phone,
		GSTNumber:       r.GSTNumber,
		CompanyName:     r.CompanyName,
		BillingAddress:  r.BillingAddress,
		ShippingAddress: r.ShippingAddress,
	}
}
