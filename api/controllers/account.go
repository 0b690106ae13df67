package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/otofix/storefront-backend/api/middleware"
	"github.com/otofix/storefront-backend/api/responses"
	"github.com/otofix/storefront-backend/api/validators"
	"github.com/otofix/storefront-backend/internal/customer"
	"github.com/otofix/storefront-backend/internal/erp"
	"github.com/otofix/storefront-backend/pkg/auth"
	"github.com/otofix/storefront-backend/pkg/config"
	pkgerrors "github.com/otofix/storefront-backend/pkg/errors"
	"github.com/otofix/storefront-backend/pkg/logger"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password" validate:"required,min=8"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type updateProfileRequest struct {
	Name  string `json:"name" validate:"required"`
	Phone string `json:"phone,omitempty"`
}

type addressRequest struct {
	Title    string `json:"title" validate:"required"`
	FullText string `json:"fullText" validate:"required"`
	City     string `json:"city,omitempty"`
	District string `json:"district,omitempty"`
}

type vehicleRequest struct {
	Make  string `json:"make" validate:"required"`
	Model string `json:"model" validate:"required"`
	Year  int    `json:"year" validate:"required,min=1950,max=2100"`
	Plate string `json:"plate,omitempty"`
}

// Login authenticates a customer against the storefront's ERP tenant.
func Login(svc *customer.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg := middleware.TenantFromContext(r.Context())

		var payload loginRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), cfg.Subdomain, erp.Credentials{
			Email:    payload.Email,
			Password: payload.Password,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// Register creates a customer account and signs the visitor in.
func Register(svc *customer.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg := middleware.TenantFromContext(r.Context())

		var payload registerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Register(r.Context(), cfg.Subdomain, erp.Registration{
			Name:     payload.Name,
			Email:    payload.Email,
			Phone:    payload.Phone,
			Password: payload.Password,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

func parseBearerToken(r *http.Request) (string, error) {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	token := raw
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	if token == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	return token, nil
}

// RefreshSession rotates the refresh token and issues a new access token. The
// presented access token may already be expired; only its signature matters.
func RefreshSession(svc *customer.Service, jwtCfg config.JWTConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload refreshRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		token, err := parseBearerToken(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		claims, err := auth.ParseAccessTokenAllowExpired(jwtCfg, token)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
			return
		}

		result, err := svc.Refresh(r.Context(), claims, payload.RefreshToken)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// Logout revokes the refresh mapping tied to the presented access token.
func Logout(svc *customer.Service, jwtCfg config.JWTConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, err := parseBearerToken(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		claims, err := auth.ParseAccessTokenAllowExpired(jwtCfg, token)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
			return
		}
		if claims.ID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id"))
			return
		}

		if err := svc.Logout(r.Context(), claims.ID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "logged_out"})
	}
}

// GetProfile serves the signed-in customer's account record.
func GetProfile(svc *customer.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg := middleware.TenantFromContext(r.Context())
		customerID := middleware.CustomerIDFromContext(r.Context())

		profile, err := svc.Profile(r.Context(), cfg.Subdomain, customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

// UpdateProfile writes account changes through to the ERP.
func UpdateProfile(svc *customer.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg := middleware.TenantFromContext(r.Context())
		claims := middleware.ClaimsFromContext(r.Context())

		var payload updateProfileRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.UpdateProfile(r.Context(), cfg.Subdomain, erp.Customer{
			ID:    claims.CustomerID,
			Name:  payload.Name,
			Email: claims.Email,
			Phone: payload.Phone,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

// ListAddresses serves the customer's saved shipping addresses.
func ListAddresses(svc *customer.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg := middleware.TenantFromContext(r.Context())
		customerID := middleware.CustomerIDFromContext(r.Context())

		addresses, err := svc.Addresses(r.Context(), cfg.Subdomain, customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, addresses)
	}
}

// CreateAddress stores a new shipping address.
func CreateAddress(svc *customer.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg := middleware.TenantFromContext(r.Context())
		customerID := middleware.CustomerIDFromContext(r.Context())

		var payload addressRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.CreateAddress(r.Context(), cfg.Subdomain, customerID, erp.Address{
			Title:    payload.Title,
			FullText: payload.FullText,
			City:     payload.City,
			District: payload.District,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// DeleteAddress removes a saved shipping address.
func DeleteAddress(svc *customer.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg := middleware.TenantFromContext(r.Context())
		customerID := middleware.CustomerIDFromContext(r.Context())
		addressID := chi.URLParam(r, "addressID")

		if err := svc.DeleteAddress(r.Context(), cfg.Subdomain, customerID, addressID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// ListVehicles serves the customer's saved vehicles.
func ListVehicles(svc *customer.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg := middleware.TenantFromContext(r.Context())
		customerID := middleware.CustomerIDFromContext(r.Context())

		vehicles, err := svc.Vehicles(r.Context(), cfg.Subdomain, customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, vehicles)
	}
}

// CreateVehicle stores a vehicle for part-fitment filtering.
func CreateVehicle(svc *customer.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg := middleware.TenantFromContext(r.Context())
		customerID := middleware.CustomerIDFromContext(r.Context())

		var payload vehicleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.CreateVehicle(r.Context(), cfg.Subdomain, customerID, erp.Vehicle{
			Make:  payload.Make,
			Model: payload.Model,
			Year:  payload.Year,
			Plate: payload.Plate,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// DeleteVehicle removes a saved vehicle.
func DeleteVehicle(svc *customer.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg := middleware.TenantFromContext(r.Context())
		customerID := middleware.CustomerIDFromContext(r.Context())
		vehicleID := chi.URLParam(r, "vehicleID")

		if err := svc.DeleteVehicle(r.Context(), cfg.Subdomain, customerID, vehicleID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
