package customer

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/otofix/storefront-backend/internal/erp"
	"github.com/otofix/storefront-backend/pkg/auth"
	"github.com/otofix/storefront-backend/pkg/config"
	pkgerrors "github.com/otofix/storefront-backend/pkg/errors"
	"github.com/otofix/storefront-backend/pkg/logger"
)

type erpGateway interface {
	Login(ctx context.Context, slug string, creds erp.Credentials) (*erp.Customer, error)
	Register(ctx context.Context, slug string, reg erp.Registration) (*erp.Customer, error)
	Profile(ctx context.Context, slug, customerID string) (*erp.Customer, error)
	UpdateProfile(ctx context.Context, slug string, customer erp.Customer) (*erp.Customer, error)
	Addresses(ctx context.Context, slug, customerID string) ([]erp.Address, error)
	CreateAddress(ctx context.Context, slug, customerID string, addr erp.Address) (*erp.Address, error)
	DeleteAddress(ctx context.Context, slug, customerID, addressID string) error
	Vehicles(ctx context.Context, slug, customerID string) ([]erp.Vehicle, error)
	CreateVehicle(ctx context.Context, slug, customerID string, vehicle erp.Vehicle) (*erp.Vehicle, error)
	DeleteVehicle(ctx context.Context, slug, customerID, vehicleID string) error
}

type sessionManager interface {
	Generate(ctx context.Context, accessID string) (string, error)
	Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error)
	Revoke(ctx context.Context, accessID string) error
}

// AuthResult is the issued credential pair plus the authenticated customer.
type AuthResult struct {
	Customer     *erp.Customer `json:"customer"`
	AccessToken  string        `json:"accessToken"`
	RefreshToken string        `json:"refreshToken"`
}

// Service proxies customer account operations to the ERP. Identity lives in
// the ERP; this service only issues and rotates the storefront's own session
// tokens around it.
type Service struct {
	erp      erpGateway
	sessions sessionManager
	jwtCfg   config.JWTConfig
	logg     *logger.Logger
	now      func() time.Time
}

func NewService(gateway erpGateway, sessions sessionManager, jwtCfg config.JWTConfig, logg *logger.Logger) (*Service, error) {
	if gateway == nil {
		return nil, errors.New("customer: erp gateway is required")
	}
	if sessions == nil {
		return nil, errors.New("customer: session manager is required")
	}
	return &Service{
		erp:      gateway,
		sessions: sessions,
		jwtCfg:   jwtCfg,
		logg:     logg,
		now:      time.Now,
	}, nil
}

// Login authenticates against the ERP and issues a token pair.
func (s *Service) Login(ctx context.Context, slug string, creds erp.Credentials) (*AuthResult, error) {
	customer, err := s.erp.Login(ctx, slug, creds)
	if err != nil {
		var statusErr *erp.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusUnauthorized {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")
		}
		if errors.Is(err, erp.ErrNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "login unavailable")
	}
	return s.issue(ctx, slug, customer)
}

// Register creates the account in the ERP and signs the customer in.
func (s *Service) Register(ctx context.Context, slug string, reg erp.Registration) (*AuthResult, error) {
	customer, err := s.erp.Register(ctx, slug, reg)
	if err != nil {
		var statusErr *erp.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusConflict {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "an account with this email already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "registration unavailable")
	}
	return s.issue(ctx, slug, customer)
}

// Refresh rotates the refresh token and mints a fresh access token for the
// same customer.
func (s *Service) Refresh(ctx context.Context, claims *auth.AccessTokenClaims, refreshToken string) (*AuthResult, error) {
	if claims == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "session is required")
	}
	newAccessID, newRefresh, err := s.sessions.Rotate(ctx, claims.ID, refreshToken)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "session expired")
	}
	accessToken, err := auth.MintAccessToken(s.jwtCfg, s.now(), auth.AccessTokenPayload{
		CustomerID: claims.CustomerID,
		TenantSlug: claims.TenantSlug,
		Email:      claims.Email,
		JTI:        newAccessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "minting access token")
	}
	return &AuthResult{AccessToken: accessToken, RefreshToken: newRefresh}, nil
}

// Logout revokes the refresh session behind the access token.
func (s *Service) Logout(ctx context.Context, accessID string) error {
	if err := s.sessions.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "revoking session")
	}
	return nil
}

// Profile fetches the customer record from the ERP.
func (s *Service) Profile(ctx context.Context, slug, customerID string) (*erp.Customer, error) {
	customer, err := s.erp.Profile(ctx, slug, customerID)
	if err != nil {
		return nil, mapERPError(err, "customer not found")
	}
	return customer, nil
}

// UpdateProfile writes profile changes through to the ERP.
func (s *Service) UpdateProfile(ctx context.Context, slug string, customer erp.Customer) (*erp.Customer, error) {
	updated, err := s.erp.UpdateProfile(ctx, slug, customer)
	if err != nil {
		return nil, mapERPError(err, "customer not found")
	}
	return updated, nil
}

// Addresses lists the customer's saved shipping addresses, never nil.
func (s *Service) Addresses(ctx context.Context, slug, customerID string) ([]erp.Address, error) {
	addresses, err := s.erp.Addresses(ctx, slug, customerID)
	if err != nil {
		return nil, mapERPError(err, "customer not found")
	}
	if addresses == nil {
		addresses = []erp.Address{}
	}
	return addresses, nil
}

// CreateAddress stores a new shipping address.
func (s *Service) CreateAddress(ctx context.Context, slug, customerID string, addr erp.Address) (*erp.Address, error) {
	created, err := s.erp.CreateAddress(ctx, slug, customerID, addr)
	if err != nil {
		return nil, mapERPError(err, "customer not found")
	}
	return created, nil
}

// DeleteAddress removes a saved shipping address.
func (s *Service) DeleteAddress(ctx context.Context, slug, customerID, addressID string) error {
	if err := s.erp.DeleteAddress(ctx, slug, customerID, addressID); err != nil {
		return mapERPError(err, "address not found")
	}
	return nil
}

// Vehicles lists the customer's saved vehicles, never nil.
func (s *Service) Vehicles(ctx context.Context, slug, customerID string) ([]erp.Vehicle, error) {
	vehicles, err := s.erp.Vehicles(ctx, slug, customerID)
	if err != nil {
		return nil, mapERPError(err, "customer not found")
	}
	if vehicles == nil {
		vehicles = []erp.Vehicle{}
	}
	return vehicles, nil
}

// CreateVehicle stores a vehicle for part-fitment filtering.
func (s *Service) CreateVehicle(ctx context.Context, slug, customerID string, vehicle erp.Vehicle) (*erp.Vehicle, error) {
	created, err := s.erp.CreateVehicle(ctx, slug, customerID, vehicle)
	if err != nil {
		return nil, mapERPError(err, "customer not found")
	}
	return created, nil
}

// DeleteVehicle removes a saved vehicle.
func (s *Service) DeleteVehicle(ctx context.Context, slug, customerID, vehicleID string) error {
	if err := s.erp.DeleteVehicle(ctx, slug, customerID, vehicleID); err != nil {
		return mapERPError(err, "vehicle not found")
	}
	return nil
}

func (s *Service) issue(ctx context.Context, slug string, customer *erp.Customer) (*AuthResult, error) {
	accessID := auth.NewAccessID()
	accessToken, err := auth.MintAccessToken(s.jwtCfg, s.now(), auth.AccessTokenPayload{
		CustomerID: customer.ID,
		TenantSlug: slug,
		Email:      customer.Email,
		JTI:        accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "minting access token")
	}
	refreshToken, err := s.sessions.Generate(ctx, accessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating refresh session")
	}
	return &AuthResult{Customer: customer, AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func mapERPError(err error, notFoundMessage string) error {
	if errors.Is(err, erp.ErrNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, notFoundMessage)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "account backend unavailable")
}
