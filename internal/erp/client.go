package erp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/otofix/storefront-backend/pkg/config"
)

// ErrNotFound signals that the ERP answered with an explicit 404 for the
// requested resource.
var ErrNotFound = errors.New("erp: not found")

// StatusError carries a non-2xx ERP response. Message holds the backend's own
// error text so callers can surface it verbatim where the flow requires it.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("erp: status %d: %s", e.StatusCode, e.Message)
}

// Client is the typed HTTP JSON client for the remote commerce backend. Every
// request is scoped to a tenant via the subdomain query parameter.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds an ERP client from configuration.
func NewClient(cfg config.ERPConfig) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
	}
}

// Ping verifies the ERP is reachable; used by the readiness probe.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer drain(resp.Body)
	if resp.StatusCode >= http.StatusInternalServerError {
		return &StatusError{StatusCode: resp.StatusCode, Message: "erp unhealthy"}
	}
	return nil
}

// Config fetches a single tenant's configuration. A 404 maps to ErrNotFound
// so the resolver can treat it as terminal rather than retryable.
func (c *Client) Config(ctx context.Context, slug string) (*TenantConfig, error) {
	var out TenantConfig
	if err := c.do(ctx, http.MethodGet, "/config", tenantQuery(slug), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Products lists catalog entries for the tenant, narrowed by query.
func (c *Client) Products(ctx context.Context, slug string, q ProductQuery) (*ProductPage, error) {
	values := tenantQuery(slug)
	if q.Category != "" {
		values.Set("category", q.Category)
	}
	if q.Brand != "" {
		values.Set("brand", q.Brand)
	}
	if q.Search != "" {
		values.Set("search", q.Search)
	}
	if q.Page > 0 {
		values.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		values.Set("limit", strconv.Itoa(q.Limit))
	}

	var out ProductPage
	if err := c.do(ctx, http.MethodGet, "/products", values, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Product fetches a single catalog entry.
func (c *Client) Product(ctx context.Context, slug, id string) (*Product, error) {
	var out Product
	if err := c.do(ctx, http.MethodGet, "/products/"+url.PathEscape(id), tenantQuery(slug), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Categories lists the tenant's catalog categories.
func (c *Client) Categories(ctx context.Context, slug string) ([]Category, error) {
	var out []Category
	if err := c.do(ctx, http.MethodGet, "/categories", tenantQuery(slug), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Brands lists the tenant's part manufacturers.
func (c *Client) Brands(ctx context.Context, slug string) ([]Brand, error) {
	var out []Brand
	if err := c.do(ctx, http.MethodGet, "/brands", tenantQuery(slug), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CheckPromotions submits the current cart snapshot for discount evaluation.
func (c *Client) CheckPromotions(ctx context.Context, slug string, req PromotionCheckRequest) (*PromotionCheckResult, error) {
	var out PromotionCheckResult
	if err := c.do(ctx, http.MethodPost, "/promotions/check", tenantQuery(slug), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateOrder submits the order. Non-2xx responses surface the backend's
// message through StatusError.
func (c *Client) CreateOrder(ctx context.Context, slug string, req OrderRequest) (*OrderConfirmation, error) {
	var out OrderConfirmation
	if err := c.do(ctx, http.MethodPost, "/orders", tenantQuery(slug), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login authenticates a customer against the ERP.
func (c *Client) Login(ctx context.Context, slug string, creds Credentials) (*Customer, error) {
	var out Customer
	if err := c.do(ctx, http.MethodPost, "/customers/login", tenantQuery(slug), creds, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates a customer account in the ERP.
func (c *Client) Register(ctx context.Context, slug string, reg Registration) (*Customer, error) {
	var out Customer
	if err := c.do(ctx, http.MethodPost, "/customers/register", tenantQuery(slug), reg, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Profile fetches the customer record.
func (c *Client) Profile(ctx context.Context, slug, customerID string) (*Customer, error) {
	var out Customer
	if err := c.do(ctx, http.MethodGet, "/customers/"+url.PathEscape(customerID), tenantQuery(slug), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile writes customer fields back to the ERP.
func (c *Client) UpdateProfile(ctx context.Context, slug string, customer Customer) (*Customer, error) {
	var out Customer
	if err := c.do(ctx, http.MethodPut, "/customers/"+url.PathEscape(customer.ID), tenantQuery(slug), customer, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Addresses lists the customer's saved shipping addresses.
func (c *Client) Addresses(ctx context.Context, slug, customerID string) ([]Address, error) {
	var out []Address
	path := "/customers/" + url.PathEscape(customerID) + "/addresses"
	if err := c.do(ctx, http.MethodGet, path, tenantQuery(slug), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateAddress stores a new shipping address for the customer.
func (c *Client) CreateAddress(ctx context.Context, slug, customerID string, addr Address) (*Address, error) {
	var out Address
	path := "/customers/" + url.PathEscape(customerID) + "/addresses"
	if err := c.do(ctx, http.MethodPost, path, tenantQuery(slug), addr, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteAddress removes a saved shipping address.
func (c *Client) DeleteAddress(ctx context.Context, slug, customerID, addressID string) error {
	path := "/customers/" + url.PathEscape(customerID) + "/addresses/" + url.PathEscape(addressID)
	return c.do(ctx, http.MethodDelete, path, tenantQuery(slug), nil, nil)
}

// Vehicles lists the customer's saved vehicles.
func (c *Client) Vehicles(ctx context.Context, slug, customerID string) ([]Vehicle, error) {
	var out []Vehicle
	path := "/customers/" + url.PathEscape(customerID) + "/vehicles"
	if err := c.do(ctx, http.MethodGet, path, tenantQuery(slug), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateVehicle stores a vehicle for part-fitment filtering.
func (c *Client) CreateVehicle(ctx context.Context, slug, customerID string, vehicle Vehicle) (*Vehicle, error) {
	var out Vehicle
	path := "/customers/" + url.PathEscape(customerID) + "/vehicles"
	if err := c.do(ctx, http.MethodPost, path, tenantQuery(slug), vehicle, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteVehicle removes a saved vehicle.
func (c *Client) DeleteVehicle(ctx context.Context, slug, customerID, vehicleID string) error {
	path := "/customers/" + url.PathEscape(customerID) + "/vehicles/" + url.PathEscape(vehicleID)
	return c.do(ctx, http.MethodDelete, path, tenantQuery(slug), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding erp request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("building erp request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("calling erp %s %s: %w", method, path, err)
	}
	defer drain(resp.Body)

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &StatusError{StatusCode: resp.StatusCode, Message: readErrorMessage(resp.Body)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding erp response: %w", err)
	}
	return nil
}

func tenantQuery(slug string) url.Values {
	values := url.Values{}
	values.Set("subdomain", slug)
	return values
}

// readErrorMessage extracts the backend's own error text so order-submission
// failures can be surfaced verbatim.
func readErrorMessage(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil || len(raw) == 0 {
		return "erp request failed"
	}
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return strings.TrimSpace(string(raw))
}

func drain(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, body)
	_ = body.Close()
}
