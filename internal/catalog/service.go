package catalog

import (
	"context"
	"errors"

	"github.com/otofix/storefront-backend/internal/erp"
	"github.com/otofix/storefront-backend/pkg/logger"
)

const defaultPageSize = 20

type productSource interface {
	Products(ctx context.Context, slug string, q erp.ProductQuery) (*erp.ProductPage, error)
	Product(ctx context.Context, slug, id string) (*erp.Product, error)
	Categories(ctx context.Context, slug string) ([]erp.Category, error)
	Brands(ctx context.Context, slug string) ([]erp.Brand, error)
}

// Service reads catalog data from the ERP on behalf of storefront pages. The
// catalog is never persisted locally; every read is a pass-through. Failures
// degrade to empty results so a flaky backend renders an empty shelf rather
// than an error page.
type Service struct {
	source productSource
	logg   *logger.Logger
}

func NewService(source productSource, logg *logger.Logger) (*Service, error) {
	if source == nil {
		return nil, errors.New("catalog: product source is required")
	}
	return &Service{source: source, logg: logg}, nil
}

// Products lists one page of the tenant's catalog. The returned page is never
// nil and its Data slice is never nil.
func (s *Service) Products(ctx context.Context, slug string, q erp.ProductQuery) *erp.ProductPage {
	if q.Limit <= 0 {
		q.Limit = defaultPageSize
	}
	if q.Page <= 0 {
		q.Page = 1
	}

	page, err := s.source.Products(ctx, slug, q)
	if err != nil {
		s.warn(ctx, slug, "product listing failed")
		return emptyPage(q)
	}
	if page.Data == nil {
		page.Data = []erp.Product{}
	}
	return page
}

// Product fetches a single catalog entry. Unknown products return nil with
// found=false; transport failures do the same so callers render a not-found
// page either way.
func (s *Service) Product(ctx context.Context, slug, id string) (*erp.Product, bool) {
	product, err := s.source.Product(ctx, slug, id)
	if err != nil {
		if !errors.Is(err, erp.ErrNotFound) {
			s.warn(ctx, slug, "product detail fetch failed")
		}
		return nil, false
	}
	return product, true
}

// Categories lists the tenant's categories, empty on failure.
func (s *Service) Categories(ctx context.Context, slug string) []erp.Category {
	categories, err := s.source.Categories(ctx, slug)
	if err != nil {
		s.warn(ctx, slug, "category listing failed")
		return []erp.Category{}
	}
	if categories == nil {
		return []erp.Category{}
	}
	return categories
}

// Brands lists the tenant's part manufacturers, empty on failure.
func (s *Service) Brands(ctx context.Context, slug string) []erp.Brand {
	brands, err := s.source.Brands(ctx, slug)
	if err != nil {
		s.warn(ctx, slug, "brand listing failed")
		return []erp.Brand{}
	}
	if brands == nil {
		return []erp.Brand{}
	}
	return brands
}

func (s *Service) warn(ctx context.Context, slug, msg string) {
	if s.logg == nil {
		return
	}
	s.logg.Warn(s.logg.WithTenant(ctx, slug), msg)
}

func emptyPage(q erp.ProductQuery) *erp.ProductPage {
	return &erp.ProductPage{
		Data: []erp.Product{},
		Meta: erp.PageMeta{Page: q.Page, Limit: q.Limit},
	}
}
