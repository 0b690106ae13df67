package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/otofix/storefront-backend/internal/erp"
	"github.com/shopspring/decimal"
)

type stubSource struct {
	page       *erp.ProductPage
	product    *erp.Product
	categories []erp.Category
	brands     []erp.Brand
	err        error

	gotQuery erp.ProductQuery
}

func (s *stubSource) Products(_ context.Context, _ string, q erp.ProductQuery) (*erp.ProductPage, error) {
	s.gotQuery = q
	return s.page, s.err
}

func (s *stubSource) Product(_ context.Context, _, _ string) (*erp.Product, error) {
	return s.product, s.err
}

func (s *stubSource) Categories(_ context.Context, _ string) ([]erp.Category, error) {
	return s.categories, s.err
}

func (s *stubSource) Brands(_ context.Context, _ string) ([]erp.Brand, error) {
	return s.brands, s.err
}

func TestNewServiceRequiresSource(t *testing.T) {
	t.Parallel()

	if _, err := NewService(nil, nil); err == nil {
		t.Fatal("expected error for nil source")
	}
}

func TestProductsDefaultsPaging(t *testing.T) {
	t.Parallel()

	source := &stubSource{page: &erp.ProductPage{Data: []erp.Product{{ID: "p-1", Price: decimal.NewFromInt(450)}}}}
	svc, err := NewService(source, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	page := svc.Products(context.Background(), "oto-parts", erp.ProductQuery{})
	if source.gotQuery.Page != 1 || source.gotQuery.Limit != defaultPageSize {
		t.Fatalf("expected default paging, got %+v", source.gotQuery)
	}
	if len(page.Data) != 1 {
		t.Fatalf("unexpected page %+v", page)
	}
}

func TestProductsDegradeToEmptyOnFailure(t *testing.T) {
	t.Parallel()

	source := &stubSource{err: errors.New("erp down")}
	svc, _ := NewService(source, nil)

	page := svc.Products(context.Background(), "oto-parts", erp.ProductQuery{Page: 3, Limit: 12})
	if page == nil || page.Data == nil {
		t.Fatal("degraded page must be non-nil with a non-nil data slice")
	}
	if len(page.Data) != 0 {
		t.Fatalf("expected empty page, got %d items", len(page.Data))
	}
	if page.Meta.Page != 3 || page.Meta.Limit != 12 {
		t.Fatalf("degraded page should echo the query paging, got %+v", page.Meta)
	}
}

func TestProductNotFound(t *testing.T) {
	t.Parallel()

	source := &stubSource{err: erp.ErrNotFound}
	svc, _ := NewService(source, nil)

	product, found := svc.Product(context.Background(), "oto-parts", "ghost")
	if found || product != nil {
		t.Fatalf("expected not found, got %+v", product)
	}
}

func TestCategoriesAndBrandsNeverNil(t *testing.T) {
	t.Parallel()

	source := &stubSource{}
	svc, _ := NewService(source, nil)

	if cats := svc.Categories(context.Background(), "oto-parts"); cats == nil {
		t.Fatal("categories must never be nil")
	}
	if brands := svc.Brands(context.Background(), "oto-parts"); brands == nil {
		t.Fatal("brands must never be nil")
	}
}
