package services

import (
	"context"
	"errors"
	"testing"

	domain "github.com/standee-works/customizer/internal/domain"
)

type stubCatalogRepo struct {
	listFn func(context.Context) ([]domain.ProductTemplate, error)
}

func (s *stubCatalogRepo) ListEntries(ctx context.Context) ([]domain.ProductTemplate, error) {
	if s.listFn != nil {
		return s.listFn(ctx)
	}
	return nil, errors.New("not implemented")
}

func testCatalog() []domain.ProductTemplate {
	return []domain.ProductTemplate{
		{Name: "NFC Digital Business Card", Category: "Cards", SlotCount: 0, LogoRequired: true},
		{Name: "4 QR Digital Frosted Standee", Category: "Standees", SlotCount: 4, LogoRequired: true},
		{Name: "7 QR Round Edge Standee", Category: "Standees", SlotCount: 7, LogoRequired: true},
		{
			Name:     "Standee Combo",
			Category: "Bundles",
			Children: []domain.ProductTemplate{
				{Name: "Combo Frosted Standee", Category: "Bundle", SlotCount: 3, LogoRequired: true, ParentBundle: "Standee Combo"},
				{Name: "Combo Payment Standee", Category: "Bundle", SlotCount: 1, LogoRequired: true, ParentBundle: "Standee Combo"},
			},
		},
	}
}

func newTestCatalogService(t *testing.T, entries []domain.ProductTemplate) CatalogService {
	t.Helper()
	svc, err := NewCatalogService(CatalogServiceDeps{
		Repository: &stubCatalogRepo{
			listFn: func(context.Context) ([]domain.ProductTemplate, error) {
				return entries, nil
			},
		},
	})
	if err != nil {
		t.Fatalf("new catalog service: %v", err)
	}
	return svc
}

func TestCatalogServiceRequiresRepository(t *testing.T) {
	if _, err := NewCatalogService(CatalogServiceDeps{}); err == nil {
		t.Fatal("expected constructor error without repository")
	}
}

func TestCatalogServiceResolveDirect(t *testing.T) {
	svc := newTestCatalogService(t, testCatalog())

	resolution, err := svc.Resolve(context.Background(), "  4 qr   DIGITAL frosted standee ")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolution.Match != MatchDirect {
		t.Fatalf("expected direct match got %s", resolution.Match)
	}
	if resolution.Template.Name != "4 QR Digital Frosted Standee" {
		t.Fatalf("unexpected template %s", resolution.Template.Name)
	}
	if resolution.Template.SlotCount != 4 {
		t.Fatalf("expected 4 slots got %d", resolution.Template.SlotCount)
	}
}

func TestCatalogServiceResolveFuzzy(t *testing.T) {
	svc := newTestCatalogService(t, testCatalog())

	resolution, err := svc.Resolve(context.Background(), "Round Edge Standee")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolution.Match != MatchFuzzy {
		t.Fatalf("expected fuzzy match got %s", resolution.Match)
	}
	if resolution.Template.Name != "7 QR Round Edge Standee" {
		t.Fatalf("unexpected template %s", resolution.Template.Name)
	}
}

func TestCatalogServiceResolveBundleChild(t *testing.T) {
	svc := newTestCatalogService(t, testCatalog())

	resolution, err := svc.Resolve(context.Background(), "Combo Payment Standee")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolution.Match != MatchBundleChild {
		t.Fatalf("expected bundle-child match got %s", resolution.Match)
	}
	if resolution.Template.ParentBundle != "Standee Combo" {
		t.Fatalf("unexpected parent bundle %s", resolution.Template.ParentBundle)
	}
}

func TestCatalogServiceResolveNotFound(t *testing.T) {
	svc := newTestCatalogService(t, testCatalog())

	if _, err := svc.Resolve(context.Background(), "Poster Frame"); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound got %v", err)
	}
	if _, err := svc.Resolve(context.Background(), "   "); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound for blank name got %v", err)
	}
}

func TestCatalogServiceDirectMatchWinsOverFuzzy(t *testing.T) {
	// "Standee Combo" is both an exact bundle name and a substring of
	// nothing else; an exact hit must never degrade to fuzzy.
	svc := newTestCatalogService(t, testCatalog())

	resolution, err := svc.Resolve(context.Background(), "standee combo")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolution.Match != MatchDirect {
		t.Fatalf("expected direct match got %s", resolution.Match)
	}
	if !resolution.Template.IsBundle() {
		t.Fatal("expected a bundle template")
	}
}

func TestCatalogServiceResolveOrderSplitsManual(t *testing.T) {
	svc := newTestCatalogService(t, testCatalog())

	order := domain.CustomerOrder{
		OrderNumber:  "#1001",
		ProductNames: []string{"NFC Digital Business Card", "Acrylic Poster", "", "7 QR Round Edge Standee"},
	}
	resolution, err := svc.ResolveOrder(context.Background(), order)
	if err != nil {
		t.Fatalf("resolve order: %v", err)
	}
	if len(resolution.Resolved) != 2 {
		t.Fatalf("expected 2 resolved products got %d", len(resolution.Resolved))
	}
	if resolution.Resolved[0].Template.Name != "NFC Digital Business Card" {
		t.Fatalf("unexpected first template %s", resolution.Resolved[0].Template.Name)
	}
	if len(resolution.Manual) != 1 || resolution.Manual[0] != "Acrylic Poster" {
		t.Fatalf("unexpected manual list %v", resolution.Manual)
	}
}

func TestCatalogServiceResolveOrderPropagatesRepoError(t *testing.T) {
	repoErr := errors.New("backend down")
	svc, err := NewCatalogService(CatalogServiceDeps{
		Repository: &stubCatalogRepo{
			listFn: func(context.Context) ([]domain.ProductTemplate, error) {
				return nil, repoErr
			},
		},
	})
	if err != nil {
		t.Fatalf("new catalog service: %v", err)
	}

	order := domain.CustomerOrder{ProductNames: []string{"anything"}}
	if _, err := svc.ResolveOrder(context.Background(), order); !errors.Is(err, repoErr) {
		t.Fatalf("expected repository error got %v", err)
	}
}
