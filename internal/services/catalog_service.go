package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"github.com/standee-works/customizer/internal/repositories"
)

// ErrProductNotFound indicates no catalog entry matched the product name.
var ErrProductNotFound = errors.New("catalog: product not found")

// CatalogServiceDeps bundles collaborators required to construct a catalog service instance.
type CatalogServiceDeps struct {
	Repository repositories.CatalogRepository
}

type catalogService struct {
	repo repositories.CatalogRepository
}

// NewCatalogService constructs a service that matches storefront product
// names against the catalog.
func NewCatalogService(deps CatalogServiceDeps) (CatalogService, error) {
	if deps.Repository == nil {
		return nil, errors.New("catalog service: repository is required")
	}
	return &catalogService{repo: deps.Repository}, nil
}

func (s *catalogService) Resolve(ctx context.Context, name string) (ProductResolution, error) {
	query := normalizeProductName(name)
	if query == "" {
		return ProductResolution{}, fmt.Errorf("%w: empty product name", ErrProductNotFound)
	}

	entries, err := s.repo.ListEntries(ctx)
	if err != nil {
		return ProductResolution{}, err
	}

	// Exact name match wins over everything else.
	for _, entry := range entries {
		if normalizeProductName(entry.Name) == query {
			return ProductResolution{Template: entry, Match: MatchDirect}, nil
		}
	}

	// Storefront exports sometimes append variant suffixes; fall back to a
	// containment match against the catalog name.
	for _, entry := range entries {
		if strings.Contains(normalizeProductName(entry.Name), query) {
			return ProductResolution{Template: entry, Match: MatchFuzzy}, nil
		}
	}

	for _, entry := range entries {
		for _, child := range entry.Children {
			if normalizeProductName(child.Name) == query {
				return ProductResolution{Template: child, Match: MatchBundleChild}, nil
			}
		}
	}

	return ProductResolution{}, fmt.Errorf("%w: %q", ErrProductNotFound, strings.TrimSpace(name))
}

func (s *catalogService) ResolveOrder(ctx context.Context, order CustomerOrder) (OrderResolution, error) {
	var out OrderResolution
	for _, name := range order.ProductNames {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			continue
		}
		resolution, err := s.Resolve(ctx, trimmed)
		if errors.Is(err, ErrProductNotFound) {
			out.Manual = append(out.Manual, trimmed)
			continue
		}
		if err != nil {
			return OrderResolution{}, err
		}
		out.Resolved = append(out.Resolved, resolution)
	}
	return out, nil
}

// normalizeProductName lowercases via Unicode case folding and collapses
// whitespace runs, mirroring how the storefront compares product names.
func normalizeProductName(name string) string {
	folded := cases.Fold().String(name)
	return strings.Join(strings.Fields(folded), " ")
}
