package repositories

import (
	"context"

	domain "github.com/standee-works/customizer/internal/domain"
)

// Registry exposes typed repository accessors and lifecycle hooks for dependency injection.
type Registry interface {
	Close(ctx context.Context) error

	Catalog() CatalogRepository
	Orders() OrderRepository
	Health() HealthRepository
}

// RepositoryError wraps low-level persistence failures with categorisation used by services.
type RepositoryError interface {
	error
	IsNotFound() bool
	IsConflict() bool
	IsUnavailable() bool
}

// CatalogRepository serves the product templates customers customize against.
type CatalogRepository interface {
	// ListEntries returns every catalog template, bundles included. The
	// catalog is small and read whole; matching happens in the service.
	ListEntries(ctx context.Context) ([]domain.ProductTemplate, error)
}

// PhoneOrders splits a phone-number lookup into orders still awaiting
// customization and orders already submitted.
type PhoneOrders struct {
	Open      []domain.CustomerOrder
	Submitted []domain.CustomerOrder
}

// OrderRepository reads purchased orders and records finished customizations.
type OrderRepository interface {
	GetOrder(ctx context.Context, orderNumber string) (domain.CustomerOrder, error)
	FindByPhone(ctx context.Context, phone string) (PhoneOrders, error)
	// SaveCustomization persists the flattened payload against the order and
	// marks it submitted. Saving twice overwrites the previous submission.
	SaveCustomization(ctx context.Context, orderID string, payload domain.SubmissionPayload) error
}

// HealthRepository evaluates backing-service dependencies for readiness probes.
type HealthRepository interface {
	CheckReadiness(ctx context.Context) (domain.HealthReport, error)
}
