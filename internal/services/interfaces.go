package services

import (
	"context"
	"time"

	"github.com/standee-works/customizer/internal/customize"
	domain "github.com/standee-works/customizer/internal/domain"
)

// Type aliases expose domain models to the services package without reversing dependency direction.
type (
	ProductTemplate   = domain.ProductTemplate
	CustomerOrder     = domain.CustomerOrder
	LineItem          = domain.LineItem
	SubmissionPayload = domain.SubmissionPayload
	SubmissionReceipt = domain.SubmissionReceipt
	HealthReport      = domain.HealthReport
)

// MatchKind records how a storefront product name was matched to a catalog entry.
type MatchKind string

const (
	// MatchDirect is an exact match after name normalization.
	MatchDirect MatchKind = "direct"
	// MatchFuzzy is a partial match where a catalog name contains the query.
	MatchFuzzy MatchKind = "fuzzy"
	// MatchBundleChild matched the name against a bundle's child product.
	MatchBundleChild MatchKind = "bundle-child"
)

// ProductResolution pairs a resolved template with how it was found.
type ProductResolution struct {
	Template ProductTemplate
	Match    MatchKind
}

// CatalogService resolves storefront product names to customization templates.
type CatalogService interface {
	// Resolve finds the template for a single product name. Returns
	// ErrProductNotFound when no catalog entry matches.
	Resolve(ctx context.Context, name string) (ProductResolution, error)
	// ResolveOrder resolves every product on an order, splitting unmatched
	// names into the manual-handling list instead of failing.
	ResolveOrder(ctx context.Context, order CustomerOrder) (OrderResolution, error)
}

// OrderResolution is the per-order outcome of catalog matching.
type OrderResolution struct {
	Resolved []ProductResolution
	// Manual lists product names with no catalog entry; these are handled
	// over support chat rather than through the editor.
	Manual []string
}

// SessionProduct is one editable product within a session. Bundles carry no
// state of their own; their children are edited independently.
type SessionProduct struct {
	Template ProductTemplate
	Match    MatchKind
	State    *customize.State
	Children []*SessionProduct
}

// Session is the in-memory editing aggregate for one open order.
type Session struct {
	Order         CustomerOrder
	BusinessName  string
	CustomerNames []string
	Products      []*SessionProduct
	Manual        []string

	generation uint64
}

// SessionService owns the customization flow from order lookup to submission.
type SessionService interface {
	// Start loads the order, resolves its products against the catalog, and
	// returns a session with default engine state per product.
	Start(ctx context.Context, orderNumber string) (*Session, error)
	// Refresh re-resolves the session's products against the current
	// catalog. Results from a Refresh superseded by a newer one are discarded.
	Refresh(ctx context.Context, session *Session) error
	// OrdersByPhone lists a customer's orders split into open and submitted.
	OrdersByPhone(ctx context.Context, phone string) (OrdersByPhoneResult, error)
	// Submit validates every product, uploads pending images, persists the
	// flattened customization, and publishes a submission event. The session
	// is left intact on failure so the customer can fix and retry.
	Submit(ctx context.Context, session *Session) (SubmissionReceipt, error)
}

// OrdersByPhoneResult mirrors the storefront's split order listing.
type OrdersByPhoneResult struct {
	Phone     string
	Open      []CustomerOrder
	Submitted []CustomerOrder
}

// AssetKind distinguishes the two image uploads a block can carry.
type AssetKind string

const (
	AssetKindLogo AssetKind = "logo"
	AssetKindUPI  AssetKind = "upi"
)

// UploadAssetCommand carries one data-URI image to persistent storage.
type UploadAssetCommand struct {
	OrderNumber  string
	Kind         AssetKind
	DataURI      string
	FilenameHint string
}

// AssetStore uploads customer images and returns their hosted URLs.
type AssetStore interface {
	Upload(ctx context.Context, cmd UploadAssetCommand) (string, error)
}

// SubmissionEvent announces a completed customization to downstream consumers.
type SubmissionEvent struct {
	OrderNumber  string    `json:"orderNumber"`
	Phone        string    `json:"phone,omitempty"`
	BusinessName string    `json:"businessName,omitempty"`
	LineItems    int       `json:"lineItems"`
	Manual       []string  `json:"manualProducts,omitempty"`
	SubmittedAt  time.Time `json:"submittedAt"`
}

// SubmissionPublisher emits submission events. Publishing is best effort and
// never fails a submission.
type SubmissionPublisher interface {
	PublishSubmission(ctx context.Context, event SubmissionEvent) error
}

// SystemService aggregates operational utility checks.
type SystemService interface {
	HealthReport(ctx context.Context) (HealthReport, error)
}
