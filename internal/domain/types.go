package domain

import (
	"strings"
	"time"
)

// ProductTemplate describes how one purchasable product is customized: how
// many icon slots it carries and whether a logo upload is mandatory. Bundles
// expose their children as independent templates. Templates are immutable
// once resolved from the catalog.
type ProductTemplate struct {
	Name         string
	Category     string
	SlotCount    int
	LogoRequired bool
	// ParentBundle holds the bundle name when this template was resolved as
	// a bundle child, empty otherwise.
	ParentBundle string
	Children     []ProductTemplate
}

// IsBundle reports whether the template is a compound product whose children
// are customized independently.
func (t ProductTemplate) IsBundle() bool {
	return len(t.Children) > 0
}

// IsBusinessCard reports whether the template belongs to the zero-slot
// card class. Cards are always customized uniformly across the quantity.
func (t ProductTemplate) IsBusinessCard() bool {
	return t.SlotCount == 0 && !t.IsBundle()
}

// CustomerOrder is the purchased-order header the customization flow starts
// from. It mirrors the storefront export row, not an internal order model.
type CustomerOrder struct {
	ID                string
	OrderNumber       string
	CustomerName      string
	Phone             string
	BusinessName      string
	ProductNames      []string
	Quantity          int
	TotalPrice        int64
	Currency          string
	PaymentStatus     string
	FulfillmentStatus string
	LogoURL           string
	ConfirmImageURL   string
	CreatedAt         time.Time
}

// Submitted reports whether a customization has already been saved for the
// order. The storefront convention marks submission by a recorded logo URL.
func (o CustomerOrder) Submitted() bool {
	return strings.TrimSpace(o.LogoURL) != ""
}

// LineItem is one submission-ready record describing the resolved icons and
// asset references for a whole quantity, a single unit, or a group of units.
// Exactly one of Quantity, ItemNo, or Members is set, matching the
// distribution mode that produced the line.
type LineItem struct {
	ProductName     string   `json:"product_name"`
	Icons           []string `json:"icons"`
	LogoURL         string   `json:"logo_url"`
	ConfirmImageURL string   `json:"confirm_img"`
	Quantity        int      `json:"quantity,omitempty"`
	ItemNo          int      `json:"item_no,omitempty"`
	Members         []int    `json:"members,omitempty"`
}

// SubmissionPayload is the flattened customization handed to persistence.
type SubmissionPayload struct {
	OrderID       string     `json:"orderId"`
	BusinessName  string     `json:"businessName"`
	CustomerNames []string   `json:"customerNames"`
	Products      []LineItem `json:"products"`
}

// SubmissionReceipt summarizes a successful submission for the caller.
type SubmissionReceipt struct {
	OrderNumber    string
	LineItems      int
	ManualProducts []string
	SubmittedAt    time.Time
}
