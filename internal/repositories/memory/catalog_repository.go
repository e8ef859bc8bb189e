// Package memory provides in-process repository implementations used when no
// Firestore backend is configured.
package memory

import (
	"context"

	domain "github.com/standee-works/customizer/internal/domain"
	"github.com/standee-works/customizer/internal/repositories"
)

// CatalogRepository serves the built-in product set.
type CatalogRepository struct {
	entries []domain.ProductTemplate
}

var _ repositories.CatalogRepository = (*CatalogRepository)(nil)

// NewCatalogRepository constructs a catalog repository seeded with the
// standard product set. Additional templates extend the built-in list.
func NewCatalogRepository(extra ...domain.ProductTemplate) *CatalogRepository {
	entries := make([]domain.ProductTemplate, 0, len(builtinCatalog)+len(extra))
	entries = append(entries, builtinCatalog...)
	entries = append(entries, extra...)
	return &CatalogRepository{entries: entries}
}

// ListEntries returns the seeded catalog.
func (r *CatalogRepository) ListEntries(_ context.Context) ([]domain.ProductTemplate, error) {
	out := make([]domain.ProductTemplate, len(r.entries))
	copy(out, r.entries)
	return out, nil
}

func card(name string) domain.ProductTemplate {
	return domain.ProductTemplate{Name: name, Category: "Card", LogoRequired: true}
}

func standee(name string, slots int) domain.ProductTemplate {
	return domain.ProductTemplate{Name: name, Category: "Standee", SlotCount: slots, LogoRequired: true}
}

var builtinCatalog = []domain.ProductTemplate{
	card("NFC Digital Business Card"),
	card("Black Metal Card"),
	card("Instagram Social Media NFC Card"),
	card("Youtube Subscribe NFC Card"),
	card("Facebook Social Media NFC QR Card"),

	standee("4 QR Digital Frosted Standee", 4),
	standee("3-in-1 Multi Colour QR Standee with Payment QR", 4),
	standee("3 QR Digital Frosted Colour Standee", 3),
	standee("4x6 Size 1 Qr Frosted Standee", 1),
	standee("7 QR Round Edge Standee", 7),
	standee("2 QR Tooth Shaped Red Colour Standee", 2),
	standee("3-in-1 Double side White Standee", 4),
	standee("3-in-1 Digital QR NFC Standee", 4),
	standee("7 QR Smart Premium Standee", 7),
	standee("2 Frosted Standee Bundle - Google + Instagram + Payment", 3),
	standee("10 Google Review NFC Card Bundle", 1),
	standee("5 Google Review NFC Card Bundle", 1),
	standee("Google Review NFC Card", 1),
	standee("Custom 4 QR Standees", 4),
	standee("4-in-1 Black Horizontal Standee with Payment QR", 5),
	standee("3 QR Vertical Digital Standee", 3),
	standee("4 QR Black Colour Vertical Standee", 4),
	standee("2 QR White Colour Standee", 2),
	standee("2 QR Green Colour Standee", 2),
	standee("2 QR Frosted Colour Standee", 2),
	standee("Blue Colour 3 QR Standee", 3),
	standee("2 QR Black Colour Standee", 2),
	standee("3-in-1 Blue Colour QR Standee with Payment QR", 4),
	standee("3-in-1 White Colour QR Standee with Payment QR", 4),
	standee("Black Colour 4 QR Digital Standee", 4),
	standee("3-in-1 Golden Frosted QR Standee with Payment QR", 4),
	standee("3 QR Black Colour Stand", 3),
	standee("1 QR Digital Google Standee", 1),
	standee("2 QR Digital Frosted Colour Standee", 2),
	standee("2 QR Premium Standee Black Cutout", 2),
	standee("6QR Premium Standee", 6),
	standee("5QR Premium Standee - Landscape", 5),
	standee("Google reviews PVC QR Code Standee", 1),
	standee("4 QR Digital Vertical Standee", 4),
	standee("3 QR Round Shape Vertical Standee", 3),
	standee("2-in-1 QR Horizontal Standee with Payment QR", 3),
	standee("Smart NFC 2 QR Table Top Standee - Icon Edition", 2),
	standee("1 QR Smart Google Review Standee", 1),
	standee("4 QR Premium Horizontal Standee", 4),
	standee("1 QR Smart Payment Standee", 1),
}
