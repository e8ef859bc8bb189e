package memory

import (
	"context"
	"testing"

	domain "github.com/standee-works/customizer/internal/domain"
)

func TestListEntriesReturnsSeededCatalog(t *testing.T) {
	repo := NewCatalogRepository()

	entries, err := repo.ListEntries(context.Background())
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("expected seeded entries")
	}

	byName := make(map[string]domain.ProductTemplate, len(entries))
	for _, entry := range entries {
		byName[entry.Name] = entry
	}

	card, ok := byName["NFC Digital Business Card"]
	if !ok {
		t.Fatal("expected the NFC business card in the seed set")
	}
	if !card.IsBusinessCard() || card.SlotCount != 0 {
		t.Fatalf("unexpected card shape %+v", card)
	}

	standee, ok := byName["7 QR Round Edge Standee"]
	if !ok {
		t.Fatal("expected the 7 QR standee in the seed set")
	}
	if standee.SlotCount != 7 || !standee.LogoRequired {
		t.Fatalf("unexpected standee shape %+v", standee)
	}
}

func TestListEntriesCopiesAndExtends(t *testing.T) {
	extra := domain.ProductTemplate{Name: "Pop-up Counter Standee", Category: "Standee", SlotCount: 2, LogoRequired: true}
	repo := NewCatalogRepository(extra)

	entries, err := repo.ListEntries(context.Background())
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	if got := entries[len(entries)-1].Name; got != "Pop-up Counter Standee" {
		t.Fatalf("expected the extra template last, got %s", got)
	}

	entries[0].Name = "mutated"
	again, err := repo.ListEntries(context.Background())
	if err != nil {
		t.Fatalf("second list: %v", err)
	}
	if again[0].Name == "mutated" {
		t.Fatal("expected the repository to hand out copies")
	}
}
