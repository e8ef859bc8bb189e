package customize

import (
	"reflect"
	"testing"
)

func TestMaterializeSameProducesSingleLine(t *testing.T) {
	st := NewState(standeeTemplate(2), 4)
	if err := st.SetMode(ModeSame); err != nil {
		t.Fatalf("set mode: %v", err)
	}
	st.Same = filledBlock(2, true)

	lines := st.Materialize()
	if len(lines) != 1 {
		t.Fatalf("lines = %d, want 1", len(lines))
	}
	line := lines[0]
	if line.ProductName != "4 QR Digital Frosted Standee" {
		t.Fatalf("name = %q", line.ProductName)
	}
	if line.Quantity != 4 || line.ItemNo != 0 || line.Members != nil {
		t.Fatalf("expected quantity-only line, got %+v", line)
	}
	if line.LogoURL == "" || line.ConfirmImageURL == "" {
		t.Fatalf("asset refs missing: %+v", line)
	}
}

func TestMaterializeBusinessCardEmitsEmptyIcons(t *testing.T) {
	st := NewState(cardTemplate(), 1)
	st.Same.Logo = Asset{URL: "https://assets.example/logo.png"}

	lines := st.Materialize()
	if len(lines) != 1 {
		t.Fatalf("lines = %d", len(lines))
	}
	if lines[0].Icons == nil || len(lines[0].Icons) != 0 {
		t.Fatalf("icons = %#v, want empty non-nil slice", lines[0].Icons)
	}
	if lines[0].Quantity != 1 {
		t.Fatalf("quantity = %d", lines[0].Quantity)
	}
}

func TestMaterializePerItemEmitsNumberedLines(t *testing.T) {
	st := NewState(standeeTemplate(1), 3)
	if err := st.SetMode(ModePerItem); err != nil {
		t.Fatalf("set mode: %v", err)
	}
	for i := range st.Items {
		st.Items[i] = filledBlock(1, false)
	}

	lines := st.Materialize()
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3", len(lines))
	}
	if lines[1].ProductName != "4 QR Digital Frosted Standee #2" {
		t.Fatalf("name = %q", lines[1].ProductName)
	}
	if lines[2].ItemNo != 3 || lines[2].Quantity != 0 {
		t.Fatalf("expected item_no line, got %+v", lines[2])
	}
}

func TestMaterializeGroupedEmitsOneLinePerGroup(t *testing.T) {
	st := NewState(standeeTemplate(2), 5) // A(1,2,3) B(4,5)
	if err := st.RenameGroup(1, "Back office"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	st.Groups[0].Block = filledBlock(2, false)
	st.Groups[1].Block = filledBlock(2, false)

	lines := st.Materialize()
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}
	if lines[0].ProductName != "4 QR Digital Frosted Standee [Group A]" {
		t.Fatalf("name = %q", lines[0].ProductName)
	}
	if lines[1].ProductName != "4 QR Digital Frosted Standee [Group Back office]" {
		t.Fatalf("name = %q", lines[1].ProductName)
	}
	if !reflect.DeepEqual(lines[0].Members, []int{1, 2, 3}) {
		t.Fatalf("members = %v", lines[0].Members)
	}
	if lines[0].Quantity != 0 || lines[0].ItemNo != 0 {
		t.Fatalf("expected members-only line, got %+v", lines[0])
	}
}

func TestMaterializeCustomSlotResolution(t *testing.T) {
	st := NewState(standeeTemplate(3), 1)
	st.Same.Icons = []Slot{CustomSlot("  "), CustomSlot("Maps"), KnownSlot("Google")}

	lines := st.Materialize()
	want := []string{"Other", "Maps", "Google"}
	if !reflect.DeepEqual(lines[0].Icons, want) {
		t.Fatalf("icons = %v, want %v", lines[0].Icons, want)
	}
}

func TestMaterializePrefersUploadedURLOverDataURI(t *testing.T) {
	st := NewState(standeeTemplate(1), 1)
	st.Same.Logo = Asset{DataURI: "data:image/png;base64,aGk=", URL: "https://assets.example/logo.png"}

	lines := st.Materialize()
	if lines[0].LogoURL != "https://assets.example/logo.png" {
		t.Fatalf("logo ref = %q", lines[0].LogoURL)
	}
}

func TestActiveBlocksMatchMaterializedLineCount(t *testing.T) {
	st := NewState(standeeTemplate(2), 4)
	for _, mode := range []Mode{ModeSame, ModePerItem, ModeGrouped} {
		if err := st.SetMode(mode); err != nil {
			t.Fatalf("set mode %s: %v", mode, err)
		}
		if got, want := len(st.ActiveBlocks("p")), len(st.Materialize()); got != want {
			t.Fatalf("mode %s: %d active blocks vs %d lines", mode, got, want)
		}
	}
}
