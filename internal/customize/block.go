package customize

import "strings"

const (
	// TagUPI is the reserved icon tag that makes a payment QR upload mandatory.
	TagUPI = "UPI"
	// TagOther is the literal an unnamed custom icon degrades to at submission.
	TagOther = "Other"
)

// KnownTags is the fixed icon vocabulary offered by the editors. Anything
// outside this list is entered as a custom slot.
var KnownTags = []string{
	"Google",
	"Instagram",
	"Facebook",
	"WhatsApp",
	"YouTube",
	"Twitter",
	TagUPI,
	TagOther,
}

// IsKnownTag reports whether tag belongs to the fixed icon vocabulary.
func IsKnownTag(tag string) bool {
	for _, t := range KnownTags {
		if t == tag {
			return true
		}
	}
	return false
}

// SlotKind discriminates the value held by an icon slot.
type SlotKind int

const (
	// SlotEmpty marks a slot the customer has not filled yet.
	SlotEmpty SlotKind = iota
	// SlotKnown marks a slot holding one of the fixed vocabulary tags.
	SlotKnown
	// SlotCustom marks a slot holding free text entered by the customer.
	SlotCustom
)

// Slot is one icon choice within a block. The tagged representation replaces
// the storefront's "is this string in the known list" heuristic.
type Slot struct {
	Kind SlotKind
	Tag  string
	Text string
}

// EmptySlot returns an unfilled slot.
func EmptySlot() Slot { return Slot{} }

// KnownSlot returns a slot holding a fixed vocabulary tag.
func KnownSlot(tag string) Slot { return Slot{Kind: SlotKnown, Tag: tag} }

// CustomSlot returns a slot holding customer-entered text. Empty text is
// still a filled slot; it resolves to TagOther at submission.
func CustomSlot(text string) Slot { return Slot{Kind: SlotCustom, Text: text} }

// IsEmpty reports whether the slot is unfilled.
func (s Slot) IsEmpty() bool { return s.Kind == SlotEmpty }

// IsUPI reports whether the slot selects the reserved payment tag. Only the
// vocabulary tag counts; custom text spelling "UPI" does not trigger the QR
// requirement.
func (s Slot) IsUPI() bool { return s.Kind == SlotKnown && s.Tag == TagUPI }

// Resolve materializes the slot to the string submitted downstream.
func (s Slot) Resolve() string {
	switch s.Kind {
	case SlotKnown:
		return s.Tag
	case SlotCustom:
		if text := strings.TrimSpace(s.Text); text != "" {
			return text
		}
		return TagOther
	default:
		return ""
	}
}

// Asset references a customer-uploaded image either as the raw data URI
// awaiting upload or as the object URL returned by the asset store. Once
// uploaded, URL takes precedence so retries never re-encode the binary.
type Asset struct {
	DataURI string
	URL     string
}

// Present reports whether the customer attached anything at all.
func (a Asset) Present() bool {
	return strings.TrimSpace(a.URL) != "" || strings.TrimSpace(a.DataURI) != ""
}

// Uploaded reports whether the asset already has a stored object URL.
func (a Asset) Uploaded() bool { return strings.TrimSpace(a.URL) != "" }

// Ref returns the reference submitted in line items: the stored URL when
// available, otherwise the pending data URI.
func (a Asset) Ref() string {
	if url := strings.TrimSpace(a.URL); url != "" {
		return url
	}
	return strings.TrimSpace(a.DataURI)
}

// Block is one editable customization unit: a fixed-length icon slot array
// plus the logo and payment QR attachments. The slot count is fixed when the
// block is created and never resized.
type Block struct {
	Icons []Slot
	Logo  Asset
	UPI   Asset
}

// NewBlock returns an empty block sized to slotCount. Negative counts clamp
// to zero (the business-card class).
func NewBlock(slotCount int) Block {
	if slotCount < 0 {
		slotCount = 0
	}
	return Block{Icons: make([]Slot, slotCount)}
}

// SlotCount returns the fixed number of icon slots.
func (b Block) SlotCount() int { return len(b.Icons) }

// HasUPISlot reports whether any slot selects the reserved payment tag.
func (b Block) HasUPISlot() bool {
	for _, slot := range b.Icons {
		if slot.IsUPI() {
			return true
		}
	}
	return false
}

// ResolveIcons materializes every slot. The result always has SlotCount
// entries, never nil, so zero-slot blocks submit an empty array.
func (b Block) ResolveIcons() []string {
	icons := make([]string, len(b.Icons))
	for i, slot := range b.Icons {
		icons[i] = slot.Resolve()
	}
	return icons
}

// BlockPatch is a partial block update. Nil fields keep the current value;
// Icons, when set, replaces the whole slot array.
type BlockPatch struct {
	Icons []Slot
	Logo  *Asset
	UPI   *Asset
}

// Apply merges the patch into a copy of the block. Slices are copied, never
// aliased, so callers observe updates without shared mutation.
func (b Block) Apply(patch BlockPatch) Block {
	next := b
	next.Icons = make([]Slot, len(b.Icons))
	copy(next.Icons, b.Icons)
	if patch.Icons != nil {
		next.Icons = make([]Slot, len(patch.Icons))
		copy(next.Icons, patch.Icons)
	}
	if patch.Logo != nil {
		next.Logo = *patch.Logo
	}
	if patch.UPI != nil {
		next.UPI = *patch.UPI
	}
	return next
}

// ReplaceSlot returns a new slot array with index i swapped for slot. It is
// the building block for single-slot edits without in-place mutation.
func ReplaceSlot(icons []Slot, i int, slot Slot) []Slot {
	next := make([]Slot, len(icons))
	copy(next, icons)
	if i >= 0 && i < len(next) {
		next[i] = slot
	}
	return next
}
