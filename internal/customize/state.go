// Package customize implements the order customization engine: per-product
// editable state, the group partitioning of purchased units, completeness
// validation, and flattening into submittable line items. The engine is
// presentation-agnostic; any number of front ends can drive it through the
// session service.
package customize

import (
	"errors"
	"fmt"

	domain "github.com/standee-works/customizer/internal/domain"
)

// Mode selects how one customization applies across the purchased quantity.
type Mode string

const (
	// ModeSame applies a single block to every unit.
	ModeSame Mode = "same"
	// ModePerItem customizes every unit separately.
	ModePerItem Mode = "items"
	// ModeGrouped shares one block within each named group of units.
	ModeGrouped Mode = "groups"
)

var (
	// ErrInvalidMode indicates an unrecognized distribution mode.
	ErrInvalidMode = errors.New("customize: invalid distribution mode")
	// ErrModeUnavailable indicates the mode is not offered for this
	// template/quantity combination.
	ErrModeUnavailable = errors.New("customize: mode not available for this product")
	// ErrItemIndex indicates an out-of-range per-item index.
	ErrItemIndex = errors.New("customize: item index out of range")
	// ErrGroupIndex indicates an out-of-range group index.
	ErrGroupIndex = errors.New("customize: group index out of range")
	// ErrUnitOutOfRange indicates a unit number outside 1..quantity.
	ErrUnitOutOfRange = errors.New("customize: unit number out of range")
	// ErrLastGroup indicates an attempt to remove the only remaining group.
	ErrLastGroup = errors.New("customize: cannot remove the last group")
)

// Group is a named, disjoint subset of purchased units sharing one block in
// grouped mode. Members are kept sorted ascending and deduplicated.
type Group struct {
	Label   string
	Members []int
	Block   Block
}

// State owns one product's (or bundle child's) editable customization. The
// blocks for every mode are retained so switching modes never loses prior
// edits; only the blocks matching Mode are authoritative at submission.
type State struct {
	Template domain.ProductTemplate
	Quantity int
	Mode     Mode
	Same     Block
	Items    []Block
	Groups   []Group
}

// NewState initializes the customization for a resolved template and the
// purchased quantity. Multi-unit non-card products default to grouped mode
// with an even split; everything else starts uniform.
func NewState(template domain.ProductTemplate, quantity int) *State {
	if quantity < 1 {
		quantity = 1
	}
	slots := template.SlotCount

	items := make([]Block, quantity)
	for i := range items {
		items[i] = NewBlock(slots)
	}

	pattern := []int{1}
	if quantity > 1 {
		pattern = EvenSplit(quantity)
	}
	members := MembersForPattern(quantity, pattern)
	groups := make([]Group, len(members))
	for i, m := range members {
		groups[i] = Group{
			Label:   positionLabel(i),
			Members: m,
			Block:   NewBlock(slots),
		}
	}

	mode := ModeSame
	if quantity > 1 && !template.IsBusinessCard() {
		mode = ModeGrouped
	}

	return &State{
		Template: template,
		Quantity: quantity,
		Mode:     mode,
		Same:     NewBlock(slots),
		Items:    items,
		Groups:   groups,
	}
}

// SetMode switches the distribution mode. Data entered under other modes is
// kept untouched. Zero-slot card products only ever use ModeSame, and
// grouping requires at least two units.
func (s *State) SetMode(mode Mode) error {
	switch mode {
	case ModeSame, ModePerItem, ModeGrouped:
	default:
		return ErrInvalidMode
	}
	if s.Template.IsBusinessCard() && mode != ModeSame {
		return ErrModeUnavailable
	}
	if mode == ModeGrouped && s.Quantity < 2 {
		return ErrModeUnavailable
	}
	s.Mode = mode
	return nil
}

// UpdateSame patches the shared block.
func (s *State) UpdateSame(patch BlockPatch) {
	s.Same = s.Same.Apply(patch)
}

// UpdateItem patches the block for one unit (zero-based index).
func (s *State) UpdateItem(index int, patch BlockPatch) error {
	if index < 0 || index >= len(s.Items) {
		return fmt.Errorf("%w: %d", ErrItemIndex, index)
	}
	s.Items[index] = s.Items[index].Apply(patch)
	return nil
}

// UpdateGroup patches the block for one group (zero-based index).
func (s *State) UpdateGroup(index int, patch BlockPatch) error {
	if index < 0 || index >= len(s.Groups) {
		return fmt.Errorf("%w: %d", ErrGroupIndex, index)
	}
	s.Groups[index].Block = s.Groups[index].Block.Apply(patch)
	return nil
}

// ActiveUniform reports whether submission collapses to the shared block:
// uniform mode, the card class, or a single purchased unit.
func (s *State) ActiveUniform() bool {
	return s.Mode == ModeSame || s.Template.IsBusinessCard() || s.Quantity <= 1
}

// positionLabel yields the default group display name for a zero-based
// position: A, B, ..., Z, AA, AB, ...
func positionLabel(i int) string {
	label := ""
	for i >= 0 {
		label = string(rune('A'+i%26)) + label
		i = i/26 - 1
	}
	return label
}
