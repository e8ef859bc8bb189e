package customize

import (
	"fmt"
	"sort"
	"strings"
)

// EvenSplit returns the half-and-half pattern for n units:
// [ceil(n/2), n-ceil(n/2)], omitting the second size when it is zero.
func EvenSplit(n int) []int {
	a := (n + 1) / 2
	b := n - a
	if b == 0 {
		return []int{a}
	}
	return []int{a, b}
}

// AltSplit returns the all-but-one pattern for n units:
// [max(1, n-1), rest], omitting the second size when it is zero.
func AltSplit(n int) []int {
	a := n - 1
	if a < 1 {
		a = 1
	}
	b := n - a
	if b == 0 {
		return []int{a}
	}
	return []int{a, b}
}

// MembersForPattern assigns consecutive unit numbers 1..n into groups sized
// according to sizes, stopping early when n is exhausted. Groups that would
// receive no members are dropped.
func MembersForPattern(n int, sizes []int) [][]int {
	var out [][]int
	cur := 1
	for _, size := range sizes {
		var g []int
		for i := 0; i < size && cur <= n; i++ {
			g = append(g, cur)
			cur++
		}
		if len(g) > 0 {
			out = append(out, g)
		}
	}
	return out
}

// ApplyPattern recomputes group membership from a size pattern. A group at
// the same position keeps its prior label and attachments; icon slots are
// preserved only while their length still matches the template's slot count,
// otherwise they reset to empty.
func (s *State) ApplyPattern(sizes []int) {
	members := MembersForPattern(s.Quantity, sizes)
	slots := s.Template.SlotCount
	next := make([]Group, len(members))
	for i, m := range members {
		g := Group{
			Label:   positionLabel(i),
			Members: m,
			Block:   NewBlock(slots),
		}
		if i < len(s.Groups) {
			prior := s.Groups[i]
			if strings.TrimSpace(prior.Label) != "" {
				g.Label = prior.Label
			}
			g.Block.Logo = prior.Block.Logo
			g.Block.UPI = prior.Block.UPI
			if len(prior.Block.Icons) == slots {
				g.Block.Icons = make([]Slot, slots)
				copy(g.Block.Icons, prior.Block.Icons)
			}
		}
		next[i] = g
	}
	s.Groups = next
}

// Reassign moves one unit into the target group, removing it from every
// other group first. Member sets stay sorted and deduplicated, which also
// makes the operation idempotent.
func (s *State) Reassign(unit, targetGroup int) error {
	if unit < 1 || unit > s.Quantity {
		return fmt.Errorf("%w: %d", ErrUnitOutOfRange, unit)
	}
	if targetGroup < 0 || targetGroup >= len(s.Groups) {
		return fmt.Errorf("%w: %d", ErrGroupIndex, targetGroup)
	}
	for i := range s.Groups {
		s.Groups[i].Members = removeMember(s.Groups[i].Members, unit)
	}
	s.Groups[targetGroup].Members = mergeMembers(s.Groups[targetGroup].Members, []int{unit})
	return nil
}

// AddGroup appends a new empty group labeled by its position in sequence.
func (s *State) AddGroup() {
	s.Groups = append(s.Groups, Group{
		Label: positionLabel(len(s.Groups)),
		Block: NewBlock(s.Template.SlotCount),
	})
}

// RemoveGroup deletes the group at index, moving its members into the first
// remaining group, then relabels all groups sequentially by position.
// Explicit renames do not survive the relabeling.
func (s *State) RemoveGroup(index int) error {
	if index < 0 || index >= len(s.Groups) {
		return fmt.Errorf("%w: %d", ErrGroupIndex, index)
	}
	if len(s.Groups) <= 1 {
		return ErrLastGroup
	}
	orphaned := s.Groups[index].Members
	kept := make([]Group, 0, len(s.Groups)-1)
	for i, g := range s.Groups {
		if i != index {
			kept = append(kept, g)
		}
	}
	kept[0].Members = mergeMembers(kept[0].Members, orphaned)
	for i := range kept {
		kept[i].Label = positionLabel(i)
	}
	s.Groups = kept
	return nil
}

// RenameGroup sets a free-text label without touching membership or order.
func (s *State) RenameGroup(index int, label string) error {
	if index < 0 || index >= len(s.Groups) {
		return fmt.Errorf("%w: %d", ErrGroupIndex, index)
	}
	s.Groups[index].Label = label
	return nil
}

// UnassignedUnits lists the units not currently belonging to any group,
// ascending. A non-empty result blocks submission in grouped mode.
func (s *State) UnassignedUnits() []int {
	assigned := make(map[int]bool)
	for _, g := range s.Groups {
		for _, m := range g.Members {
			assigned[m] = true
		}
	}
	var out []int
	for unit := 1; unit <= s.Quantity; unit++ {
		if !assigned[unit] {
			out = append(out, unit)
		}
	}
	return out
}

func removeMember(members []int, unit int) []int {
	out := members[:0]
	for _, m := range members {
		if m != unit {
			out = append(out, m)
		}
	}
	return out
}

func mergeMembers(a, b []int) []int {
	seen := make(map[int]bool, len(a)+len(b))
	merged := make([]int, 0, len(a)+len(b))
	for _, m := range append(append([]int{}, a...), b...) {
		if !seen[m] {
			seen[m] = true
			merged = append(merged, m)
		}
	}
	sort.Ints(merged)
	return merged
}
