package customize

import (
	"fmt"

	domain "github.com/standee-works/customizer/internal/domain"
)

// Materialize flattens the state into submission-ready line items for the
// current mode. Uniform customizations produce a single line carrying the
// whole quantity; per-item mode produces one numbered line per unit; grouped
// mode produces one line per group carrying its member list. Bundle children
// hold their own State, so their lines land beside the parent's siblings
// with no nesting.
func (s *State) Materialize() []domain.LineItem {
	name := s.Template.Name

	if s.ActiveUniform() {
		return []domain.LineItem{{
			ProductName:     name,
			Icons:           s.Same.ResolveIcons(),
			LogoURL:         s.Same.Logo.Ref(),
			ConfirmImageURL: s.Same.UPI.Ref(),
			Quantity:        s.Quantity,
		}}
	}

	if s.Mode == ModePerItem {
		lines := make([]domain.LineItem, 0, s.Quantity)
		for i := 0; i < s.Quantity; i++ {
			block := s.Items[i]
			lines = append(lines, domain.LineItem{
				ProductName:     fmt.Sprintf("%s #%d", name, i+1),
				Icons:           block.ResolveIcons(),
				LogoURL:         block.Logo.Ref(),
				ConfirmImageURL: block.UPI.Ref(),
				ItemNo:          i + 1,
			})
		}
		return lines
	}

	lines := make([]domain.LineItem, 0, len(s.Groups))
	for i, g := range s.Groups {
		members := make([]int, len(g.Members))
		copy(members, g.Members)
		lines = append(lines, domain.LineItem{
			ProductName:     fmt.Sprintf("%s [Group %s]", name, groupDisplayLabel(g, i)),
			Icons:           g.Block.ResolveIcons(),
			LogoURL:         g.Block.Logo.Ref(),
			ConfirmImageURL: g.Block.UPI.Ref(),
			Members:         members,
		})
	}
	return lines
}

// ActiveBlocks returns pointers to every block that is authoritative for the
// current mode, each paired with the label used in validation messages. The
// submission pass uses this to upload pending assets in place.
func (s *State) ActiveBlocks(productLabel string) []ActiveBlock {
	if s.ActiveUniform() {
		label := fmt.Sprintf("%s (All items)", productLabel)
		if s.Template.IsBusinessCard() {
			label = fmt.Sprintf("%s (Business Card)", productLabel)
		}
		return []ActiveBlock{{Label: label, Block: &s.Same}}
	}
	if s.Mode == ModePerItem {
		out := make([]ActiveBlock, 0, len(s.Items))
		for i := range s.Items {
			out = append(out, ActiveBlock{
				Label: fmt.Sprintf("%s - Item #%d", productLabel, i+1),
				Block: &s.Items[i],
			})
		}
		return out
	}
	out := make([]ActiveBlock, 0, len(s.Groups))
	for i := range s.Groups {
		out = append(out, ActiveBlock{
			Label: fmt.Sprintf("%s - Group %s", productLabel, groupDisplayLabel(s.Groups[i], i)),
			Block: &s.Groups[i].Block,
		})
	}
	return out
}

// ActiveBlock pairs an addressable block with its display label.
type ActiveBlock struct {
	Label string
	Block *Block
}
