package customize

import (
	"fmt"
	"strings"
)

// ValidationError reports one incomplete block. Label identifies the
// product, item, or group the customer has to fix; Reason is the
// human-readable rule that failed.
type ValidationError struct {
	Label  string
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Label, e.Reason)
}

func failValidation(label, reason string) *ValidationError {
	return &ValidationError{Label: label, Reason: reason}
}

// ValidateBlock checks one block for completeness: every required slot
// filled, a logo attached, and a payment QR attached whenever the reserved
// UPI tag is selected. The checks run in that order and the first failure
// wins. ValidateBlock is pure.
func ValidateBlock(block Block, requiredSlots int, label string) error {
	for i := 0; i < requiredSlots; i++ {
		if i >= len(block.Icons) || block.Icons[i].IsEmpty() {
			return failValidation(label, fmt.Sprintf("please select all %d icons", requiredSlots))
		}
	}
	if !block.Logo.Present() {
		return failValidation(label, "logo image is required")
	}
	if block.HasUPISlot() && !block.UPI.Present() {
		return failValidation(label, "UPI selected, payment QR image is required")
	}
	return nil
}

// Validate runs completeness checks over every block that is authoritative
// for the current mode, failing fast with the first offending block's label.
// Groups that currently hold no units are skipped.
func (s *State) Validate(productLabel string) error {
	slots := s.Template.SlotCount

	if s.ActiveUniform() {
		label := fmt.Sprintf("%s (All items)", productLabel)
		if s.Template.IsBusinessCard() {
			label = fmt.Sprintf("%s (Business Card)", productLabel)
		}
		return ValidateBlock(s.Same, slots, label)
	}

	if s.Mode == ModePerItem {
		for i := 0; i < s.Quantity; i++ {
			label := fmt.Sprintf("%s - Item #%d", productLabel, i+1)
			if err := ValidateBlock(s.Items[i], slots, label); err != nil {
				return err
			}
		}
		return nil
	}

	if unassigned := s.UnassignedUnits(); len(unassigned) > 0 {
		return failValidation(productLabel, fmt.Sprintf("units not assigned to any group: %s", joinUnits(unassigned)))
	}
	for i, g := range s.Groups {
		if len(g.Members) == 0 {
			continue
		}
		label := fmt.Sprintf("%s - Group %s", productLabel, groupDisplayLabel(g, i))
		if err := ValidateBlock(g.Block, slots, label); err != nil {
			return err
		}
	}
	return nil
}

func groupDisplayLabel(g Group, position int) string {
	if label := strings.TrimSpace(g.Label); label != "" {
		return label
	}
	return positionLabel(position)
}

func joinUnits(units []int) string {
	parts := make([]string, len(units))
	for i, u := range units {
		parts[i] = fmt.Sprintf("%d", u)
	}
	return strings.Join(parts, ", ")
}
