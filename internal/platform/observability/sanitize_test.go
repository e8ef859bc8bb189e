package observability

import "testing"

func TestSanitizeOrderNumber(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "#4821", "#4821"},
		{"control characters stripped", "#48\x0021\x1b[31m", "#4821[31m"},
		{"overlong truncated", "#0123456789012345678901234567890123456789", "#0123456789012345678901234567890"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SanitizeOrderNumber(tc.input); got != tc.want {
				t.Fatalf("expected %q got %q", tc.want, got)
			}
		})
	}
}

func TestMaskPhone(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"full number", "+91 98765 43210", "********3210"},
		{"formatting dropped", "(987) 654-3210", "******3210"},
		{"short number fully masked", "1234", "****"},
		{"empty", "", ""},
		{"no digits", "n/a", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := MaskPhone(tc.input); got != tc.want {
				t.Fatalf("expected %q got %q", tc.want, got)
			}
		})
	}
}
