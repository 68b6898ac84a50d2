package leads

import "testing"

func TestNormalizeContactNumber(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain digits", "5550102030", "5550102030"},
		{"formatted", "(555) 010-2030", "5550102030"},
		{"international", "+1 (555) 010-2030", "+15550102030"},
		{"dots and spaces", "555.010.2030 ", "5550102030"},
		{"plus not leading", "555+010+2030", "5550102030"},
		{"leading whitespace before plus", "  +44 20 7946 0958", "+442079460958"},
		{"empty", "", ""},
		{"letters dropped", "555-CALL-NOW", "555"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeContactNumber(tt.in); got != tt.want {
				t.Errorf("NormalizeContactNumber(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
