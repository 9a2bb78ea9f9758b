package normalize

import "testing"

func TestEmail(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Marco@Polo.example", "marco@polo.example"},
		{"  marco@polo.example  ", "marco@polo.example"},
		{"MARCO@POLO.EXAMPLE", "marco@polo.example"},
		{"marco@polo.example\x00", "marco@polo.example"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Email(tt.input); got != tt.expected {
				t.Errorf("Email(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestPseudonym(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercases", "Wanderer", "wanderer"},
		{"trims", "  wanderer ", "wanderer"},
		{"folds compatibility forms", "ｗａｎｄｅｒｅｒ", "wanderer"},
		{"keeps interior spacing", "the wanderer", "the wanderer"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Pseudonym(tt.input); got != tt.expected {
				t.Errorf("Pseudonym(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"collapses whitespace", "  San   Juan  ", "San Juan"},
		{"preserves case", "La Paz", "La Paz"},
		{"strips control bytes", "La\x00 Paz", "La Paz"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Name(tt.input); got != tt.expected {
				t.Errorf("Name(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
