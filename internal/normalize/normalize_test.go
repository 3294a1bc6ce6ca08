package normalize

import "testing"

func TestNormalize_CollapsesWhitespaceAndCase(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple", "Tenant SHALL pay", "tenant shall pay"},
		{"runs of whitespace", "Tenant \t shall\n\npay", "tenant shall pay"},
		{"leading and trailing", "  rent due  ", "rent due"},
		{"curly quotes", "“Base Rent” means ‘rent’", `"base rent" means 'rent'`},
		{"dashes", "2023–2024 — term", "2023-2024 - term"},
		{"empty", "", ""},
		{"whitespace only", " \n\t ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input)
			if got.Text != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got.Text, tt.want)
			}
		})
	}
}

func TestNormalize_IsDeterministic(t *testing.T) {
	input := "The  Tenant—and the Landlord—SHALL   comply."
	a := Normalize(input)
	b := Normalize(input)
	if a.Text != b.Text {
		t.Errorf("Normalization not deterministic: %q vs %q", a.Text, b.Text)
	}
}

func TestNormalize_OrigRangeMapsBack(t *testing.T) {
	original := "The Tenant  SHALL\tpay Rent."
	n := Normalize(original)
	want := "the tenant shall pay rent."
	if n.Text != want {
		t.Fatalf("Normalize = %q, want %q", n.Text, want)
	}

	// "shall" starts at normalized offset 11.
	start, end := n.OrigRange(11, 16)
	if got := original[start:end]; got != "SHALL" {
		t.Errorf("OrigRange(11, 16) = %q, want %q", got, "SHALL")
	}

	// Whole normalized range covers the trimmed original.
	start, end = n.OrigRange(0, n.Len())
	if got := original[start:end]; got != "The Tenant  SHALL\tpay Rent." {
		t.Errorf("Full OrigRange = %q", got)
	}
}

func TestNormalize_EmptyOrigRange(t *testing.T) {
	n := Normalize("")
	start, end := n.OrigRange(0, 5)
	if start != 0 || end != 0 {
		t.Errorf("Expected zero range for empty input, got (%d, %d)", start, end)
	}
}

func TestNormalize_IsEmpty(t *testing.T) {
	if !Normalize("   ").IsEmpty() {
		t.Error("Expected whitespace-only input to normalize empty")
	}
	if Normalize("x").IsEmpty() {
		t.Error("Expected non-empty input to normalize non-empty")
	}
}
