package grocery

import "testing"

func TestCategorizeExactMatch(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"milk", "Dairy"},
		{"chicken", "Meat & Seafood"},
		{"ketchup", "Condiments/Spices"},
		{"ice cream", "Frozen"},
		{"coffee", "Beverages"},
		{"chips", "Snacks"},
		{"apple", "Produce"},
		{"pepper", "Condiments/Spices"},
	}
	for _, tt := range tests {
		if got := Categorize(tt.input); got != tt.want {
			t.Errorf("Categorize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestCategorizeSubstringMatch(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"boneless chicken thighs", "Meat & Seafood"},
		{"frozen pizza rolls", "Frozen"},
		{"organic baby spinach", "Produce"},
		{"sparkling water bottles", "Beverages"},
		{"greek yogurt cups", "Dairy"},
		{"vanilla ice cream", "Frozen"},
		{"creamy peanut butter", "Condiments/Spices"},
		{"red bell pepper", "Produce"},
		{"taco seasoning", "Condiments/Spices"},
	}
	for _, tt := range tests {
		if got := Categorize(tt.input); got != tt.want {
			t.Errorf("Categorize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestCategorizeCaseInsensitive(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"MILK", "Dairy"},
		{"  Chicken  ", "Meat & Seafood"},
		{"Frozen Peas", "Frozen"},
	}
	for _, tt := range tests {
		if got := Categorize(tt.input); got != tt.want {
			t.Errorf("Categorize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestCategorizeFallback(t *testing.T) {
	for _, input := range []string{"", "   ", "saffron threads", "widget"} {
		if got := Categorize(input); got != Fallback {
			t.Errorf("Categorize(%q) = %q, want %q", input, got, Fallback)
		}
	}
}
