package normalize

import "testing"

func TestExtractCompanyFromTitle(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"title at company", "Software Engineer at Stripe", "Stripe"},
		{"title dash company", "Senior Designer - Figma", "Figma"},
		{"company dash title", "Datadog - Backend Engineer", "Datadog"},
		{"pipe separator", "Platform Lead | HashiCorp", "HashiCorp"},
		{"at wins on ambiguity", "Sales at Initech", "Initech"},
		{"both sides look like titles", "Senior Engineer - Engineering Manager", ""},
		{"no separator", "Software Engineer", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractCompanyFromTitle(tt.title)
			if got != tt.want {
				t.Errorf("extractCompanyFromTitle(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestExtractLocationFromTitle(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"remote in parens", "Software Engineer (Remote)", "Remote"},
		{"city and state", "Designer (New York, NY)", "New York, NY"},
		{"hybrid", "Analyst (Hybrid - Chicago)", "Hybrid - Chicago"},
		{"non-location parens ignored", "Engineer (Equity)", ""},
		{"no parens", "Engineer in Boston", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractLocationFromTitle(tt.title)
			if got != tt.want {
				t.Errorf("extractLocationFromTitle(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}
