package types_test

import (
	"testing"

	"github.com/secmon-lab/cyberportal/pkg/domain/types"
)

func TestThreatCategory_Validate(t *testing.T) {
	tests := []struct {
		name     string
		category types.ThreatCategory
		wantErr  bool
	}{
		{"phishing", "Phishing", false},
		{"malware with slash", "Malware / Ransomware", false},
		{"other", "Other Cyber Threat", false},
		{"empty", "", true},
		{"lowercase", "phishing", true},
		{"unknown", "Vishing", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.category.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("ThreatCategory.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAllThreatCategories(t *testing.T) {
	categories := types.AllThreatCategories()
	if len(categories) != 8 {
		t.Fatalf("expected 8 categories, got %d", len(categories))
	}
	for _, c := range categories {
		if !c.IsValid() {
			t.Errorf("category %q should be valid", c)
		}
	}
}
