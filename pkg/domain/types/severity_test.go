package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/cyberportal/pkg/domain/types"
)

func TestSeverity_Rank(t *testing.T) {
	gt.Value(t, types.SeverityCritical.Rank()).Equal(4)
	gt.Value(t, types.SeverityHigh.Rank()).Equal(3)
	gt.Value(t, types.SeverityMedium.Rank()).Equal(2)
	gt.Value(t, types.SeverityLow.Rank()).Equal(1)
	gt.Value(t, types.Severity("Severe").Rank()).Equal(0)
	gt.B(t, types.Severity("").IsValid()).False()
}

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		input   string
		want    types.Severity
		wantErr bool
	}{
		{"Critical", types.SeverityCritical, false},
		{"CRITICAL", types.SeverityCritical, false},
		{" low ", types.SeverityLow, false},
		{"Medium", types.SeverityMedium, false},
		{"urgent", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := types.ParseSeverity(tt.input)
			if tt.wantErr {
				gt.Error(t, err)
				return
			}
			gt.NoError(t, err)
			gt.Value(t, got).Equal(tt.want)
		})
	}
}
