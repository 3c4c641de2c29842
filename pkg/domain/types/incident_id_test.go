package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/cyberportal/pkg/domain/types"
)

func TestNewIncidentID(t *testing.T) {
	gt.Value(t, types.NewIncidentID(2024, 1)).Equal(types.IncidentID("INC-2024-001"))
	gt.Value(t, types.NewIncidentID(2025, 45)).Equal(types.IncidentID("INC-2025-045"))
	gt.Value(t, types.NewIncidentID(2025, 1234)).Equal(types.IncidentID("INC-2025-1234"))
}

func TestIncidentID_Validate(t *testing.T) {
	tests := []struct {
		name    string
		id      types.IncidentID
		wantErr bool
	}{
		{"valid", "INC-2024-001", false},
		{"wide sequence", "INC-2024-1000", false},
		{"empty", "", true},
		{"short sequence", "INC-2024-01", true},
		{"lowercase prefix", "inc-2024-001", true},
		{"two digit year", "INC-24-001", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.id.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("IncidentID.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestIncidentID_Parts(t *testing.T) {
	year, seq, err := types.IncidentID("INC-2024-042").Parts()
	gt.NoError(t, err).Required()
	gt.Value(t, year).Equal(2024)
	gt.Value(t, seq).Equal(int64(42))

	_, _, err = types.IncidentID("CASE-1").Parts()
	gt.Error(t, err)
}
