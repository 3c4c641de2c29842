package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/cyberportal/pkg/domain/types"
)

func TestParseSortKey(t *testing.T) {
	tests := []struct {
		input   string
		want    types.SortKey
		wantErr bool
	}{
		{"priority", types.SortKeyPriority, false},
		{"aiScore", types.SortKeyAIScore, false},
		{"confidence", types.SortKeyAIScore, false},
		{"date", types.SortKeyDate, false},
		{"severity", types.SortKeySeverity, false},
		{"name", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := types.ParseSortKey(tt.input)
			if tt.wantErr {
				gt.Error(t, err)
				return
			}
			gt.NoError(t, err)
			gt.V(t, got).Equal(tt.want)
		})
	}
}

func TestParseSortOrder(t *testing.T) {
	asc, err := types.ParseSortOrder("asc")
	gt.NoError(t, err)
	gt.V(t, asc).Equal(types.SortOrderAsc)

	desc, err := types.ParseSortOrder("desc")
	gt.NoError(t, err)
	gt.V(t, desc).Equal(types.SortOrderDesc)

	_, err = types.ParseSortOrder("DESC")
	gt.Error(t, err)
}
