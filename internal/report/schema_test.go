package report

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateJSON(t *testing.T) {
	valid, err := Encode(sampleReport())
	require.NoError(t, err)
	assert.NoError(t, ValidateJSON(valid))

	tests := map[string]string{
		"missing summary": `{"matches": []}`,
		"score above 100": `{"summary": {"total_candidates": 1, "total_teams": 1, "candidates_with_matches": 1,
			"candidates_without_matches": 0, "report_date": "2025-03-14T09:26:53Z"},
			"matches": [{"candidate_name": "A", "phone": "", "email": "", "linkedin": "",
			"matching_teams": [{"team_name": "T", "score": 101}], "highest_score": 101}]}`,
		"string highest score": `{"summary": {"total_candidates": 1, "total_teams": 1, "candidates_with_matches": 1,
			"candidates_without_matches": 0, "report_date": "2025-03-14T09:26:53Z"},
			"matches": [{"candidate_name": "A", "phone": "", "email": "", "linkedin": "",
			"matching_teams": [], "highest_score": "80"}]}`,
		"unknown summary field": `{"summary": {"total_candidates": 0, "total_teams": 0, "candidates_with_matches": 0,
			"candidates_without_matches": 0, "report_date": "x", "average_score": 1}, "matches": []}`,
	}

	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			err := ValidateJSON([]byte(doc))
			var schemaErr *SchemaError
			require.True(t, errors.As(err, &schemaErr), "expected schema error, got %v", err)
			assert.NotEmpty(t, schemaErr.Errors)
		})
	}
}
