package scoring

import (
	"fmt"

	"github.com/spigell/profilematch/internal/apperrors"
)

// Model couples validated weights with the inclusion threshold.
type Model struct {
	weights   Weights
	threshold int
}

// NewModel validates the weights and threshold once. Any violation is a ConfigurationError.
func NewModel(weights Weights, threshold int) (*Model, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}

	if threshold < minScore || threshold > maxScore {
		return nil, &apperrors.ConfigurationError{
			Field:   "match-threshold",
			Message: fmt.Sprintf("must be within [0,100], got %d", threshold),
		}
	}

	return &Model{weights: weights, threshold: threshold}, nil
}

func (m *Model) Weights() Weights { return m.weights }

func (m *Model) Threshold() int { return m.threshold }

// Composite resolves the score of one candidate/team pair. Subscores, when present, win over
// the reported score.
func (m *Model) Composite(reported int, subscores *Subscores) int {
	if subscores != nil {
		return Score(*subscores, m.weights)
	}
	return Clamp(reported)
}

// Includes reports whether a composite score qualifies a team as a match. The band is not consulted.
func (m *Model) Includes(composite int) bool {
	return composite >= m.threshold
}
