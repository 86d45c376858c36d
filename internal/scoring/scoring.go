// Package scoring implements the weighted multi-criteria score used to rank candidate/team pairs.
package scoring

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"

	"github.com/spigell/profilematch/internal/apperrors"
)

const (
	// WeightsTotal is the value the four criterion weights must add up to.
	WeightsTotal = 100
	// DefaultThreshold is the minimum composite score for a team to be listed as a match.
	DefaultThreshold = 60

	minScore = 0
	maxScore = 100
)

// Band is the qualitative label attached to a composite score.
type Band string

const (
	BandExcellent Band = "excellent"
	BandGood      Band = "good"
	BandModerate  Band = "moderate"
	BandPoor      Band = "poor"
)

// Weights assigns a share of the composite score to every criterion.
type Weights struct {
	TechnicalSkills int `mapstructure:"technical-skills" json:"technical_skills" validate:"min=0,max=100"`
	Experience      int `mapstructure:"experience" json:"experience" validate:"min=0,max=100"`
	Education       int `mapstructure:"education" json:"education" validate:"min=0,max=100"`
	OverallFit      int `mapstructure:"overall-fit" json:"overall_fit" validate:"min=0,max=100"`
}

// Subscores holds the per-criterion scores of a single candidate/team pair, each in [0,100].
type Subscores struct {
	TechnicalSkills float64 `mapstructure:"technical_skills" json:"technical_skills"`
	Experience      float64 `mapstructure:"experience" json:"experience"`
	Education       float64 `mapstructure:"education" json:"education"`
	OverallFit      float64 `mapstructure:"overall_fit" json:"overall_fit"`
}

// DefaultWeights returns the 40/30/15/15 split.
func DefaultWeights() Weights {
	return Weights{TechnicalSkills: 40, Experience: 30, Education: 15, OverallFit: 15}
}

// Sum returns the total of all four weights.
func (w Weights) Sum() int {
	return w.TechnicalSkills + w.Experience + w.Education + w.OverallFit
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		w := sl.Current().Interface().(Weights)
		if w.Sum() != WeightsTotal {
			sl.ReportError(w.Sum(), "Weights", "Weights", "sum100", "")
		}
	}, Weights{})
	return v
}

// Validate checks that every weight is within [0,100] and that the weights sum to 100.
func (w Weights) Validate() error {
	err := validate.Struct(w)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &apperrors.ConfigurationError{Field: "weights", Message: "invalid weights", Err: err}
	}

	first := verrs[0]
	if first.Tag() == "sum100" {
		return &apperrors.ConfigurationError{
			Field:   "weights",
			Message: fmt.Sprintf("must sum to %d, got %d", WeightsTotal, w.Sum()),
		}
	}

	return &apperrors.ConfigurationError{
		Field:   "weights." + first.Field(),
		Message: fmt.Sprintf("must be within [0,100], got %v", first.Value()),
	}
}

// Score returns the weighted composite of the subscores, rounded to the nearest integer.
// Subscores outside [0,100] are clamped first.
func Score(s Subscores, w Weights) int {
	total := clampFloat(s.TechnicalSkills)*float64(w.TechnicalSkills) +
		clampFloat(s.Experience)*float64(w.Experience) +
		clampFloat(s.Education)*float64(w.Education) +
		clampFloat(s.OverallFit)*float64(w.OverallFit)

	return Clamp(int(math.Round(total / WeightsTotal)))
}

// Classify maps a composite score to its band.
func Classify(composite int) Band {
	switch {
	case composite >= 80:
		return BandExcellent
	case composite >= 60:
		return BandGood
	case composite >= 40:
		return BandModerate
	default:
		return BandPoor
	}
}

// Clamp bounds a score to [0,100].
func Clamp(score int) int {
	if score < minScore {
		return minScore
	}
	if score > maxScore {
		return maxScore
	}
	return score
}

func clampFloat(v float64) float64 {
	if math.IsNaN(v) || v < minScore {
		return minScore
	}
	if v > maxScore {
		return maxScore
	}
	return v
}
