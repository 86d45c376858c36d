package extract

import "github.com/spigell/profilematch/internal/scoring"

// Record is the structured result recovered from the report stage output.
type Record struct {
	Summary map[string]any   `mapstructure:"summary" json:"summary"`
	Matches []CandidateMatch `mapstructure:"matches" json:"matches"`

	// RawText keeps the original output when nothing could be recovered.
	RawText  string `mapstructure:"-" json:"raw_text,omitempty"`
	Degraded bool   `mapstructure:"-" json:"-"`
	// Coerced describes values that could not be read and were reset to their zero value.
	Coerced []string `mapstructure:"-" json:"-"`
}

// CandidateMatch is one candidate entry of the record as the model reported it. The
// reported highest score is not kept: it is always derived from the qualifying teams.
type CandidateMatch struct {
	CandidateName string      `mapstructure:"candidate_name" json:"candidate_name"`
	Phone         string      `mapstructure:"phone" json:"phone"`
	Email         string      `mapstructure:"email" json:"email"`
	LinkedIn      string      `mapstructure:"linkedin" json:"linkedin"`
	MatchingTeams []TeamScore `mapstructure:"matching_teams" json:"matching_teams"`
}

// TeamScore is a reported candidate/team score with optional per-criterion subscores.
type TeamScore struct {
	TeamName  string             `mapstructure:"team_name" json:"team_name"`
	Score     int                `mapstructure:"score" json:"score"`
	Subscores *scoring.Subscores `mapstructure:"subscores" json:"subscores,omitempty"`
}

func degraded(raw string) *Record {
	return &Record{
		Summary:  map[string]any{},
		Matches:  []CandidateMatch{},
		RawText:  raw,
		Degraded: true,
	}
}
