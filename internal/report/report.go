// Package report assembles the final matching report and persists or renders it.
package report

// Report is the persisted artifact. Field names are part of the output contract.
type Report struct {
	Summary Summary           `json:"summary"`
	Matches []CandidateResult `json:"matches"`
	// RawText carries the unparsed report stage output when the record was degraded.
	RawText string `json:"raw_text,omitempty"`
}

type Summary struct {
	TotalCandidates          int    `json:"total_candidates"`
	TotalTeams               int    `json:"total_teams"`
	CandidatesWithMatches    int    `json:"candidates_with_matches"`
	CandidatesWithoutMatches int    `json:"candidates_without_matches"`
	ReportDate               string `json:"report_date"`
}

// CandidateResult lists the qualifying teams of one candidate, best first.
type CandidateResult struct {
	CandidateName string      `json:"candidate_name"`
	Phone         string      `json:"phone"`
	Email         string      `json:"email"`
	LinkedIn      string      `json:"linkedin"`
	MatchingTeams []TeamMatch `json:"matching_teams"`
	HighestScore  *int        `json:"highest_score"`
}

type TeamMatch struct {
	TeamName string `json:"team_name"`
	Score    int    `json:"score"`
}

// Best returns the top team of the candidate.
func (c CandidateResult) Best() (TeamMatch, bool) {
	if len(c.MatchingTeams) == 0 {
		return TeamMatch{}, false
	}
	return c.MatchingTeams[0], true
}

// Stats are derived figures shown only in the human-readable rendering.
type Stats struct {
	AverageBestScore float64
	HighConfidence   int
}

// ComputeStats averages the best score of every matched candidate and counts the excellent ones.
func ComputeStats(r *Report) Stats {
	var stats Stats
	total := 0
	matched := 0

	for _, m := range r.Matches {
		if m.HighestScore == nil {
			continue
		}
		matched++
		total += *m.HighestScore
		if *m.HighestScore >= highConfidenceScore {
			stats.HighConfidence++
		}
	}

	if matched > 0 {
		stats.AverageBestScore = float64(total) / float64(matched)
	}
	return stats
}

const highConfidenceScore = 80
