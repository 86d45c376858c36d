package report

import (
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/profilematch/internal/extract"
	"github.com/spigell/profilematch/internal/logger"
	"github.com/spigell/profilematch/internal/profiles"
	"github.com/spigell/profilematch/internal/scoring"
)

// Assembler turns an extracted record into a Report.
type Assembler struct {
	model  *scoring.Model
	now    func() time.Time
	logger *zap.Logger
}

// NewAssembler returns an Assembler. A nil clock means time.Now.
func NewAssembler(model *scoring.Model, now func() time.Time, log *zap.Logger) *Assembler {
	if now == nil {
		now = time.Now
	}
	return &Assembler{model: model, now: now, logger: logger.WithFields(log)}
}

// Assemble normalizes the record against the stage 1 candidates and the known teams.
//
// Team scores are recomputed from subscores when present, clamped, and kept only when they
// reach the inclusion threshold. Contact fields missing from the record are taken from the
// candidate with the same name, then fall back to profiles.NotAvailable. Candidates with at
// least one match come first ordered by highest score; the rest keep their record order.
// Both sorts are stable.
func (a *Assembler) Assemble(rec *extract.Record, candidates []profiles.Candidate, teams []profiles.TeamRequirement) *Report {
	index := profiles.NewIndex(candidates)
	known := knownTeams(teams)

	var matches []extract.CandidateMatch
	if rec != nil {
		matches = rec.Matches
	}

	results := make([]CandidateResult, 0, len(matches))
	for _, m := range matches {
		results = append(results, a.candidateResult(m, index, known))
	}

	matched := make([]CandidateResult, 0, len(results))
	unmatched := make([]CandidateResult, 0, len(results))
	for _, r := range results {
		if r.HighestScore != nil {
			matched = append(matched, r)
		} else {
			unmatched = append(unmatched, r)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return *matched[i].HighestScore > *matched[j].HighestScore
	})

	without := len(candidates) - len(matched)
	if without < 0 {
		a.logger.Warn("record lists more matched candidates than were extracted",
			zap.Int("extracted", len(candidates)),
			zap.Int("matched", len(matched)),
		)
		without = 0
	}

	report := &Report{
		Summary: Summary{
			TotalCandidates:          len(candidates),
			TotalTeams:               len(teams),
			CandidatesWithMatches:    len(matched),
			CandidatesWithoutMatches: without,
			ReportDate:               a.now().Format(time.RFC3339),
		},
		Matches: append(matched, unmatched...),
	}

	if rec != nil && rec.Degraded {
		report.RawText = rec.RawText
	}

	return report
}

func (a *Assembler) candidateResult(m extract.CandidateMatch, index profiles.Index, known map[string]string) CandidateResult {
	name := strings.TrimSpace(m.CandidateName)
	profile, _ := index.Find(name)

	result := CandidateResult{
		CandidateName: profiles.ContactOrSentinel(name),
		Phone:         contact(m.Phone, profile.Phone),
		Email:         contact(m.Email, profile.Email),
		LinkedIn:      contact(m.LinkedIn, profile.LinkedIn),
		MatchingTeams: []TeamMatch{},
	}

	for _, ts := range m.MatchingTeams {
		teamName, ok := a.resolveTeam(ts.TeamName, known)
		if !ok {
			a.logger.Warn("dropping team without a job description",
				zap.String("candidate", name),
				zap.String("team", ts.TeamName),
			)
			continue
		}

		score := a.model.Composite(ts.Score, ts.Subscores)
		if !a.model.Includes(score) {
			continue
		}
		result.MatchingTeams = append(result.MatchingTeams, TeamMatch{TeamName: teamName, Score: score})
	}

	sort.SliceStable(result.MatchingTeams, func(i, j int) bool {
		return result.MatchingTeams[i].Score > result.MatchingTeams[j].Score
	})
	result.MatchingTeams = dedupeTeams(result.MatchingTeams)

	if best, ok := result.Best(); ok {
		score := best.Score
		result.HighestScore = &score
	}

	return result
}

func (a *Assembler) resolveTeam(name string, known map[string]string) (string, bool) {
	name = strings.TrimSpace(name)
	if len(known) == 0 {
		return name, name != ""
	}
	for _, key := range extract.TeamKeys(name) {
		if canonical, ok := known[key]; ok {
			return canonical, true
		}
	}
	return "", false
}

func knownTeams(teams []profiles.TeamRequirement) map[string]string {
	known := make(map[string]string, len(teams))
	for _, t := range teams {
		key := strings.ToLower(strings.TrimSpace(t.Name))
		if _, seen := known[key]; key != "" && !seen {
			known[key] = t.Name
		}
	}
	return known
}

// dedupeTeams keeps the first, highest scored, entry per team.
func dedupeTeams(teams []TeamMatch) []TeamMatch {
	seen := make(map[string]struct{}, len(teams))
	out := teams[:0]
	for _, t := range teams {
		if _, ok := seen[t.TeamName]; ok {
			continue
		}
		seen[t.TeamName] = struct{}{}
		out = append(out, t)
	}
	return out
}

func contact(reported, fallback string) string {
	if !profiles.IsMissing(reported) {
		return strings.TrimSpace(reported)
	}
	return profiles.ContactOrSentinel(fallback)
}
