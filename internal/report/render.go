package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spigell/profilematch/internal/scoring"
)

// DefaultTopN is how many teams per candidate the text renderings show.
const DefaultTopN = 3

const rule = "======================================================================"

// RenderText writes the human-readable report. At most topN teams are shown per candidate.
func RenderText(w io.Writer, r *Report, topN int) error {
	if topN <= 0 {
		topN = DefaultTopN
	}

	stats := ComputeStats(r)
	b := &strings.Builder{}

	fmt.Fprintln(b, rule)
	fmt.Fprintln(b, "PROFILE MATCHING REPORT")
	fmt.Fprintln(b, rule)
	fmt.Fprintf(b, "Report date:                %s\n", r.Summary.ReportDate)
	fmt.Fprintf(b, "Total candidates processed: %d\n", r.Summary.TotalCandidates)
	fmt.Fprintf(b, "Total teams available:      %d\n", r.Summary.TotalTeams)
	fmt.Fprintf(b, "Candidates with matches:    %d\n", r.Summary.CandidatesWithMatches)
	fmt.Fprintf(b, "Candidates without matches: %d\n", r.Summary.CandidatesWithoutMatches)
	fmt.Fprintf(b, "Average best match score:   %.1f\n", stats.AverageBestScore)
	fmt.Fprintf(b, "High-confidence matches:    %d\n", stats.HighConfidence)

	for i, m := range r.Matches {
		fmt.Fprintln(b)
		fmt.Fprintln(b, strings.Repeat("-", len(rule)))
		fmt.Fprintf(b, "%d. %s\n", i+1, m.CandidateName)
		fmt.Fprintf(b, "   Email:    %s\n", m.Email)
		fmt.Fprintf(b, "   Phone:    %s\n", m.Phone)
		fmt.Fprintf(b, "   LinkedIn: %s\n", m.LinkedIn)

		best, ok := m.Best()
		if !ok {
			fmt.Fprintln(b, "   Best match: none above threshold")
			continue
		}
		fmt.Fprintf(b, "   Best match: %s (%d, %s)\n", best.TeamName, best.Score, scoring.Classify(best.Score))

		others := alternatives(m, topN)
		if len(others) == 0 {
			continue
		}
		fmt.Fprintln(b, "   Alternatives:")
		for _, t := range others {
			fmt.Fprintf(b, "     - %s (%d, %s)\n", t.TeamName, t.Score, scoring.Classify(t.Score))
		}
	}

	if r.RawText != "" {
		fmt.Fprintln(b)
		fmt.Fprintln(b, rule)
		fmt.Fprintln(b, "UNSTRUCTURED OUTPUT")
		fmt.Fprintln(b, rule)
		fmt.Fprintln(b, r.RawText)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// PrintTable writes one row per candidate: best team, score, band and alternatives.
func PrintTable(w io.Writer, r *Report, topN int) error {
	if topN <= 0 {
		topN = DefaultTopN
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CANDIDATE\tBEST TEAM\tSCORE\tBAND\tALTERNATIVES")

	for _, m := range r.Matches {
		best, ok := m.Best()
		if !ok {
			fmt.Fprintf(tw, "%s\t-\t-\t-\t-\n", m.CandidateName)
			continue
		}

		alts := make([]string, 0, topN)
		for _, t := range alternatives(m, topN) {
			alts = append(alts, fmt.Sprintf("%s (%d)", t.TeamName, t.Score))
		}
		altText := "-"
		if len(alts) > 0 {
			altText = strings.Join(alts, ", ")
		}

		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", m.CandidateName, best.TeamName, best.Score, scoring.Classify(best.Score), altText)
	}

	return tw.Flush()
}

// alternatives returns the teams after the best one, limited so that at most topN teams
// are shown in total.
func alternatives(m CandidateResult, topN int) []TeamMatch {
	if len(m.MatchingTeams) <= 1 {
		return nil
	}
	end := len(m.MatchingTeams)
	if end > topN {
		end = topN
	}
	return m.MatchingTeams[1:end]
}
