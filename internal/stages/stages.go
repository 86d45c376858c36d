// Package stages defines the four generation stages of a matching run.
package stages

import (
	"embed"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spigell/profilematch/internal/documents"
	"github.com/spigell/profilematch/internal/pipeline"
	"github.com/spigell/profilematch/internal/scoring"
)

const (
	Profiles     = "profiles"
	Requirements = "requirements"
	Matching     = "matching"
	Report       = "report"
)

//go:embed prompts/*.md
var prompts embed.FS

// Build returns the stages in execution order: profile extraction, requirement extraction,
// matching (context: 1, 2) and report generation (context: 1, 2, 3).
func Build(profileDocs, jdDocs []documents.Document, model *scoring.Model, topN int) ([]pipeline.Stage, error) {
	profilesPrompt, err := render("profiles.md", map[string]string{
		"DOCUMENTS": formatDocuments(profileDocs, false),
	})
	if err != nil {
		return nil, err
	}

	requirementsPrompt, err := render("requirements.md", map[string]string{
		"TEAM_NAMES": formatTeamNames(jdDocs),
		"DOCUMENTS":  formatDocuments(jdDocs, true),
	})
	if err != nil {
		return nil, err
	}

	w := model.Weights()
	matchingPrompt, err := render("matching.md", map[string]string{
		"WEIGHT_TECHNICAL_SKILLS": strconv.Itoa(w.TechnicalSkills),
		"WEIGHT_EXPERIENCE":       strconv.Itoa(w.Experience),
		"WEIGHT_EDUCATION":        strconv.Itoa(w.Education),
		"WEIGHT_OVERALL_FIT":      strconv.Itoa(w.OverallFit),
		"TOP_N":                   strconv.Itoa(topN),
	})
	if err != nil {
		return nil, err
	}

	reportPrompt, err := render("report.md", map[string]string{
		"THRESHOLD": strconv.Itoa(model.Threshold()),
	})
	if err != nil {
		return nil, err
	}

	return []pipeline.Stage{
		{ID: Profiles, Instruction: profilesPrompt},
		{ID: Requirements, Instruction: requirementsPrompt},
		{ID: Matching, Instruction: matchingPrompt, DependsOn: []string{Profiles, Requirements}},
		{ID: Report, Instruction: reportPrompt, DependsOn: []string{Profiles, Requirements, Matching}},
	}, nil
}

func render(name string, values map[string]string) (string, error) {
	data, err := prompts.ReadFile("prompts/" + name)
	if err != nil {
		return "", fmt.Errorf("reading prompt %s: %w", name, err)
	}

	out := string(data)
	for key, value := range values {
		out = strings.ReplaceAll(out, "{{"+key+"}}", value)
	}
	return strings.TrimSpace(out), nil
}

func formatDocuments(docs []documents.Document, withTeam bool) string {
	var sb strings.Builder
	for i, d := range docs {
		if i > 0 {
			sb.WriteString("\n")
		}
		if withTeam {
			fmt.Fprintf(&sb, "=== File: %s (team: %s) ===\n", filepath.Base(d.Path), d.Name)
		} else {
			fmt.Fprintf(&sb, "=== File: %s ===\n", filepath.Base(d.Path))
		}
		sb.WriteString(d.Text)
		sb.WriteString("\n")
	}
	return sb.String()
}

func formatTeamNames(docs []documents.Document) string {
	var sb strings.Builder
	for _, d := range docs {
		fmt.Fprintf(&sb, "- %s\n", d.Name)
	}
	return sb.String()
}
