package extract

import (
	"path/filepath"
	"strings"

	"github.com/spigell/profilematch/internal/profiles"
)

const (
	// CandidatesRootKey is the key the profile extraction stage wraps its list in.
	CandidatesRootKey = "candidates"
	// TeamsRootKey is the key the requirement extraction stage wraps its list in.
	TeamsRootKey = "teams"
)

type candidateList struct {
	Candidates []profiles.Candidate `mapstructure:"candidates"`
}

type teamList struct {
	Teams []profiles.TeamRequirement `mapstructure:"teams"`
}

// Candidates decodes the profile extraction stage output. Entries without a name are dropped.
func Candidates(raw string) ([]profiles.Candidate, error) {
	var list candidateList
	if _, err := recoverInto(raw, CandidatesRootKey, &list); err != nil {
		return nil, err
	}

	out := make([]profiles.Candidate, 0, len(list.Candidates))
	for _, c := range list.Candidates {
		c.Name = strings.TrimSpace(c.Name)
		if c.Name == "" {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// Teams decodes the requirement extraction stage output and re-keys it to the job
// description files. The result always has one entry per name in teamNames, in that order.
// A decoded team is bound to a file by its source field first and by position second;
// teams that match no file and repeats of an already bound file are dropped. On a recovery failure the file-only list is
// returned together with the *apperrors.ExtractionError.
func Teams(raw string, teamNames []string) ([]profiles.TeamRequirement, error) {
	out := make([]profiles.TeamRequirement, len(teamNames))
	for i, name := range teamNames {
		out[i] = profiles.TeamRequirement{Name: name}
	}

	var list teamList
	if _, err := recoverInto(raw, TeamsRootKey, &list); err != nil {
		return out, err
	}

	byName := make(map[string]int, len(teamNames))
	for i, name := range teamNames {
		byName[strings.ToLower(strings.TrimSpace(name))] = i
	}

	bound := make([]bool, len(teamNames))
	var unbound []profiles.TeamRequirement

	for _, team := range list.Teams {
		idx, ok := lookupTeam(byName, team.Source)
		if !ok {
			idx, ok = lookupTeam(byName, team.Name)
		}
		if !ok {
			unbound = append(unbound, team)
			continue
		}
		if !bound[idx] {
			out[idx] = rekey(team, teamNames[idx])
			bound[idx] = true
		}
	}

	next := 0
	for _, team := range unbound {
		for next < len(teamNames) && bound[next] {
			next++
		}
		if next >= len(teamNames) {
			break
		}
		out[next] = rekey(team, teamNames[next])
		bound[next] = true
	}

	return out, nil
}

func rekey(team profiles.TeamRequirement, name string) profiles.TeamRequirement {
	team.Name = name
	return team
}

func lookupTeam(byName map[string]int, s string) (int, bool) {
	for _, key := range TeamKeys(s) {
		if idx, ok := byName[key]; ok {
			return idx, true
		}
	}
	return 0, false
}

// TeamKeys returns the lookup keys for a team name, file name or path the model echoed
// back: the lower-cased base name as given, then without a short extension. Team names
// are file base names, so "platform.v2.pdf" and "platform.v2" both find team "platform.v2".
func TeamKeys(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	base := strings.ToLower(filepath.Base(s))
	keys := []string{base}
	if ext := filepath.Ext(base); ext != "" && ext != base && len(ext) <= 5 {
		keys = append(keys, strings.TrimSuffix(base, ext))
	}
	return keys
}
