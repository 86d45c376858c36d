// Package profiles holds the entities produced by the extraction stages.
package profiles

import "strings"

// NotAvailable is the sentinel written for contact fields nobody could provide.
const NotAvailable = "Not Available"

// Candidate is one person recovered from the profiles directory. Names are not unique.
type Candidate struct {
	Name            string   `mapstructure:"name" json:"name"`
	Email           string   `mapstructure:"email" json:"email"`
	Phone           string   `mapstructure:"phone" json:"phone"`
	LinkedIn        string   `mapstructure:"linkedin" json:"linkedin"`
	Skills          []string `mapstructure:"skills" json:"skills"`
	YearsExperience float64  `mapstructure:"years_experience" json:"years_experience"`
	Education       string   `mapstructure:"education" json:"education"`
	RoleHistory     []string `mapstructure:"role_history" json:"role_history"`
}

// TeamRequirement describes what a team expects. Name always comes from the job description
// file, never from the generated text.
type TeamRequirement struct {
	Name                 string   `mapstructure:"team_name" json:"team_name"`
	Source               string   `mapstructure:"source" json:"source,omitempty"`
	RequiredSkills       []string `mapstructure:"required_skills" json:"required_skills"`
	MinExperience        float64  `mapstructure:"min_experience" json:"min_experience"`
	EducationRequirement string   `mapstructure:"education_requirement" json:"education_requirement"`
	Responsibilities     []string `mapstructure:"responsibilities" json:"responsibilities"`
}

// Index looks candidates up by case-insensitive name. The first candidate wins on duplicates.
type Index map[string]Candidate

// NewIndex builds an Index from the candidates in declaration order.
func NewIndex(candidates []Candidate) Index {
	idx := make(Index, len(candidates))
	for _, c := range candidates {
		key := normalizeName(c.Name)
		if key == "" {
			continue
		}
		if _, ok := idx[key]; ok {
			continue
		}
		idx[key] = c
	}
	return idx
}

// Find returns the candidate with the given name.
func (idx Index) Find(name string) (Candidate, bool) {
	c, ok := idx[normalizeName(name)]
	return c, ok
}

// ContactOrSentinel returns value when it carries text, otherwise NotAvailable.
func ContactOrSentinel(value string) string {
	if IsMissing(value) {
		return NotAvailable
	}
	return strings.TrimSpace(value)
}

// IsMissing reports whether a contact value is empty or already the sentinel.
func IsMissing(value string) bool {
	v := strings.TrimSpace(value)
	return v == "" || strings.EqualFold(v, NotAvailable)
}

func normalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
