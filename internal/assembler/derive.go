// internal/assembler/derive.go
package assembler

import (
	"strings"

	"github.com/xkilldash9x/prospector/api/schemas"
)

// headlineConnectors split "Title at Company" style headlines.
var headlineConnectors = []string{" at ", " @ "}

// deriveCurrentCompany picks the current position. Preference order: the
// first experience entry when its dates read as ongoing, then a headline
// split on a connector word, then the first experience entry regardless.
// The ongoing heuristic is known to be rough; it is kept because a stricter
// rule mislabels more profiles than it fixes.
func deriveCurrentCompany(experience []schemas.ExperienceEntry, headline string) *schemas.CompanyRef {
	if len(experience) > 0 && ongoing(experience[0].Dates) {
		return refFromEntry(experience[0])
	}
	if ref := refFromHeadline(headline); ref != nil {
		return ref
	}
	if len(experience) > 0 {
		return refFromEntry(experience[0])
	}
	return nil
}

// ongoing reports whether a dates string describes a position still held:
// a present-tense marker, or a single date with no range separator.
func ongoing(dates string) bool {
	dates = strings.TrimSpace(dates)
	if dates == "" {
		return false
	}
	lower := strings.ToLower(dates)
	if strings.Contains(lower, "present") || strings.Contains(lower, "now") {
		return true
	}
	return !strings.ContainsAny(dates, "-–—")
}

func refFromEntry(e schemas.ExperienceEntry) *schemas.CompanyRef {
	if e.Company == "" && e.Title == "" {
		return nil
	}
	return &schemas.CompanyRef{Name: e.Company, Title: e.Title}
}

func refFromHeadline(headline string) *schemas.CompanyRef {
	headline = strings.TrimSpace(headline)
	if headline == "" {
		return nil
	}
	for _, conn := range headlineConnectors {
		title, name, ok := strings.Cut(headline, conn)
		if !ok {
			continue
		}
		title = strings.TrimSpace(title)
		name = strings.TrimSpace(name)
		if title == "" || name == "" {
			continue
		}
		return &schemas.CompanyRef{Name: name, Title: title}
	}
	return nil
}
