// internal/extract/fields.go
package extract

import (
	"context"
	"errors"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/xkilldash9x/prospector/api/schemas"
)

// maxSectionItems bounds per-section row enumeration so a pathological DOM
// cannot spin the interpreter.
const maxSectionItems = 50

// maxShowMoreClicks bounds pagination on the skills sub-page.
const maxShowMoreClicks = 5

// Name extracts the display name and splits it into first and last on the
// first whitespace run. Single-token names land entirely in first.
func (e *Engine) Name(ctx context.Context) (full, first, last string, err error) {
	full, err = e.firstText(ctx, "name", nameChain)
	if errors.Is(err, ErrFieldNotFound) {
		// Heading sweep: some layouts bury the name in a non-first h1.
		texts, terr := e.page.Texts(ctx, nameFallback)
		if terr == nil {
			for _, t := range texts {
				if usable(t) {
					full, err = strings.TrimSpace(t), nil
					break
				}
			}
		}
	}
	if err != nil {
		return "", "", "", err
	}
	full = strings.Join(strings.Fields(full), " ")
	first = full
	if i := strings.IndexByte(full, ' '); i > 0 {
		first = full[:i]
		last = full[i+1:]
	}
	return full, first, last, nil
}

// Headline extracts the short tagline under the name.
func (e *Engine) Headline(ctx context.Context) (string, error) {
	return e.firstText(ctx, "headline", headlineChain)
}

// Location extracts the geographic line from the top card.
func (e *Engine) Location(ctx context.Context) (string, error) {
	return e.firstText(ctx, "location", locationChain)
}

// About extracts the free-text summary. It anchors on the About section and
// searches its known body containers; when no anchor matches it falls back to
// the flat legacy selectors.
func (e *Engine) About(ctx context.Context) (string, error) {
	if section, ok := e.firstSection(ctx, "about", aboutSections); ok {
		for _, rel := range aboutBodies {
			text, err := e.page.Text(ctx, scoped(section, rel))
			if err != nil || !usable(text) {
				continue
			}
			return strings.TrimSpace(text), nil
		}
	}
	return e.firstText(ctx, "about", aboutFlat)
}

// Experience extracts up to schemas.MaxExperienceEntries work entries from
// the experience section. Entries missing both a title and a company are
// discarded; a missing dates slot is kept as an empty field.
func (e *Engine) Experience(ctx context.Context) ([]schemas.ExperienceEntry, error) {
	section, ok := e.firstSection(ctx, "experience", experienceSections)
	if !ok {
		return nil, missed("experience")
	}
	e.expand(ctx)

	n, err := e.page.Count(ctx, scoped(section, sectionItems))
	if err != nil || n == 0 {
		return nil, missed("experience")
	}
	if n > maxSectionItems {
		n = maxSectionItems
	}

	var out []schemas.ExperienceEntry
	for i := 1; i <= n && len(out) < schemas.MaxExperienceEntries; i++ {
		row := item(sectionRoot(section)+sectionItems, i)
		entry := schemas.ExperienceEntry{
			Title:   e.relText(ctx, row, expTitleRel),
			Company: e.relText(ctx, row, expCompanyRel),
		}
		if entry.Title == "" && entry.Company == "" {
			continue
		}
		entry.Company = trimEcho(entry.Company, entry.Title)
		entry.Dates, entry.Duration = splitDates(e.relText(ctx, row, expDatesRel))
		out = append(out, entry)
	}
	if len(out) == 0 {
		return nil, missed("experience")
	}
	e.log.Debug("experience extracted", zap.Int("entries", len(out)))
	return out, nil
}

// Education extracts schooling entries. Rows without a school are dropped.
func (e *Engine) Education(ctx context.Context) ([]schemas.EducationEntry, error) {
	section, ok := e.firstSection(ctx, "education", educationSections)
	if !ok {
		return nil, missed("education")
	}
	e.expand(ctx)

	n, err := e.page.Count(ctx, scoped(section, sectionItems))
	if err != nil || n == 0 {
		return nil, missed("education")
	}
	if n > maxSectionItems {
		n = maxSectionItems
	}

	var out []schemas.EducationEntry
	for i := 1; i <= n; i++ {
		row := item(sectionRoot(section)+sectionItems, i)
		entry := schemas.EducationEntry{
			School: e.relText(ctx, row, eduSchoolRel),
			Degree: e.relText(ctx, row, eduDegreeRel),
		}
		if entry.School == "" {
			continue
		}
		entry.Dates, _ = splitDates(e.relText(ctx, row, eduDatesRel))
		out = append(out, entry)
	}
	if len(out) == 0 {
		return nil, missed("education")
	}
	e.log.Debug("education extracted", zap.Int("entries", len(out)))
	return out, nil
}

// Skills extracts the skill list. It reads the on-page skills section first
// and only navigates to the dedicated sub-page when the section is missing or
// empty, since the detour costs a full page load. Output is deduplicated and
// sorted, so repeated extraction of the same page is idempotent.
func (e *Engine) Skills(ctx context.Context, profileURL string) ([]string, error) {
	if section, ok := e.firstSection(ctx, "skills", skillsSections); ok {
		for _, rel := range skillItemsRel {
			texts, err := e.page.Texts(ctx, scoped(section, rel))
			if err != nil {
				continue
			}
			if skills := cleanSkills(texts); len(skills) > 0 {
				return skills, nil
			}
		}
	}

	url := strings.TrimRight(profileURL, "/") + "/details/skills/"
	if err := e.page.Navigate(ctx, url); err != nil {
		return nil, missed("skills")
	}
	for i := 0; i < maxShowMoreClicks; i++ {
		clicked := false
		for _, btn := range showMoreButtons {
			if err := e.page.Click(ctx, XPath(btn)); err == nil {
				clicked = true
			}
		}
		if !clicked {
			break
		}
	}
	for _, loc := range skillsPageItems {
		texts, err := e.page.Texts(ctx, loc)
		if err != nil {
			continue
		}
		if skills := cleanSkills(texts); len(skills) > 0 {
			e.log.Debug("skills extracted from sub-page", zap.Int("count", len(skills)))
			return skills, nil
		}
	}
	return nil, missed("skills")
}

// missed wraps a field name around ErrFieldNotFound.
func missed(field string) error {
	return &fieldError{field: field}
}

type fieldError struct{ field string }

func (f *fieldError) Error() string { return f.field + ": field not found by any strategy" }
func (f *fieldError) Unwrap() error { return ErrFieldNotFound }

// trimEcho strips a leading repetition of title from company. Some layouts
// render "Title · Company" into the company slot.
func trimEcho(company, title string) string {
	if title == "" || company == "" {
		return company
	}
	if rest, ok := strings.CutPrefix(company, title); ok {
		rest = strings.TrimLeft(rest, " ·,-")
		if rest != "" {
			return rest
		}
	}
	return company
}

// splitDates separates "Jan 2020 - Present · 4 yrs" into the range and the
// trailing duration. Input without the separator is all range.
func splitDates(raw string) (dates, duration string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ""
	}
	if head, tail, ok := strings.Cut(raw, "·"); ok {
		return strings.TrimSpace(head), strings.TrimSpace(tail)
	}
	return raw, ""
}

// cleanSkills drops section chrome and duplicates, returning a sorted set.
// Generic tokens like "Skills" leak in from headers on some layouts.
func cleanSkills(texts []string) []string {
	seen := make(map[string]struct{}, len(texts))
	var out []string
	for _, t := range texts {
		t = strings.TrimSpace(t)
		if !usable(t) {
			continue
		}
		lower := strings.ToLower(t)
		if lower == "skill" || lower == "skills" || strings.Contains(lower, "skill level") {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
