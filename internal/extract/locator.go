// internal/extract/locator.go
package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is the typed absent-value for a single locator attempt. A
// strategy chain branches to its next entry on this error; it never
// propagates past the chain.
var ErrNotFound = errors.New("extract: no element matched locator")

// Kind discriminates how a locator pattern is interpreted.
type Kind string

const (
	// KindCSS resolves the pattern with the CSS selector engine.
	KindCSS Kind = "css"
	// KindXPath resolves the pattern with the XPath engine.
	KindXPath Kind = "xpath"
)

// Locator describes one way of finding a DOM element.
type Locator struct {
	Kind    Kind
	Pattern string
}

func (l Locator) String() string {
	return fmt.Sprintf("%s:%s", l.Kind, l.Pattern)
}

// CSS builds a CSS locator.
func CSS(pattern string) Locator { return Locator{Kind: KindCSS, Pattern: pattern} }

// XPath builds a structural locator.
func XPath(pattern string) Locator { return Locator{Kind: KindXPath, Pattern: pattern} }

// Chain is a priority-ordered list of locators tried for a single field.
// The first locator producing usable text wins; no backtracking afterwards.
type Chain []Locator

// Page is the minimal surface the extraction engine needs from a live,
// authenticated browser page. The browser session implements it over CDP;
// tests implement it over fixtures.
type Page interface {
	// Text returns the trimmed text content of the first element matched by
	// loc. ErrNotFound when nothing matches.
	Text(ctx context.Context, loc Locator) (string, error)
	// Texts returns the trimmed text content of every element matched by loc,
	// in DOM order. ErrNotFound when nothing matches.
	Texts(ctx context.Context, loc Locator) ([]string, error)
	// Count reports how many elements match loc.
	Count(ctx context.Context, loc Locator) (int, error)
	// Click clicks the first element matched by loc. ErrNotFound when absent.
	Click(ctx context.Context, loc Locator) error
	// Navigate loads url and waits for the page to settle.
	Navigate(ctx context.Context, url string) error
	// Location returns the page's current URL.
	Location(ctx context.Context) (string, error)
}

// sectionRoot pins the first element matched by a section pattern so row
// addressing cannot drift into a sibling section.
func sectionRoot(section string) string {
	return "(" + section + ")[1]"
}

// scoped rebases a relative XPath under the first element matched by the
// section pattern, so per-item locators stay pure data.
func scoped(section string, relative string) Locator {
	return XPath(sectionRoot(section) + relative)
}

// item addresses the i-th (1-based) element matched by the items pattern.
func item(items string, i int) string {
	return fmt.Sprintf("(%s)[%d]", items, i)
}

// usable reports whether text is worth accepting: non-empty after trimming
// and not one of the placeholder glyphs the site renders into empty slots.
func usable(text string) bool {
	t := strings.TrimSpace(text)
	switch t {
	case "", "-", "--", "…":
		return false
	}
	return true
}
