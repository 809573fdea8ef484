// internal/extract/engine.go
package extract

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ErrFieldNotFound reports that every locator in a field's chain failed to
// produce usable text. Callers treat it as a soft miss for optional fields.
var ErrFieldNotFound = errors.New("extract: field not found by any strategy")

// Engine runs locator chains against a Page. It holds no per-profile state;
// one engine can serve many extractions over the same session.
type Engine struct {
	page Page
	log  *zap.Logger
}

// NewEngine binds the interpreter to a page.
func NewEngine(page Page, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{page: page, log: log.Named("extract")}
}

// firstText walks the chain in order and returns the first usable text hit.
// ErrNotFound from the page selects the next locator; any other error aborts
// the whole chain, since a dead page makes further attempts meaningless.
func (e *Engine) firstText(ctx context.Context, field string, chain Chain) (string, error) {
	for _, loc := range chain {
		text, err := e.page.Text(ctx, loc)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("extract %s via %s: %w", field, loc, err)
		}
		if !usable(text) {
			continue
		}
		e.log.Debug("field extracted",
			zap.String("field", field),
			zap.String("strategy", loc.String()))
		return text, nil
	}
	e.log.Debug("field missed all strategies",
		zap.String("field", field),
		zap.Int("strategies", len(chain)))
	return "", fmt.Errorf("%s: %w", field, ErrFieldNotFound)
}

// firstSection returns the first section pattern that matches at least one
// element. Sections are anchors, not values, so presence is the test.
func (e *Engine) firstSection(ctx context.Context, field string, patterns []string) (string, bool) {
	for _, p := range patterns {
		n, err := e.page.Count(ctx, XPath(p))
		if err != nil && !errors.Is(err, ErrNotFound) {
			e.log.Debug("section probe failed",
				zap.String("field", field),
				zap.String("pattern", p),
				zap.Error(err))
			continue
		}
		if n > 0 {
			return p, true
		}
	}
	return "", false
}

// relText tries each relative pattern rebased under base and returns the
// first usable hit, or "" when the slot is genuinely empty.
func (e *Engine) relText(ctx context.Context, base string, relatives []string) string {
	for _, rel := range relatives {
		text, err := e.page.Text(ctx, XPath(base+rel))
		if err != nil || !usable(text) {
			continue
		}
		return text
	}
	return ""
}

// expand clicks every known expansion control once, best effort. Collapsed
// sections hide entries behind "show more" controls; missing buttons and
// click failures are non-fatal because the visible subset is still valid.
func (e *Engine) expand(ctx context.Context) {
	for _, btn := range showMoreButtons {
		if err := e.page.Click(ctx, XPath(btn)); err != nil {
			if !errors.Is(err, ErrNotFound) {
				e.log.Debug("expand click failed", zap.String("button", btn), zap.Error(err))
			}
			continue
		}
		e.log.Debug("expanded section", zap.String("button", btn))
	}
}
