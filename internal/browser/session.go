// internal/browser/session.go
package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/prospector/internal/browser/stealth"
	"github.com/xkilldash9x/prospector/internal/config"
	"github.com/xkilldash9x/prospector/internal/extract"
	"github.com/xkilldash9x/prospector/internal/humanoid"
)

// ErrNavigationTimeout reports that a page load did not settle within the
// configured navigation budget.
var ErrNavigationTimeout = errors.New("browser: navigation timed out")

const actionTimeout = 10 * time.Second

// Session is one isolated tab. It exposes the query surface the extraction
// engine needs and the input surface the behavior simulator needs.
type Session struct {
	id     string
	ctx    context.Context
	cancel context.CancelFunc
	cfg    *config.Config
	log    *zap.Logger

	mu        sync.Mutex
	pointerX  float64
	pointerY  float64
	onClose   func()
	closeOnce sync.Once
}

var (
	_ extract.Page      = (*Session)(nil)
	_ humanoid.Executor = (*Session)(nil)
)

func newSession(allocCtx context.Context, cfg *config.Config, persona stealth.Persona, logger *zap.Logger) (*Session, error) {
	id := uuid.New().String()
	log := logger.Named("session").With(zap.String("session_id", id))

	ctx, cancel := chromedp.NewContext(allocCtx)

	s := &Session{
		id:       id,
		ctx:      ctx,
		cancel:   cancel,
		cfg:      cfg,
		log:      log,
		pointerX: float64(cfg.Browser.ViewportWidth) / 2,
		pointerY: float64(cfg.Browser.ViewportHeight) / 2,
	}

	// Running the stealth tasks is also what attaches the target, so launch
	// failures surface here.
	if err := chromedp.Run(ctx, stealth.Apply(persona, log)); err != nil {
		cancel()
		return nil, fmt.Errorf("attach target: %w", err)
	}
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// RunActions executes chromedp actions against this session's target, bounded
// by the operational context.
func (s *Session) RunActions(ctx context.Context, actions ...chromedp.Action) error {
	combined, cancel := CombineContext(s.ctx, ctx)
	defer cancel()
	return chromedp.Run(combined, actions...)
}

// Close tears the tab down. Safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.log.Info("session closing")
		s.cancel()
		if s.onClose != nil {
			s.onClose()
		}
	})
}

// collectJS resolves a locator in-page and returns the trimmed text of every
// match. One script serves both selector kinds so the Go side stays a thin
// shim over the locator tables.
const collectJS = `(function(kind, pattern) {
	let nodes = [];
	if (kind === 'css') {
		nodes = Array.from(document.querySelectorAll(pattern));
	} else {
		const it = document.evaluate(pattern, document, null, XPathResult.ORDERED_NODE_SNAPSHOT_TYPE, null);
		for (let i = 0; i < it.snapshotLength; i++) nodes.push(it.snapshotItem(i));
	}
	return nodes.map(n => (n.innerText || n.textContent || '').trim());
})(%q, %q)`

func (s *Session) collect(ctx context.Context, loc extract.Locator) ([]string, error) {
	opCtx, cancel := context.WithTimeout(ctx, actionTimeout)
	defer cancel()

	var texts []string
	expr := fmt.Sprintf(collectJS, string(loc.Kind), loc.Pattern)
	if err := s.RunActions(opCtx, chromedp.Evaluate(expr, &texts)); err != nil {
		return nil, fmt.Errorf("evaluate %s: %w", loc, err)
	}
	return texts, nil
}

// Text implements extract.Page.
func (s *Session) Text(ctx context.Context, loc extract.Locator) (string, error) {
	texts, err := s.collect(ctx, loc)
	if err != nil {
		return "", err
	}
	if len(texts) == 0 {
		return "", extract.ErrNotFound
	}
	return texts[0], nil
}

// Texts implements extract.Page.
func (s *Session) Texts(ctx context.Context, loc extract.Locator) ([]string, error) {
	texts, err := s.collect(ctx, loc)
	if err != nil {
		return nil, err
	}
	if len(texts) == 0 {
		return nil, extract.ErrNotFound
	}
	return texts, nil
}

// Count implements extract.Page.
func (s *Session) Count(ctx context.Context, loc extract.Locator) (int, error) {
	texts, err := s.collect(ctx, loc)
	if err != nil {
		return 0, err
	}
	return len(texts), nil
}

// Click clicks the first element matched by loc. Existence is probed first so
// a missing element reports extract.ErrNotFound instead of hanging until the
// wait times out.
func (s *Session) Click(ctx context.Context, loc extract.Locator) error {
	n, err := s.Count(ctx, loc)
	if err != nil {
		return err
	}
	if n == 0 {
		return extract.ErrNotFound
	}

	opCtx, cancel := context.WithTimeout(ctx, actionTimeout)
	defer cancel()
	if err := s.RunActions(opCtx, chromedp.Click(loc.Pattern, queryOption(loc))); err != nil {
		return fmt.Errorf("click %s: %w", loc, err)
	}
	return nil
}

// Navigate loads url and waits for the document plus a settle delay, since
// profile sections hydrate after the ready event.
func (s *Session) Navigate(ctx context.Context, url string) error {
	opCtx, cancel := context.WithTimeout(ctx, s.cfg.Network.NavigationTimeout)
	defer cancel()

	s.log.Debug("navigating", zap.String("url", url))
	err := s.RunActions(opCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(s.cfg.Network.PostLoadWait),
	)
	if err != nil {
		if opCtx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("%w: %s", ErrNavigationTimeout, url)
		}
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

// Location implements extract.Page.
func (s *Session) Location(ctx context.Context) (string, error) {
	opCtx, cancel := context.WithTimeout(ctx, actionTimeout)
	defer cancel()

	var url string
	if err := s.RunActions(opCtx, chromedp.Location(&url)); err != nil {
		return "", fmt.Errorf("read location: %w", err)
	}
	return url, nil
}

// Fill focuses the element, clears it and types value.
func (s *Session) Fill(ctx context.Context, loc extract.Locator, value string) error {
	opCtx, cancel := context.WithTimeout(ctx, actionTimeout)
	defer cancel()

	opt := queryOption(loc)
	err := s.RunActions(opCtx,
		chromedp.WaitVisible(loc.Pattern, opt),
		chromedp.Clear(loc.Pattern, opt),
		chromedp.SendKeys(loc.Pattern, value, opt),
	)
	if err != nil {
		return fmt.Errorf("fill %s: %w", loc, err)
	}
	return nil
}

// WaitVisible blocks until loc is visible or the timeout elapses, reporting
// extract.ErrNotFound on timeout.
func (s *Session) WaitVisible(ctx context.Context, loc extract.Locator, timeout time.Duration) error {
	opCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := s.RunActions(opCtx, chromedp.WaitVisible(loc.Pattern, queryOption(loc))); err != nil {
		if opCtx.Err() == context.DeadlineExceeded {
			return extract.ErrNotFound
		}
		return fmt.Errorf("wait visible %s: %w", loc, err)
	}
	return nil
}

// CaptureHTML returns the full serialized document.
func (s *Session) CaptureHTML(ctx context.Context) (string, error) {
	opCtx, cancel := context.WithTimeout(ctx, actionTimeout)
	defer cancel()

	var html string
	if err := s.RunActions(opCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("capture html: %w", err)
	}
	return html, nil
}

// Screenshot captures the viewport into the debug directory and returns the
// written path.
func (s *Session) Screenshot(ctx context.Context, label string) (string, error) {
	opCtx, cancel := context.WithTimeout(ctx, actionTimeout)
	defer cancel()

	var buf []byte
	if err := s.RunActions(opCtx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return "", fmt.Errorf("capture screenshot: %w", err)
	}

	if err := os.MkdirAll(s.cfg.Browser.DebugDir, 0o755); err != nil {
		return "", fmt.Errorf("create debug dir: %w", err)
	}
	name := fmt.Sprintf("%s_%s_%d.png", s.id[:8], sanitizeLabel(label), time.Now().Unix())
	path := filepath.Join(s.cfg.Browser.DebugDir, name)
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return "", fmt.Errorf("write screenshot: %w", err)
	}
	s.log.Debug("screenshot written", zap.String("path", path))
	return path, nil
}

// Sleep implements humanoid.Executor.
func (s *Session) Sleep(ctx context.Context, d time.Duration) error {
	return s.RunActions(ctx, chromedp.Sleep(d))
}

// ScrollBy implements humanoid.Executor with a wheel event at the current
// pointer position.
func (s *Session) ScrollBy(ctx context.Context, dx, dy float64) error {
	s.mu.Lock()
	x, y := s.pointerX, s.pointerY
	s.mu.Unlock()

	opCtx, cancel := context.WithTimeout(ctx, actionTimeout)
	defer cancel()
	p := input.DispatchMouseEvent(input.MouseWheel, x, y).WithDeltaX(dx).WithDeltaY(dy)
	return s.RunActions(opCtx, p)
}

// MovePointer implements humanoid.Executor.
func (s *Session) MovePointer(ctx context.Context, x, y float64) error {
	opCtx, cancel := context.WithTimeout(ctx, actionTimeout)
	defer cancel()
	if err := s.RunActions(opCtx, input.DispatchMouseEvent(input.MouseMoved, x, y)); err != nil {
		return err
	}
	s.mu.Lock()
	s.pointerX, s.pointerY = x, y
	s.mu.Unlock()
	return nil
}

func queryOption(loc extract.Locator) chromedp.QueryOption {
	if loc.Kind == extract.KindXPath {
		return chromedp.BySearch
	}
	return chromedp.ByQuery
}

func sanitizeLabel(label string) string {
	label = strings.ToLower(strings.TrimSpace(label))
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, label)
}
