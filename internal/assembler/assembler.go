// internal/assembler/assembler.go

// Package assembler orchestrates one scrape pass: open a session, log in,
// navigate, run the field extractors in order and merge whatever subset
// succeeded into a ProfileRecord. The pass is a linear state machine with no
// back-edges; the only branch is the diagnostic capture on the fatal path.
package assembler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/prospector/api/schemas"
	"github.com/xkilldash9x/prospector/internal/auth"
	"github.com/xkilldash9x/prospector/internal/config"
	"github.com/xkilldash9x/prospector/internal/extract"
	"github.com/xkilldash9x/prospector/internal/humanoid"
)

// State names one point in the scrape pass.
type State int

const (
	StateIdle State = iota
	StateSessionReady
	StateAuthenticated
	StateNavigated
	StateExtracting
	StateAssembled
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSessionReady:
		return "session_ready"
	case StateAuthenticated:
		return "authenticated"
	case StateNavigated:
		return "navigated"
	case StateExtracting:
		return "extracting"
	case StateAssembled:
		return "assembled"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Page is the full session surface one pass consumes. The browser session
// implements it; tests drive the pass with fakes.
type Page interface {
	extract.Page
	humanoid.Executor
	Fill(ctx context.Context, loc extract.Locator, value string) error
	WaitVisible(ctx context.Context, loc extract.Locator, timeout time.Duration) error
	CaptureHTML(ctx context.Context) (string, error)
	Screenshot(ctx context.Context, label string) (string, error)
	ID() string
	Close()
}

// SessionFactory yields a fresh ready-to-navigate page.
type SessionFactory func(ctx context.Context) (Page, error)

// Assembler builds ProfileRecords. One Assembler serves many sequential
// passes; each pass gets its own session.
type Assembler struct {
	cfg      *config.Config
	sessions SessionFactory
	authn    *auth.Authenticator
	sim      *humanoid.Simulator
	log      *zap.Logger

	// onTransition, when set, observes every state change of a pass.
	onTransition func(State)
}

// New wires an assembler. sim may be nil to disable behavior shaping.
func New(cfg *config.Config, sessions SessionFactory, authn *auth.Authenticator, sim *humanoid.Simulator, log *zap.Logger) *Assembler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Assembler{
		cfg:      cfg,
		sessions: sessions,
		authn:    authn,
		sim:      sim,
		log:      log.Named("assembler"),
	}
}

// profileLandmark is the top-card heading every profile layout renders.
var profileLandmark = extract.XPath("//main//h1")

// resolveProfileURL absolutizes bare profile ids and site-relative paths
// against the configured base URL. Absolute URLs pass through untouched.
func (a *Assembler) resolveProfileURL(raw string) string {
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}
	base := strings.TrimRight(a.cfg.Linkedin.BaseURL, "/")
	if strings.HasPrefix(raw, "/") {
		return base + raw
	}
	return base + "/in/" + strings.Trim(raw, "/") + "/"
}

type pass struct {
	a     *Assembler
	page  Page
	state State
	log   *zap.Logger
}

func (p *pass) transition(to State) {
	p.log.Debug("state transition",
		zap.Stringer("from", p.state),
		zap.Stringer("to", to))
	p.state = to
	if p.a.onTransition != nil {
		p.a.onTransition(to)
	}
}

// close is idempotent and reachable from any state; the page's own Close
// carries the once semantics.
func (p *pass) close() {
	if p.page != nil {
		p.page.Close()
	}
	if p.state != StateClosed {
		p.transition(StateClosed)
	}
}

// Scrape runs one full pass. Callers get either a record (possibly with
// empty fields) or an error, never both. Credentials fall back to the
// configured account when zero.
func (a *Assembler) Scrape(ctx context.Context, profileURL string, creds schemas.Credentials) (*schemas.ProfileRecord, error) {
	profileURL = a.resolveProfileURL(profileURL)
	profileID := schemas.ProfileIDFromURL(profileURL)
	if profileID == "" {
		return nil, fmt.Errorf("not a profile url: %q", profileURL)
	}
	if creds.IsZero() {
		creds = schemas.Credentials{Email: a.cfg.Linkedin.Email, Password: a.cfg.Linkedin.Password}
	}

	p := &pass{a: a, state: StateIdle, log: a.log.With(zap.String("profile_id", profileID))}
	defer p.close()

	page, err := a.sessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	p.page = page
	p.log = p.log.With(zap.String("session_id", page.ID()))
	p.transition(StateSessionReady)

	if _, err := a.authn.Login(ctx, page, page, creds); err != nil {
		p.diagnose(ctx, "login_failed")
		return nil, err
	}
	p.transition(StateAuthenticated)
	p.milestone(ctx, "logged_in")

	if err := page.Navigate(ctx, profileURL); err != nil {
		p.diagnose(ctx, "navigation_failed")
		return nil, err
	}
	// The landmark wait is advisory; a late top card just means the
	// extractors see whatever has rendered so far.
	if err := page.WaitVisible(ctx, profileLandmark, a.cfg.Network.LandmarkWait); err != nil {
		p.log.Debug("profile landmark not visible", zap.Error(err))
	}
	p.transition(StateNavigated)
	p.milestone(ctx, "profile_loaded")

	if a.sim != nil {
		if err := a.sim.Perform(ctx, page); err != nil {
			// Perform only errors on context cancellation.
			return nil, err
		}
	}

	p.transition(StateExtracting)
	record := a.extractAll(ctx, page, profileID, profileURL, p.log)
	p.transition(StateAssembled)
	return record, nil
}

// extractAll runs every field extractor in fixed order. A failed field stays
// empty and the pass continues; partial records are valid results.
func (a *Assembler) extractAll(ctx context.Context, page Page, profileID, profileURL string, log *zap.Logger) *schemas.ProfileRecord {
	eng := extract.NewEngine(page, log)
	record := &schemas.ProfileRecord{
		ProfileID:  profileID,
		ProfileURL: profileURL,
	}

	var err error
	if record.Name, record.FirstName, record.LastName, err = eng.Name(ctx); err != nil {
		log.Debug("name not extracted", zap.Error(err))
	}
	if record.Headline, err = eng.Headline(ctx); err != nil {
		log.Debug("headline not extracted", zap.Error(err))
	}
	if record.Location, err = eng.Location(ctx); err != nil {
		log.Debug("location not extracted", zap.Error(err))
	}
	if record.About, err = eng.About(ctx); err != nil {
		log.Debug("about not extracted", zap.Error(err))
	}
	if record.Experience, err = eng.Experience(ctx); err != nil {
		log.Debug("experience not extracted", zap.Error(err))
	}
	if record.Education, err = eng.Education(ctx); err != nil {
		log.Debug("education not extracted", zap.Error(err))
	}
	if record.Skills, err = eng.Skills(ctx, profileURL); err != nil {
		log.Debug("skills not extracted", zap.Error(err))
	}
	record.CurrentCompany = deriveCurrentCompany(record.Experience, record.Headline)

	if url, lerr := page.Location(ctx); lerr == nil && url != profileURL {
		record.RawSupplementary = map[string]string{"final_url": url}
	}

	log.Info("profile assembled",
		zap.Bool("has_name", record.Name != ""),
		zap.Int("experience_entries", len(record.Experience)),
		zap.Int("education_entries", len(record.Education)),
		zap.Int("skills", len(record.Skills)),
	)
	return record
}
