// internal/assembler/assembler_test.go
package assembler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/prospector/api/schemas"
	"github.com/xkilldash9x/prospector/internal/auth"
	"github.com/xkilldash9x/prospector/internal/config"
	"github.com/xkilldash9x/prospector/internal/extract"
)

// fakeSession scripts one tab. Field lookups key on the locator pattern, the
// same contract the live session exposes.
type fakeSession struct {
	url   string
	text  map[string]string
	texts map[string][]string

	navErr     map[string]error
	navigated  []string
	clicked    []string
	waited     []string
	shots      []string
	closeCount int
	captured   bool
	shot       bool
}

func newFakeSession(url string) *fakeSession {
	return &fakeSession{
		url:    url,
		text:   map[string]string{},
		texts:  map[string][]string{},
		navErr: map[string]error{},
	}
}

func (f *fakeSession) Text(_ context.Context, loc extract.Locator) (string, error) {
	if v, ok := f.text[loc.Pattern]; ok {
		return v, nil
	}
	return "", extract.ErrNotFound
}

func (f *fakeSession) Texts(_ context.Context, loc extract.Locator) ([]string, error) {
	if v, ok := f.texts[loc.Pattern]; ok {
		return v, nil
	}
	return nil, extract.ErrNotFound
}

func (f *fakeSession) Count(_ context.Context, loc extract.Locator) (int, error) {
	if _, ok := f.text[loc.Pattern]; ok {
		return 1, nil
	}
	return 0, nil
}

func (f *fakeSession) Click(_ context.Context, loc extract.Locator) error {
	f.clicked = append(f.clicked, loc.Pattern)
	return nil
}

func (f *fakeSession) Navigate(_ context.Context, url string) error {
	f.navigated = append(f.navigated, url)
	if err, ok := f.navErr[url]; ok {
		return err
	}
	return nil
}

func (f *fakeSession) Location(context.Context) (string, error) { return f.url, nil }

func (f *fakeSession) Fill(context.Context, extract.Locator, string) error { return nil }

func (f *fakeSession) WaitVisible(_ context.Context, loc extract.Locator, _ time.Duration) error {
	f.waited = append(f.waited, loc.Pattern)
	if _, ok := f.text[loc.Pattern]; ok {
		return nil
	}
	return extract.ErrNotFound
}

func (f *fakeSession) Sleep(context.Context, time.Duration) error        { return nil }
func (f *fakeSession) ScrollBy(context.Context, float64, float64) error  { return nil }
func (f *fakeSession) MovePointer(context.Context, float64, float64) error { return nil }

func (f *fakeSession) CaptureHTML(context.Context) (string, error) {
	f.captured = true
	return "<html><head><title>Security Verification</title></head></html>", nil
}

func (f *fakeSession) Screenshot(_ context.Context, label string) (string, error) {
	f.shot = true
	f.shots = append(f.shots, label)
	return "screenshots/fake.png", nil
}

func (f *fakeSession) ID() string { return "fake-session" }
func (f *fakeSession) Close()     { f.closeCount++ }

func testAssembler(t *testing.T, page *fakeSession) (*Assembler, *[]State) {
	t.Helper()
	cfg := config.NewDefault()
	cfg.Network.LoginTimeout = 100 * time.Millisecond
	cfg.Browser.DebugDir = t.TempDir()
	cfg.Linkedin.Email = "user@example.com"
	cfg.Linkedin.Password = "hunter2"

	authn := auth.New(*cfg, nil, zap.NewNop())
	a := New(cfg, func(context.Context) (Page, error) { return page, nil }, authn, nil, zap.NewNop())

	var trail []State
	a.onTransition = func(s State) { trail = append(trail, s) }
	return a, &trail
}

const profileURL = "https://www.linkedin.com/in/fixture/"

func TestScrapeHappyPath(t *testing.T) {
	// Session already carries a live cookie: location reads as the feed, so
	// login short-circuits.
	page := newFakeSession("https://www.linkedin.com/feed/")
	page.text["h1.text-heading-xlarge"] = "Fixture Person"
	page.text["div.text-body-medium.break-words"] = "Engineer at Acme"

	a, trail := testAssembler(t, page)
	record, err := a.Scrape(context.Background(), profileURL, schemas.Credentials{})
	require.NoError(t, err)

	assert.Equal(t, "fixture", record.ProfileID)
	assert.Equal(t, "Fixture Person", record.Name)
	assert.Equal(t, "Fixture", record.FirstName)
	assert.Equal(t, "Person", record.LastName)
	assert.Equal(t, "Engineer at Acme", record.Headline)
	require.NotNil(t, record.CurrentCompany)
	assert.Equal(t, "Acme", record.CurrentCompany.Name)
	assert.Equal(t, "Engineer", record.CurrentCompany.Title)

	assert.Equal(t, []State{
		StateSessionReady,
		StateAuthenticated,
		StateNavigated,
		StateExtracting,
		StateAssembled,
		StateClosed,
	}, *trail)
	assert.Equal(t, 1, page.closeCount)
	assert.Contains(t, page.navigated, profileURL)
	assert.Contains(t, page.waited, "//main//h1")
	assert.Empty(t, page.shots, "no screenshots unless debug is on")
}

func TestScrapeDebugMilestoneScreenshots(t *testing.T) {
	page := newFakeSession("https://www.linkedin.com/feed/")
	page.text["h1.text-heading-xlarge"] = "Fixture Person"

	a, _ := testAssembler(t, page)
	a.cfg.Browser.Debug = true
	_, err := a.Scrape(context.Background(), profileURL, schemas.Credentials{})
	require.NoError(t, err)

	assert.Equal(t, []string{"logged_in", "profile_loaded"}, page.shots)
}

func TestScrapeResolvesBareProfileID(t *testing.T) {
	page := newFakeSession("https://www.linkedin.com/feed/")
	page.text["h1.text-heading-xlarge"] = "Fixture Person"

	a, _ := testAssembler(t, page)
	record, err := a.Scrape(context.Background(), "fixture", schemas.Credentials{})
	require.NoError(t, err)

	assert.Equal(t, "fixture", record.ProfileID)
	assert.Contains(t, page.navigated, "https://www.linkedin.com/in/fixture/")
}

func TestResolveProfileURL(t *testing.T) {
	a, _ := testAssembler(t, newFakeSession(""))

	assert.Equal(t, profileURL, a.resolveProfileURL(profileURL))
	assert.Equal(t, "https://www.linkedin.com/in/janedoe/", a.resolveProfileURL("janedoe"))
	assert.Equal(t, "https://www.linkedin.com/in/janedoe/", a.resolveProfileURL("/in/janedoe/"))
}

func TestScrapePartialRecordIsNotAnError(t *testing.T) {
	page := newFakeSession("https://www.linkedin.com/feed/")
	page.text["h1.text-heading-xlarge"] = "Sparse Person"

	a, _ := testAssembler(t, page)
	record, err := a.Scrape(context.Background(), profileURL, schemas.Credentials{})
	require.NoError(t, err)

	assert.Equal(t, "Sparse Person", record.Name)
	assert.Empty(t, record.About)
	assert.Empty(t, record.Experience)
	assert.Empty(t, record.Skills)
}

func TestScrapeChallengeIsFatalWithDiagnostics(t *testing.T) {
	page := newFakeSession("https://www.linkedin.com/checkpoint/challenge/x")

	a, trail := testAssembler(t, page)
	record, err := a.Scrape(context.Background(), profileURL, schemas.Credentials{})

	require.Error(t, err)
	assert.ErrorIs(t, err, auth.ErrChallengeRequired)
	assert.Nil(t, record, "no partial record alongside an error")
	assert.True(t, page.captured)
	assert.True(t, page.shot)
	assert.Equal(t, 1, page.closeCount)
	assert.Equal(t, []State{StateSessionReady, StateClosed}, *trail)

	// The captured markup lands on disk next to the screenshots.
	dumps, err := filepath.Glob(filepath.Join(a.cfg.Browser.DebugDir, "*.html"))
	require.NoError(t, err)
	require.Len(t, dumps, 1)
	body, err := os.ReadFile(dumps[0])
	require.NoError(t, err)
	assert.Contains(t, string(body), "Security Verification")
}

func TestScrapeNavigationFailureIsFatal(t *testing.T) {
	page := newFakeSession("https://www.linkedin.com/feed/")
	navErr := errors.New("navigation timed out")
	page.navErr[profileURL] = navErr

	a, _ := testAssembler(t, page)
	record, err := a.Scrape(context.Background(), profileURL, schemas.Credentials{})

	assert.ErrorIs(t, err, navErr)
	assert.Nil(t, record)
	assert.True(t, page.shot)
	assert.Equal(t, 1, page.closeCount)
}

func TestScrapeSessionLaunchFailure(t *testing.T) {
	cfg := config.NewDefault()
	launchErr := errors.New("no usable chrome binary")
	a := New(cfg,
		func(context.Context) (Page, error) { return nil, launchErr },
		auth.New(*cfg, nil, zap.NewNop()), nil, zap.NewNop())

	record, err := a.Scrape(context.Background(), profileURL, schemas.Credentials{})
	assert.ErrorIs(t, err, launchErr)
	assert.Nil(t, record)
}

func TestScrapeRejectsNonProfileURL(t *testing.T) {
	page := newFakeSession("https://www.linkedin.com/feed/")
	a, trail := testAssembler(t, page)

	_, err := a.Scrape(context.Background(), "https://www.linkedin.com/company/acme", schemas.Credentials{})
	require.Error(t, err)
	assert.Empty(t, *trail, "no session opened for an invalid url")
	assert.Zero(t, page.closeCount)
}

func TestStateStrings(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "assembled", StateAssembled.String())
	assert.Equal(t, "closed", StateClosed.String())
}
