// internal/auth/auth.go

// Package auth performs the credentialed login handshake and classifies its
// outcome. Outcome detection is a fixed-priority cascade: an active security
// challenge outranks a rejected password, which outranks any success signal,
// so an ambiguous page never gets reported as a login.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/prospector/api/schemas"
	"github.com/xkilldash9x/prospector/internal/config"
	"github.com/xkilldash9x/prospector/internal/extract"
	"github.com/xkilldash9x/prospector/internal/humanoid"
)

var (
	// ErrChallengeRequired reports that the site interposed a verification
	// step (captcha, device check) that cannot be automated through.
	ErrChallengeRequired = errors.New("auth: security challenge required")
	// ErrLoginRejected reports that the credentials were refused.
	ErrLoginRejected = errors.New("auth: credentials rejected")
	// ErrLoginTimeout reports that no outcome signal appeared in time.
	ErrLoginTimeout = errors.New("auth: login outcome not determined in time")
	// ErrMissingCredentials reports login was attempted without credentials.
	ErrMissingCredentials = errors.New("auth: credentials not configured")
)

// Page is the browser surface the authenticator drives. The live session
// implements it; tests script it.
type Page interface {
	Navigate(ctx context.Context, url string) error
	Fill(ctx context.Context, loc extract.Locator, value string) error
	Click(ctx context.Context, loc extract.Locator) error
	Count(ctx context.Context, loc extract.Locator) (int, error)
	Location(ctx context.Context) (string, error)
}

var (
	usernameField = extract.CSS("input#username")
	passwordField = extract.CSS("input#password")
	submitButton  = extract.CSS("button[type='submit']")
)

// challengeURLFragments mark verification interstitials by address.
var challengeURLFragments = []string{
	"/checkpoint/",
	"/challenge/",
	"captcha",
}

// rejectionSignals are rendered into the login form on bad credentials.
var rejectionSignals = extract.Chain{
	extract.CSS("#error-for-password"),
	extract.CSS("#error-for-username"),
	extract.XPath("//div[contains(@class,'form__label--error')]"),
	extract.XPath("//*[contains(text(),'incorrect') or contains(text(),'Incorrect')]"),
}

// successLandmarks only exist on the authenticated shell.
var successLandmarks = extract.Chain{
	extract.CSS(".feed-identity-module"),
	extract.CSS(".global-nav__me"),
	extract.CSS("#global-nav"),
}

const defaultPollInterval = 500 * time.Millisecond

// Authenticator runs the login flow against a page.
type Authenticator struct {
	cfg config.Config
	sim *humanoid.Simulator
	log *zap.Logger

	pollInterval time.Duration
}

// New builds an authenticator. sim may be nil to skip pacing between steps.
func New(cfg config.Config, sim *humanoid.Simulator, log *zap.Logger) *Authenticator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Authenticator{
		cfg:          cfg,
		sim:          sim,
		log:          log.Named("auth"),
		pollInterval: defaultPollInterval,
	}
}

// Login navigates to the login form, submits creds and polls for the
// outcome. exec may be nil when no behavior pacing is wanted. The returned
// AuthResult is meaningful even when err is non-nil: a challenge yields
// (AuthChallengeRequired, ErrChallengeRequired).
func (a *Authenticator) Login(ctx context.Context, page Page, exec humanoid.Executor, creds schemas.Credentials) (schemas.AuthResult, error) {
	if creds.IsZero() {
		return schemas.AuthRejected, ErrMissingCredentials
	}

	log := a.log.With(zap.String("email", creds.RedactedEmail()))
	log.Info("starting login")

	if err := page.Navigate(ctx, a.cfg.Linkedin.LoginURL); err != nil {
		return schemas.AuthRejected, fmt.Errorf("open login page: %w", err)
	}

	// A live cookie jar can land us straight on the feed.
	if url, err := page.Location(ctx); err == nil && isAuthenticatedURL(url) {
		log.Info("already authenticated")
		return schemas.AuthAuthenticated, nil
	}

	if err := page.Fill(ctx, usernameField, creds.Email); err != nil {
		return schemas.AuthRejected, fmt.Errorf("fill username: %w", err)
	}
	a.pace(ctx, exec)
	if err := page.Fill(ctx, passwordField, creds.Password); err != nil {
		return schemas.AuthRejected, fmt.Errorf("fill password: %w", err)
	}
	a.pace(ctx, exec)
	if err := page.Click(ctx, submitButton); err != nil {
		return schemas.AuthRejected, fmt.Errorf("submit login form: %w", err)
	}

	return a.awaitOutcome(ctx, page, log)
}

// awaitOutcome polls the page until one signal class fires or the login
// budget runs out. Signal priority inside each poll is fixed: challenge,
// then rejection, then success landmarks.
func (a *Authenticator) awaitOutcome(ctx context.Context, page Page, log *zap.Logger) (schemas.AuthResult, error) {
	deadline := time.Now().Add(a.cfg.Network.LoginTimeout)
	ticker := time.NewTicker(a.pollInterval)
	defer ticker.Stop()

	for {
		url, err := page.Location(ctx)
		if err == nil && isChallengeURL(url) {
			log.Warn("security challenge interposed", zap.String("url", url))
			return schemas.AuthChallengeRequired, ErrChallengeRequired
		}

		if a.anyPresent(ctx, page, rejectionSignals) {
			log.Warn("credentials rejected")
			return schemas.AuthRejected, ErrLoginRejected
		}

		if a.anyPresent(ctx, page, successLandmarks) || (err == nil && isAuthenticatedURL(url)) {
			log.Info("login succeeded")
			return schemas.AuthAuthenticated, nil
		}

		if time.Now().After(deadline) {
			// Weakest signal last: off the login form with no negative
			// marker still counts as success.
			if err == nil && !isLoginURL(url) && !isChallengeURL(url) {
				log.Info("login inferred from address", zap.String("url", url))
				return schemas.AuthAuthenticated, nil
			}
			log.Error("login outcome undetermined", zap.String("url", url))
			return schemas.AuthRejected, ErrLoginTimeout
		}

		select {
		case <-ctx.Done():
			return schemas.AuthRejected, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (a *Authenticator) anyPresent(ctx context.Context, page Page, chain extract.Chain) bool {
	for _, loc := range chain {
		n, err := page.Count(ctx, loc)
		if err == nil && n > 0 {
			return true
		}
	}
	return false
}

func (a *Authenticator) pace(ctx context.Context, exec humanoid.Executor) {
	if a.sim == nil || exec == nil {
		return
	}
	if err := a.sim.Pause(ctx, exec); err != nil {
		a.log.Debug("pacing interrupted", zap.Error(err))
	}
}

func isChallengeURL(url string) bool {
	lower := strings.ToLower(url)
	for _, frag := range challengeURLFragments {
		if strings.Contains(lower, frag) {
			return true
		}
	}
	return false
}

func isAuthenticatedURL(url string) bool {
	return strings.Contains(url, "/feed") || strings.Contains(url, "/mynetwork")
}

func isLoginURL(url string) bool {
	return strings.Contains(url, "/login") || strings.Contains(url, "/uas/")
}
