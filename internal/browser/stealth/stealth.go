// internal/browser/stealth/stealth.go

// Package stealth dresses a headless Chrome target up as an ordinary
// user-driven browser before any site script runs.
package stealth

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

//go:embed evasions.js
var evasionsScript string

// Persona is the set of browser characteristics presented to the site.
type Persona struct {
	UserAgent string
	Platform  string
	Languages []string
	Timezone  string
	Locale    string
}

// DefaultPersona is a plausible desktop Chrome on Windows.
var DefaultPersona = Persona{
	UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	Platform:  "Win32",
	Languages: []string{"en-US", "en"},
	Timezone:  "America/New_York",
	Locale:    "en-US",
}

// Apply builds the CDP action sequence that installs the persona: UA
// override, the evasion script on every new document, and timezone, locale
// and header consistency. It must run before the first navigation.
func Apply(p Persona, logger *zap.Logger) chromedp.Tasks {
	logger.Debug("applying stealth persona",
		zap.String("user_agent", p.UserAgent),
		zap.String("platform", p.Platform),
	)

	return chromedp.Tasks{
		uaOverride(p),

		// AddScriptToEvaluateOnNewDocument returns an identifier alongside
		// the error, so it needs the ActionFunc wrapper.
		chromedp.ActionFunc(func(ctx context.Context) error {
			if _, err := page.AddScriptToEvaluateOnNewDocument(evasionsScript).Do(ctx); err != nil {
				return fmt.Errorf("inject evasions script: %w", err)
			}
			return nil
		}),

		emulation.SetTimezoneOverride(p.Timezone),
		emulation.SetLocaleOverride().WithLocale(p.Locale),

		network.SetExtraHTTPHeaders(network.Headers{
			"Accept-Language": acceptLanguage(p.Languages),
		}),
	}
}

// uaOverride pairs the user agent with its platform so navigator.platform
// reports the persona's OS instead of the host's.
func uaOverride(p Persona) *emulation.SetUserAgentOverrideParams {
	return emulation.SetUserAgentOverride(p.UserAgent).
		WithPlatform(p.Platform).
		WithAcceptLanguage(acceptLanguage(p.Languages))
}

func acceptLanguage(langs []string) string {
	switch len(langs) {
	case 0:
		return "en-US,en;q=0.9"
	case 1:
		return langs[0]
	default:
		return fmt.Sprintf("%s,%s;q=0.9", langs[0], langs[1])
	}
}
