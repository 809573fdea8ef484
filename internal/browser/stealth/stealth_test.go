// internal/browser/stealth/stealth_test.go
package stealth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestUAOverrideCarriesPlatform(t *testing.T) {
	params := uaOverride(DefaultPersona)

	assert.Equal(t, DefaultPersona.UserAgent, params.UserAgent)
	assert.Equal(t, "Win32", params.Platform,
		"navigator.platform must match the advertised user agent")
	assert.Equal(t, "en-US,en;q=0.9", params.AcceptLanguage)
}

func TestUAOverrideCustomPersona(t *testing.T) {
	p := Persona{
		UserAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36",
		Platform:  "MacIntel",
		Languages: []string{"de-DE"},
	}
	params := uaOverride(p)

	assert.Equal(t, "MacIntel", params.Platform)
	assert.Equal(t, "de-DE", params.AcceptLanguage)
}

func TestAcceptLanguage(t *testing.T) {
	assert.Equal(t, "en-US,en;q=0.9", acceptLanguage(nil))
	assert.Equal(t, "fr-FR", acceptLanguage([]string{"fr-FR"}))
	assert.Equal(t, "en-GB,en;q=0.9", acceptLanguage([]string{"en-GB", "en", "fr"}))
}

func TestApplyBuildsTaskSequence(t *testing.T) {
	tasks := Apply(DefaultPersona, zap.NewNop())
	require.NotEmpty(t, tasks)
}
