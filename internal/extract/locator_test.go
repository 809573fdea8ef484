// internal/extract/locator_test.go
package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScopedRebasesUnderFirstSectionMatch(t *testing.T) {
	loc := scoped("//section[.//span[text()='About']]", "//div/span[1]")

	assert.Equal(t, KindXPath, loc.Kind)
	assert.Equal(t, "(//section[.//span[text()='About']])[1]//div/span[1]", loc.Pattern)
}

func TestItemAddressesOneBasedRows(t *testing.T) {
	rows := sectionRoot("//section[@id='exp']") + sectionItems

	assert.Equal(t, "((//section[@id='exp'])[1]//li)[1]", item(rows, 1))
	assert.Equal(t, "((//section[@id='exp'])[1]//li)[3]", item(rows, 3))
}

func TestUsableRejectsPlaceholders(t *testing.T) {
	assert.False(t, usable(""))
	assert.False(t, usable("  "))
	assert.False(t, usable("-"))
	assert.False(t, usable("--"))
	assert.True(t, usable("Acme Corp"))
}
