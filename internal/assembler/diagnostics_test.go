// internal/assembler/diagnostics_test.go
package assembler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageTitle(t *testing.T) {
	assert.Equal(t, "Security Verification",
		pageTitle("<html><head><title> Security Verification </title></head><body></body></html>"))
	assert.Empty(t, pageTitle("<html><body>no title</body></html>"))
	assert.Empty(t, pageTitle(""))
}
