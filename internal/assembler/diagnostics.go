// internal/assembler/diagnostics.go
package assembler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/antchfx/htmlquery"
	"go.uber.org/zap"
)

// milestone writes a checkpoint screenshot when debug captures are enabled.
func (p *pass) milestone(ctx context.Context, label string) {
	if !p.a.cfg.Browser.Debug || p.page == nil {
		return
	}
	if path, err := p.page.Screenshot(ctx, label); err == nil {
		p.log.Debug("milestone screenshot written",
			zap.String("label", label),
			zap.String("path", path),
		)
	}
}

// diagnose captures the page's markup and a screenshot on the fatal path.
// Everything here is best effort; a restricted filesystem or dead target
// must not mask the original failure.
func (p *pass) diagnose(ctx context.Context, label string) {
	if p.page == nil {
		return
	}

	if markup, err := p.page.CaptureHTML(ctx); err == nil {
		p.log.Warn("fatal page state captured",
			zap.String("label", label),
			zap.String("page_title", pageTitle(markup)),
			zap.Int("markup_bytes", len(markup)),
			zap.String("path", p.writeMarkup(markup, label)),
		)
	} else {
		p.log.Debug("markup capture failed", zap.String("label", label), zap.Error(err))
	}

	if path, err := p.page.Screenshot(ctx, label); err == nil {
		p.log.Warn("diagnostic screenshot written",
			zap.String("label", label),
			zap.String("path", path),
		)
	} else {
		p.log.Debug("screenshot failed", zap.String("label", label), zap.Error(err))
	}
}

// writeMarkup persists captured markup next to the screenshots so the dump
// can be opened after the fact. An empty path means the write failed or no
// debug directory is configured; either way the capture is only lost, never
// an error.
func (p *pass) writeMarkup(markup, label string) string {
	dir := p.a.cfg.Browser.DebugDir
	if dir == "" {
		return ""
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return ""
	}
	id := p.page.ID()
	if len(id) > 8 {
		id = id[:8]
	}
	path := filepath.Join(dir, fmt.Sprintf("%s_%s_%d.html", id, label, time.Now().Unix()))
	if err := os.WriteFile(path, []byte(markup), 0o644); err != nil {
		return ""
	}
	return path
}

// pageTitle pulls <title> out of captured markup, since the title usually
// names the wall we hit ("Security Verification", "Sign In").
func pageTitle(markup string) string {
	doc, err := htmlquery.Parse(strings.NewReader(markup))
	if err != nil {
		return ""
	}
	node := htmlquery.FindOne(doc, "//title")
	if node == nil {
		return ""
	}
	return strings.TrimSpace(htmlquery.InnerText(node))
}
