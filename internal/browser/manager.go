// internal/browser/manager.go

// Package browser owns the Chrome process and the sessions opened against
// it. A Manager holds one exec allocator; each Session is an isolated tab
// with its own CDP context.
package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/xkilldash9x/prospector/internal/config"
	"github.com/xkilldash9x/prospector/internal/browser/stealth"
)

// ErrBrowserLaunch reports that the Chrome process could not be started or
// the first target could not be attached.
var ErrBrowserLaunch = errors.New("browser: launch failed")

const shutdownGracePeriod = 15 * time.Second

// Manager handles the browser process lifecycle and session creation.
// Allocation is deferred until the first session is requested.
type Manager struct {
	cfg *config.Config
	log *zap.Logger

	allocCtx    context.Context
	allocCancel context.CancelFunc

	mu       sync.RWMutex
	sessions map[string]*Session
	wg       sync.WaitGroup

	initOnce sync.Once
	initErr  error
}

// NewManager creates a browser manager. No Chrome process is started yet.
func NewManager(cfg *config.Config, logger *zap.Logger) *Manager {
	return &Manager{
		cfg:      cfg,
		log:      logger.Named("browser_manager"),
		sessions: make(map[string]*Session),
	}
}

func (m *Manager) initialize(ctx context.Context) error {
	m.initOnce.Do(func() {
		opts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", m.cfg.Browser.Headless),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			// Drops the AutomationControlled blink feature that flips
			// navigator.webdriver.
			chromedp.Flag("disable-blink-features", "AutomationControlled"),
			chromedp.WindowSize(m.cfg.Browser.ViewportWidth, m.cfg.Browser.ViewportHeight),
		)
		if m.cfg.Browser.ExecPath != "" {
			opts = append(opts, chromedp.ExecPath(m.cfg.Browser.ExecPath))
		}
		for _, arg := range m.cfg.Browser.Args {
			name := strings.TrimLeft(arg, "-")
			if name == "" {
				continue
			}
			if k, v, ok := strings.Cut(name, "="); ok {
				opts = append(opts, chromedp.Flag(k, v))
			} else {
				opts = append(opts, chromedp.Flag(name, true))
			}
		}

		// The allocator outlives the caller's ctx; sessions carry their own
		// lifetimes.
		m.allocCtx, m.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
		m.log.Info("browser allocator ready",
			zap.Bool("headless", m.cfg.Browser.Headless),
			zap.Int("viewport_width", m.cfg.Browser.ViewportWidth),
			zap.Int("viewport_height", m.cfg.Browser.ViewportHeight),
		)
	})
	return m.initErr
}

// NewSession opens a fresh tab with the stealth persona applied, ready to
// navigate. The session must be closed by the caller.
func (m *Manager) NewSession(ctx context.Context) (*Session, error) {
	if err := m.initialize(ctx); err != nil {
		return nil, err
	}

	persona := stealth.DefaultPersona
	if ua := m.cfg.Browser.UserAgent; ua != "" {
		persona.UserAgent = ua
	}

	s, err := newSession(m.allocCtx, m.cfg, persona, m.log)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserLaunch, err)
	}

	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.mu.Unlock()
	m.wg.Add(1)

	s.onClose = func() {
		m.mu.Lock()
		delete(m.sessions, s.ID())
		m.mu.Unlock()
		m.wg.Done()
	}
	m.log.Info("session opened", zap.String("session_id", s.ID()))
	return s, nil
}

// Shutdown closes every open session and tears down the allocator. It waits
// up to a grace period for sessions to drain.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.RLock()
	open := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		open = append(open, s)
	}
	m.mu.RUnlock()

	for _, s := range open {
		s.Close()
	}

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(shutdownGracePeriod):
		m.log.Warn("shutdown grace period elapsed with sessions still open")
	case <-ctx.Done():
	}

	if m.allocCancel != nil {
		m.allocCancel()
	}
	m.log.Info("browser manager shut down")
	return nil
}
