// internal/humanoid/humanoid.go

// Package humanoid drives low-stakes page interaction between meaningful
// steps so the session's event stream resembles a person skimming a page
// rather than a script hammering selectors.
package humanoid

import (
	"context"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/prospector/internal/config"
)

// Executor is the low-level surface the simulator drives. The browser
// session implements it over CDP input events; tests implement it with
// recorders.
type Executor interface {
	Sleep(ctx context.Context, d time.Duration) error
	ScrollBy(ctx context.Context, dx, dy float64) error
	MovePointer(ctx context.Context, x, y float64) error
}

// Simulator performs a randomized but bounded browse pattern. All bounds
// come from configuration; the randomness source is injectable so tests can
// pin the pattern.
type Simulator struct {
	cfg config.HumanoidConfig
	rng *rand.Rand
	log *zap.Logger
}

// New builds a simulator with a time-seeded randomness source.
func New(cfg config.HumanoidConfig, log *zap.Logger) *Simulator {
	return NewWithSource(cfg, rand.New(rand.NewSource(time.Now().UnixNano())), log)
}

// NewWithSource builds a simulator over the given source. Tests pass a
// fixed-seed rand to make the action sequence deterministic.
func NewWithSource(cfg config.HumanoidConfig, rng *rand.Rand, log *zap.Logger) *Simulator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Simulator{cfg: cfg, rng: rng, log: log.Named("humanoid")}
}

// Perform runs one browse pass: a bounded number of downward scrolls with
// randomized distances, pauses between them, and occasional pointer drift.
// Executor failures are logged and swallowed since a failed wiggle must
// never sink the extraction that follows; only context cancellation aborts.
func (s *Simulator) Perform(ctx context.Context, exec Executor) error {
	if !s.cfg.Enabled {
		return nil
	}

	scrolls := s.intBetween(s.cfg.MinScrolls, s.cfg.MaxScrolls)
	s.log.Debug("browse pass starting", zap.Int("scrolls", scrolls))

	for i := 0; i < scrolls; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		dy := float64(s.intBetween(s.cfg.MinScrollPx, s.cfg.MaxScrollPx))
		if err := exec.ScrollBy(ctx, 0, dy); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.log.Warn("scroll failed, continuing", zap.Error(err))
		}

		if s.rng.Float64() < s.cfg.PointerMoveChance {
			x := 100 + s.rng.Float64()*800
			y := 100 + s.rng.Float64()*500
			if err := exec.MovePointer(ctx, x, y); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				s.log.Warn("pointer move failed, continuing", zap.Error(err))
			}
		}

		if err := exec.Sleep(ctx, s.pause()); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.log.Warn("pause interrupted, continuing", zap.Error(err))
		}
	}

	// Drift back toward the top so the next extraction sees the top card.
	if err := exec.ScrollBy(ctx, 0, -float64(s.cfg.MaxScrollPx*scrolls)); err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return nil
}

// Pause sleeps for one randomized inter-action delay. Callers use it to
// space out steps that happen outside a full browse pass, like between
// typing credentials and submitting.
func (s *Simulator) Pause(ctx context.Context, exec Executor) error {
	if !s.cfg.Enabled {
		return nil
	}
	if err := exec.Sleep(ctx, s.pause()); err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return nil
}

func (s *Simulator) pause() time.Duration {
	lo, hi := s.cfg.MinActionDelay, s.cfg.MaxActionDelay
	if hi <= lo {
		return lo
	}
	return lo + time.Duration(s.rng.Int63n(int64(hi-lo)))
}

func (s *Simulator) intBetween(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + s.rng.Intn(hi-lo+1)
}
