package mirage

import (
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/mirage-social/mirage/internal/notify"
	"github.com/mirage-social/mirage/internal/reactor"
	"github.com/mirage-social/mirage/internal/taskqueue"
)

// Option customizes the Engine during construction.
type Option func(*Engine) error

// WithLogger replaces the default logger.
func WithLogger(log zerolog.Logger) Option {
	return func(e *Engine) error {
		e.log = log
		return nil
	}
}

// WithClock replaces the timestamp source. Tests use this for deterministic
// ordering.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) error {
		if now == nil {
			return errors.New("mirage: nil clock")
		}
		e.now = now
		return nil
	}
}

// WithIDGenerator replaces the post/comment id source.
func WithIDGenerator(newID func() string) Option {
	return func(e *Engine) error {
		if newID == nil {
			return errors.New("mirage: nil id generator")
		}
		e.newID = newID
		return nil
	}
}

// WithDice replaces the randomness source driving reaction fan-out. Pass
// reactor.NewDice(seed) for a reproducible run.
func WithDice(d reactor.Dice) Option {
	return func(e *Engine) error {
		e.dice = d
		return nil
	}
}

// WithTimers replaces the delay mechanism. Tests pass reactor.Immediate{} to
// collapse all delays.
func WithTimers(t reactor.Timers) Option {
	return func(e *Engine) error {
		e.timers = t
		return nil
	}
}

// WithListener registers a callback invoked for every notification published
// by the engine.
func WithListener(l notify.Listener) Option {
	return func(e *Engine) error {
		e.listener = l
		return nil
	}
}

// WithReactionConfig overrides the reaction fan-out tunables.
func WithReactionConfig(cfg reactor.Config) Option {
	return func(e *Engine) error {
		e.reactionCfg = cfg
		return nil
	}
}

// WithExecutorConfig overrides the task executor tunables.
func WithExecutorConfig(cfg taskqueue.Config) Option {
	return func(e *Engine) error {
		e.execCfg = cfg
		return nil
	}
}

// WithNoticeTTL overrides how long a notification toast stays current before
// auto-expiring.
func WithNoticeTTL(ttl time.Duration) Option {
	return func(e *Engine) error {
		if ttl <= 0 {
			return errors.New("mirage: notice TTL must be positive")
		}
		e.noticeTTL = ttl
		return nil
	}
}
