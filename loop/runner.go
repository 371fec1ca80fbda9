// Package loop drives a single command at a fixed wall-clock period.
package loop

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/servokit/servokit/command"
)

// Runner executes one command per Run call on a fixed tick. It is not a
// scheduler: it never runs more than one command and does no requirement
// arbitration.
type Runner struct {
	period time.Duration
	log    zerolog.Logger
}

type Option func(*Runner)

// WithLogger routes lifecycle and overrun logs to l. The default runner
// logs nothing.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Runner) { r.log = l }
}

// New returns a runner that ticks once per period.
func New(period time.Duration, opts ...Option) *Runner {
	r := &Runner{period: period, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Runner) Period() time.Duration { return r.period }

// Run activates cmd, executes it once per period, and deactivates it
// exactly once. A natural finish deactivates with interrupted=false and
// returns nil. Context cancellation deactivates with interrupted=true and
// returns the context's error. If ctx is already dead the command is never
// activated.
func (r *Runner) Run(ctx context.Context, cmd command.Command) error {
	if cmd == nil {
		return errors.New("loop: nil command")
	}
	if r.period <= 0 {
		return fmt.Errorf("loop: period must be positive, got %v", r.period)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	log := r.log.With().Str("command", commandName(cmd)).Logger()

	ticker := time.NewTicker(r.period)
	defer ticker.Stop()

	cmd.Initialize()
	log.Debug().Dur("period", r.period).Msg("command activated")

	ticks := 0
	for {
		select {
		case <-ctx.Done():
			cmd.End(true)
			log.Debug().Int("ticks", ticks).Msg("command interrupted")
			return ctx.Err()
		case <-ticker.C:
			start := time.Now()
			cmd.Execute()
			ticks++
			if elapsed := time.Since(start); elapsed > r.period {
				log.Warn().Dur("elapsed", elapsed).Dur("period", r.period).Msg("tick overran period")
			}
			if cmd.IsFinished() {
				cmd.End(false)
				log.Debug().Int("ticks", ticks).Msg("command finished")
				return nil
			}
		}
	}
}

// commandName prefers a command's own name and falls back to its type.
func commandName(cmd command.Command) string {
	if n, ok := cmd.(interface{ Name() string }); ok && n.Name() != "" {
		return n.Name()
	}
	return fmt.Sprintf("%T", cmd)
}
