package command

import "time"

// Until wraps inner with an extra finish condition. The wrapped command
// finishes when cond reports true or when inner finishes on its own. cond
// is polled after each tick.
//
// A typical condition is the controller's own AtGoal method:
//
//	cmd := command.NewFixedDistance(ctrl, encoder, units.Meters(1.2), motor)
//	drive.Run(ctx, command.Until(cmd, ctrl.AtGoal))
func Until(inner Command, cond func() bool) Command {
	return &untilCommand{inner: inner, cond: cond}
}

type untilCommand struct {
	inner Command
	cond  func() bool
}

func (u *untilCommand) Initialize() { u.inner.Initialize() }

func (u *untilCommand) Execute() { u.inner.Execute() }

func (u *untilCommand) End(interrupted bool) { u.inner.End(interrupted) }

func (u *untilCommand) Requirements() []Requirement { return u.inner.Requirements() }

func (u *untilCommand) IsFinished() bool {
	return u.cond() || u.inner.IsFinished()
}

// WithTimeout wraps inner so it finishes once d has elapsed since
// activation. The deadline rearms on every activation, so a reused command
// gets the full duration each run.
func WithTimeout(inner Command, d time.Duration) Command {
	return &timeoutCommand{inner: inner, timeout: d}
}

type timeoutCommand struct {
	inner    Command
	timeout  time.Duration
	deadline time.Time
}

func (t *timeoutCommand) Initialize() {
	t.deadline = time.Now().Add(t.timeout)
	t.inner.Initialize()
}

func (t *timeoutCommand) Execute() { t.inner.Execute() }

func (t *timeoutCommand) End(interrupted bool) { t.inner.End(interrupted) }

func (t *timeoutCommand) Requirements() []Requirement { return t.inner.Requirements() }

func (t *timeoutCommand) IsFinished() bool {
	return !time.Now().Before(t.deadline) || t.inner.IsFinished()
}
