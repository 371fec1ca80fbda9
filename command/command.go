// Package command defines the lifecycle contract for schedulable control
// commands and provides a profiled position command built on it.
//
// A command is activated exactly once, executed once per tick while it is
// active, and deactivated exactly once. Deactivation tells the command
// whether it finished on its own or was interrupted. Commands declare the
// resources they need as opaque requirement tokens so a driver can keep two
// commands off the same actuator.
package command

import "sort"

// Requirement identifies an exclusive resource, typically one actuator.
// Drivers compare tokens for equality and nothing else.
type Requirement string

// Command is the contract a periodic driver runs.
type Command interface {
	// Initialize is called once each time the command is activated.
	Initialize()

	// Execute is called once per tick between activation and deactivation.
	Execute()

	// End is called exactly once when the command is deactivated.
	// interrupted is true when the command was cancelled from outside
	// rather than finishing on its own.
	End(interrupted bool)

	// IsFinished reports whether the command wants to deactivate itself.
	// It is polled after each Execute.
	IsFinished() bool

	// Requirements returns the resources the command needs while active.
	Requirements() []Requirement
}

// Base carries the name and requirement set shared by command
// implementations. The zero value is ready to use.
type Base struct {
	name string
	reqs map[Requirement]struct{}
}

func (b *Base) Name() string        { return b.name }
func (b *Base) SetName(name string) { b.name = name }

// AddRequirements declares resources the command needs. Duplicates collapse.
func (b *Base) AddRequirements(reqs ...Requirement) {
	if b.reqs == nil {
		b.reqs = make(map[Requirement]struct{}, len(reqs))
	}
	for _, r := range reqs {
		b.reqs[r] = struct{}{}
	}
}

// Requirements returns the declared resources in a stable order.
func (b *Base) Requirements() []Requirement {
	out := make([]Requirement, 0, len(b.reqs))
	for r := range b.reqs {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
