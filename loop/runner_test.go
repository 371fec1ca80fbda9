package loop_test

import (
	"context"
	"math"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/servokit/servokit/command"
	"github.com/servokit/servokit/loop"
	"github.com/servokit/servokit/pid"
	"github.com/servokit/servokit/plant"
	"github.com/servokit/servokit/profile"
	"github.com/servokit/servokit/units"
)

// countingCommand tallies lifecycle calls. With finishAfter > 0 it finishes
// itself once that many ticks have run.
type countingCommand struct {
	initialized int
	executed    int
	ended       int
	interrupted bool
	finishAfter int
}

func (c *countingCommand) Initialize() { c.initialized++ }
func (c *countingCommand) Execute()    { c.executed++ }

func (c *countingCommand) End(interrupted bool) {
	c.ended++
	c.interrupted = interrupted
}

func (c *countingCommand) IsFinished() bool {
	return c.finishAfter > 0 && c.executed >= c.finishAfter
}

func (c *countingCommand) Requirements() []command.Requirement { return nil }

var _ = Describe("Runner", func() {
	var r *loop.Runner

	BeforeEach(func() {
		r = loop.New(5 * time.Millisecond)
	})

	It("runs a command to its natural finish", func() {
		cmd := &countingCommand{finishAfter: 3}

		err := r.Run(context.Background(), cmd)

		Expect(err).NotTo(HaveOccurred())
		Expect(cmd.initialized).To(Equal(1))
		Expect(cmd.executed).To(Equal(3))
		Expect(cmd.ended).To(Equal(1))
		Expect(cmd.interrupted).To(BeFalse())
	})

	It("deactivates with interrupted=true when the context dies", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 40*time.Millisecond)
		defer cancel()
		cmd := &countingCommand{}

		err := r.Run(ctx, cmd)

		Expect(err).To(MatchError(context.DeadlineExceeded))
		Expect(cmd.executed).To(BeNumerically(">", 0))
		Expect(cmd.ended).To(Equal(1))
		Expect(cmd.interrupted).To(BeTrue())
	})

	It("never activates a command on a dead context", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		cmd := &countingCommand{}

		err := r.Run(ctx, cmd)

		Expect(err).To(MatchError(context.Canceled))
		Expect(cmd.initialized).To(BeZero())
		Expect(cmd.ended).To(BeZero())
	})

	It("rejects a nonpositive period", func() {
		cmd := &countingCommand{finishAfter: 1}

		err := loop.New(0).Run(context.Background(), cmd)

		Expect(err).To(HaveOccurred())
		Expect(cmd.initialized).To(BeZero())
	})

	It("rejects a nil command", func() {
		Expect(r.Run(context.Background(), nil)).To(HaveOccurred())
	})
})

var _ = Describe("Closed loop", func() {
	It("drives a sliding mass to the goal and leaves it stopped", func() {
		period := 5 * time.Millisecond
		constraints := profile.Constraints{
			MaxVelocity:     units.MetersPerSecond(2),
			MaxAcceleration: units.MetersPerSecondSquared(8),
		}
		ctrl := pid.NewProfiled(60, 0, 8, constraints, period)
		ctrl.SetTolerance(units.Centimeters(2))

		mass, err := plant.NewSecondOrder(1, 0.5)
		Expect(err).NotTo(HaveOccurred())

		var lastOutput float64
		cmd := command.NewFixedDistance(ctrl,
			mass.Position,
			units.Meters(0.4),
			func(output float64, _ profile.State) {
				lastOutput = output
				mass.Step(output, period)
			},
			"carriage",
		)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err = loop.New(period).Run(ctx, command.Until(cmd, ctrl.AtGoal))

		Expect(err).NotTo(HaveOccurred())
		Expect(mass.Position().Meters()).To(BeNumerically("~", 0.4, 0.03))
		Expect(math.Abs(mass.Velocity().MetersPerSecond())).To(BeNumerically("<", 0.3))
		Expect(lastOutput).To(BeZero(), "the stop output should be the last thing the sink saw")
	})
})
