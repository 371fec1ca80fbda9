// Package tui renders a live profiled position loop in the terminal.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/servokit/servokit/command"
	"github.com/servokit/servokit/internal/config"
	"github.com/servokit/servokit/pid"
	"github.com/servokit/servokit/plant"
	"github.com/servokit/servokit/profile"
	"github.com/servokit/servokit/units"
)

const historyCapacity = 600

var (
	headerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	statusStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Bold(true)
	labelStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	valueStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	activeParamStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	graphStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
	frameStyle       = lipgloss.NewStyle().Padding(1, 2)
)

type TickMsg time.Time

// rig holds the state shared with the command's source and sink closures.
// bubbletea copies the Model on every update, so anything a closure reads
// or writes must live behind this pointer.
type rig struct {
	goal       profile.State
	lastOutput float64
}

var gainNames = []string{"kp", "ki", "kd"}

// Model steps one profiled command against a simulated plant, one control
// period per frame.
type Model struct {
	cfg  *config.Config
	ctrl *pid.ProfiledController
	plnt *plant.SecondOrder
	cmd  *command.Profiled
	rg   *rig

	period        time.Duration
	t             float64
	running       bool
	active        bool
	progressStart units.Distance

	posHistory []float64
	spHistory  []float64

	initialGains []float64
	selected     int

	bar progress.Model
}

// New wires a command, controller, and plant from cfg and activates the
// command. The caller runs the returned model in a bubbletea program.
func New(cfg *config.Config) (Model, error) {
	if err := cfg.Validate(); err != nil {
		return Model{}, err
	}

	plnt, err := plant.NewSecondOrder(cfg.Plant.Mass, cfg.Plant.Damping)
	if err != nil {
		return Model{}, err
	}
	plnt.SetForceLimit(cfg.Plant.ForceLimit)
	plnt.Reset(units.Meters(cfg.Plant.InitialPosition), units.MetersPerSecond(cfg.Plant.InitialVelocity))

	period := cfg.TickPeriod()
	ctrl := pid.NewProfiled(cfg.Controller.Kp, cfg.Controller.Ki, cfg.Controller.Kd, cfg.Constraints(), period)
	ctrl.SetTolerance(units.Meters(cfg.Controller.Tolerance))
	if cfg.Controller.OutputLimit > 0 {
		ctrl.PID().SetOutputRange(-cfg.Controller.OutputLimit, cfg.Controller.OutputLimit)
	}
	if cfg.Controller.IntegralLimit > 0 {
		ctrl.PID().SetIntegralLimit(cfg.Controller.IntegralLimit)
	}

	rg := &rig{goal: cfg.GoalState()}
	cmd := command.New(ctrl,
		plnt.Position,
		func() profile.State { return rg.goal },
		func(output float64, _ profile.State) {
			rg.lastOutput = output
			plnt.Step(output, period)
		},
		command.Requirement(cfg.Mechanism),
	)
	cmd.SetName(cfg.Mechanism)

	initialGains := make([]float64, len(gainNames))
	for i := range gainNames {
		g := gainAt(ctrl.PID(), i)
		if g == 0 {
			g = 1e-6
		}
		initialGains[i] = g
	}

	m := Model{
		cfg:           cfg,
		ctrl:          ctrl,
		plnt:          plnt,
		cmd:           cmd,
		rg:            rg,
		period:        period,
		running:       true,
		active:        true,
		progressStart: plnt.Position(),
		initialGains:  initialGains,
		bar:           progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
	}
	m.cmd.Initialize()
	return m, nil
}

func (m Model) Init() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if m.active {
				m.cmd.End(true)
				m.active = false
			}
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "g":
			m.retarget()
		case "tab":
			m.selected = (m.selected + 1) % len(gainNames)
		case "up", "k":
			m.adjustGain(1.05)
		case "down", "j":
			m.adjustGain(0.95)
		}
	case TickMsg:
		if m.running && m.active {
			m.step()
		}
		return m, tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
	}
	return m, nil
}

// step advances the loop by one control period.
func (m *Model) step() {
	m.cmd.Execute()
	m.t += m.period.Seconds()

	m.posHistory = append(m.posHistory, m.plnt.Position().Meters())
	m.spHistory = append(m.spHistory, m.ctrl.Setpoint().Position.Meters())
	if len(m.posHistory) > historyCapacity {
		m.posHistory = m.posHistory[1:]
		m.spHistory = m.spHistory[1:]
	}
}

// reset deactivates the command, puts the plant back at its initial state,
// and activates again from scratch.
func (m *Model) reset() {
	if m.active {
		m.cmd.End(true)
	}
	m.plnt.Reset(units.Meters(m.cfg.Plant.InitialPosition), units.MetersPerSecond(m.cfg.Plant.InitialVelocity))
	m.rg.goal = m.cfg.GoalState()
	m.rg.lastOutput = 0
	m.t = 0
	m.posHistory = nil
	m.spHistory = nil
	m.progressStart = m.plnt.Position()
	m.cmd.Initialize()
	m.active = true
	m.running = true
}

// retarget swaps the live goal between the configured position and home.
// The command picks the new goal up on its next tick.
func (m *Model) retarget() {
	if m.rg.goal == m.cfg.GoalState() {
		m.rg.goal = profile.State{}
	} else {
		m.rg.goal = m.cfg.GoalState()
	}
	m.progressStart = m.plnt.Position()
}

func gainAt(p *pid.Controller, i int) float64 {
	switch i {
	case 0:
		return p.Kp
	case 1:
		return p.Ki
	default:
		return p.Kd
	}
}

func setGainAt(p *pid.Controller, i int, v float64) {
	switch i {
	case 0:
		p.Kp = v
	case 1:
		p.Ki = v
	default:
		p.Kd = v
	}
}

func (m *Model) adjustGain(factor float64) {
	p := m.ctrl.PID()
	setGainAt(p, m.selected, gainAt(p, m.selected)*factor)
}

func (m *Model) progressFrac() float64 {
	total := m.rg.goal.Position.Meters() - m.progressStart.Meters()
	if total < 0 {
		total = -total
	}
	if total < 1e-9 {
		return 1
	}
	remaining := m.rg.goal.Position.Meters() - m.plnt.Position().Meters()
	if remaining < 0 {
		remaining = -remaining
	}
	frac := 1 - remaining/total
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	return frac
}

func (m Model) View() string {
	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.cfg.Mechanism)) + "\n")

	status := "RUNNING"
	if !m.running {
		status = "PAUSED"
	} else if m.ctrl.AtGoal() {
		status = "AT GOAL (holding)"
	}
	s.WriteString(statusStyle.Render(status) + "\n")

	if len(m.posHistory) > 1 {
		chart := asciigraph.PlotMany(
			[][]float64{m.spHistory, m.posHistory},
			asciigraph.Height(8),
			asciigraph.Width(52),
			asciigraph.Caption("setpoint vs measurement"),
		)
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	s.WriteString(graphStyle.Render(m.bar.ViewAs(m.progressFrac())) + "\n\n")

	sp := m.ctrl.Setpoint()
	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.2fs", m.t)) + "\n")
	s.WriteString(labelStyle.Render("Measurement") + valueStyle.Render(m.plnt.Position().String()) + "\n")
	s.WriteString(labelStyle.Render("Setpoint") + valueStyle.Render(fmt.Sprintf("%s @ %s", sp.Position, sp.Velocity)) + "\n")
	s.WriteString(labelStyle.Render("Goal") + valueStyle.Render(fmt.Sprintf("%s @ %s", m.rg.goal.Position, m.rg.goal.Velocity)) + "\n")
	s.WriteString(labelStyle.Render("Output") + valueStyle.Render(fmt.Sprintf("%.1fN", m.rg.lastOutput)) + "\n")

	s.WriteString("\nGAINS\n")
	p := m.ctrl.PID()
	for i, name := range gainNames {
		val := gainAt(p, i)
		barWidth, ratio := 10, val/(2.0*m.initialGains[i])
		if ratio > 1 {
			ratio = 1
		} else if ratio < 0 {
			ratio = 0
		}
		filled := int(ratio * float64(barWidth))
		bar := "[" + strings.Repeat("=", filled) + strings.Repeat("-", barWidth-filled) + "]"
		line := fmt.Sprintf("%-4s %s %.2f", name, bar, val)
		if i == m.selected {
			s.WriteString(activeParamStyle.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + labelStyle.Render(line) + "\n")
		}
	}

	s.WriteString(helpStyle.Render("SP:Pause R:Reset G:Retarget Q:Quit\nTab:Gain ↑↓:Tune"))
	return frameStyle.Render(s.String())
}
