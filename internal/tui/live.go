package tui

import (
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/nlink/internal/dynamo"
	"github.com/san-kum/nlink/internal/experiment"
	"github.com/san-kum/nlink/internal/export"
	"github.com/san-kum/nlink/internal/sim"
	"github.com/san-kum/nlink/internal/viz"
)

const (
	canvasWidth     = 60
	canvasHeight    = 24
	trailLength     = 200
	historyCapacity = 600
	maxStepsPerTick = 512
)

type TickMsg time.Time

type gifSavedMsg struct {
	path   string
	frames int
	err    error
}

type Options struct {
	FPS           int
	StepsPerFrame int
	Theme         string
	GIFPath       string
}

func DefaultOptions() Options {
	return Options{FPS: 30, StepsPerFrame: 2, Theme: "phosphor", GIFPath: "nlink.gif"}
}

// Model drives a simulation session a few steps per frame and draws the chain
// with its tip trail and energy history.
type Model struct {
	exp     *experiment.Experiment
	session *sim.Session
	opts    Options
	extent  float64

	canvas *viz.Canvas
	theme  viz.Theme
	trail  []dynamo.Point
	energy []float64
	snap   dynamo.Snapshot
	result *dynamo.Result

	running       bool
	stepsPerFrame int
	recorder      *export.GIFRecorder
	showHelp      bool
	message       string
	err           error
}

func NewModel(exp *experiment.Experiment, opts Options) (Model, error) {
	if opts.FPS <= 0 {
		opts.FPS = DefaultOptions().FPS
	}
	if opts.StepsPerFrame <= 0 {
		opts.StepsPerFrame = 1
	}
	m := Model{
		exp:           exp,
		opts:          opts,
		extent:        exp.Chain().Params().TotalLength() * 1.05,
		canvas:        viz.NewCanvas(canvasWidth, canvasHeight),
		theme:         viz.GetTheme(opts.Theme),
		stepsPerFrame: opts.StepsPerFrame,
		running:       true,
	}
	if err := m.reset(); err != nil {
		return Model{}, err
	}
	return m, nil
}

// Run opens the live view and blocks until the user quits.
func Run(exp *experiment.Experiment, opts Options) error {
	m, err := NewModel(exp, opts)
	if err != nil {
		return err
	}
	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(Model); ok {
		return fm.err
	}
	return nil
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.opts.FPS), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd { return m.tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			if err := m.reset(); err != nil {
				m.err = err
				return m, tea.Quit
			}
		case "+", "=":
			m.stepsPerFrame = min(m.stepsPerFrame*2, maxStepsPerTick)
		case "-", "_":
			m.stepsPerFrame = max(m.stepsPerFrame/2, 1)
		case "t":
			m.theme = viz.NextTheme(m.theme)
		case "g":
			if m.recorder == nil {
				m.recorder = export.NewGIFRecorder(m.extent, 100/m.opts.FPS)
				m.message = "recording"
			} else {
				rec := m.recorder
				m.recorder = nil
				m.message = "saving " + m.opts.GIFPath
				return m, saveGIF(rec, m.opts.GIFPath)
			}
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			m.advance()
		}
		return m, m.tick()
	case gifSavedMsg:
		if msg.err != nil {
			m.message = "gif: " + msg.err.Error()
		} else {
			m.message = fmt.Sprintf("saved %d frames to %s", msg.frames, msg.path)
		}
	}
	return m, nil
}

func (m *Model) reset() error {
	sess, err := m.exp.Start()
	if err != nil {
		return err
	}
	m.session = sess
	m.result = nil
	m.trail = m.trail[:0]
	m.energy = m.energy[:0]
	m.observe(sess.Snapshot())
	return nil
}

func (m *Model) advance() {
	if m.result != nil {
		return
	}
	if _, err := m.session.Advance(m.stepsPerFrame); err != nil {
		m.err = err
	}
	m.observe(m.session.Snapshot())

	if m.session.Done() || m.err != nil {
		m.result = m.session.Finish()
		m.running = false
	}
}

func (m *Model) observe(snap dynamo.Snapshot) {
	m.snap = snap
	if !snap.State.IsValid() {
		return
	}
	if n := len(snap.Positions); n > 0 {
		m.trail = appendBounded(m.trail, snap.Positions[n-1], trailLength)
	}
	m.energy = appendBounded(m.energy, snap.Energy, historyCapacity)
	if m.recorder != nil {
		if err := m.recorder.OnSnapshot(snap); err != nil {
			m.message = "gif: " + err.Error()
			m.recorder = nil
		}
	}
}

func appendBounded[T any](s []T, v T, limit int) []T {
	if len(s) >= limit {
		copy(s, s[1:])
		s = s[:len(s)-1]
	}
	return append(s, v)
}

func saveGIF(rec *export.GIFRecorder, path string) tea.Cmd {
	return func() tea.Msg {
		f, err := os.Create(path)
		if err != nil {
			return gifSavedMsg{path: path, err: err}
		}
		defer f.Close()
		if err := rec.Encode(f); err != nil {
			return gifSavedMsg{path: path, err: err}
		}
		return gifSavedMsg{path: path, frames: rec.Len()}
	}
}

func (m Model) status() string {
	switch {
	case m.result != nil && len(m.result.Errors) > 0:
		return viz.StatusFailed.Render("STOPPED")
	case m.result != nil:
		return viz.StatusPaused.Render("FINISHED")
	case m.recorder != nil:
		return viz.StatusRecording.Render("● REC")
	case !m.running:
		return viz.StatusPaused.Render("PAUSED")
	default:
		return viz.StatusRunning.Render("RUNNING")
	}
}

func (m Model) View() string {
	m.canvas.Clear()
	m.canvas.DrawTrail(m.trail, m.extent)
	m.canvas.DrawChain(m.snap.Frame(), m.extent)
	canvasView := m.theme.CanvasStyle().Render(m.canvas.String())

	cfg := m.exp.Config()
	var s strings.Builder
	s.WriteString(viz.Header.Render(fmt.Sprintf("%d-LINK CHAIN", cfg.Links)) + "\n")
	s.WriteString(m.status() + "\n\n")

	if len(m.energy) > 1 {
		chart := viz.SeriesPlot(m.energy, 4, 30, "energy [J]")
		s.WriteString(lipgloss.NewStyle().Foreground(m.theme.Accent).Render(chart) + "\n\n")
	}

	s.WriteString(viz.Metric("time", fmt.Sprintf("%.2f / %.0f s", m.snap.Time, cfg.Duration)) + "\n")
	s.WriteString(viz.Metric("step", fmt.Sprintf("%d", m.snap.Step)) + "\n")
	s.WriteString(viz.Metric("energy", fmt.Sprintf("%.4f", m.snap.Energy)) + "\n")
	s.WriteString(viz.Metric("speed", fmt.Sprintf("%d steps/frame", m.stepsPerFrame)) + "\n")
	s.WriteString(viz.Metric("model", cfg.Formulation+"/"+cfg.Integrator) + "\n")
	s.WriteString(viz.Metric("theme", m.theme.Name) + "\n")
	s.WriteString(viz.ProgressBar(m.snap.Time/cfg.Duration, 28) + "\n")

	if m.result != nil {
		s.WriteString("\n" + viz.Metric("drift", fmt.Sprintf("%.3e", m.result.EnergyDrift)) + "\n")
		for _, e := range m.result.Errors {
			s.WriteString(viz.StatusFailed.Render(e.Error()) + "\n")
		}
		if n := len(m.result.Warnings); n > 0 {
			s.WriteString(viz.StatusPaused.Render(fmt.Sprintf("%d conditioning warnings", n)) + "\n")
		}
	}
	if m.message != "" {
		s.WriteString("\n" + viz.Subtle.Render(m.message) + "\n")
	}
	s.WriteString("\n" + viz.KeyHint.Render("space pause  r reset  +/- speed\nt theme  g gif  ? help  q quit"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, viz.Panel.Render(s.String()))
	if m.showHelp {
		return helpText + "\n" + mainView
	}
	return mainView
}

const helpText = `
  space   pause / resume
  r       restart from the initial state
  + / -   double / halve steps per frame
  t       cycle colour theme
  g       start / stop GIF recording
  ?       toggle this help
  q       quit
`
