package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/NimbleMarkets/ntcharts/canvas/runes"
	"github.com/NimbleMarkets/ntcharts/linechart/streamlinechart"

	"github.com/roarm-dev/roarm/pkg/robot"
)

type TeachCommand struct {
	File     string `long:"file" short:"f" default:"recording.json" description:"File the recording is written to"`
	Interval int    `long:"interval" description:"Sample interval in ms (default from config)"`
}

const (
	teachHeaderHeight = 2 // title + blank line
	teachLegendHeight = 2 // legend row + blank
	teachFooterHeight = 2 // hint line + blank
	teachBorderSize   = 2 // chart border
	teachRefresh      = 100 * time.Millisecond
)

// Joint colors, one distinct color per trace.
var jointColors = map[robot.JointName]string{
	robot.Base:     "196", // red
	robot.Shoulder: "208", // orange
	robot.Elbow:    "226", // yellow
	robot.Hand:     "46",  // green
	robot.Wrist:    "51",  // cyan
	robot.Grip:     "201", // magenta
}

var (
	recStyle        = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	teachChartStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))
)

type teachModel struct {
	ctrl     *robot.Controller
	arm      robot.Model
	chart    *streamlinechart.Model
	width    int
	height   int
	start    time.Time
	err      error
	quitting bool
}

type teachStateMsg robot.State
type teachErrMsg struct{ err error }

func pollTeachState(ctrl *robot.Controller) tea.Cmd {
	return tea.Tick(teachRefresh, func(time.Time) tea.Msg {
		st, err := ctrl.State(context.Background())
		if err != nil {
			return teachErrMsg{err}
		}
		return teachStateMsg(st)
	})
}

func initialTeachModel(ctrl *robot.Controller) teachModel {
	chart := streamlinechart.New(80, 20,
		streamlinechart.WithYRange(-180, 180),
	)

	arm := ctrl.Model()
	for _, name := range arm.JointNames() {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(jointColors[name]))
		chart.SetDataSetStyles(string(name), runes.ThinLineStyle, style)
	}

	return teachModel{
		ctrl:  ctrl,
		arm:   arm,
		chart: &chart,
		start: time.Now(),
	}
}

func (m *teachModel) chartSize() (width, height int) {
	if m.width == 0 || m.height == 0 {
		return 80, 20 // default size before we know terminal size
	}
	width = m.width - teachBorderSize - 2
	if width < 40 {
		width = 40
	}
	height = m.height - teachHeaderHeight - teachLegendHeight - teachFooterHeight - teachBorderSize
	if height < 10 {
		height = 10
	}
	return width, height
}

func (m teachModel) Init() tea.Cmd {
	return pollTeachState(m.ctrl)
}

func (m teachModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		w, h := m.chartSize()
		m.chart.Resize(w, h)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "enter", "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case teachStateMsg:
		st := robot.State(msg)
		// The recorder's own pose queries keep the cache fresh; the
		// chart just renders it.
		if st.Joints != nil {
			degs := st.Joints.Slice(m.arm.JointCount())
			for i, name := range m.arm.JointNames() {
				m.chart.PushDataSet(string(name), degs[i])
			}
			m.chart.DrawAll()
		}
		return m, pollTeachState(m.ctrl)

	case teachErrMsg:
		m.err = msg.err
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

func (m teachModel) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder

	sb.WriteString(headerStyle.Render("Teaching"))
	sb.WriteString("  ")
	sb.WriteString(recStyle.Render("● REC"))
	sb.WriteString(dimStyle.Render(fmt.Sprintf("  %s", time.Since(m.start).Round(time.Second))))
	sb.WriteString("\n\n")

	sb.WriteString(teachChartStyle.Render(m.chart.View()))
	sb.WriteString("\n")

	sb.WriteString(teachLegend(m.arm))
	sb.WriteString("\n\n")

	sb.WriteString(dimStyle.Render("Move the arm by hand. Press Enter to stop and save."))
	sb.WriteString("\n")

	return sb.String()
}

func teachLegend(arm robot.Model) string {
	var items []string
	for _, name := range arm.JointNames() {
		colorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(jointColors[name])).Bold(true)
		items = append(items, colorStyle.Render("━━")+" "+string(name))
	}
	return strings.Join(items, "  ")
}

func (c *TeachCommand) Execute(args []string) error {
	ctx := context.Background()
	ctrl, cfg, err := openRobot(ctx)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	interval := time.Duration(c.Interval) * time.Millisecond
	if c.Interval <= 0 {
		interval = time.Duration(cfg.Teach.SampleIntervalMS) * time.Millisecond
	}

	topts := robot.TeachOptions{Filename: c.File, SampleInterval: interval}
	if err := ctrl.StartTeaching(ctx, topts); err != nil {
		return err
	}

	p := tea.NewProgram(initialTeachModel(ctrl), tea.WithAltScreen())
	final, runErr := p.Run()

	// Stop regardless of how the TUI ended so torque re-engages.
	rec, stopErr := ctrl.StopTeaching(ctx)
	if runErr != nil {
		return runErr
	}
	if m, ok := final.(teachModel); ok && m.err != nil {
		return m.err
	}
	if stopErr != nil {
		return stopErr
	}

	fmt.Println(successStyle.Render("Recording saved."))
	fmt.Printf("  File:     %s\n", c.File)
	fmt.Printf("  Samples:  %d\n", len(rec))
	fmt.Printf("  Duration: %s\n", rec.Duration().Round(time.Millisecond))
	fmt.Println()
	fmt.Println("Play it back with: " + headerStyle.Render(fmt.Sprintf("roarm replay --file %s", c.File)))
	return nil
}
