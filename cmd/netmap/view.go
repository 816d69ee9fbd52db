package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-netmap/pkg/engine"
	"github.com/dd0wney/cluso-netmap/pkg/filter"
	"github.com/dd0wney/cluso-netmap/pkg/geom"
	"github.com/dd0wney/cluso-netmap/pkg/graph"
	"github.com/dd0wney/cluso-netmap/pkg/interaction"
	"github.com/dd0wney/cluso-netmap/pkg/metrics"
	"github.com/dd0wney/cluso-netmap/pkg/pubsub"
	"github.com/dd0wney/cluso-netmap/pkg/selection"
)

// A terminal cell stands for a cellW×cellH pixel block so the engine keeps
// working in pixels.
const (
	cellW       = 8.0
	cellH       = 16.0
	headerRows  = 2
	footerRows  = 2
	panStep     = 48.0
	zoomStep    = 1.25
	wheelStep   = 1.1
	doubleClick = 400 * time.Millisecond
	frameEvery  = 50 * time.Millisecond
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#e63946"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#186170")).
			Padding(0, 1)

	panelTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#186170"))

	tooltipStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#333333"))

	aboutStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("#e63946")).
			Padding(1, 3).
			Width(64)

	edgeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#555555"))

	activeEdgeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e63946"))

	subtleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)
)

func viewCmd() *cobra.Command {
	var intro bool

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Explore the network in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			// tooltip text is measured in terminal cells
			cfg.Tooltip.CharWidth, cfg.Tooltip.LineHeight = cellW, cellH
			logger, closeLog, err := newLogger(cfg, io.Discard)
			if err != nil {
				return err
			}
			defer closeLog()

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			loader, err := newLoader(ctx, cfg, logger)
			if err != nil {
				return err
			}

			reg := metrics.DefaultRegistry()

			bus := pubsub.NewPubSub[engine.Snapshot](pubsub.DefaultBuffer)
			defer bus.Shutdown()
			gate := interaction.NewGate()

			eng, err := engine.New(engine.Options{
				Config:     cfg,
				Loader:     loader,
				SourceName: cfg.Data.Source,
				Gate:       gate,
				Metrics:    reg,
				Bus:        bus,
				Logger:     logger,
			})
			if err != nil {
				return err
			}
			serveMetrics(ctx, cfg.Metrics.Addr, reg, engineHealth(eng), logger)

			runDone := make(chan error, 1)
			go func() { runDone <- eng.Run(ctx) }()

			sub, err := bus.Subscribe(ctx, pubsub.AllTopics...)
			if err != nil {
				return err
			}
			if err := eng.Mount(ctx); err != nil {
				return err
			}
			if intro {
				eng.Block()
			}

			p := tea.NewProgram(newViewModel(eng, sub, intro), tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
			_, runErr := p.Run()

			eng.Unmount()
			cancel()
			<-runDone
			if runErr != nil && ctx.Err() == nil {
				return fmt.Errorf("terminal: %w", runErr)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&intro, "intro", true, "open the introduction dialog on start")
	return cmd
}

type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Left      key.Binding
	Right     key.Binding
	ZoomIn    key.Binding
	ZoomOut   key.Binding
	Next      key.Binding
	Prev      key.Binding
	Select    key.Binding
	Close     key.Binding
	Filter    key.Binding
	Reset     key.Binding
	Randomize key.Binding
	About     key.Binding
	Quit      key.Binding
}

var keys = keyMap{
	Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "pan")),
	Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "pan")),
	Left:      key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "pan")),
	Right:     key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "pan")),
	ZoomIn:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "zoom in")),
	ZoomOut:   key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "zoom out")),
	Next:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next topic")),
	Prev:      key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev topic")),
	Select:    key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "select")),
	Close:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close panel")),
	Filter:    key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filter")),
	Reset:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
	Randomize: key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "randomize")),
	About:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "about")),
	Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Select, k.Filter, k.ZoomIn, k.ZoomOut, k.Reset, k.Randomize, k.About, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right, k.ZoomIn, k.ZoomOut},
		{k.Next, k.Prev, k.Select, k.Close},
		{k.Filter, k.Reset, k.Randomize, k.About, k.Quit},
	}
}

// option is a filter choice in the picker.
type option string

func (o option) FilterValue() string { return string(o) }
func (o option) Title() string       { return string(o) }
func (o option) Description() string {
	if string(o) == filter.All {
		return "show every topic"
	}
	return "topic and its direct links"
}

type (
	updateMsg pubsub.Message[engine.Snapshot]
	frameMsg  time.Time
	closedMsg struct{}
)

type viewModel struct {
	eng  *engine.Engine
	sub  *pubsub.Subscription[engine.Snapshot]
	snap engine.Snapshot

	keys    keyMap
	help    help.Model
	picker  list.Model
	picking bool
	about   bool

	cursor int
	width  int
	height int

	pressed   bool
	dragged   bool
	lastMouse geom.Point
	lastClick time.Time
	clickAt   geom.Point

	message    string
	messageErr bool
}

func newViewModel(eng *engine.Engine, sub *pubsub.Subscription[engine.Snapshot], about bool) viewModel {
	picker := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	picker.Title = "Filter by topic"
	picker.SetShowStatusBar(false)

	return viewModel{
		eng:    eng,
		sub:    sub,
		keys:   keys,
		help:   help.New(),
		picker: picker,
		about:  about,
	}
}

func waitForUpdate(sub *pubsub.Subscription[engine.Snapshot]) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-sub.Channel()
		if !ok {
			return closedMsg{}
		}
		return updateMsg(msg)
	}
}

func frameTick() tea.Cmd {
	return tea.Tick(frameEvery, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func (m viewModel) Init() tea.Cmd {
	return tea.Batch(waitForUpdate(m.sub), frameTick())
}

func (m viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.picker.SetSize(msg.Width/2, msg.Height-headerRows-footerRows)
		m.report(m.eng.Resize(m.canvasRect(), geom.Size{W: float64(m.width) * cellW, H: float64(m.height) * cellH}))
		m.report(m.eng.SetPanelWidth(float64(panelColumns(m.width)) * cellW))
		return m, nil

	case updateMsg:
		m.snap = msg.Payload
		if msg.Topic == pubsub.TopicStatus && m.snap.Status == engine.StatusFailed {
			m.message = "cannot display graph"
			m.messageErr = true
		}
		return m, waitForUpdate(m.sub)

	case closedMsg:
		return m, nil

	case frameMsg:
		if s, err := m.eng.Snapshot(); err == nil {
			m.snap = s
		}
		return m, frameTick()

	case tea.MouseMsg:
		return m.mouse(msg), nil

	case tea.KeyMsg:
		if m.picking {
			return m.updatePicker(msg)
		}
		return m.key(msg)
	}
	return m, nil
}

func (m viewModel) key(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.about {
		// any key closes the introduction
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		m.about = false
		m.report(m.eng.Unblock())
		return m, nil
	}

	center := m.canvasRect().Center()
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.About):
		m.about = true
		m.report(m.eng.Block())
	case key.Matches(msg, m.keys.Up):
		m.pan(0, panStep)
	case key.Matches(msg, m.keys.Down):
		m.pan(0, -panStep)
	case key.Matches(msg, m.keys.Left):
		m.pan(panStep, 0)
	case key.Matches(msg, m.keys.Right):
		m.pan(-panStep, 0)
	case key.Matches(msg, m.keys.ZoomIn):
		_, err := m.eng.Zoom(zoomStep, center)
		m.report(err)
	case key.Matches(msg, m.keys.ZoomOut):
		_, err := m.eng.Zoom(1/zoomStep, center)
		m.report(err)
	case key.Matches(msg, m.keys.Next):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.Prev):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Select):
		if id, ok := m.cursorNode(); ok {
			m.report(m.eng.ClickNode(id))
		}
	case key.Matches(msg, m.keys.Close):
		m.report(m.eng.ClosePanel())
	case key.Matches(msg, m.keys.Filter):
		if m.snap.Status == engine.StatusReady {
			items := make([]list.Item, 0, len(m.snap.Options))
			for _, o := range m.snap.Options {
				items = append(items, option(o))
			}
			m.picker.SetItems(items)
			m.picking = true
		}
	case key.Matches(msg, m.keys.Reset):
		m.report(m.eng.Reset())
	case key.Matches(msg, m.keys.Randomize):
		m.report(m.eng.Randomize())
	}
	return m, nil
}

func (m viewModel) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.picker.FilterState() != list.Filtering {
		switch msg.String() {
		case "esc":
			m.picking = false
			return m, nil
		case "enter":
			m.picking = false
			if o, ok := m.picker.SelectedItem().(option); ok {
				if err := m.eng.Filter(string(o)); err != nil {
					m.message = err.Error()
					m.messageErr = true
				} else {
					m.message = "filter: " + string(o)
					m.messageErr = false
					m.cursor = 0
				}
			}
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	return m, cmd
}

func (m viewModel) mouse(msg tea.MouseMsg) viewModel {
	p := geom.Point{
		X: float64(msg.X)*cellW + cellW/2,
		Y: float64(msg.Y)*cellH + cellH/2,
	}

	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		_, err := m.eng.Zoom(wheelStep, p)
		m.report(err)
	case msg.Button == tea.MouseButtonWheelDown:
		_, err := m.eng.Zoom(1/wheelStep, p)
		m.report(err)

	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		m.pressed = true
		m.dragged = false
		m.lastMouse = p

	case msg.Action == tea.MouseActionMotion:
		if m.pressed {
			m.dragged = true
			d := p.Sub(m.lastMouse)
			m.report(m.eng.Drag(d.X, d.Y))
			m.lastMouse = p
			return m
		}
		m.report(m.eng.PointerMove(p))

	case msg.Action == tea.MouseActionRelease:
		if !m.pressed {
			return m
		}
		m.pressed = false
		if m.dragged {
			m.report(m.eng.DragEnd())
			return m
		}
		m.report(m.eng.Click(p))
		// the second click of a pair is also a double click
		if time.Since(m.lastClick) < doubleClick && m.clickAt == p {
			m.report(m.eng.DoubleClick(p))
			m.lastClick = time.Time{}
		} else {
			m.lastClick = time.Now()
			m.clickAt = p
		}
	}
	return m
}

func (m *viewModel) pan(dx, dy float64) {
	m.report(m.eng.Drag(dx, dy))
	m.report(m.eng.DragEnd())
}

func (m *viewModel) report(err error) {
	if err != nil {
		m.message = err.Error()
		m.messageErr = true
	}
}

func (m viewModel) visibleNodes() []graph.Node {
	var out []graph.Node
	for _, n := range m.snap.Nodes {
		if !n.Hidden {
			out = append(out, n)
		}
	}
	return out
}

func (m *viewModel) moveCursor(delta int) {
	n := len(m.visibleNodes())
	if n == 0 {
		return
	}
	m.cursor = ((m.cursor+delta)%n + n) % n
}

func (m viewModel) cursorNode() (graph.NodeID, bool) {
	nodes := m.visibleNodes()
	if len(nodes) == 0 {
		return graph.None, false
	}
	return nodes[min(m.cursor, len(nodes)-1)].ID, true
}

// canvasRect is the graph area in window pixels.
func (m viewModel) canvasRect() geom.Rect {
	rows := max(m.height-headerRows-footerRows, 1)
	return geom.RectFromSize(
		geom.Point{X: 0, Y: headerRows * cellH},
		geom.Size{W: float64(m.width) * cellW, H: float64(rows) * cellH},
	)
}

func (m viewModel) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n")

	rows := max(m.height-headerRows-footerRows, 1)
	switch {
	case m.about:
		b.WriteString(lipgloss.Place(m.width, rows, lipgloss.Center, lipgloss.Center, aboutStyle.Render(aboutText)))
	case m.picking:
		b.WriteString(lipgloss.Place(m.width, rows, lipgloss.Center, lipgloss.Top, m.picker.View()))
	case m.snap.Status == engine.StatusFailed:
		msg := errorStyle.Render("cannot display graph")
		if m.snap.LoadErr != nil {
			msg += "\n" + subtleStyle.Render(m.snap.LoadErr.Error())
		}
		b.WriteString(lipgloss.Place(m.width, rows, lipgloss.Center, lipgloss.Center, msg))
	case m.snap.Status != engine.StatusReady:
		b.WriteString(lipgloss.Place(m.width, rows, lipgloss.Center, lipgloss.Center, "loading network..."))
	default:
		b.WriteString(m.renderGraph(rows))
	}

	b.WriteString("\n")
	b.WriteString(m.footer())
	return b.String()
}

func (m viewModel) header() string {
	status := fmt.Sprintf("filter: %s  scale: %.2f  %s", m.snap.Filter, m.snap.Viewport.Scale, m.snap.Status)
	if m.snap.Selection.State != selection.Idle {
		status += "  " + m.snap.Selection.State.String()
	}
	if m.snap.Physics && !m.snap.Stable {
		status += "  settling"
	}
	return titleStyle.Render("Relevance network") + "  " + statusStyle.Render(status) + "\n"
}

func (m viewModel) footer() string {
	line := m.help.ShortHelpView(m.keys.ShortHelp())
	if m.message == "" {
		return line
	}
	style := statusStyle
	if m.messageErr {
		style = errorStyle
	}
	return style.Render(m.message) + "\n" + line
}

const aboutText = `Relevance network

Each point is a topic. An arrow from one topic to another means the first
influences the second; thicker links are stronger.

Click a topic or use tab and enter to see how it behaves over time.
Use f to focus on one topic and its direct links, r to return to the
saved layout and R to shuffle it.

Press any key to start.`
