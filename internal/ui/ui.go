// Package ui provides the terminal user interface using Bubble Tea.
package ui

import (
	"context"
	"errors"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/deepskies/internal/catalog"
	"github.com/litescript/deepskies/internal/logging"
	"github.com/litescript/deepskies/internal/render"
	"github.com/litescript/deepskies/internal/state"
	"github.com/litescript/deepskies/internal/surface"
	"github.com/litescript/deepskies/internal/version"
)

// Msg types for Bubble Tea
type (
	// CatalogChangedMsg signals the data file changed on disk.
	CatalogChangedMsg struct {
		Path string
	}

	// frameMsg carries a finished render pass.
	frameMsg struct {
		seq    int
		canvas *surface.Canvas
		stats  render.Stats
		err    error
	}
)

// Options configures the root model.
type Options struct {
	Context     context.Context
	State       *state.Manager
	CatalogPath string
	Render      []render.Option
	Logger      *logging.Logger
}

// Model is the root Bubble Tea model.
type Model struct {
	// Dependencies
	ctx     context.Context
	state   *state.Manager
	path    string
	options []render.Option
	logger  *logging.Logger

	// UI state
	width  int
	height int
	ready  bool

	sky   SkyViewModel
	field string
	seq   int

	// A data file error is announced once per catalog version
	notice    error
	announced bool
}

// New creates a new root UI model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return Model{
		ctx:     ctx,
		state:   opts.State,
		path:    opts.CatalogPath,
		options: append(slices.Clone(opts.Render), render.WithLogger(logger.With("render"))),
		logger:  logger,
		sky:     NewSkyViewModel(opts.State),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.SetWindowTitle("deepskies " + version.Version)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

		// The notification blocks input until dismissed
		if m.notice != nil {
			m.notice = nil
			return m, nil
		}

		changed, err := m.sky.HandleKey(msg)
		if err != nil {
			m.logger.Debug("key %q rejected: %v", msg.String(), err)
			return m, nil
		}
		if changed {
			cmd := m.redraw()
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.sky = m.sky.SetSize(msg.Width, msg.Height)
		cmd := m.redraw()
		return m, cmd

	case CatalogChangedMsg:
		m.logger.Info("catalog changed: %s", msg.Path)
		m.state.CatalogChanged(msg.Path)
		m.announced = false
		cmd := m.redraw()
		return m, cmd

	case frameMsg:
		if msg.seq != m.seq {
			// A newer pass is on its way
			return m, nil
		}
		m.state.Record(msg.stats, msg.err)
		m.field = msg.canvas.Styled()

		if noticeWorthy(msg.err) {
			if !m.announced {
				m.notice = msg.err
				m.announced = true
				m.logger.Error("data file error: %v", msg.err)
			}
		} else {
			m.announced = false
		}
	}

	return m, nil
}

// redraw starts a render pass at the current view and canvas size.
func (m *Model) redraw() tea.Cmd {
	if !m.ready {
		return nil
	}
	m.seq++
	seq := m.seq

	cols, rows := m.sky.CanvasSize()
	canvas := surface.New(cols, rows)
	if err := m.state.SetDisplay(canvas.PixelSize()); err != nil {
		m.logger.Warn("display size rejected: %v", err)
		return nil
	}
	view := m.state.View()
	ctx, path, options := m.ctx, m.path, m.options

	return func() tea.Msg {
		stats, err := render.RenderFile(ctx, path, view, canvas, options...)
		return frameMsg{seq: seq, canvas: canvas, stats: stats, err: err}
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.notice != nil {
		return m.renderNotice()
	}
	return m.sky.View(m.field, m.state.Snapshot(), m.state.RecentEvents(1))
}

// noticeWorthy reports whether err leaves no usable data file. Single-star
// failures never qualify.
func noticeWorthy(err error) bool {
	return errors.Is(err, catalog.ErrFormat) || errors.Is(err, catalog.ErrUnavailable)
}

func (m Model) renderNotice() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#E84A27"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#E84A27")).
		Padding(1, 3)

	var b strings.Builder
	b.WriteString(titleStyle.Render("DATA FILE ERROR"))
	b.WriteString("\n\n")
	b.WriteString(m.notice.Error())
	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render("press any key to continue, q to quit"))

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, boxStyle.Render(b.String()))
}
