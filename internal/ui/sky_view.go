package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/deepskies/internal/astro"
	"github.com/litescript/deepskies/internal/state"
)

const (
	// Pan step as a fraction of the field of view
	panFraction = 8.0

	zoomFactor = 1.25
	minFOV     = 1.0
	maxFOV     = 180.0

	rotateStep = 15.0
	magStep    = 0.5
)

// action is a view mutation bound to a key.
type action func(*astro.View)

// keyActions maps keys to view mutations. East is on the left, so panning
// left moves toward larger right ascension.
var keyActions = map[string]action{
	"up":    panDec(+1),
	"k":     panDec(+1),
	"down":  panDec(-1),
	"j":     panDec(-1),
	"left":  panRA(+1),
	"h":     panRA(+1),
	"right": panRA(-1),
	"l":     panRA(-1),
	"+":     zoomIn,
	"=":     zoomIn,
	"-":     zoomOut,
	"[":     rotate(-rotateStep),
	"]":     rotate(+rotateStep),
	"m":     limit(-magStep),
	"M":     limit(+magStep),
}

func panDec(dir float64) action {
	return func(v *astro.View) {
		v.CenterDec += dir * v.FOV / panFraction
	}
}

func panRA(dir float64) action {
	return func(v *astro.View) {
		v.CenterRA += dir * v.FOV / panFraction
	}
}

func zoomIn(v *astro.View) {
	v.FOV = math.Max(minFOV, v.FOV/zoomFactor)
}

func zoomOut(v *astro.View) {
	v.FOV = math.Min(maxFOV, v.FOV*zoomFactor)
}

func rotate(deg float64) action {
	return func(v *astro.View) {
		v.Rotation = astro.Normalize360(v.Rotation + deg)
	}
}

func limit(delta float64) action {
	return func(v *astro.View) {
		v.LimitingMag += delta
	}
}

// SkyViewModel handles navigation keys and lays out the star field.
type SkyViewModel struct {
	state *state.Manager

	width  int
	height int
}

// NewSkyViewModel creates a sky view driving mgr.
func NewSkyViewModel(mgr *state.Manager) SkyViewModel {
	return SkyViewModel{state: mgr}
}

// SetSize updates the viewport size.
func (m SkyViewModel) SetSize(width, height int) SkyViewModel {
	m.width = width
	m.height = height
	return m
}

// CanvasSize returns the cells available to the star field.
func (m SkyViewModel) CanvasSize() (cols, rows int) {
	// Header and status line
	rows = m.height - 2
	if rows < 1 {
		rows = 1
	}
	cols = m.width
	if cols < 1 {
		cols = 1
	}
	return cols, rows
}

// HandleKey applies the key's view mutation. changed reports whether the view
// moved; err is set when the mutation was rejected.
func (m SkyViewModel) HandleKey(msg tea.KeyMsg) (changed bool, err error) {
	key := msg.String()
	if key == "0" {
		m.state.Reset()
		return true, nil
	}
	act, ok := keyActions[key]
	if !ok {
		return false, nil
	}
	if err := m.state.Update(func(v *astro.View) { act(v) }); err != nil {
		return false, err
	}
	return true, nil
}

// View renders the header, the star field and the status line. recent holds
// the latest state events, oldest first.
func (m SkyViewModel) View(field string, snap state.Snapshot, recent []state.Event) string {
	var b strings.Builder
	b.WriteString(m.renderHeader(snap.View))
	b.WriteString("\n")
	b.WriteString(field)
	b.WriteString("\n")
	b.WriteString(m.renderStatus(snap, recent))
	return b.String()
}

func (m SkyViewModel) renderHeader(v astro.View) string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("135")) // violet
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))               // muted purple
	accentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#d0c8ff"))

	title := titleStyle.Render("DeepSkies")
	pointing := accentStyle.Render(fmt.Sprintf("RA %s  Dec %s", FormatRA(v.CenterRA), FormatDec(v.CenterDec)))
	optics := dimStyle.Render(fmt.Sprintf("FOV %.1f°  rot %.0f°  mag ≤ %.1f", v.FOV, v.Rotation, v.LimitingMag))

	return " " + title + "  " + pointing + "  " + optics
}

func (m SkyViewModel) renderStatus(snap state.Snapshot, recent []state.Event) string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	accentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("229"))
	warnStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#E8A027"))
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#E84A27"))

	var status string
	switch {
	case snap.LastError != nil:
		status = errorStyle.Render("ERROR: " + snap.LastError.Error())
	case snap.Frames == 0:
		status = dimStyle.Render("Rendering...")
	default:
		st := snap.Stats
		status = accentStyle.Render(fmt.Sprintf("%d stars", st.Drawn)) +
			dimStyle.Render(fmt.Sprintf(", %d labeled (%s)", st.Labeled, st.Duration.Round(time.Microsecond)))
		if st.Indexed {
			status += dimStyle.Render(" [index]")
		}
		if st.ReadFailures > 0 {
			status += "  " + warnStyle.Render(fmt.Sprintf("%d unreadable", st.ReadFailures))
		}
		if len(recent) > 0 {
			if note := eventNote(recent[len(recent)-1]); note != "" {
				status += "  " + dimStyle.Render(note)
			}
		}
	}

	help := dimStyle.Render("arrows/hjkl: pan | +/-: zoom | [/]: rotate | m/M: mag | 0: reset | q: quit")
	return " " + status + "  " + dimStyle.Render("|") + "  " + help
}

// eventNote describes a catalog event for the status line. Format errors are
// already shown as the error itself.
func eventNote(e state.Event) string {
	switch e.Type {
	case state.EventCatalogChanged:
		return "catalog reloaded " + e.Timestamp.Format("15:04:05")
	case state.EventRecovered:
		return "catalog recovered " + e.Timestamp.Format("15:04:05")
	default:
		return ""
	}
}

// FormatRA formats degrees of right ascension as hours and minutes.
func FormatRA(deg float64) string {
	totalMin := int(math.Round(astro.Normalize360(deg) * 4)) // 1° = 4 minutes of time
	totalMin %= 24 * 60
	return fmt.Sprintf("%02dh%02dm", totalMin/60, totalMin%60)
}

// FormatDec formats declination as signed degrees and arcminutes.
func FormatDec(deg float64) string {
	sign := '+'
	if deg < 0 {
		sign = '-'
		deg = -deg
	}
	totalMin := int(math.Round(deg * 60))
	return fmt.Sprintf("%c%02d°%02d′", sign, totalMin/60, totalMin%60)
}
