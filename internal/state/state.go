// Package state provides thread-safe ownership of the view and the
// diagnostics of the most recent frame.
package state

import (
	"errors"
	"math"
	"sync"
	"time"

	"github.com/litescript/deepskies/internal/astro"
	"github.com/litescript/deepskies/internal/catalog"
	"github.com/litescript/deepskies/internal/render"
)

// EventType represents the type of state change event.
type EventType string

const (
	EventFormatError    EventType = "FORMAT_ERROR"
	EventRecovered      EventType = "RECOVERED"
	EventCatalogChanged EventType = "CATALOG_CHANGED"
)

// Event is a notable change in the catalog's health.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Detail    string    `json:"detail,omitempty"`
}

// Config holds configuration for the state manager.
type Config struct {
	MaxEvents int
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		MaxEvents: 20,
	}
}

// Manager owns the single mutable view. Every change goes through Update, so
// readers never observe a view that failed validation.
type Manager struct {
	mu sync.RWMutex

	view    astro.View
	initial astro.View

	// Last frame
	stats      render.Stats
	lastErr    error
	lastRender time.Time
	frames     int

	// Event log (ring buffer)
	events       []Event
	maxEvents    int
	eventWriteAt int
}

// NewManager creates a manager starting at view.
func NewManager(cfg Config, view astro.View) *Manager {
	maxEvents := cfg.MaxEvents
	if maxEvents <= 0 {
		maxEvents = 20
	}
	return &Manager{
		view:      view,
		initial:   view,
		maxEvents: maxEvents,
		events:    make([]Event, 0, maxEvents),
	}
}

// View returns the current view.
func (m *Manager) View() astro.View {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.view
}

// Update applies fn to a copy of the view, normalizes RA into [0, 360) and
// clamps Dec into [-90, 90], then commits the copy if it validates. On error
// the view is unchanged.
func (m *Manager) Update(fn func(*astro.View)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := m.view
	fn(&next)
	next.CenterRA = astro.Normalize360(next.CenterRA)
	next.CenterDec = clampDec(next.CenterDec)

	if err := validate(next); err != nil {
		return err
	}
	m.view = next
	return nil
}

// SetDisplay records the surface size in pixels.
func (m *Manager) SetDisplay(width, height int) error {
	return m.Update(func(v *astro.View) {
		v.DisplayWidth = width
		v.DisplayHeight = height
	})
}

// Reset restores the starting view, keeping the current display size.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.view = m.initial.WithDisplay(m.view.DisplayWidth, m.view.DisplayHeight)
}

// validate checks a view whose display size may not be known yet.
func validate(v astro.View) error {
	if v.DisplayWidth == 0 && v.DisplayHeight == 0 {
		v = v.WithDisplay(1, 1)
	}
	return v.Validate()
}

func clampDec(dec float64) float64 {
	if math.IsNaN(dec) {
		return dec
	}
	return math.Max(-90, math.Min(90, dec))
}

// Record stores the outcome of a frame. A format error after a healthy frame,
// or a healthy frame after a format error, is logged as an event.
func (m *Manager) Record(stats render.Stats, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	wasBroken := errors.Is(m.lastErr, catalog.ErrFormat)
	isBroken := errors.Is(err, catalog.ErrFormat)
	switch {
	case isBroken && !wasBroken:
		m.addEvent(Event{Type: EventFormatError, Timestamp: time.Now(), Detail: err.Error()})
	case !isBroken && wasBroken:
		m.addEvent(Event{Type: EventRecovered, Timestamp: time.Now()})
	}

	m.stats = stats
	m.lastErr = err
	m.lastRender = time.Now()
	m.frames++
}

// CatalogChanged notes that the data file changed on disk.
func (m *Manager) CatalogChanged(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addEvent(Event{Type: EventCatalogChanged, Timestamp: time.Now(), Detail: path})
}

// addEvent adds an event to the ring buffer.
func (m *Manager) addEvent(e Event) {
	if len(m.events) < m.maxEvents {
		m.events = append(m.events, e)
	} else {
		m.events[m.eventWriteAt] = e
		m.eventWriteAt = (m.eventWriteAt + 1) % m.maxEvents
	}
}

// Snapshot represents an immutable snapshot of current state.
type Snapshot struct {
	View       astro.View
	Stats      render.Stats
	LastError  error
	LastRender time.Time
	Frames     int
}

// Snapshot returns a consistent snapshot of current state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return Snapshot{
		View:       m.view,
		Stats:      m.stats,
		LastError:  m.lastErr,
		LastRender: m.lastRender,
		Frames:     m.frames,
	}
}

// getEventsOrdered returns events in chronological order.
func (m *Manager) getEventsOrdered() []Event {
	if len(m.events) == 0 {
		return nil
	}

	// If buffer isn't full yet, just copy
	if len(m.events) < m.maxEvents {
		result := make([]Event, len(m.events))
		copy(result, m.events)
		return result
	}

	// Ring buffer is full, reorder from oldest to newest
	result := make([]Event, m.maxEvents)
	for i := 0; i < m.maxEvents; i++ {
		idx := (m.eventWriteAt + i) % m.maxEvents
		result[i] = m.events[idx]
	}
	return result
}

// RecentEvents returns the last n events, oldest first.
func (m *Manager) RecentEvents(n int) []Event {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := m.getEventsOrdered()
	if len(all) <= n {
		return all
	}
	return all[len(all)-n:]
}
