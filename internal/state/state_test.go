package state

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/litescript/deepskies/internal/astro"
	"github.com/litescript/deepskies/internal/catalog"
	"github.com/litescript/deepskies/internal/render"
)

func newTestManager() *Manager {
	return NewManager(DefaultConfig(), astro.DefaultView().WithDisplay(800, 600))
}

func TestNewManager(t *testing.T) {
	m := newTestManager()

	if m == nil {
		t.Fatal("NewManager returned nil")
	}
	if got := m.View(); got != astro.DefaultView().WithDisplay(800, 600) {
		t.Errorf("View() = %+v", got)
	}
	if n := m.Snapshot().Frames; n != 0 {
		t.Errorf("Frames = %d initially, want 0", n)
	}
}

func TestManager_Update(t *testing.T) {
	m := newTestManager()

	err := m.Update(func(v *astro.View) {
		v.CenterRA = 10
		v.FOV = 30
	})
	if err != nil {
		t.Fatal(err)
	}

	v := m.View()
	if v.CenterRA != 10 || v.FOV != 30 {
		t.Errorf("View() = %+v, want RA 10 FOV 30", v)
	}
}

func TestManager_UpdateNormalizes(t *testing.T) {
	tests := []struct {
		name          string
		ra, dec       float64
		wantRA, wantD float64
	}{
		{"ra wraps forward", 365, 10, 5, 10},
		{"ra wraps back", -15, 10, 345, 10},
		{"dec clamps north", 0, 95, 0, 90},
		{"dec clamps south", 0, -120, 0, -90},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestManager()
			err := m.Update(func(v *astro.View) {
				v.CenterRA = tt.ra
				v.CenterDec = tt.dec
			})
			if err != nil {
				t.Fatal(err)
			}
			v := m.View()
			if math.Abs(v.CenterRA-tt.wantRA) > 1e-9 || v.CenterDec != tt.wantD {
				t.Errorf("view = (%v, %v), want (%v, %v)", v.CenterRA, v.CenterDec, tt.wantRA, tt.wantD)
			}
		})
	}
}

func TestManager_UpdateRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		fn   func(*astro.View)
	}{
		{"zero fov", func(v *astro.View) { v.FOV = 0 }},
		{"negative fov", func(v *astro.View) { v.FOV = -5 }},
		{"nan limit", func(v *astro.View) { v.LimitingMag = math.NaN() }},
		{"nan dec", func(v *astro.View) { v.CenterDec = math.NaN() }},
		{"zero width", func(v *astro.View) { v.DisplayWidth = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestManager()
			before := m.View()
			if err := m.Update(tt.fn); err == nil {
				t.Fatal("expected validation error")
			}
			if after := m.View(); after != before {
				t.Errorf("view changed on rejected update: %+v", after)
			}
		})
	}
}

func TestManager_UpdateBeforeDisplayKnown(t *testing.T) {
	m := NewManager(DefaultConfig(), astro.DefaultView())
	if err := m.Update(func(v *astro.View) { v.FOV = 45 }); err != nil {
		t.Fatalf("update before first resize: %v", err)
	}
	if err := m.SetDisplay(120, 80); err != nil {
		t.Fatal(err)
	}
	v := m.View()
	if v.DisplayWidth != 120 || v.DisplayHeight != 80 || v.FOV != 45 {
		t.Errorf("View() = %+v", v)
	}
}

func TestManager_Reset(t *testing.T) {
	m := newTestManager()
	_ = m.Update(func(v *astro.View) {
		v.CenterRA = 12
		v.Rotation = 90
	})
	_ = m.SetDisplay(100, 40)

	m.Reset()

	want := astro.DefaultView().WithDisplay(100, 40)
	if got := m.View(); got != want {
		t.Errorf("after Reset View() = %+v, want %+v", got, want)
	}
}

func TestManager_Record(t *testing.T) {
	m := newTestManager()
	stats := render.Stats{Drawn: 12, ReadFailures: 1, Duration: 3 * time.Millisecond}

	m.Record(stats, nil)

	snap := m.Snapshot()
	if snap.Stats != stats {
		t.Errorf("Stats = %+v, want %+v", snap.Stats, stats)
	}
	if snap.LastError != nil {
		t.Errorf("LastError = %v", snap.LastError)
	}
	if snap.Frames != 1 {
		t.Errorf("Frames = %d", snap.Frames)
	}
	if snap.LastRender.IsZero() {
		t.Error("LastRender should be set")
	}
	if events := m.RecentEvents(10); len(events) != 0 {
		t.Errorf("healthy frame produced events: %+v", events)
	}
}

func TestManager_FormatErrorEvents(t *testing.T) {
	m := newTestManager()
	formatErr := &catalog.FormatError{Kind: catalog.Misaligned, Size: 62}

	m.Record(render.Stats{}, formatErr)
	m.Record(render.Stats{}, formatErr)
	m.Record(render.Stats{Drawn: 3}, nil)

	events := m.RecentEvents(10)
	if len(events) != 2 {
		t.Fatalf("events = %+v, want FORMAT_ERROR then RECOVERED", events)
	}
	if events[0].Type != EventFormatError || events[1].Type != EventRecovered {
		t.Errorf("event types = %q, %q", events[0].Type, events[1].Type)
	}
	if events[0].Detail == "" {
		t.Error("format error event should carry the error text")
	}
}

func TestManager_AccessErrorIsNotAnEvent(t *testing.T) {
	m := newTestManager()
	m.Record(render.Stats{}, errors.New("open STARS.DAT: permission denied"))
	if got := m.RecentEvents(10); len(got) != 0 {
		t.Errorf("events = %+v, want none", got)
	}
	if m.Snapshot().LastError == nil {
		t.Error("LastError should be kept")
	}
}

func TestManager_EventRingBuffer(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxEvents = 5
	m := NewManager(cfg, astro.DefaultView())

	for i := 0; i < 10; i++ {
		m.CatalogChanged(fmt.Sprintf("STARS-%d.DAT", i))
	}

	events := m.RecentEvents(100)
	if len(events) != 5 {
		t.Fatalf("events count = %d, want 5 (max)", len(events))
	}
	if events[0].Detail != "STARS-5.DAT" || events[4].Detail != "STARS-9.DAT" {
		t.Errorf("ring order = %q .. %q", events[0].Detail, events[4].Detail)
	}
	for i := 1; i < len(events); i++ {
		if events[i].Timestamp.Before(events[i-1].Timestamp) {
			t.Errorf("events not in chronological order at index %d", i)
		}
	}

	if got := m.RecentEvents(2); len(got) != 2 || got[1].Detail != "STARS-9.DAT" {
		t.Errorf("RecentEvents(2) = %+v", got)
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	m := newTestManager()

	var wg sync.WaitGroup
	iterations := 100

	// Writer goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < iterations; i++ {
			_ = m.Update(func(v *astro.View) { v.CenterRA += 1 })
			m.Record(render.Stats{Drawn: i}, nil)
		}
	}()

	// Reader goroutines
	for r := 0; r < 5; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				_ = m.Snapshot()
				_ = m.View()
				_ = m.RecentEvents(3)
			}
		}()
	}

	wg.Wait()

	if got := m.View().CenterRA; got != 40 {
		t.Errorf("CenterRA = %v, want 40 after 100 wrapped increments", got)
	}
}
