package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/litescript/deepskies/internal/catalog"
	"github.com/litescript/deepskies/internal/render"
)

func newTestCollector(t *testing.T) (*Collector, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}
	return c, reg
}

func TestObserveFrame(t *testing.T) {
	c, reg := newTestCollector(t)

	c.ObserveFrame(render.Stats{Drawn: 40, ReadFailures: 2, Duration: 3 * time.Millisecond})
	c.ObserveFrame(render.Stats{Drawn: 5, Indexed: true, Duration: time.Millisecond})
	c.ObserveFrame(render.Stats{Drawn: 1, Cancelled: true})

	if got := testutil.ToFloat64(c.Frames.WithLabelValues("scan", "complete")); got != 1 {
		t.Errorf("scan frames = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.Frames.WithLabelValues("index", "complete")); got != 1 {
		t.Errorf("index frames = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.Frames.WithLabelValues("scan", "cancelled")); got != 1 {
		t.Errorf("cancelled frames = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.StarsDrawn); got != 46 {
		t.Errorf("stars drawn = %v, want 46", got)
	}
	if got := testutil.ToFloat64(c.ReadFailures); got != 2 {
		t.Errorf("read failures = %v, want 2", got)
	}

	count, err := testutil.GatherAndCount(reg, "deepskies_frame_duration_seconds")
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("duration series = %d, want 1", count)
	}
}

func TestObserveFailure(t *testing.T) {
	c, _ := newTestCollector(t)

	c.ObserveFailure(&catalog.FormatError{Kind: catalog.Misaligned, Size: 62})
	c.ObserveFailure(errors.New("open STARS.DAT: no such file or directory"))

	if got := testutil.ToFloat64(c.FormatErrors); got != 1 {
		t.Errorf("format errors = %v, want 1", got)
	}
}

func TestNilCollector(t *testing.T) {
	var c *Collector
	c.ObserveFrame(render.Stats{Drawn: 1})
	c.ObserveFailure(errors.New("x"))
}

func TestNewCollector_Reregister(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewCollector(reg)
	if err != nil {
		t.Fatal(err)
	}
	second, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("second NewCollector: %v", err)
	}

	first.StarsDrawn.Add(3)
	if got := testutil.ToFloat64(second.StarsDrawn); got != 3 {
		t.Errorf("collectors should share registered metrics, got %v", got)
	}
}

func TestHandler(t *testing.T) {
	c, _ := newTestCollector(t)
	c.ObserveFrame(render.Stats{Drawn: 7, Duration: time.Millisecond})
	c.ObserveFailure(&catalog.FormatError{Kind: catalog.MissingHeader})

	rr := httptest.NewRecorder()
	c.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("/metrics status = %d, want 200", rr.Code)
	}
	body := rr.Body.String()
	for _, metric := range []string{
		"deepskies_frames_total",
		"deepskies_stars_drawn_total 7",
		"deepskies_star_read_failures_total",
		"deepskies_catalog_format_errors_total 1",
		"deepskies_frame_duration_seconds",
	} {
		if !strings.Contains(body, metric) {
			t.Errorf("expected %q in /metrics output", metric)
		}
	}

	rr = httptest.NewRecorder()
	c.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"ok"`) {
		t.Errorf("/health/live = %d %q", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	c.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rr.Code != http.StatusNotFound {
		t.Errorf("unknown path status = %d, want 404", rr.Code)
	}
}
