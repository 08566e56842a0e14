// Package metrics exposes frame statistics as Prometheus metrics.
package metrics

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/litescript/deepskies/internal/catalog"
	"github.com/litescript/deepskies/internal/render"
)

// Collector bundles the frame metrics. It implements render.Observer and
// render.FailureObserver.
type Collector struct {
	gatherer prometheus.Gatherer

	Frames        *prometheus.CounterVec
	StarsDrawn    prometheus.Counter
	ReadFailures  prometheus.Counter
	FormatErrors  prometheus.Counter
	FrameDuration prometheus.Histogram
}

// NewCollector registers the metrics against reg, defaulting to the global
// Prometheus registry when nil.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	frames, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "deepskies_frames_total",
		Help: "Frames rendered, labeled by how candidates were chosen and whether the frame finished.",
	}, []string{"mode", "result"}), "deepskies_frames_total")
	if err != nil {
		return nil, err
	}
	drawn, err := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "deepskies_stars_drawn_total",
		Help: "Drawing directives emitted.",
	}), "deepskies_stars_drawn_total")
	if err != nil {
		return nil, err
	}
	failures, err := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "deepskies_star_read_failures_total",
		Help: "Stars skipped because their record could not be read.",
	}), "deepskies_star_read_failures_total")
	if err != nil {
		return nil, err
	}
	formatErrors, err := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "deepskies_catalog_format_errors_total",
		Help: "Render passes aborted because the data file failed validation.",
	}), "deepskies_catalog_format_errors_total")
	if err != nil {
		return nil, err
	}
	duration, err := register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "deepskies_frame_duration_seconds",
		Help:    "Time to produce and draw one frame.",
		Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}), "deepskies_frame_duration_seconds")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:      gatherer,
		Frames:        frames,
		StarsDrawn:    drawn,
		ReadFailures:  failures,
		FormatErrors:  formatErrors,
		FrameDuration: duration,
	}, nil
}

// ObserveFrame records one finished frame.
func (c *Collector) ObserveFrame(s render.Stats) {
	if c == nil {
		return
	}
	mode := "scan"
	if s.Indexed {
		mode = "index"
	}
	result := "complete"
	if s.Cancelled {
		result = "cancelled"
	}
	c.Frames.WithLabelValues(mode, result).Inc()
	c.StarsDrawn.Add(float64(s.Drawn))
	c.ReadFailures.Add(float64(s.ReadFailures))
	c.FrameDuration.Observe(s.Duration.Seconds())
}

// ObserveFailure records a pass that never started.
func (c *Collector) ObserveFailure(err error) {
	if c == nil {
		return
	}
	if errors.Is(err, catalog.ErrFormat) {
		c.FormatErrors.Inc()
	}
}

// Handler returns a router serving /metrics and /health/live.
func (c *Collector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	return r
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T, name string) (T, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
			return c, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return c, err
	}
	return c, nil
}
