// Package metrics exposes prometheus collectors for editing and replay.
package metrics

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/aretw0/rescuegrid/internal/trace"
	"github.com/aretw0/rescuegrid/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collectors bundles the rescuegrid metrics.
type Collectors struct {
	gatherer prometheus.Gatherer

	GesturesCommitted *prometheus.CounterVec
	Previews          prometheus.Counter
	Replacements      prometheus.Counter
	TraceSteps        *prometheus.CounterVec
}

// New registers the collectors on reg, defaulting to the global registry
// when nil. Registering twice on the same registry reuses the existing
// collectors.
func New(reg prometheus.Registerer) (*Collectors, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	committed, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rescuegrid_gestures_committed_total",
		Help: "Committed editor gestures, labeled by resolved effect.",
	}, []string{"effect"}))
	if err != nil {
		return nil, err
	}
	previews, err := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rescuegrid_previews_total",
		Help: "Live previews produced while dragging.",
	}))
	if err != nil {
		return nil, err
	}
	replacements, err := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rescuegrid_snapshot_replacements_total",
		Help: "Wholesale replacements of the authoritative snapshot.",
	}))
	if err != nil {
		return nil, err
	}
	steps, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rescuegrid_trace_steps_total",
		Help: "Reconstructed trace steps, labeled by status (ok or failed).",
	}, []string{"status"}))
	if err != nil {
		return nil, err
	}

	return &Collectors{
		gatherer:          gatherer,
		GesturesCommitted: committed,
		Previews:          previews,
		Replacements:      replacements,
		TraceSteps:        steps,
	}, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		var zero T
		return zero, fmt.Errorf("register metric: %w", err)
	}
	return c, nil
}

// EditorHooks returns hooks that count editor activity. next, if given,
// is chained after the counters.
func (c *Collectors) EditorHooks(next domain.EditorHooks) domain.EditorHooks {
	return domain.EditorHooks{
		OnPreview: func(ev *domain.GestureEvent) {
			c.Previews.Inc()
			if next.OnPreview != nil {
				next.OnPreview(ev)
			}
		},
		OnCommit: func(ev *domain.GestureEvent) {
			c.GesturesCommitted.WithLabelValues(ev.Effect).Inc()
			if next.OnCommit != nil {
				next.OnCommit(ev)
			}
		},
		OnReplace: func(ev *domain.ReplaceEvent) {
			c.Replacements.Inc()
			if next.OnReplace != nil {
				next.OnReplace(ev)
			}
		},
	}
}

// ObserveFrame counts one reconstructed trace step. It fits trace.WithObserver.
func (c *Collectors) ObserveFrame(f trace.Frame) {
	status := "ok"
	if f.Err != nil {
		status = "failed"
	}
	c.TraceSteps.WithLabelValues(status).Inc()
}

// Handler serves the registry in the prometheus exposition format.
func (c *Collectors) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}

// Gatherer returns the registry the collectors were registered on.
func (c *Collectors) Gatherer() prometheus.Gatherer {
	return c.gatherer
}
