package maelstrom

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Reasons an event is dropped by the loop.
const (
	DropNoHandler    = "no_handler"
	DropHandlerError = "handler_error"
	DropReinit       = "reinit"
)

// Metrics are the counters maintained by a node. Each node has its own
// registry so several nodes can live in one process.
type Metrics struct {
	Registry *prometheus.Registry

	EventsTotal    *prometheus.CounterVec
	MessagesSent   *prometheus.CounterVec
	EventsDropped  *prometheus.CounterVec
	MalformedInput prometheus.Counter
}

// NewMetrics returns counters registered on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		EventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "maelstrom",
				Name:      "events_total",
				Help:      "Events processed by the event loop.",
			},
			[]string{"kind", "key"},
		),
		MessagesSent: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "maelstrom",
				Name:      "messages_sent_total",
				Help:      "Messages written to STDOUT.",
			},
			[]string{"type"},
		),
		EventsDropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "maelstrom",
				Name:      "events_dropped_total",
				Help:      "Events that produced no reply.",
			},
			[]string{"reason"},
		),
		MalformedInput: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "maelstrom",
				Name:      "malformed_input_total",
				Help:      "Input lines that could not be decoded.",
			},
		),
	}
	m.Registry.MustRegister(m.EventsTotal, m.MessagesSent, m.EventsDropped, m.MalformedInput)
	return m
}

func (m *Metrics) observe(ev Event) {
	kind := "tick"
	if _, ok := ev.(Inbound); ok {
		kind = "inbound"
	}
	m.EventsTotal.WithLabelValues(kind, ev.Key()).Inc()
}

// ServeMetrics exposes the registry on addr at /metrics in the background.
// Shut the returned server down to stop it.
func ServeMetrics(addr string, reg *prometheus.Registry, logger *zap.SugaredLogger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorw("Metrics server stopped", "addr", addr, "error", err)
		}
	}()
	return srv
}
