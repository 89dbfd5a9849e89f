package tablefsm

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records parse activity. A nil *Metrics records nothing.
type Metrics struct {
	frames   *prometheus.CounterVec
	inBytes  prometheus.Counter
	outBytes prometheus.Counter
	duration prometheus.Histogram
}

// NewMetrics creates the parse collectors and registers them with reg, if reg is not nil.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	m := &Metrics{
		frames: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "frames_total",
				Help:      "Total number of parsed frames by result",
			},
			[]string{"result"},
		),
		inBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "input_bytes_total",
			Help:      "Total number of input bytes handed to the engine",
		}),
		outBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "output_bytes_total",
			Help:      "Total number of output symbols produced by successful parses",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "parse_duration_seconds",
			Help:      "Duration of single frame parses",
			Buckets:   prometheus.ExponentialBuckets(1e-7, 4, 10),
		}),
	}

	if reg != nil {
		reg.MustRegister(m.frames, m.inBytes, m.outBytes, m.duration)
	}
	return m
}

func (m *Metrics) observe(in, out int, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.frames.WithLabelValues(resultLabel(err)).Inc()
	m.inBytes.Add(float64(in))
	m.outBytes.Add(float64(out))
	m.duration.Observe(d.Seconds())
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrSizeMismatch):
		return "size_mismatch"
	case errors.Is(err, ErrIncomplete):
		return "incomplete"
	case errors.Is(err, ErrInvalidConfig):
		return "invalid_config"
	}
	return "error"
}
