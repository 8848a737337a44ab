// Package metrics instruments record dispatch with Prometheus collectors.
package metrics

import (
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"astm-mapper/codec"
	"astm-mapper/dispatch"
)

// Outcomes of a decoded or encoded record.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// unknownCode replaces the code label of records no schema is registered
// for, keeping label cardinality bounded.
const unknownCode = "unknown"

var reasons = []struct {
	err  error
	name string
}{
	{codec.ErrMissingRequiredField, "missing_required_field"},
	{codec.ErrInvalidEnumValue, "invalid_enum_value"},
	{codec.ErrLengthExceeded, "length_exceeded"},
	{codec.ErrMalformedLiteral, "malformed_literal"},
	{codec.ErrConstantMismatch, "constant_mismatch"},
	{codec.ErrUnexpectedTrailingToken, "unexpected_trailing_token"},
	{codec.ErrUnknownField, "unknown_field"},
	{codec.ErrUnsupportedValue, "unsupported_value"},
}

// Reason returns the label value for a field error sentinel, or "other".
func Reason(err error) string {
	for _, r := range reasons {
		if errors.Is(err, r.err) {
			return r.name
		}
	}

	return "other"
}

// Metrics holds the dispatch collectors.
type Metrics struct {
	mu sync.Mutex

	records     *prometheus.CounterVec
	fieldErrors *prometheus.CounterVec
	duration    *prometheus.HistogramVec

	registerer prometheus.Registerer
	registered bool
}

func newCounterVec(name, help string, labels []string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "astm",
			Subsystem: "mapper",
			Name:      name,
			Help:      help,
		},
		labels,
	)
}

// New creates the collectors. A nil registerer selects the default one.
func New(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &Metrics{
		registerer:  registerer,
		records:     newCounterVec("records_total", "Records processed by type code, direction and outcome", []string{"code", "direction", "outcome"}),
		fieldErrors: newCounterVec("field_errors_total", "Field level failures by type code and reason", []string{"code", "reason"}),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "astm",
				Subsystem: "mapper",
				Name:      "decode_duration_seconds",
				Help:      "Time spent decoding one record",
				Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01},
			},
			[]string{"code"},
		),
	}
}

// Register registers the collectors. Safe to call multiple times.
func (m *Metrics) Register() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.registered {
		return nil
	}

	for _, c := range []prometheus.Collector{m.records, m.fieldErrors, m.duration} {
		if err := m.registerer.Register(c); err != nil {
			var already prometheus.AlreadyRegisteredError
			if !errors.As(err, &already) {
				return err
			}
		}
	}

	m.registered = true

	return nil
}

// Dispatcher wraps next so every dispatched record is counted and timed.
func (m *Metrics) Dispatcher(next dispatch.Dispatcher) dispatch.Dispatcher {
	return &instrumented{next: next, m: m}
}

// ObserveEncode records the outcome of encoding one record.
func (m *Metrics) ObserveEncode(code string, err error) {
	m.observe(code, "encode", err)
}

func (m *Metrics) observe(code, direction string, err error) {
	if errors.Is(err, dispatch.ErrUnknownTypeCode) {
		code = unknownCode
	}

	if err == nil {
		m.records.WithLabelValues(code, direction, OutcomeOK).Inc()
		return
	}

	m.records.WithLabelValues(code, direction, OutcomeError).Inc()

	fes := codec.FieldErrors(err)
	if len(fes) == 0 {
		m.fieldErrors.WithLabelValues(code, Reason(err)).Inc()
		return
	}

	for _, fe := range fes {
		m.fieldErrors.WithLabelValues(code, Reason(fe.Err)).Inc()
	}
}

type instrumented struct {
	next dispatch.Dispatcher
	m    *Metrics
}

func (d *instrumented) Dispatch(code string, tokens []string) (*codec.Record, error) {
	start := time.Now()
	rec, err := d.next.Dispatch(code, tokens)

	if !errors.Is(err, dispatch.ErrUnknownTypeCode) {
		d.m.duration.WithLabelValues(code).Observe(time.Since(start).Seconds())
	}

	d.m.observe(code, "decode", err)

	return rec, err
}
