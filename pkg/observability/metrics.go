package observability

import (
	"errors"
	"time"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups every collector waypoint reports. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	mutations *prometheus.CounterVec
	renders   *prometheus.HistogramVec
	entities  *prometheus.GaugeVec
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		mutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "waypoint_mutations_total",
				Help: "Store operations by name and outcome",
			},
			[]string{"operation", "outcome"},
		),
		renders: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "waypoint_render_duration_seconds",
				Help:    "Duration of scene renders per sink",
				Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
			},
			[]string{"sink"},
		),
		entities: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "waypoint_snapshot_entities",
				Help: "Entity counts of the latest snapshot",
			},
			[]string{"kind"},
		),
	}
	reg.MustRegister(m.mutations, m.renders, m.entities)
	return m
}

// ObserveMutation counts one store operation.
func (m *Metrics) ObserveMutation(operation string, err error) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(operation, Outcome(err)).Inc()
}

// ObserveRender records how long a sink took.
func (m *Metrics) ObserveRender(sink string, d time.Duration) {
	if m == nil {
		return
	}
	m.renders.WithLabelValues(sink).Observe(d.Seconds())
}

// ObserveSnapshot publishes the collection sizes of j.
func (m *Metrics) ObserveSnapshot(j *domain.Journey) {
	if m == nil || j == nil {
		return
	}
	m.entities.WithLabelValues("properties").Set(float64(len(j.Properties)))
	m.entities.WithLabelValues("nodes").Set(float64(len(j.Nodes)))
	m.entities.WithLabelValues("functions").Set(float64(len(j.Functions)))
	m.entities.WithLabelValues("mappings").Set(float64(len(j.Mappings)))
	m.entities.WithLabelValues("edges").Set(float64(len(j.Edges)))
}

var outcomes = []struct {
	err   error
	label string
}{
	{domain.ErrDuplicateKey, "duplicate_key"},
	{domain.ErrDuplicateEdge, "duplicate_edge"},
	{domain.ErrDuplicateMapping, "duplicate_mapping"},
	{domain.ErrDuplicateID, "duplicate_id"},
	{domain.ErrSelfLoop, "self_loop"},
	{domain.ErrDanglingReference, "dangling_reference"},
	{domain.ErrMissingRequiredField, "missing_required_field"},
	{domain.ErrInvalidValue, "invalid_value"},
	{domain.ErrIndexOutOfRange, "index_out_of_range"},
	{domain.ErrNotFound, "not_found"},
}

// Outcome maps an operation result to a low-cardinality label.
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	for _, o := range outcomes {
		if errors.Is(err, o.err) {
			return o.label
		}
	}
	return "error"
}
