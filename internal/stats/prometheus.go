package stats

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

const (
	Namespace = "bvls"
	NameLabel = "name"
)

// Prometheus implements Statistics with one counter vector and one histogram
// vector labelled by statistic name.
type Prometheus struct {
	counters *prometheus.CounterVec
	timers   *prometheus.HistogramVec
	gatherer prometheus.Gatherer
}

func NewPrometheus(reg *prometheus.Registry) (*Prometheus, error) {
	p := &Prometheus{
		counters: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "events_total",
				Help:      "Local search event counters",
			},
			[]string{NameLabel},
		),
		timers: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "duration_seconds",
				Help:      "Local search timers",
				Buckets:   prometheus.ExponentialBuckets(1e-6, 10, 8),
			},
			[]string{NameLabel},
		),
		gatherer: reg,
	}
	if err := reg.Register(p.counters); err != nil {
		return nil, errors.Wrap(err, "register counters")
	}
	if err := reg.Register(p.timers); err != nil {
		return nil, errors.Wrap(err, "register timers")
	}
	return p, nil
}

type promCounter struct {
	c prometheus.Counter
}

func (pc promCounter) Inc()         { pc.c.Inc() }
func (pc promCounter) Add(n uint64) { pc.c.Add(float64(n)) }

type promTimer struct {
	o prometheus.Observer
}

func (pt promTimer) Start() func() {
	t := prometheus.NewTimer(pt.o)
	return func() { t.ObserveDuration() }
}

func (p *Prometheus) Counter(name string) Counter {
	return promCounter{c: p.counters.WithLabelValues(name)}
}

func (p *Prometheus) Timer(name string) Timer {
	return promTimer{o: p.timers.WithLabelValues(name)}
}

// Entry is one gathered statistic. Timers report the total in seconds.
type Entry struct {
	Name  string
	Value float64
	Timer bool
	Count uint64
}

// Snapshot gathers the current values sorted by name.
func (p *Prometheus) Snapshot() ([]Entry, error) {
	families, err := p.gatherer.Gather()
	if err != nil {
		return nil, errors.Wrap(err, "Gather")
	}
	var result []Entry
	for _, family := range families {
		for _, m := range family.GetMetric() {
			name := labelValue(m, NameLabel)
			if name == "" {
				continue
			}
			switch family.GetType() {
			case dto.MetricType_COUNTER:
				result = append(result, Entry{Name: name, Value: m.GetCounter().GetValue()})
			case dto.MetricType_HISTOGRAM:
				h := m.GetHistogram()
				result = append(result, Entry{
					Name:  name,
					Value: h.GetSampleSum(),
					Timer: true,
					Count: h.GetSampleCount(),
				})
			}
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func labelValue(m *dto.Metric, label string) string {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == label {
			return lp.GetValue()
		}
	}
	return ""
}
