package metrics

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusProvider implements Provider by registering real Prometheus
// instruments on demand, one per distinct name (for counters, one per
// distinct name and attribute set), reusing the process's
// default registry unless a different Registerer is supplied.
type PrometheusProvider struct {
	namespace string
	reg       prometheus.Registerer

	mu         sync.Mutex
	counters   map[string]wrappedCounter
	updowns    map[string]wrappedUpDown
	histograms map[string]wrappedHistogram
}

// NewPrometheusProvider constructs a PrometheusProvider that registers its
// instruments on reg, prefixing every metric name with namespace. Pass
// prometheus.DefaultRegisterer to publish on the process's global registry.
func NewPrometheusProvider(namespace string, reg prometheus.Registerer) *PrometheusProvider {
	return &PrometheusProvider{
		namespace:  namespace,
		reg:        reg,
		counters:   make(map[string]wrappedCounter),
		updowns:    make(map[string]wrappedUpDown),
		histograms: make(map[string]wrappedHistogram),
	}
}

// applyOptions builds an InstrumentConfig from a list of InstrumentOption,
// applying them in order so a later option can override an earlier one.
func applyOptions(opts []InstrumentOption) InstrumentConfig {
	var cfg InstrumentConfig
	for _, o := range opts {
		if o != nil {
			o(&cfg)
		}
	}
	return cfg
}

func (p *PrometheusProvider) Counter(name string, opts ...InstrumentOption) Counter {
	cfg := applyOptions(opts)
	// fmt prints map keys in sorted order, so equal attribute sets give
	// equal keys.
	key := name + fmt.Sprint(cfg.Attributes)
	p.mu.Lock()
	defer p.mu.Unlock()
	if c, ok := p.counters[key]; ok {
		return c
	}
	c := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace:   p.namespace,
		Name:        name,
		Help:        helpOrDefault(cfg.Description, name),
		ConstLabels: toLabels(cfg.Attributes),
	})
	p.reg.MustRegister(c)
	wc := wrappedCounter{c}
	p.counters[key] = wc
	return wc
}

func (p *PrometheusProvider) UpDownCounter(name string, opts ...InstrumentOption) UpDownCounter {
	cfg := applyOptions(opts)
	p.mu.Lock()
	defer p.mu.Unlock()
	if g, ok := p.updowns[name]; ok {
		return g
	}
	g := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   p.namespace,
		Name:        name,
		Help:        helpOrDefault(cfg.Description, name),
		ConstLabels: toLabels(cfg.Attributes),
	})
	p.reg.MustRegister(g)
	wg := wrappedUpDown{g}
	p.updowns[name] = wg
	return wg
}

func (p *PrometheusProvider) Histogram(name string, opts ...InstrumentOption) Histogram {
	cfg := applyOptions(opts)
	p.mu.Lock()
	defer p.mu.Unlock()
	if h, ok := p.histograms[name]; ok {
		return h
	}
	h := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace:   p.namespace,
		Name:        name,
		Help:        helpOrDefault(cfg.Description, name),
		ConstLabels: toLabels(cfg.Attributes),
	})
	p.reg.MustRegister(h)
	wh := wrappedHistogram{h}
	p.histograms[name] = wh
	return wh
}

// wrappedCounter adapts prometheus.Counter's Add(float64) to Counter's
// Add(int64).
type wrappedCounter struct{ c prometheus.Counter }

func (w wrappedCounter) Add(n int64) { w.c.Add(float64(n)) }

// wrappedUpDown adapts prometheus.Gauge's Add(float64) to UpDownCounter's
// Add(int64).
type wrappedUpDown struct{ g prometheus.Gauge }

func (w wrappedUpDown) Add(n int64) { w.g.Add(float64(n)) }

// wrappedHistogram adapts prometheus.Histogram's Observe to Histogram's
// Record.
type wrappedHistogram struct{ h prometheus.Histogram }

func (w wrappedHistogram) Record(v float64) { w.h.Observe(v) }

func helpOrDefault(desc, name string) string {
	if desc != "" {
		return desc
	}
	return name
}

func toLabels(attrs map[string]string) prometheus.Labels {
	if len(attrs) == 0 {
		return nil
	}
	return prometheus.Labels(attrs)
}
