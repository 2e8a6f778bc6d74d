package metrics

// NoopProvider is the Collector's default Provider before a real one (such
// as PrometheusProvider) is supplied via a CollectorOption: every activity's
// metricTerminal call still has somewhere to go, it just lands nowhere.
type NoopProvider struct{}

// NewNoopProvider constructs a Provider that discards every activity
// terminal-state count, success/failure instrument, and latency
// observation passed to it.
func NewNoopProvider() NoopProvider { return NoopProvider{} }

// discard satisfies Counter, UpDownCounter, and Histogram at once: none of
// them need to remember anything, so one empty type covers all three
// instrument shapes the Provider interface hands out.
type discard struct{}

func (discard) Add(int64)     {}
func (discard) Record(float64) {}

func (NoopProvider) Counter(string, ...InstrumentOption) Counter { return discard{} }

func (NoopProvider) UpDownCounter(string, ...InstrumentOption) UpDownCounter { return discard{} }

func (NoopProvider) Histogram(string, ...InstrumentOption) Histogram { return discard{} }
