package activity

import (
	"reflect"
	"sync"

	"github.com/google/uuid"
	"github.com/ygrebnov/activity/metrics"
)

// Collector is the request/run-scoped heterogeneous map from activity
// identity to result slot (C2). It owns the shared context value and a
// correlation id used to tag log lines and synthesized failures.
//
// The context is stored as `any` rather than as a Collector[ContextT] type
// parameter: Go generics have no variadic type parameter, so the C++
// collector<ContextT, Activities...>'s compile-time key set cannot be
// represented as a type signature here regardless of whether the context is
// generic. Keeping Collector itself non-generic removes the need to thread
// a context type parameter through every function in the package, at no
// additional loss of safety relative to the per-activity type-token scheme
// (see Context[T] for the typed read path).
type Collector struct {
	mu  sync.RWMutex
	ctx any
	id  uuid.UUID

	slots map[reflect.Type]any

	reactor         Reactor
	metrics         metrics.Provider
	logger          Logger
	defaultRequired bool
}

// CollectorOption configures a Collector at construction time.
type CollectorOption func(*Collector)

// WithMetrics attaches a metrics.Provider-shaped instrument source. Defaults
// to a no-op provider.
func WithMetrics(p metrics.Provider) CollectorOption {
	return func(c *Collector) { c.metrics = p }
}

// WithLogger attaches a Logger. Defaults to a no-op logger.
func WithLogger(l Logger) CollectorOption {
	return func(c *Collector) { c.logger = l }
}

// WithReactor attaches the Reactor every activity attached to this Collector
// dispatches its listeners through. Defaults to a dynamically sized
// goroutine-pool Reactor (NewReactor(0)).
func WithReactor(r Reactor) CollectorOption {
	return func(c *Collector) { c.reactor = r }
}

// WithCollectorDefaultRequired sets the required flag newly attached
// activities start with, before any per-subtask Required(v) override.
// Defaults to true.
func WithCollectorDefaultRequired(v bool) CollectorOption {
	return func(c *Collector) { c.defaultRequired = v }
}

// FromEngineConfig applies cfg's reactor pool size, default-required flag,
// and (if non-nil) logger/metrics to a Collector under construction.
func FromEngineConfig(cfg *EngineConfig, logger Logger, metricsProvider metrics.Provider) CollectorOption {
	return func(c *Collector) {
		if metricsProvider != nil {
			c.metrics = metricsProvider
		}
		if logger != nil {
			c.logger = logger
		}
		c.reactor = cfg.Reactor(WithReactorMetrics(c.metrics))
		c.defaultRequired = cfg.DefaultRequired
	}
}

// NewCollector constructs a Collector holding ctx. The activity type set is
// not declared up front (OQ1): slots are created lazily the first time an
// activity touches the collector, and reading a type that never touched it
// returns the defaults documented on each generic accessor function (see
// accessor.go); no error is reported for such a type.
func NewCollector(ctx any, opts ...CollectorOption) *Collector {
	c := &Collector{
		ctx:             ctx,
		id:              uuid.New(),
		slots:           make(map[reflect.Type]any),
		metrics:         metrics.NewNoopProvider(),
		logger:          NewNoopLogger(),
		defaultRequired: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.reactor == nil {
		// Built after opts so the default reactor's worker-pool
		// instrumentation reports through whatever metrics.Provider this
		// Collector ended up with, rather than always the no-op default.
		c.reactor = NewReactor(0, WithReactorMetrics(c.metrics))
	}
	return c
}

// ID returns the collector's run-scoped correlation id.
func (c *Collector) ID() uuid.UUID { return c.id }

// Reactor returns the Reactor every activity attached to this Collector
// dispatches its listeners through.
func (c *Collector) Reactor() Reactor { return c.reactor }

// Metrics returns the metrics.Provider attached to this Collector.
func (c *Collector) Metrics() metrics.Provider { return c.metrics }

// Logger returns the Logger attached to this Collector.
func (c *Collector) Logger() Logger { return c.logger }

// DefaultRequired returns the required flag newly attached activities
// start with.
func (c *Collector) DefaultRequired() bool { return c.defaultRequired }

// RawContext returns the raw, untyped context value. Prefer Context[T](c) for
// the typed read.
func (c *Collector) RawContext() any { return c.ctx }

// Context returns the collector's shared context, asserted to T. It panics
// if the collector was not constructed with a value assignable to T — this
// mirrors the engine's fail-fast posture for programmer error rather than a
// recoverable runtime condition.
func Context[T any](c *Collector) T {
	v, ok := c.ctx.(T)
	if !ok {
		panic(Namespace + ": collector context is not of the requested type")
	}
	return v
}

func slotFor[Self any, S, F any](c *Collector) (*Slot[S, F], bool) {
	key := reflect.TypeFor[Self]()

	c.mu.RLock()
	if sl, ok := c.slots[key]; ok {
		c.mu.RUnlock()
		return sl.(*Slot[S, F]), true
	}
	c.mu.RUnlock()
	return nil, false
}

func slotForOrCreate[Self any, S, F any](c *Collector) *Slot[S, F] {
	key := reflect.TypeFor[Self]()

	c.mu.Lock()
	defer c.mu.Unlock()
	if sl, ok := c.slots[key]; ok {
		return sl.(*Slot[S, F])
	}
	sl := &Slot[S, F]{}
	c.slots[key] = sl
	return sl
}

// registered reports whether c holds a slot for Self, which is created when
// an activity of that type is attached.
func registered[Self any](c *Collector) bool {
	key := reflect.TypeFor[Self]()
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.slots[key]
	return ok
}
