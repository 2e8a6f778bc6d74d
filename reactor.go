package activity

import (
	"sync"
	"time"

	"github.com/ygrebnov/activity/metrics"
)

// Reactor is the external collaborator the engine posts work and listener
// dispatch to (C8). The engine never blocks; it only calls Post to enqueue a
// callback, Timer for user-implemented timeouts, and Strand to obtain a
// serialized sub-reactor when arrival serialization needs one.
type Reactor interface {
	// Post enqueues task to run asynchronously. The default Reactor gives no
	// ordering between separate Post calls; a Strand runs the tasks Posted to
	// it in submission order.
	Post(task func())

	// Timer schedules cb to run after d elapses, returning a function that
	// cancels the timer if it has not yet fired.
	Timer(d time.Duration, cb func()) (cancel func())

	// Strand returns a Reactor that serializes every task Posted to it
	// relative to every other task Posted to the same Strand. The default
	// strand's queue is bounded; a task Posted while it is full runs on the
	// parent Reactor, outside that order.
	Strand() Reactor
}

// reactorWorker is the token a posted task's goroutine borrows from the
// pool for the duration of that task. Every Post starts its own goroutine;
// the pool only bounds (fixedPool) or tracks how many posted tasks run at
// once.
type reactorWorker struct{}

// workerPool is the narrow borrow/return contract defaultReactor needs from
// its backing pool, independent of whether that pool holds a bounded or an
// unbounded number of workers.
type workerPool interface {
	get() *reactorWorker
	put(*reactorWorker)
}

// dynamicPool wraps sync.Pool, letting the worker count grow and shrink with
// GC pressure rather than a fixed cap. This is NewReactor's default
// (poolSize == 0).
type dynamicPool struct{ p sync.Pool }

func newDynamicPool() *dynamicPool {
	return &dynamicPool{p: sync.Pool{New: func() interface{} { return &reactorWorker{} }}}
}

func (d *dynamicPool) get() *reactorWorker  { return d.p.Get().(*reactorWorker) }
func (d *dynamicPool) put(w *reactorWorker) { d.p.Put(w) }

// fixedPool caps the worker count at capacity: every worker is preallocated
// up front and recycled through a buffered channel, so a posted task beyond
// capacity concurrent tasks waits, in its own goroutine, until one is
// returned rather than growing unbounded. Post itself does not block.
type fixedPool struct {
	idle chan *reactorWorker
}

func newFixedPool(capacity uint) *fixedPool {
	p := &fixedPool{idle: make(chan *reactorWorker, capacity)}
	for i := uint(0); i < capacity; i++ {
		p.idle <- &reactorWorker{}
	}
	return p
}

func (p *fixedPool) get() *reactorWorker  { return <-p.idle }
func (p *fixedPool) put(w *reactorWorker) { p.idle <- w }

// defaultReactor runs posted tasks on a worker-pool-backed goroutine set,
// reporting how many workers are currently borrowed to an UpDownCounter so a
// deployment can see reactor saturation alongside the activity terminal-
// state counters Base reports.
type defaultReactor struct {
	pool     workerPool
	metrics  metrics.Provider
	inflight metrics.UpDownCounter
}

// ReactorOption configures a defaultReactor at construction time.
type ReactorOption func(*defaultReactor)

// WithReactorMetrics attaches a metrics.Provider the reactor uses to report
// how many of its workers are currently busy running a posted task.
func WithReactorMetrics(p metrics.Provider) ReactorOption {
	return func(r *defaultReactor) { r.metrics = p }
}

// NewReactor constructs the engine's default goroutine-backed Reactor.
// poolSize selects a fixed-capacity worker pool; zero selects a dynamic
// pool sized by sync.Pool.
func NewReactor(poolSize uint, opts ...ReactorOption) Reactor {
	r := &defaultReactor{metrics: metrics.NewNoopProvider()}
	for _, opt := range opts {
		opt(r)
	}
	if poolSize > 0 {
		r.pool = newFixedPool(poolSize)
	} else {
		r.pool = newDynamicPool()
	}
	r.inflight = r.metrics.UpDownCounter(
		"activity_reactor_workers_inflight",
		metrics.WithDescription("reactor worker pool slots currently running a posted task"),
	)
	return r
}

func (r *defaultReactor) Post(task func()) {
	go func() {
		w := r.pool.get()
		r.inflight.Add(1)
		defer func() {
			r.inflight.Add(-1)
			r.pool.put(w)
		}()
		task()
	}()
}

func (r *defaultReactor) Timer(d time.Duration, cb func()) func() {
	t := time.AfterFunc(d, func() { r.Post(cb) })
	return func() { t.Stop() }
}

func (r *defaultReactor) Strand() Reactor {
	return newStrand(r)
}

// strand serializes every task Posted to it through a single-worker FIFO
// queue, consuming the underlying reactor's Post only to run that queue's
// drain loop.
type strand struct {
	parent Reactor
	tasks  chan func()
}

func newStrand(parent Reactor) *strand {
	s := &strand{parent: parent, tasks: make(chan func(), 256)}
	parent.Post(s.drain)
	return s
}

func (s *strand) drain() {
	for task := range s.tasks {
		task()
	}
}

func (s *strand) Post(task func()) {
	select {
	case s.tasks <- task:
	default:
		// queue saturated: fall back to the parent reactor directly rather
		// than blocking the caller; ordering relative to the strand's own
		// queue is not guaranteed for this overflow task.
		s.parent.Post(task)
	}
}

func (s *strand) Timer(d time.Duration, cb func()) func() {
	return s.parent.Timer(d, func() { s.Post(cb) })
}

func (s *strand) Strand() Reactor { return s }
