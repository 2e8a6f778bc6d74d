package activity

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultReactor_PostRunsTask(t *testing.T) {
	r := NewReactor(0)
	done := make(chan struct{})
	r.Post(func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("posted task never ran")
	}
}

func TestDefaultReactor_FixedPoolRunsTask(t *testing.T) {
	r := NewReactor(2)
	done := make(chan struct{})
	r.Post(func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("posted task never ran")
	}
}

func TestDefaultReactor_TimerCancelPreventsFiring(t *testing.T) {
	r := NewReactor(0)
	fired := make(chan struct{})
	cancel := r.Timer(50*time.Millisecond, func() { close(fired) })
	cancel()

	select {
	case <-fired:
		t.Fatal("canceled timer must not fire")
	case <-time.After(150 * time.Millisecond):
	}
}

func TestDefaultReactor_TimerFiresWithoutCancel(t *testing.T) {
	r := NewReactor(0)
	fired := make(chan struct{})
	r.Timer(10*time.Millisecond, func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("timer never fired")
	}
}

func TestStrand_PreservesFIFOOrder(t *testing.T) {
	r := NewReactor(0)
	s := r.Strand()

	var mu sync.Mutex
	var order []int
	var wg sync.WaitGroup
	wg.Add(100)
	for i := 0; i < 100; i++ {
		i := i
		s.Post(func() {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			wg.Done()
		})
	}
	wg.Wait()

	for i, v := range order {
		assert.Equal(t, i, v, "strand must run tasks in submission order")
	}
}

func TestStrand_OverflowFallsBackToParent(t *testing.T) {
	r := NewReactor(0)
	s := r.Strand().(*strand)

	// Saturate the strand's bounded queue without letting the drain loop
	// consume it, forcing the next Post to overflow to the parent reactor.
	block := make(chan struct{})
	s.tasks <- func() { <-block }
	for len(s.tasks) < cap(s.tasks) {
		s.tasks <- func() {}
	}

	done := make(chan struct{})
	s.Post(func() { close(done) })
	close(block)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("overflow task never ran via parent fallback")
	}
}
