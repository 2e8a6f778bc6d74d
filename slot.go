package activity

import "sync"

// Slot is the per-activity result record (C1). One Slot exists per distinct
// activity type per Collector. All mutation is single-shot: the first
// terminal write (success, failure, or cancel-before-any-write) wins, and
// every later write is a checked no-op, matching the source engine's
// double-resolution rule.
type Slot[S, F any] struct {
	mu sync.Mutex

	completed  bool
	canceled   bool
	successSet bool

	success S
	failure F
}

// setSuccess records a successful payload. Requires ¬completed; a call after
// completion is a no-op and reports false.
func (s *Slot[S, F]) setSuccess(payload S) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.completed {
		return false
	}
	s.success = payload
	s.successSet = true
	s.completed = true
	return true
}

// setFailure records a failure payload. Requires ¬completed.
func (s *Slot[S, F]) setFailure(payload F) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.completed {
		return false
	}
	s.failure = payload
	s.completed = true
	return true
}

// cancelPending marks the slot canceled ahead of any write. It is the path
// an external Cancel() call goes through: first terminal event wins, so a
// slot that is already completed (by success or failure) is left untouched
// and this reports false.
func (s *Slot[S, F]) cancelPending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.completed {
		return false
	}
	s.canceled = true
	s.completed = true
	return true
}

// convertToError marks an already-succeeded slot canceled, producing Error.
// This is cancel_if's internal path: it runs inside the same Success() call
// that just set successSet, before either listener list fires, so it must
// bypass the completed guard cancelPending applies. Idempotent on canceled.
func (s *Slot[S, F]) convertToError() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.canceled {
		return false
	}
	s.canceled = true
	return true
}

func (s *Slot[S, F]) Completed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completed
}

func (s *Slot[S, F]) Canceled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canceled
}

func (s *Slot[S, F]) SuccessSet() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.successSet
}

// Okay ≡ completed ∧ successSet ∧ ¬canceled.
func (s *Slot[S, F]) Okay() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completed && s.successSet && !s.canceled
}

// Failed ≡ completed ∧ ¬canceled ∧ ¬successSet.
func (s *Slot[S, F]) Failed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completed && !s.canceled && !s.successSet
}

// Error ≡ completed ∧ successSet ∧ canceled (succeeded, then converted by
// cancel_if).
func (s *Slot[S, F]) Error() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completed && s.successSet && s.canceled
}

// Success returns the recorded success payload. Meaningful only when
// SuccessSet is true; otherwise it is the zero value of S.
func (s *Slot[S, F]) Success() S {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.success
}

// Failure returns the recorded failure payload. Meaningful only when Failed
// is true; otherwise it is the zero value of F.
func (s *Slot[S, F]) Failure() F {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failure
}
