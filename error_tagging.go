package activity

import (
	"fmt"
	"reflect"

	"github.com/google/uuid"
)

// ActivityMetaError carries correlation metadata for a failure synthesized by
// the engine itself, as opposed to a failure payload the user produced. It is
// attached when a panic escapes an activity body run through Guard, a
// preparator, or a listener. A panicking hook is recovered and treated as
// returning true instead, without an ActivityMetaError.
type ActivityMetaError struct {
	err          error
	activityType reflect.Type
	activityID   uuid.UUID
}

func newActivityMetaError(err error, activityType reflect.Type, activityID uuid.UUID) *ActivityMetaError {
	return &ActivityMetaError{err: err, activityType: activityType, activityID: activityID}
}

func (e *ActivityMetaError) Error() string { return e.err.Error() }
func (e *ActivityMetaError) Unwrap() error { return e.err }

// ActivityType returns the reflect.Type of the activity the failure is
// attributed to.
func (e *ActivityMetaError) ActivityType() reflect.Type { return e.activityType }

// ActivityID returns the run-scoped correlation id of the failing activity.
func (e *ActivityMetaError) ActivityID() uuid.UUID { return e.activityID }

func (e *ActivityMetaError) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			_, _ = fmt.Fprintf(s, "activity(type=%s,id=%s): %+v", e.activityType, e.activityID, e.err)
			return
		}
		fallthrough
	case 's':
		_, _ = fmt.Fprint(s, e.Error())
	case 'q':
		_, _ = fmt.Fprintf(s, "%q", e.Error())
	}
}

// ExtractActivityType returns the reflect.Type attributed to err, if any.
func ExtractActivityType(err error) (reflect.Type, bool) {
	var ame *ActivityMetaError
	if asActivityMetaError(err, &ame) {
		return ame.activityType, true
	}
	return nil, false
}

// ExtractActivityID returns the correlation id attributed to err, if any.
func ExtractActivityID(err error) (uuid.UUID, bool) {
	var ame *ActivityMetaError
	if asActivityMetaError(err, &ame) {
		return ame.activityID, true
	}
	return uuid.UUID{}, false
}

func asActivityMetaError(err error, target **ActivityMetaError) bool {
	for err != nil {
		if ame, ok := err.(*ActivityMetaError); ok {
			*target = ame
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
