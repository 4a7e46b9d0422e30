// Package wrapper defines the reporting/persistence boundary of the course
// player and provides the built-in implementations: an in-memory standalone
// wrapper and a store-backed wrapper that survives sessions.
package wrapper

import (
	"context"

	"github.com/lernmar/lernmar/internal/course"
)

// Learner identifies who is taking the course.
type Learner struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CourseWrapper is the boundary to the host reporting system. All operations
// may suspend and must not silently drop a write; callers assume a call has
// completed before the next dependent step proceeds.
type CourseWrapper interface {
	// Start brackets the beginning of a session.
	Start(ctx context.Context) error

	// Stop brackets the end of a session and hands control back to the
	// host system.
	Stop(ctx context.Context) error

	// GetLearner returns the learner taking the course.
	GetLearner(ctx context.Context) (Learner, error)

	// SetCurrentActivity records the resumption pointer. Without it a
	// later session cannot resume at the interrupted activity.
	SetCurrentActivity(ctx context.Context, name string) error

	// GetCurrentActivity returns the last recorded resumption pointer, or
	// "" if none was recorded.
	GetCurrentActivity(ctx context.Context) (string, error)

	// SetActivityState records the state of a single activity under its
	// dotted name.
	SetActivityState(ctx context.Context, name string, state course.ActivityState) error

	// GetActivityState returns the recorded state of an activity. The
	// second result is false if no state is known.
	GetActivityState(ctx context.Context, name string) (course.ActivityState, bool, error)

	// GetActivityStates returns all recorded activity states, including
	// those of previous sessions.
	GetActivityStates(ctx context.Context) (map[string]course.ActivityState, error)

	// SetCourseState records the aggregate course state.
	SetCourseState(ctx context.Context, state course.ActivityState) error

	// GetCourseState returns the last recorded aggregate course state.
	GetCourseState(ctx context.Context) (course.ActivityState, error)
}
