// Package executor drives the execution of a course against a wrapper: it
// sequences intro, resume, execute, persist in a loop until the course
// reports no activity left, then finalizes.
package executor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lernmar/lernmar/internal/course"
	"github.com/lernmar/lernmar/internal/wrapper"
)

// DefaultMaxExecutions bounds how often the same activity may be offered in
// a row before the loop aborts. The guard keeps a misbehaving course from
// looping forever.
const DefaultMaxExecutions = 3

// ExecutableCourse is the course surface the executor drives. *course.Course
// implements it.
type ExecutableCourse interface {
	// ExecuteActivity executes the named activity. Unknown names yield a
	// failed synthetic state, never an error.
	ExecuteActivity(ctx context.Context, name string) course.ActivityState

	// SetActivityStates restores states persisted in a previous session.
	SetActivityStates(states map[string]course.ActivityState)

	// State returns the aggregate course state.
	State() course.ActivityState

	// NextActivity returns the next incomplete activity name, or "" once
	// the course is complete.
	NextActivity() string
}

// Finalizer is implemented by courses with teardown work.
type Finalizer interface {
	Finalize(ctx context.Context) error
}

// Options configures a CourseExecutor.
type Options struct {
	Course  ExecutableCourse
	Wrapper wrapper.CourseWrapper

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// MaxExecutions defaults to DefaultMaxExecutions.
	MaxExecutions int
}

// CourseExecutor runs a course to completion. It is terminal: a single call
// to Execute runs one session.
type CourseExecutor struct {
	course        ExecutableCourse
	wrapper       wrapper.CourseWrapper
	logger        *slog.Logger
	maxExecutions int
}

// New creates a CourseExecutor from options, applying defaults.
func New(opts Options) *CourseExecutor {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxExecutions := opts.MaxExecutions
	if maxExecutions <= 0 {
		maxExecutions = DefaultMaxExecutions
	}
	return &CourseExecutor{
		course:        opts.Course,
		wrapper:       opts.Wrapper,
		logger:        logger,
		maxExecutions: maxExecutions,
	}
}

// Execute runs one course session: the intro is started immediately while
// the wrapper connects and previous states are restored, then activities are
// executed and reported one by one until the course signals completion. The
// per-activity state and the aggregate course state are pushed to the
// wrapper strictly after the activity's result is known and strictly before
// the next activity begins.
func (e *CourseExecutor) Execute(ctx context.Context) error {
	introCh := make(chan course.ActivityState, 1)
	go func() { introCh <- e.course.ExecuteActivity(ctx, course.IntroName) }()

	if err := e.wrapper.Start(ctx); err != nil {
		return fmt.Errorf("start wrapper: %w", err)
	}

	states, err := e.wrapper.GetActivityStates(ctx)
	if err != nil {
		e.logger.Error("restoring activity states failed", "error", err)
	} else if len(states) > 0 {
		e.course.SetActivityStates(states)
	}

	name, err := e.wrapper.GetCurrentActivity(ctx)
	if err != nil {
		e.logger.Error("reading current activity failed", "error", err)
		name = ""
	}
	if name == "" {
		name = e.course.NextActivity()
	}

	if err := e.processState(ctx, course.IntroName, <-introCh); err != nil {
		e.logger.Error("reporting intro state failed", "error", err)
	}
	executions := map[string]int{course.IntroName: 1}

	for name != "" {
		executions[name]++
		if executions[name] > e.maxExecutions {
			e.logger.Warn("max executions reached, aborting loop",
				"activity", name, "limit", e.maxExecutions)
			break
		}
		state := e.course.ExecuteActivity(ctx, name)
		if err := e.wrapper.SetCurrentActivity(ctx, name); err != nil {
			e.logger.Error("recording current activity failed", "activity", name, "error", err)
		}
		if err := e.processState(ctx, name, state); err != nil {
			e.logger.Error("reporting activity state failed", "activity", name, "error", err)
		}
		name = e.course.NextActivity()
	}

	if fin, ok := e.course.(Finalizer); ok {
		if err := fin.Finalize(ctx); err != nil {
			e.logger.Error("finalizing course failed", "error", err)
		}
	}
	if err := e.wrapper.Stop(ctx); err != nil {
		return fmt.Errorf("stop wrapper: %w", err)
	}
	return nil
}

// processState pushes an activity's state and the recomputed aggregate
// course state to the wrapper, in that order.
func (e *CourseExecutor) processState(ctx context.Context, name string, state course.ActivityState) error {
	if err := e.wrapper.SetActivityState(ctx, name, state); err != nil {
		return fmt.Errorf("set activity state %q: %w", name, err)
	}
	if err := e.wrapper.SetCourseState(ctx, e.course.State()); err != nil {
		return fmt.Errorf("set course state: %w", err)
	}
	return nil
}
