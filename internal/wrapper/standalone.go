package wrapper

import (
	"context"
	"maps"
	"sync"

	"github.com/lernmar/lernmar/internal/course"
)

// Standalone is a CourseWrapper that keeps everything in memory and does not
// talk to any host system. It backs tests and ephemeral play sessions.
type Standalone struct {
	// OnStart, if set, is called when the course starts.
	OnStart func()

	// OnStop, if set, is called when the course stops.
	OnStop func()

	mu          sync.Mutex
	learner     Learner
	states      map[string]course.ActivityState
	current     string
	courseState course.ActivityState
}

// NewStandalone creates an in-memory wrapper for the given learner.
func NewStandalone(learner Learner) *Standalone {
	return &Standalone{
		learner: learner,
		states:  make(map[string]course.ActivityState),
	}
}

func (w *Standalone) Start(ctx context.Context) error {
	if w.OnStart != nil {
		w.OnStart()
	}
	return nil
}

func (w *Standalone) Stop(ctx context.Context) error {
	if w.OnStop != nil {
		w.OnStop()
	}
	return nil
}

func (w *Standalone) GetLearner(ctx context.Context) (Learner, error) {
	return w.learner, nil
}

func (w *Standalone) SetCurrentActivity(ctx context.Context, name string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.current = name
	return nil
}

func (w *Standalone) GetCurrentActivity(ctx context.Context) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current, nil
}

func (w *Standalone) SetActivityState(ctx context.Context, name string, state course.ActivityState) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.states[name] = state
	return nil
}

func (w *Standalone) GetActivityState(ctx context.Context, name string) (course.ActivityState, bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	state, ok := w.states[name]
	return state, ok, nil
}

func (w *Standalone) GetActivityStates(ctx context.Context) (map[string]course.ActivityState, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return maps.Clone(w.states), nil
}

func (w *Standalone) SetCourseState(ctx context.Context, state course.ActivityState) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.courseState = state
	return nil
}

func (w *Standalone) GetCourseState(ctx context.Context) (course.ActivityState, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.courseState, nil
}
