package wrapper

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/lernmar/lernmar/internal/course"
	"github.com/lernmar/lernmar/internal/store"
)

// StoreWrapper is a CourseWrapper persisting through the session store, so a
// course can be resumed in a later player run. Start loads the previous
// session of the course/learner pair; every write updates the session row
// before returning.
type StoreWrapper struct {
	repo     store.SessionRepo
	courseID string
	learner  Learner
	logger   *slog.Logger

	mu      sync.Mutex
	session *store.Session
	states  map[string]course.ActivityState
}

// NewStoreWrapper creates a wrapper persisting the given course for the
// given learner. A nil logger falls back to slog.Default().
func NewStoreWrapper(repo store.SessionRepo, courseID string, learner Learner, logger *slog.Logger) *StoreWrapper {
	if logger == nil {
		logger = slog.Default()
	}
	return &StoreWrapper{
		repo:     repo,
		courseID: courseID,
		learner:  learner,
		logger:   logger,
		states:   make(map[string]course.ActivityState),
	}
}

// Start loads the persisted session, or begins a fresh one if none exists.
// Suspend data entries that fail the shape check are dropped individually.
func (w *StoreWrapper) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	session, err := w.repo.Get(ctx, w.courseID, w.learner.ID)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if session == nil {
		session = &store.Session{
			CourseID:    w.courseID,
			LearnerID:   w.learner.ID,
			LearnerName: w.learner.Name,
		}
	}
	w.session = session
	w.states = DecodeSuspendData(session.SuspendData, w.logger)
	return nil
}

// Stop persists the final session state.
func (w *StoreWrapper) Stop(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.session == nil {
		return nil
	}
	return w.persistLocked(ctx)
}

func (w *StoreWrapper) GetLearner(ctx context.Context) (Learner, error) {
	return w.learner, nil
}

func (w *StoreWrapper) SetCurrentActivity(ctx context.Context, name string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.ensureStartedLocked(); err != nil {
		return err
	}
	w.session.CurrentActivity = name
	return w.persistLocked(ctx)
}

func (w *StoreWrapper) GetCurrentActivity(ctx context.Context) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.ensureStartedLocked(); err != nil {
		return "", err
	}
	return w.session.CurrentActivity, nil
}

func (w *StoreWrapper) SetActivityState(ctx context.Context, name string, state course.ActivityState) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.ensureStartedLocked(); err != nil {
		return err
	}
	w.states[name] = state
	blob, err := EncodeSuspendData(w.states)
	if err != nil {
		return err
	}
	w.session.SuspendData = blob
	return w.persistLocked(ctx)
}

func (w *StoreWrapper) GetActivityState(ctx context.Context, name string) (course.ActivityState, bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.ensureStartedLocked(); err != nil {
		return course.ActivityState{}, false, err
	}
	state, ok := w.states[name]
	return state, ok, nil
}

func (w *StoreWrapper) GetActivityStates(ctx context.Context) (map[string]course.ActivityState, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.ensureStartedLocked(); err != nil {
		return nil, err
	}
	states := make(map[string]course.ActivityState, len(w.states))
	for name, state := range w.states {
		states[name] = state
	}
	return states, nil
}

func (w *StoreWrapper) SetCourseState(ctx context.Context, state course.ActivityState) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.ensureStartedLocked(); err != nil {
		return err
	}
	summary := state.Summary()
	w.session.Progress = summary.Progress
	w.session.Success = summary.Success
	w.session.Score = state.Score
	w.session.MaxScore = state.MaxScore
	return w.persistLocked(ctx)
}

func (w *StoreWrapper) GetCourseState(ctx context.Context) (course.ActivityState, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.ensureStartedLocked(); err != nil {
		return course.ActivityState{}, err
	}
	state := course.ActivityState{
		Progress: w.session.Progress,
		Success:  w.session.Success,
		Score:    w.session.Score,
		MaxScore: w.session.MaxScore,
	}
	return state, nil
}

func (w *StoreWrapper) ensureStartedLocked() error {
	if w.session == nil {
		return fmt.Errorf("wrapper not started")
	}
	return nil
}

func (w *StoreWrapper) persistLocked(ctx context.Context) error {
	if err := w.repo.Save(ctx, w.session); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}
