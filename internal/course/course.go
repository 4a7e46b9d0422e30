package course

import (
	"context"
	"log/slog"
	"math"
	"slices"
	"sync"
)

// DefaultName is used when a course is constructed without a display name.
const DefaultName = "Main Course"

// Course is the composite node of a course tree. It owns a named set of
// parts (leaf activities or nested courses), offers the next incomplete part
// round-robin, routes dotted-path execution into nested courses, aggregates
// per-activity states into a course-level state, and restores persisted
// states from a previous session.
//
// The incomplete queue, cursor, and recorded states are guarded by a mutex
// because the executor overlaps the intro execution with state restoration.
// The mutex is released while a leaf activity executes.
type Course struct {
	name   string
	target RenderTarget
	logger *slog.Logger

	mu          sync.Mutex
	parts       map[string]Part
	order       []string // insertion order of accepted parts
	incompletes []string
	cursor      int
	mandatory   int
	states      map[string]ActivityState
}

// New creates a course from an ordered list of parts. Parts with invalid or
// duplicate names are dropped with a diagnostic. An empty name falls back to
// DefaultName; a nil logger falls back to slog.Default(). The part named
// "intro" is recorded but excluded from sequencing.
func New(name string, target RenderTarget, parts []Part, logger *slog.Logger) *Course {
	if name == "" {
		name = DefaultName
	}
	if logger == nil {
		logger = slog.Default()
	}
	c := &Course{
		name:   name,
		target: target,
		logger: logger,
		parts:  make(map[string]Part, len(parts)),
		states: make(map[string]ActivityState),
	}
	for _, p := range parts {
		pname := p.Name()
		if !ValidName(pname) {
			logger.Warn("ignoring part with invalid name", "course", name, "part", pname)
			continue
		}
		if _, dup := c.parts[pname]; dup {
			logger.Warn("ignoring duplicate part", "course", name, "part", pname)
			continue
		}
		switch p := p.(type) {
		case Activity:
			if p.IsMandatory() {
				c.mandatory++
			}
		case *Course:
			c.mandatory += p.MandatoryActivities()
		default:
			logger.Warn("ignoring part of unknown kind", "course", name, "part", pname)
			continue
		}
		c.parts[pname] = p
		c.order = append(c.order, pname)
		if pname != IntroName {
			c.incompletes = append(c.incompletes, pname)
		}
	}
	return c
}

// Name returns the course name, used for path-prefixing when nested.
func (c *Course) Name() string { return c.name }

// MandatoryActivities returns the course's own mandatory activity count plus
// the recursively summed counts of its nested courses.
func (c *Course) MandatoryActivities() int { return c.mandatory }

// ExecuteActivity resolves a dotted activity path and executes the addressed
// leaf, recording its state and removing it from the incomplete queue once
// complete. Unresolvable names are a no-op failure, never an error: they
// yield {progress: 1, success: false} without side effects. After the result
// is known, the logical successor's preparation is kicked off in the
// background.
func (c *Course) ExecuteActivity(ctx context.Context, name string) ActivityState {
	head, tail := SplitName(name)

	c.mu.Lock()
	part, ok := c.parts[head]
	if !ok {
		if head == IntroName && tail == "" {
			if prep, found := c.nextPreparerLocked(); found {
				c.mu.Unlock()
				return c.runIntro(ctx, prep)
			}
		}
		c.mu.Unlock()
		c.logger.Debug("unknown activity requested", "course", c.name, "name", name)
		return ActivityState{Progress: 1, Success: false}
	}

	switch p := part.(type) {
	case *Course:
		c.mu.Unlock()
		if tail == "" {
			c.logger.Debug("course addressed without activity", "course", c.name, "name", name)
			return ActivityState{Progress: 1, Success: false}
		}
		return p.ExecuteActivity(ctx, tail)

	case Activity:
		c.mu.Unlock()
		if tail != "" {
			c.logger.Debug("activity addressed with trailing path", "course", c.name, "name", name)
			return ActivityState{Progress: 1, Success: false}
		}
		state, err := p.Execute(ctx, c.target)
		if err != nil {
			c.logger.Error("activity execution failed", "course", c.name, "activity", head, "error", err)
			return ActivityState{}
		}
		c.mu.Lock()
		c.states[head] = state
		if state.Complete() {
			c.removeIncompleteLocked(head)
		}
		c.prepareNextLocked(ctx)
		c.mu.Unlock()
		return state
	}
	c.mu.Unlock()
	return ActivityState{Progress: 1, Success: false}
}

// runIntro executes a synthesized waiting intro bound to the next activity's
// preparation.
func (c *Course) runIntro(ctx context.Context, prep Preparer) ActivityState {
	intro := NewWaitingIntro(prep.Prepare, "", DefaultIntroDelay)
	state, err := intro.Execute(ctx, c.target)
	if err != nil {
		c.logger.Error("intro execution failed", "course", c.name, "error", err)
		return ActivityState{}
	}
	return state
}

// NextActivity returns the dotted name of the next incomplete activity,
// scanning round-robin from the cursor. Nested courses that report no
// activity left are finalized and removed. The empty string signals course
// completion.
func (c *Course) NextActivity() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	for len(c.incompletes) > 0 {
		if c.cursor >= len(c.incompletes) {
			// the entry behind the cursor was removed; wrap around.
			c.cursor = 0
		}
		name := c.incompletes[c.cursor]
		sub, ok := c.parts[name].(*Course)
		if !ok {
			return name
		}
		next := sub.NextActivity()
		if next != "" {
			return JoinName(name, next)
		}
		if err := sub.Finalize(context.Background()); err != nil {
			c.logger.Error("finalize sub-course failed", "course", c.name, "sub", name, "error", err)
		}
		c.removeIncompleteLocked(name)
	}
	return ""
}

// Finalize is invoked once the course has no activities left. The composite
// itself has no teardown work; the hook exists for the executor and for
// nested-course removal.
func (c *Course) Finalize(ctx context.Context) error { return nil }

// State aggregates the recorded activity states into the course-level state.
// Mandatory, executed leaves contribute their progress; nested courses
// contribute progress weighted by their mandatory count. Scores are summed
// over all children whenever present. Once complete, success additionally
// requires the aggregate score to reach 80% of the aggregate maxScore.
func (c *Course) State() ActivityState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Course) stateLocked() ActivityState {
	var sum float64
	success := true
	var score, maxScore float64
	hasScore := false

	for _, name := range c.order {
		switch p := c.parts[name].(type) {
		case *Course:
			st := p.State()
			n := p.MandatoryActivities()
			sum += math.Round(st.Progress * float64(n))
			if n > 0 && st.Complete() {
				success = success && st.Success
			}
			if st.Score != nil {
				hasScore = true
				score += *st.Score
				maxScore += *st.MaxScore
			}
		case Activity:
			st, executed := c.states[name]
			if !executed {
				continue
			}
			if p.IsMandatory() {
				sum += st.Progress
				if st.Complete() {
					success = success && st.Success
				}
			}
			if st.Score != nil {
				hasScore = true
				score += *st.Score
				maxScore += *st.MaxScore
			}
		}
	}

	out := ActivityState{}
	if hasScore {
		out.Score = &score
		out.MaxScore = &maxScore
	}
	progress := 1.0
	if c.mandatory > 0 {
		progress = sum / float64(c.mandatory)
	}
	if progress >= 1 {
		if hasScore && score < 0.8*maxScore {
			success = false
		}
		out.Progress = 1
		out.Success = success
		return out
	}
	out.Progress = progress
	out.Success = false
	return out
}

// SetActivityStates restores persisted states from a previous session. Each
// dotted name is resolved like in ExecuteActivity; entries for unknown parts
// or with invalid states are dropped with a diagnostic. A state already
// recorded in this session is never overwritten.
func (c *Course) SetActivityStates(states map[string]ActivityState) {
	subStates := make(map[string]map[string]ActivityState)

	c.mu.Lock()
	for name, state := range states {
		head, tail := SplitName(name)
		part, ok := c.parts[head]
		if !ok {
			c.logger.Warn("dropping state for unknown part", "course", c.name, "name", name)
			continue
		}
		switch part.(type) {
		case *Course:
			if tail == "" {
				c.logger.Warn("dropping state addressed at a course", "course", c.name, "name", name)
				continue
			}
			m := subStates[head]
			if m == nil {
				m = make(map[string]ActivityState)
				subStates[head] = m
			}
			m[tail] = state
		case Activity:
			if tail != "" {
				c.logger.Warn("dropping state with trailing path", "course", c.name, "name", name)
				continue
			}
			if _, exists := c.states[head]; exists {
				continue
			}
			if err := state.Validate(); err != nil {
				c.logger.Warn("dropping invalid activity state", "course", c.name, "name", name, "error", err)
				continue
			}
			c.states[head] = state
			if state.Complete() {
				c.removeIncompleteLocked(head)
			}
		}
	}
	c.mu.Unlock()

	for head, m := range subStates {
		c.parts[head].(*Course).SetActivityStates(m)
	}
}

// ActivityExecuted reports whether a state has been recorded for the given
// dotted activity name.
func (c *Course) ActivityExecuted(name string) bool {
	head, tail := SplitName(name)
	c.mu.Lock()
	part, ok := c.parts[head]
	if !ok {
		c.mu.Unlock()
		return false
	}
	if sub, isSub := part.(*Course); isSub {
		c.mu.Unlock()
		if tail == "" {
			return false
		}
		return sub.ActivityExecuted(tail)
	}
	_, executed := c.states[head]
	c.mu.Unlock()
	return executed && tail == ""
}

// removeIncompleteLocked removes a completed part from the incomplete queue.
// If the removed entry was the last one, the cursor wraps to the front;
// otherwise it keeps its index, which now refers to the entry after the
// removed one.
func (c *Course) removeIncompleteLocked(name string) {
	i := slices.Index(c.incompletes, name)
	if i < 0 {
		return
	}
	c.incompletes = slices.Delete(c.incompletes, i, i+1)
	if i == len(c.incompletes) {
		c.cursor = 0
	}
}

// prepareNextLocked spawns the look-ahead preparation of the logical
// successor. The caller is never blocked on it; a failed preparation is only
// logged. If the successor lives in a nested course, that course resolves
// and warms its own successor.
func (c *Course) prepareNextLocked(ctx context.Context) {
	if len(c.incompletes) == 0 {
		return
	}
	i := c.cursor
	if i >= len(c.incompletes) {
		i = 0
	}
	name := c.incompletes[i]
	switch p := c.parts[name].(type) {
	case *Course:
		p.prepareNext(ctx)
	case Activity:
		prep, ok := p.(Preparer)
		if !ok {
			return
		}
		go func() {
			if err := prep.Prepare(ctx); err != nil {
				c.logger.Error("look-ahead prepare failed", "course", c.name, "activity", name, "error", err)
			}
		}()
	}
}

func (c *Course) prepareNext(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prepareNextLocked(ctx)
}

// nextPreparerLocked resolves the currently-next activity to a Preparer, if
// it defines one, descending into nested courses.
func (c *Course) nextPreparerLocked() (Preparer, bool) {
	if len(c.incompletes) == 0 {
		return nil, false
	}
	i := c.cursor
	if i >= len(c.incompletes) {
		i = 0
	}
	switch p := c.parts[c.incompletes[i]].(type) {
	case *Course:
		return p.nextPreparer()
	case Activity:
		prep, ok := p.(Preparer)
		return prep, ok
	}
	return nil, false
}

func (c *Course) nextPreparer() (Preparer, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nextPreparerLocked()
}
