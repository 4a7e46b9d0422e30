package course

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type testActivity struct {
	name      string
	mandatory bool
	state     ActivityState
	err       error
	execCount int
}

func (a *testActivity) Name() string      { return a.name }
func (a *testActivity) IsMandatory() bool { return a.mandatory }

func (a *testActivity) Execute(ctx context.Context, target RenderTarget) (ActivityState, error) {
	a.execCount++
	return a.state, a.err
}

type preparingActivity struct {
	testActivity
	prepCount atomic.Int32
	prepared  chan struct{}
}

func newPreparingActivity(name string, mandatory bool) *preparingActivity {
	return &preparingActivity{
		testActivity: testActivity{name: name, mandatory: mandatory, state: ActivityState{Progress: 1, Success: true}},
		prepared:     make(chan struct{}, 8),
	}
}

func (a *preparingActivity) Prepare(ctx context.Context) error {
	a.prepCount.Add(1)
	a.prepared <- struct{}{}
	return nil
}

func completed(name string, mandatory bool) *testActivity {
	return &testActivity{name: name, mandatory: mandatory, state: ActivityState{Progress: 1, Success: true}}
}

func TestNew_DropsInvalidAndDuplicateParts(t *testing.T) {
	c := New("", &fakeTarget{}, []Part{
		completed("a", true),
		completed("a", true),
		completed("", true),
		completed("bad.name", true),
		completed("b", true),
	}, nil)

	if got := c.MandatoryActivities(); got != 2 {
		t.Errorf("MandatoryActivities = %d, want 2 (invalid parts dropped)", got)
	}
	if got := c.NextActivity(); got != "a" {
		t.Errorf("NextActivity = %q, want %q", got, "a")
	}
}

func TestNew_DefaultName(t *testing.T) {
	c := New("", &fakeTarget{}, nil, nil)
	if c.Name() != DefaultName {
		t.Errorf("Name = %q, want %q", c.Name(), DefaultName)
	}
}

func TestMandatoryActivities_SumsNestedCourses(t *testing.T) {
	sub := New("sub", &fakeTarget{}, []Part{
		completed("x", true),
		completed("y", false),
		completed("z", true),
	}, nil)
	c := New("main", &fakeTarget{}, []Part{
		completed("a", true),
		sub,
	}, nil)

	if got := c.MandatoryActivities(); got != 3 {
		t.Errorf("MandatoryActivities = %d, want 3", got)
	}
}

func TestExecuteActivity_UnknownNameIsNoOp(t *testing.T) {
	c := New("main", &fakeTarget{}, []Part{completed("a", true)}, nil)

	for _, name := range []string{"nope", "a.b", "sub.x", ""} {
		state := c.ExecuteActivity(context.Background(), name)
		if state.Progress != 1 || state.Success {
			t.Errorf("ExecuteActivity(%q) = %+v, want {1 false}", name, state)
		}
	}
	if got := c.NextActivity(); got != "a" {
		t.Errorf("NextActivity after unknown executions = %q, want %q (no side effects)", got, "a")
	}
}

func TestExecuteActivity_OutOfOrderCompletion(t *testing.T) {
	c := New("main", &fakeTarget{}, []Part{
		completed("a1", true),
		completed("a2", true),
		completed("a3", true),
	}, nil)

	if got := c.MandatoryActivities(); got != 3 {
		t.Fatalf("MandatoryActivities = %d, want 3", got)
	}
	for _, name := range []string{"a2", "a3", "a1"} {
		state := c.ExecuteActivity(context.Background(), name)
		if state.Progress != 1 || !state.Success {
			t.Errorf("ExecuteActivity(%q) = %+v, want {1 true}", name, state)
		}
	}
	if got := c.NextActivity(); got != "" {
		t.Errorf("NextActivity = %q, want empty string after all complete", got)
	}
}

func TestExecuteActivity_FailingActivityIsNotCompleted(t *testing.T) {
	broken := &testActivity{name: "a", mandatory: true, err: errors.New("render crashed")}
	c := New("main", &fakeTarget{}, []Part{broken}, nil)

	state := c.ExecuteActivity(context.Background(), "a")
	if state.Progress != 0 {
		t.Errorf("state.Progress = %v, want 0", state.Progress)
	}
	if got := c.NextActivity(); got != "a" {
		t.Errorf("NextActivity = %q, want %q (failed activity stays incomplete)", got, "a")
	}
}

func TestNextActivity_RoundRobin(t *testing.T) {
	incomplete := func(name string) *testActivity {
		return &testActivity{name: name, mandatory: true, state: ActivityState{Progress: 0.5}}
	}
	c := New("main", &fakeTarget{}, []Part{
		incomplete("a"),
		incomplete("b"),
		completed("c", true),
	}, nil)

	// executing without completion leaves the queue untouched.
	if got := c.NextActivity(); got != "a" {
		t.Fatalf("NextActivity = %q, want %q", got, "a")
	}
	c.ExecuteActivity(context.Background(), "c")
	// c was last in the queue, the cursor wraps to the front.
	if got := c.NextActivity(); got != "a" {
		t.Errorf("NextActivity = %q, want %q", got, "a")
	}
}

func TestNextActivity_CursorSkipsToFollowingEntry(t *testing.T) {
	c := New("main", &fakeTarget{}, []Part{
		completed("a", true),
		completed("b", true),
		completed("c", true),
	}, nil)

	c.ExecuteActivity(context.Background(), "a")
	if got := c.NextActivity(); got != "b" {
		t.Errorf("NextActivity = %q, want %q", got, "b")
	}
}

func TestNextActivity_EmptyCourse(t *testing.T) {
	c := New("main", &fakeTarget{}, nil, nil)
	if got := c.NextActivity(); got != "" {
		t.Errorf("NextActivity = %q, want empty string", got)
	}
}

func TestNextActivity_NestedCourse(t *testing.T) {
	x := completed("x", true)
	sub := New("C2", &fakeTarget{}, []Part{x}, nil)
	c := New("C1", &fakeTarget{}, []Part{completed("y", true), sub}, nil)

	if got := c.NextActivity(); got != "y" {
		t.Fatalf("NextActivity = %q, want %q", got, "y")
	}

	c.ExecuteActivity(context.Background(), "y")
	if got := c.NextActivity(); got != "C2.x" {
		t.Fatalf("NextActivity = %q, want %q", got, "C2.x")
	}

	state := c.ExecuteActivity(context.Background(), "C2.x")
	if state.Progress != 1 || !state.Success {
		t.Fatalf("ExecuteActivity(C2.x) = %+v, want {1 true}", state)
	}
	if x.execCount != 1 {
		t.Errorf("x executed %d times, want 1", x.execCount)
	}
	if got := sub.NextActivity(); got != "" {
		t.Errorf("sub.NextActivity = %q, want empty string", got)
	}
	if got := c.NextActivity(); got != "" {
		t.Errorf("NextActivity = %q, want empty string", got)
	}
}

func TestIntroPart_ExcludedFromSequencing(t *testing.T) {
	intro := completed("intro", false)
	c := New("main", &fakeTarget{}, []Part{intro, completed("a", true)}, nil)

	if got := c.NextActivity(); got != "a" {
		t.Errorf("NextActivity = %q, want %q (intro never offered)", got, "a")
	}

	state := c.ExecuteActivity(context.Background(), "intro")
	if state.Progress != 1 || !state.Success {
		t.Errorf("ExecuteActivity(intro) = %+v, want {1 true}", state)
	}
	if intro.execCount != 1 {
		t.Errorf("intro executed %d times, want 1", intro.execCount)
	}
}

func TestSynthesizedIntro_WaitsForPreparation(t *testing.T) {
	first := newPreparingActivity("a", true)
	c := New("main", &fakeTarget{}, []Part{first}, nil)

	state := c.ExecuteActivity(context.Background(), "intro")
	if state.Progress != 1 || !state.Success {
		t.Errorf("synthesized intro state = %+v, want {1 true}", state)
	}
	if got := first.prepCount.Load(); got != 1 {
		t.Errorf("prepare called %d times, want 1", got)
	}
}

func TestSynthesizedIntro_NoPreparerFallsBackToNoOp(t *testing.T) {
	c := New("main", &fakeTarget{}, []Part{completed("a", true)}, nil)

	state := c.ExecuteActivity(context.Background(), "intro")
	if state.Progress != 1 || state.Success {
		t.Errorf("intro state = %+v, want {1 false}", state)
	}
}

func TestLookAheadPrepare_WarmsSuccessor(t *testing.T) {
	next := newPreparingActivity("b", true)
	c := New("main", &fakeTarget{}, []Part{completed("a", true), next}, nil)

	c.ExecuteActivity(context.Background(), "a")

	select {
	case <-next.prepared:
	case <-time.After(time.Second):
		t.Fatal("successor was not prepared")
	}
}

func TestLookAheadPrepare_DelegatesToNestedCourse(t *testing.T) {
	inner := newPreparingActivity("x", true)
	sub := New("sub", &fakeTarget{}, []Part{inner}, nil)
	c := New("main", &fakeTarget{}, []Part{completed("a", true), sub}, nil)

	c.ExecuteActivity(context.Background(), "a")

	select {
	case <-inner.prepared:
	case <-time.After(time.Second):
		t.Fatal("nested successor was not prepared")
	}
}

func TestState_ScoreThreshold(t *testing.T) {
	a := &testActivity{name: "a", mandatory: true, state: NewScoredState(1, true, 85, 100)}
	b := &testActivity{name: "b", mandatory: true, state: NewScoredState(1, true, 74, 100)}
	c := New("main", &fakeTarget{}, []Part{a, b}, nil)

	c.ExecuteActivity(context.Background(), "a")
	c.ExecuteActivity(context.Background(), "b")

	state := c.State()
	if state.Progress != 1 {
		t.Fatalf("Progress = %v, want 1", state.Progress)
	}
	if state.Score == nil || *state.Score != 159 {
		t.Fatalf("Score = %v, want 159", state.Score)
	}
	if *state.MaxScore != 200 {
		t.Fatalf("MaxScore = %v, want 200", *state.MaxScore)
	}
	// 159/200 = 79.5% < 80%: both activities succeeded, the course did not.
	if state.Success {
		t.Error("Success = true, want false below the 80% threshold")
	}
}

func TestState_ScoreAboveThreshold(t *testing.T) {
	a := &testActivity{name: "a", mandatory: true, state: NewScoredState(1, true, 90, 100)}
	b := &testActivity{name: "b", mandatory: true, state: NewScoredState(1, true, 74, 100)}
	c := New("main", &fakeTarget{}, []Part{a, b}, nil)

	c.ExecuteActivity(context.Background(), "a")
	c.ExecuteActivity(context.Background(), "b")

	state := c.State()
	if !state.Success {
		t.Error("Success = false, want true at 82%")
	}
}

func TestState_NonMandatoryScoreDragsThreshold(t *testing.T) {
	a := &testActivity{name: "a", mandatory: true, state: NewScoredState(1, true, 100, 100)}
	quiz := &testActivity{name: "quiz", mandatory: false, state: NewScoredState(1, true, 0, 100)}
	c := New("main", &fakeTarget{}, []Part{a, quiz}, nil)

	c.ExecuteActivity(context.Background(), "a")
	c.ExecuteActivity(context.Background(), "quiz")

	state := c.State()
	if state.Progress != 1 {
		t.Fatalf("Progress = %v, want 1 (quiz is not mandatory)", state.Progress)
	}
	if state.Success {
		t.Error("Success = true, want false: non-mandatory score drags the aggregate below 80%")
	}
}

func TestState_PartialProgress(t *testing.T) {
	c := New("main", &fakeTarget{}, []Part{
		completed("a", true),
		completed("b", true),
	}, nil)

	c.ExecuteActivity(context.Background(), "a")

	state := c.State()
	if state.Progress != 0.5 {
		t.Errorf("Progress = %v, want 0.5", state.Progress)
	}
	if state.Success {
		t.Error("Success = true, want false while incomplete")
	}
}

func TestState_ZeroMandatoryActivities(t *testing.T) {
	c := New("main", &fakeTarget{}, []Part{completed("a", false)}, nil)

	state := c.State()
	if state.Progress != 1 {
		t.Errorf("Progress = %v, want 1 for a course without mandatory activities", state.Progress)
	}
	if !state.Success {
		t.Error("Success = false, want true")
	}
}

func TestState_NestedCourseWeighting(t *testing.T) {
	sub := New("sub", &fakeTarget{}, []Part{
		completed("x", true),
		completed("y", true),
	}, nil)
	c := New("main", &fakeTarget{}, []Part{completed("a", true), sub}, nil)

	c.ExecuteActivity(context.Background(), "sub.x")
	c.ExecuteActivity(context.Background(), "sub.y")

	// sub contributes round(1 * 2) of 3 mandatory activities.
	state := c.State()
	want := 2.0 / 3.0
	if state.Progress != want {
		t.Errorf("Progress = %v, want %v", state.Progress, want)
	}
}

func TestState_FailedMandatoryActivityFailsCourse(t *testing.T) {
	a := &testActivity{name: "a", mandatory: true, state: ActivityState{Progress: 1, Success: false}}
	c := New("main", &fakeTarget{}, []Part{a}, nil)

	c.ExecuteActivity(context.Background(), "a")

	state := c.State()
	if state.Progress != 1 || state.Success {
		t.Errorf("state = %+v, want complete without success", state)
	}
}

func TestSetActivityStates_RestoresCompletion(t *testing.T) {
	c := New("main", &fakeTarget{}, []Part{
		completed("a", true),
		completed("b", true),
	}, nil)

	c.SetActivityStates(map[string]ActivityState{
		"a": {Progress: 1, Success: true},
	})

	if got := c.NextActivity(); got != "b" {
		t.Errorf("NextActivity = %q, want %q", got, "b")
	}
	state := c.State()
	if state.Progress != 0.5 {
		t.Errorf("Progress = %v, want 0.5", state.Progress)
	}
}

func TestSetActivityStates_RoutesIntoNestedCourses(t *testing.T) {
	x := completed("x", true)
	sub := New("sub", &fakeTarget{}, []Part{x}, nil)
	c := New("main", &fakeTarget{}, []Part{completed("a", true), sub}, nil)

	c.SetActivityStates(map[string]ActivityState{
		"sub.x": {Progress: 1, Success: true},
	})

	if got := sub.NextActivity(); got != "" {
		t.Errorf("sub.NextActivity = %q, want empty string", got)
	}
	if got := c.NextActivity(); got != "a" {
		t.Errorf("NextActivity = %q, want %q", got, "a")
	}
}

func TestSetActivityStates_NeverOverwritesExecutedState(t *testing.T) {
	a := &testActivity{name: "a", mandatory: true, state: NewScoredState(1, true, 9, 10)}
	c := New("main", &fakeTarget{}, []Part{a}, nil)

	c.ExecuteActivity(context.Background(), "a")
	c.SetActivityStates(map[string]ActivityState{
		"a": NewScoredState(1, false, 1, 10),
	})

	state := c.State()
	if state.Score == nil || *state.Score != 9 {
		t.Errorf("Score = %v, want 9 (restoration must not overwrite)", state.Score)
	}
	if !state.Success {
		t.Error("Success = false, want true from the executed state")
	}
}

func TestSetActivityStates_DropsInvalidEntries(t *testing.T) {
	c := New("main", &fakeTarget{}, []Part{completed("a", true)}, nil)

	max := 10.0
	c.SetActivityStates(map[string]ActivityState{
		"a":       {Progress: 2},
		"unknown": {Progress: 1, Success: true},
		"b":       {Progress: 1, Score: &max},
	})

	if got := c.NextActivity(); got != "a" {
		t.Errorf("NextActivity = %q, want %q (invalid entries dropped)", got, "a")
	}
}

func TestSetActivityStates_RoundTrip(t *testing.T) {
	build := func() (*Course, *Course) {
		sub := New("sub", &fakeTarget{}, []Part{
			completed("x", true),
			completed("y", true),
		}, nil)
		c := New("main", &fakeTarget{}, []Part{
			&testActivity{name: "a", mandatory: true, state: NewScoredState(1, true, 8, 10)},
			completed("b", true),
			sub,
		}, nil)
		return c, sub
	}

	original, _ := build()
	original.ExecuteActivity(context.Background(), "a")
	original.ExecuteActivity(context.Background(), "sub.x")

	states := map[string]ActivityState{
		"a":     NewScoredState(1, true, 8, 10),
		"sub.x": {Progress: 1, Success: true},
	}

	restored, _ := build()
	restored.SetActivityStates(states)

	wantState := original.State()
	gotState := restored.State()
	if gotState.Progress != wantState.Progress || gotState.Success != wantState.Success {
		t.Errorf("restored state = %+v, want %+v", gotState, wantState)
	}
	if (gotState.Score == nil) != (wantState.Score == nil) {
		t.Fatalf("restored score presence mismatch")
	}
	if gotState.Score != nil && *gotState.Score != *wantState.Score {
		t.Errorf("restored score = %v, want %v", *gotState.Score, *wantState.Score)
	}
	if got, want := restored.NextActivity(), original.NextActivity(); got != want {
		t.Errorf("restored NextActivity = %q, want %q", got, want)
	}
}

func TestActivityExecuted(t *testing.T) {
	x := completed("x", true)
	sub := New("sub", &fakeTarget{}, []Part{x}, nil)
	c := New("main", &fakeTarget{}, []Part{completed("a", true), sub}, nil)

	if c.ActivityExecuted("a") {
		t.Error("a reported executed before execution")
	}
	c.ExecuteActivity(context.Background(), "a")
	c.ExecuteActivity(context.Background(), "sub.x")
	if !c.ActivityExecuted("a") {
		t.Error("a not reported executed")
	}
	if !c.ActivityExecuted("sub.x") {
		t.Error("sub.x not reported executed")
	}
	if c.ActivityExecuted("sub.y") {
		t.Error("unknown nested activity reported executed")
	}
}
