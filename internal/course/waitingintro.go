package course

import (
	"context"
	"time"
)

// IntroName is the reserved part name for introduction activities. An intro
// part is excluded from normal sequencing and only executed on explicit
// request.
const IntroName = "intro"

// DefaultIntroDelay is the maximum time a synthesized intro waits for its
// deferred operation.
const DefaultIntroDelay = 10 * time.Second

// WaitingIntroActivity is a synthetic, non-mandatory intro that displays
// optional content while waiting for a deferred operation. A course
// synthesizes one when it declares no intro of its own but its first real
// activity needs preparation time, so the learner sees something instead of
// a blank screen.
type WaitingIntroActivity struct {
	wait     func(ctx context.Context) error
	content  string
	maxDelay time.Duration
}

// NewWaitingIntro creates a waiting intro around the given deferred
// operation. A maxDelay <= 0 waits indefinitely.
func NewWaitingIntro(wait func(ctx context.Context) error, content string, maxDelay time.Duration) *WaitingIntroActivity {
	return &WaitingIntroActivity{wait: wait, content: content, maxDelay: maxDelay}
}

func (a *WaitingIntroActivity) Name() string { return IntroName }

func (a *WaitingIntroActivity) IsMandatory() bool { return false }

// Execute clears the target, shows the content if any, and races the
// deferred operation against the timeout. The result is {1, true} if the
// operation completes first and {1, false} if the timeout elapses first or
// the operation fails.
func (a *WaitingIntroActivity) Execute(ctx context.Context, target RenderTarget) (ActivityState, error) {
	target.Clear()
	if a.content != "" {
		target.Display(a.content)
	}

	done := make(chan error, 1)
	go func() { done <- a.wait(ctx) }()

	var timeout <-chan time.Time
	if a.maxDelay > 0 {
		t := time.NewTimer(a.maxDelay)
		defer t.Stop()
		timeout = t.C
	}

	select {
	case err := <-done:
		if err != nil {
			return ActivityState{Progress: 1, Success: false}, nil
		}
		return ActivityState{Progress: 1, Success: true}, nil
	case <-timeout:
		return ActivityState{Progress: 1, Success: false}, nil
	case <-ctx.Done():
		return ActivityState{Progress: 1, Success: false}, nil
	}
}
