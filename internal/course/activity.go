package course

import "context"

// RenderTarget is the surface an activity draws on. The course core only
// passes it through; what a target does with the content is up to the
// implementation.
type RenderTarget interface {
	// Clear empties the target before new content is shown.
	Clear()

	// Display renders the given content on the target.
	Display(content string)
}

// Part is a named member of a course: either a leaf Activity or a nested
// *Course. Part names must be non-empty and must not contain the path
// separator; uniqueness is scoped to the immediate parent.
type Part interface {
	Name() string
}

// Activity is a leaf unit of learning content with a single execution
// outcome.
type Activity interface {
	Part

	// IsMandatory reports whether completing this activity is required for
	// the owning course to be complete.
	IsMandatory() bool

	// Execute runs the activity, rendering into the given target, and
	// returns its resulting state. An error means the activity did not
	// complete; the caller logs it and keeps the course loop running.
	Execute(ctx context.Context, target RenderTarget) (ActivityState, error)
}

// Preparer is implemented by activities that pre-load resources. Prepare must
// be idempotent: no matter how often it is called, at most one actual
// preparation happens.
type Preparer interface {
	Prepare(ctx context.Context) error
}
