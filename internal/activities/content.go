// Package activities holds the built-in leaf activities the manifest builder
// wires into a course: static content pages and multiple-choice quizzes.
package activities

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/lernmar/lernmar/internal/course"
)

// Content is an activity displaying a text page. The page can come from a
// file next to the manifest or from inline text. Loading happens once, in
// Prepare or on first execution, whichever comes first.
type Content struct {
	name      string
	mandatory bool
	path      string
	text      string

	once    sync.Once
	page    string
	loadErr error
}

// NewContent creates a content activity. If path is non-empty the page is
// read from that file; otherwise text is shown as-is.
func NewContent(name string, mandatory bool, path, text string) *Content {
	return &Content{name: name, mandatory: mandatory, path: path, text: text}
}

func (a *Content) Name() string { return a.name }

func (a *Content) IsMandatory() bool { return a.mandatory }

// Prepare loads the page. It is safe to call any number of times; the file
// is read at most once.
func (a *Content) Prepare(ctx context.Context) error {
	a.once.Do(func() {
		if a.path == "" {
			a.page = a.text
			return
		}
		data, err := os.ReadFile(a.path)
		if err != nil {
			a.loadErr = fmt.Errorf("load content page: %w", err)
			return
		}
		a.page = string(data)
	})
	return a.loadErr
}

// Execute shows the page and completes successfully.
func (a *Content) Execute(ctx context.Context, target course.RenderTarget) (course.ActivityState, error) {
	if err := a.Prepare(ctx); err != nil {
		return course.ActivityState{}, err
	}
	target.Clear()
	target.Display(a.page)
	return course.ActivityState{Progress: 1, Success: true}, nil
}
