package manifest

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/lernmar/lernmar/internal/activities"
	"github.com/lernmar/lernmar/internal/course"
)

// Build constructs the course tree described by the manifest. Content file
// paths are resolved relative to dir.
func Build(m *Manifest, dir string, target course.RenderTarget, logger *slog.Logger) (*course.Course, error) {
	parts, err := buildParts(m.Parts, dir, target, logger)
	if err != nil {
		return nil, err
	}
	name := m.Title
	if name == "" {
		name = m.Name
	}
	return course.New(name, target, parts, logger), nil
}

func buildParts(specs []PartSpec, dir string, target course.RenderTarget, logger *slog.Logger) ([]course.Part, error) {
	parts := make([]course.Part, 0, len(specs))
	for _, spec := range specs {
		switch spec.Type {
		case "content":
			path := ""
			if spec.Path != "" {
				path = filepath.Join(dir, spec.Path)
			}
			parts = append(parts, activities.NewContent(spec.Name, spec.Mandatory, path, spec.Text))

		case "quiz":
			if len(spec.Questions) == 0 {
				return nil, fmt.Errorf("quiz %q has no questions", spec.Name)
			}
			questions := make([]activities.Question, 0, len(spec.Questions))
			for _, q := range spec.Questions {
				if q.Answer >= len(q.Choices) {
					return nil, fmt.Errorf("quiz %q: answer index %d out of range", spec.Name, q.Answer)
				}
				questions = append(questions, activities.Question{
					Prompt:  q.Prompt,
					Choices: q.Choices,
					Answer:  q.Answer,
					Points:  q.Points,
				})
			}
			parts = append(parts, activities.NewQuiz(spec.Name, spec.Mandatory, questions))

		case "course":
			subParts, err := buildParts(spec.Parts, dir, target, logger)
			if err != nil {
				return nil, fmt.Errorf("course %q: %w", spec.Name, err)
			}
			parts = append(parts, course.New(spec.Name, target, subParts, logger))

		default:
			return nil, fmt.Errorf("unknown part type %q", spec.Type)
		}
	}
	return parts, nil
}
