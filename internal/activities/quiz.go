package activities

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/lernmar/lernmar/internal/course"
)

// PassRatio is the score share a quiz needs for success.
const PassRatio = 0.8

// Question is one multiple-choice quiz question. Answer is the index of the
// correct choice.
type Question struct {
	Prompt  string
	Choices []string
	Answer  int
	Points  float64
}

// prompter is the input capability a quiz needs from the render target.
type prompter interface {
	Prompt(question string) (string, error)
}

// Quiz is an activity asking multiple-choice questions through the render
// target and reporting a score. It succeeds when the score reaches PassRatio
// of the maximum.
type Quiz struct {
	name      string
	mandatory bool
	questions []Question
}

// NewQuiz creates a quiz activity. Questions without points count one point.
func NewQuiz(name string, mandatory bool, questions []Question) *Quiz {
	return &Quiz{name: name, mandatory: mandatory, questions: questions}
}

func (a *Quiz) Name() string { return a.name }

func (a *Quiz) IsMandatory() bool { return a.mandatory }

// Execute asks every question once and returns the scored result.
func (a *Quiz) Execute(ctx context.Context, target course.RenderTarget) (course.ActivityState, error) {
	in, ok := target.(prompter)
	if !ok {
		return course.ActivityState{}, fmt.Errorf("render target does not support input")
	}

	target.Clear()
	var score, maxScore float64
	for i, q := range a.questions {
		points := q.Points
		if points <= 0 {
			points = 1
		}
		maxScore += points

		target.Display(a.renderQuestion(i, q))
		answer, err := in.Prompt("Your answer:")
		if err != nil {
			return course.ActivityState{}, fmt.Errorf("question %d: %w", i+1, err)
		}
		if a.isCorrect(q, answer) {
			score += points
		}
	}

	success := maxScore == 0 || score >= PassRatio*maxScore
	return course.NewScoredState(1, success, score, maxScore), nil
}

func (a *Quiz) renderQuestion(i int, q Question) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d. %s\n", i+1, q.Prompt)
	for j, choice := range q.Choices {
		fmt.Fprintf(&b, "  [%d] %s\n", j+1, choice)
	}
	return b.String()
}

// isCorrect accepts either the 1-based choice number or the literal choice
// text, compared case-insensitively.
func (a *Quiz) isCorrect(q Question, answer string) bool {
	if q.Answer < 0 || q.Answer >= len(q.Choices) {
		return false
	}
	if n, err := strconv.Atoi(answer); err == nil {
		return n-1 == q.Answer
	}
	return strings.EqualFold(strings.TrimSpace(answer), q.Choices[q.Answer])
}
