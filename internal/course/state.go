package course

import "fmt"

// ActivityState is the outcome of one activity execution. A new execution of
// the same activity produces a new value that replaces the stored one.
// Success is only meaningful once Progress has reached 1. Score and MaxScore
// are optional but must be present together.
type ActivityState struct {
	Progress float64  `json:"progress"`
	Success  bool     `json:"success"`
	Score    *float64 `json:"score,omitempty"`
	MaxScore *float64 `json:"maxScore,omitempty"`
}

// NewScoredState returns a state carrying a score pair.
func NewScoredState(progress float64, success bool, score, maxScore float64) ActivityState {
	return ActivityState{
		Progress: progress,
		Success:  success,
		Score:    &score,
		MaxScore: &maxScore,
	}
}

// Complete reports whether the activity has reached full progress.
func (s ActivityState) Complete() bool {
	return s.Progress >= 1
}

// Validate checks the ActivityState invariants: progress within [0,1], score
// and maxScore present together, and 0 <= score <= maxScore.
func (s ActivityState) Validate() error {
	if s.Progress < 0 || s.Progress > 1 {
		return fmt.Errorf("progress %v out of range [0,1]", s.Progress)
	}
	if (s.Score == nil) != (s.MaxScore == nil) {
		return fmt.Errorf("score and maxScore must be present together")
	}
	if s.Score != nil {
		if *s.Score < 0 {
			return fmt.Errorf("score %v must be >= 0", *s.Score)
		}
		if *s.MaxScore < *s.Score {
			return fmt.Errorf("maxScore %v must be >= score %v", *s.MaxScore, *s.Score)
		}
	}
	return nil
}

// CourseProgress is the course-level summary of an aggregate state.
// Success can only be true when Progress is 1.
type CourseProgress struct {
	Progress float64 `json:"progress"`
	Success  bool    `json:"success"`
}

// Summary reduces an aggregate state to its course-level progress pair.
func (s ActivityState) Summary() CourseProgress {
	if s.Progress >= 1 {
		return CourseProgress{Progress: 1, Success: s.Success}
	}
	return CourseProgress{Progress: s.Progress, Success: false}
}
