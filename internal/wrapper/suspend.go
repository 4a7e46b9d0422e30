package wrapper

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/lernmar/lernmar/internal/course"
)

// EncodeSuspendData serializes the activity state map into the opaque blob
// persisted across sessions.
func EncodeSuspendData(states map[string]course.ActivityState) ([]byte, error) {
	data, err := json.Marshal(states)
	if err != nil {
		return nil, fmt.Errorf("encode suspend data: %w", err)
	}
	return data, nil
}

// suspendEntry mirrors the persisted ActivityState shape with all fields
// optional, so presence can be checked before accepting an entry.
type suspendEntry struct {
	Progress *float64 `json:"progress"`
	Success  *bool    `json:"success"`
	Score    *float64 `json:"score"`
	MaxScore *float64 `json:"maxScore"`
}

// DecodeSuspendData parses a persisted blob back into an activity state map.
// Entries that fail to parse or fail the state shape check are dropped
// individually with a diagnostic; a restore never fails as a whole. An empty
// blob yields an empty map.
func DecodeSuspendData(data []byte, logger *slog.Logger) map[string]course.ActivityState {
	if logger == nil {
		logger = slog.Default()
	}
	states := make(map[string]course.ActivityState)
	if len(data) == 0 {
		return states
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		logger.Warn("cannot interpret suspend data", "error", err)
		return states
	}
	for name, msg := range raw {
		state, err := decodeSuspendEntry(msg)
		if err != nil {
			logger.Warn("dropping suspend data entry", "name", name, "error", err)
			continue
		}
		states[name] = state
	}
	return states
}

func decodeSuspendEntry(msg json.RawMessage) (course.ActivityState, error) {
	var entry suspendEntry
	if err := json.Unmarshal(msg, &entry); err != nil {
		return course.ActivityState{}, err
	}
	if entry.Progress == nil {
		return course.ActivityState{}, fmt.Errorf("missing progress")
	}
	if *entry.Progress >= 1 && entry.Success == nil {
		return course.ActivityState{}, fmt.Errorf("complete entry missing success")
	}
	state := course.ActivityState{
		Progress: *entry.Progress,
		Score:    entry.Score,
		MaxScore: entry.MaxScore,
	}
	if entry.Success != nil {
		state.Success = *entry.Success
	}
	if err := state.Validate(); err != nil {
		return course.ActivityState{}, err
	}
	return state, nil
}
