// Package manifest loads course manifests and builds course trees from them.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"golang.org/x/mod/semver"
)

// FileName is the manifest file expected in a course directory.
const FileName = "course.json"

// Manifest describes a playable course: an identifier, display title, and
// the part tree.
type Manifest struct {
	Name             string     `json:"name"`
	Title            string     `json:"title,omitempty"`
	MinPlayerVersion string     `json:"minPlayerVersion,omitempty"`
	Parts            []PartSpec `json:"parts"`
}

// PartSpec describes one part: a content page, a quiz, or a nested course.
type PartSpec struct {
	Type      string         `json:"type"`
	Name      string         `json:"name"`
	Mandatory bool           `json:"mandatory,omitempty"`
	Path      string         `json:"path,omitempty"`
	Text      string         `json:"text,omitempty"`
	Questions []QuestionSpec `json:"questions,omitempty"`
	Parts     []PartSpec     `json:"parts,omitempty"`
}

// QuestionSpec describes one quiz question. Answer indexes into Choices.
type QuestionSpec struct {
	Prompt  string   `json:"prompt"`
	Choices []string `json:"choices"`
	Answer  int      `json:"answer"`
	Points  float64  `json:"points,omitempty"`
}

// Load reads and validates the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	if err := validate(data); err != nil {
		return nil, fmt.Errorf("invalid manifest %s: %w", path, err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	return &m, nil
}

// CheckPlayerVersion verifies the manifest's minimum player version against
// the running player version. Development builds always pass.
func CheckPlayerVersion(m *Manifest, playerVersion string) error {
	if m.MinPlayerVersion == "" || playerVersion == "" || playerVersion == "(devel)" {
		return nil
	}
	min := "v" + strings.TrimPrefix(m.MinPlayerVersion, "v")
	if !semver.IsValid(min) {
		return fmt.Errorf("invalid minPlayerVersion %q", m.MinPlayerVersion)
	}
	current := "v" + strings.TrimPrefix(playerVersion, "v")
	if !semver.IsValid(current) {
		return nil
	}
	if semver.Compare(current, min) < 0 {
		return fmt.Errorf("course requires player %s or newer, running %s", min, current)
	}
	return nil
}
