// Package artifact holds the finished result of a pipeline run and its
// rendered forms. An artifact is assembled once, from validated stage
// outputs only, and is immutable afterwards.
package artifact

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
)

// Artifact kinds.
const (
	KindAnalysis     = "analysis"
	KindConcept      = "concept"
	KindRequirements = "requirements"
)

// Section is one titled part of an artifact. Order fixes the render
// order of Body keys; keys not listed render after, alphabetically.
type Section struct {
	Key   string         `json:"key"`
	Title string         `json:"title"`
	Order []string       `json:"order,omitempty"`
	Body  map[string]any `json:"body"`
}

// Artifact is the merged, persisted result of a pipeline run.
type Artifact struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Sections  []Section `json:"sections"`
	CreatedAt time.Time `json:"created_at"`
	Hash      string    `json:"hash"`
}

// New creates an artifact with a computed content hash.
func New(kind string, sections []Section) *Artifact {
	a := &Artifact{
		ID:        uuid.NewString(),
		Kind:      kind,
		Sections:  sections,
		CreatedAt: time.Now().UTC(),
	}
	a.Hash = a.computeHash()
	return a
}

// Section returns the section with the given key, if present.
func (a *Artifact) Section(key string) (Section, bool) {
	for _, s := range a.Sections {
		if s.Key == key {
			return s, true
		}
	}
	return Section{}, false
}

func (a *Artifact) computeHash() string {
	h := sha256.New()
	h.Write([]byte(a.Kind))
	for _, s := range a.Sections {
		// json.Marshal sorts map keys, so the hash is stable.
		body, _ := json.Marshal(s.Body)
		h.Write([]byte(s.Key))
		h.Write(body)
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// Load reads an artifact from a JSON file.
func Load(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to parse artifact file %s: %w", path, err)
	}
	if a.Kind == "" {
		return nil, fmt.Errorf("artifact file %s has no kind", path)
	}
	return &a, nil
}

// Save writes the artifact as indented JSON.
func (a *Artifact) Save(path string) error {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
