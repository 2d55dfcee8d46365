package export

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Sink receives artifacts offered for download.
type Sink interface {
	Offer(a *Artifact) error
}

// DirSink writes each artifact to Dir under its filename, replacing any
// earlier file of the same name.
type DirSink struct {
	Dir string
}

// Offer writes the artifact.
func (s DirSink) Offer(a *Artifact) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(s.Path(a), a.Data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", a.Filename, err)
	}
	return nil
}

// Path returns where Offer writes a.
func (s DirSink) Path(a *Artifact) string {
	return filepath.Join(s.Dir, filepath.Base(a.Filename))
}

// MemorySink keeps artifacts in memory.
type MemorySink struct {
	mu        sync.Mutex
	artifacts []*Artifact
}

// Offer records the artifact.
func (s *MemorySink) Offer(a *Artifact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.artifacts = append(s.artifacts, a)
	return nil
}

// Artifacts returns every artifact offered so far.
func (s *MemorySink) Artifacts() []*Artifact {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Artifact, len(s.artifacts))
	copy(out, s.artifacts)
	return out
}

// Get returns the artifact with the given id.
func (s *MemorySink) Get(id string) (*Artifact, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.artifacts {
		if a.ID == id {
			return a, true
		}
	}
	return nil, false
}

// Last returns the most recent artifact, or nil.
func (s *MemorySink) Last() *Artifact {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.artifacts) == 0 {
		return nil
	}
	return s.artifacts[len(s.artifacts)-1]
}
