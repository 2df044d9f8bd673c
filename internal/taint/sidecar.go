package taint

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// sidecarName is the per-directory marker file recording the taint state
// of files an agent wrote into the workspace. A file written from
// tainted context (e.g. the body of a fetched web page) stays tainted
// even after the conversation that produced it scrolls out of history —
// the sidecar is how that survives process restarts.
const sidecarName = ".ax-taint.json"

// WorkspaceEntry records one file's provenance within a workspace directory.
type WorkspaceEntry struct {
	Path      string    `json:"path"`
	Trust     Trust     `json:"trust"`
	Source    string    `json:"source"`
	UpdatedAt time.Time `json:"updated_at"`
}

type sidecarFile struct {
	Entries map[string]WorkspaceEntry `json:"entries"`
}

// Sidecar persists WorkspaceEntry records alongside a workspace directory.
type Sidecar struct {
	dir string
}

func NewSidecar(workspaceDir string) *Sidecar {
	return &Sidecar{dir: workspaceDir}
}

func (s *Sidecar) path() string {
	return filepath.Join(s.dir, sidecarName)
}

func (s *Sidecar) load() (*sidecarFile, error) {
	data, err := os.ReadFile(s.path())
	if err != nil {
		if os.IsNotExist(err) {
			return &sidecarFile{Entries: make(map[string]WorkspaceEntry)}, nil
		}
		return nil, err
	}
	var sf sidecarFile
	if err := json.Unmarshal(data, &sf); err != nil {
		return nil, err
	}
	if sf.Entries == nil {
		sf.Entries = make(map[string]WorkspaceEntry)
	}
	return &sf, nil
}

func (s *Sidecar) save(sf *sidecarFile) error {
	data, err := json.MarshalIndent(sf, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path(), data, 0600)
}

// MarkWritten records that relPath was written with the given provenance.
func (s *Sidecar) MarkWritten(relPath string, trust Trust, source string) error {
	sf, err := s.load()
	if err != nil {
		return err
	}
	sf.Entries[relPath] = WorkspaceEntry{Path: relPath, Trust: trust, Source: source, UpdatedAt: time.Now()}
	return s.save(sf)
}

// Lookup returns the recorded provenance for relPath, and whether an
// entry exists. Files never recorded (e.g. pre-existing workspace
// content, or files written outside the agent's tools) are treated as
// TrustUser by callers — only explicitly marked writes carry taint.
func (s *Sidecar) Lookup(relPath string) (WorkspaceEntry, bool, error) {
	sf, err := s.load()
	if err != nil {
		return WorkspaceEntry{}, false, err
	}
	e, ok := sf.Entries[relPath]
	return e, ok, nil
}

// Forget removes a path's entry, e.g. when the file is deleted.
func (s *Sidecar) Forget(relPath string) error {
	sf, err := s.load()
	if err != nil {
		return err
	}
	delete(sf.Entries, relPath)
	return s.save(sf)
}
