// Package skills loads the markdown-defined skill library an agent's
// system prompt draws from: short, named playbooks stored as .md files
// under a workspace's skills/ directory (session-local) and a global
// directory shared across every agent (~/.ax/skills). This is the
// prompt-assembly side of the skill library; internal/ipc's skills
// actions (List/Get/Propose) are the sandboxed-agent-reachable half that
// lets a running agent author new entries for human review before they
// land here.
//
// Grounded on internal/bootstrap's workspace-markdown-file convention
// (AGENTS.md/SOUL.md/etc.) generalized from a fixed file set to a
// directory of arbitrarily named skill files.
package skills

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Skill is one loaded skill definition.
type Skill struct {
	Name        string
	Description string
	Body        string
}

// Loader loads and caches skills from a workspace directory, a global
// directory, and an optional extra directory (e.g. a per-agent override
// path), re-scanning the filesystem on every FilterSkills/BuildSummary
// call so hot-edited skill files take effect on the next turn without a
// restart.
type Loader struct {
	workspaceDir string
	globalDir    string
	extraDir     string

	mu    sync.RWMutex
	cache []Skill
}

// NewLoader builds a Loader reading from workspaceDir/skills,
// globalDir, and extraDir (any of which may not exist — missing
// directories are silently skipped, not an error).
func NewLoader(workspaceDir, globalDir, extraDir string) *Loader {
	return &Loader{workspaceDir: workspaceDir, globalDir: globalDir, extraDir: extraDir}
}

// All returns every loaded skill, re-scanning the configured directories.
func (l *Loader) All() []Skill {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []Skill
	seen := make(map[string]bool)
	for _, dir := range []string{filepath.Join(l.workspaceDir, "skills"), l.globalDir, l.extraDir} {
		if dir == "" {
			continue
		}
		for _, sk := range loadDir(dir) {
			if seen[sk.Name] {
				continue
			}
			seen[sk.Name] = true
			out = append(out, sk)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	l.cache = out
	return out
}

// FilterSkills returns All() restricted to allowList: nil means every
// skill, an empty non-nil slice means none, anything else is an
// allowlist of exact names.
func (l *Loader) FilterSkills(allowList []string) []Skill {
	all := l.All()
	if allowList == nil {
		return all
	}
	if len(allowList) == 0 {
		return nil
	}
	allow := make(map[string]bool, len(allowList))
	for _, n := range allowList {
		allow[n] = true
	}
	var out []Skill
	for _, sk := range all {
		if allow[sk.Name] {
			out = append(out, sk)
		}
	}
	return out
}

// BuildSummary renders the filtered skill set as the inline XML block
// internal/promptbuilder's skills module injects into the system prompt.
func (l *Loader) BuildSummary(allowList []string) string {
	filtered := l.FilterSkills(allowList)
	if len(filtered) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("<available_skills>\n")
	for _, sk := range filtered {
		b.WriteString("<skill name=\"")
		b.WriteString(sk.Name)
		b.WriteString("\">")
		b.WriteString(sk.Description)
		b.WriteString("</skill>\n")
	}
	b.WriteString("</available_skills>")
	return b.String()
}

// Get returns the full body of the named skill, or ok=false if unknown.
func (l *Loader) Get(name string) (Skill, bool) {
	for _, sk := range l.All() {
		if sk.Name == name {
			return sk, true
		}
	}
	return Skill{}, false
}

func loadDir(dir string) []Skill {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var out []Skill
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ".md")
		desc, body := splitDescription(string(data))
		out = append(out, Skill{Name: name, Description: desc, Body: body})
	}
	return out
}

// splitDescription treats the first non-empty line of a skill file as its
// description (after stripping a leading "# " heading marker, if any) and
// the rest as the full body handed to the agent when it reads the skill.
func splitDescription(content string) (description, body string) {
	lines := strings.SplitN(content, "\n", 2)
	first := strings.TrimSpace(lines[0])
	first = strings.TrimPrefix(first, "#")
	first = strings.TrimSpace(first)
	if len(lines) > 1 {
		body = lines[1]
	}
	return first, body
}
