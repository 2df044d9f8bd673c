package bootstrap

import (
	"log/slog"
	"os"
	"path/filepath"
)

// defaultContent holds the first-run body for each seeded file, keyed by
// its file name. Unlike the teacher's go:embed templates/*.md (this repo
// carries no templates/ directory), these are inline defaults — short
// enough that an embed would add a build step for no benefit, and an
// operator is expected to edit every one of them after first run anyway.
var defaultContent = map[string]string{
	AgentsFile: `# AGENTS.md

Notes for yourself, carried across every turn. Add facts, conventions,
and standing instructions here as you learn them; this file is yours.
`,
	SoulFile: `# SOUL.md

Describe who this agent is: tone, priorities, things it should never do.
This file is loaded into every turn's identity module — keep it short
enough to stay cheap and specific enough to stay useful.
`,
	ToolsFile: `# TOOLS.md

Notes on tools available in this workspace beyond the built-in set:
what they're for, any quirks, and when to prefer one over another.
`,
	IdentityFile: `# IDENTITY.md

name: ax
role: personal assistant
`,
	UserFile: `# USER.md

Facts about the person this agent works for: preferences, standing
context, things that shouldn't need repeating every conversation.
`,
	HeartbeatFile: `# HEARTBEAT.md

What to check or do on a periodic heartbeat run, if heartbeats are
enabled for this agent. Leave blank to disable proactive heartbeat
behavior entirely.
`,
	BootstrapFile: `# BOOTSTRAP.md

This workspace is brand new. Before doing anything else:
1. Read AGENTS.md, SOUL.md, and USER.md.
2. Ask the admin who set this up what this agent is for.
3. Fill in SOUL.md and USER.md with what you learn, then remove this file.
`,
}

// templateFiles lists the files to seed, in order.
// BootstrapFile is handled separately (only seeded for brand-new workspaces).
var templateFiles = []string{
	AgentsFile,
	SoulFile,
	ToolsFile,
	IdentityFile,
	UserFile,
	HeartbeatFile,
}

// ReadTemplate returns the default content for a seeded file name.
func ReadTemplate(name string) (string, error) {
	content, ok := defaultContent[name]
	if !ok {
		return "", os.ErrNotExist
	}
	return content, nil
}

// EnsureWorkspaceFiles seeds default context files into a workspace
// directory. Only writes files that don't already exist (will not
// overwrite). BootstrapFile is only seeded if the workspace is brand new
// (no AgentsFile exists yet). Returns the list of files that were created.
func EnsureWorkspaceFiles(workspaceDir string) ([]string, error) {
	if err := os.MkdirAll(workspaceDir, 0755); err != nil {
		return nil, err
	}

	var created []string

	_, agentsErr := os.Stat(filepath.Join(workspaceDir, AgentsFile))
	isBrandNew := os.IsNotExist(agentsErr)

	for _, name := range templateFiles {
		ok, err := seedTemplate(workspaceDir, name)
		if err != nil {
			slog.Warn("bootstrap: failed to seed template", "file", name, "error", err)
			continue
		}
		if ok {
			created = append(created, name)
		}
	}

	if isBrandNew {
		ok, err := seedTemplate(workspaceDir, BootstrapFile)
		if err != nil {
			slog.Warn("bootstrap: failed to seed BOOTSTRAP.md", "error", err)
		} else if ok {
			created = append(created, BootstrapFile)
		}
	}

	return created, nil
}

// seedTemplate writes a default file to the workspace if it doesn't
// exist. Returns true if the file was created, false if it already exists.
func seedTemplate(workspaceDir, name string) (bool, error) {
	dstPath := filepath.Join(workspaceDir, name)

	f, err := os.OpenFile(dstPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if os.IsExist(err) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()

	content, ok := defaultContent[name]
	if !ok {
		os.Remove(dstPath)
		return false, os.ErrNotExist
	}

	if _, err := f.WriteString(content); err != nil {
		return false, err
	}

	return true, nil
}
