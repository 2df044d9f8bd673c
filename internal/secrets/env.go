package secrets

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// LoadDotenv reads path (if it exists) via godotenv and folds any values
// it finds for known secret names into s, without overwriting a value
// already sourced from the real process environment — real env vars take
// precedence over a checked-in or backed-up .env file, matching the
// teacher's own env-override-last convention in
// internal/config.applyEnvOverrides.
func (s *Store) LoadDotenv(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	values, err := godotenv.Read(path)
	if err != nil {
		return fmt.Errorf("secrets: read %s: %w", path, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for name, key := range envVar {
		if _, alreadySet := s.values[name]; alreadySet {
			continue // real env var already won
		}
		if v, ok := values[key]; ok && v != "" {
			s.values[name] = v
		}
	}
	return nil
}

// SaveDotenv rewrites path, updating only the lines for the given names
// and preserving every other line (comments, blank lines, unrelated
// vars) byte-for-byte, appending a new KEY=value line for any name not
// already present. This is a line-preserving rewrite rather than a
// godotenv.Write-style full regeneration, so hand-written comments in an
// operator's .env survive a rewrite (such as proxy.RefreshManager's).
func SaveDotenv(path string, updates map[Name]string) error {
	wanted := make(map[string]string, len(updates))
	for name, value := range updates {
		key, err := EnvVar(name)
		if err != nil {
			return err
		}
		wanted[key] = value
	}

	var lines []string
	if existing, err := os.ReadFile(path); err == nil {
		lines = strings.Split(string(existing), "\n")
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("secrets: read %s: %w", path, err)
	}

	seen := make(map[string]bool, len(wanted))
	for i, line := range lines {
		key, ok := dotenvKey(line)
		if !ok {
			continue
		}
		if value, wantedHere := wanted[key]; wantedHere {
			lines[i] = fmt.Sprintf("%s=%s", key, value)
			seen[key] = true
		}
	}

	for key, value := range wanted {
		if !seen[key] {
			lines = append(lines, fmt.Sprintf("%s=%s", key, value))
		}
	}

	out := strings.Join(lines, "\n")
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	return os.WriteFile(path, []byte(out), 0600)
}

// dotenvKey extracts the KEY from a "KEY=value" line, ignoring comments,
// blank lines, and an optional leading "export ".
func dotenvKey(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	trimmed = strings.TrimPrefix(trimmed, "export ")
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return "", false
	}
	idx := strings.IndexByte(trimmed, '=')
	if idx <= 0 {
		return "", false
	}
	return strings.TrimSpace(trimmed[:idx]), true
}
