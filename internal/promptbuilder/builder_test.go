package promptbuilder

import (
	"strings"
	"testing"

	"github.com/nextlevelbuilder/goclaw/internal/bootstrap"
)

func baseContext() Context {
	return Context{
		AgentType:     "personal",
		Workspace:     "/home/alice/.ax/workspace",
		Sandbox:       "gvisor",
		Profile:       "default",
		ContextWindow: 100000,
		HistoryTokens: 1000,
		Channel:       "telegram",
		Time:          "2026-07-31T00:00:00Z",
		ContextFiles: []bootstrap.ContextFile{
			{Path: bootstrap.IdentityFile, Content: "name: ax"},
			{Path: bootstrap.AgentsFile, Content: "remember to be terse"},
		},
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	b := New()
	ctx := baseContext()

	first := b.Build(ctx)
	second := b.Build(ctx)

	if first.Prompt != second.Prompt {
		t.Fatalf("build not deterministic:\n%q\nvs\n%q", first.Prompt, second.Prompt)
	}
	if first.Metadata.TotalTokens != second.Metadata.TotalTokens {
		t.Fatalf("token totals differ: %d vs %d", first.Metadata.TotalTokens, second.Metadata.TotalTokens)
	}
}

func TestBuildIncludesAllRequiredModules(t *testing.T) {
	b := New()
	result := b.Build(baseContext())

	for _, name := range []string{"identity", "injection-defense", "security-boundaries"} {
		found := false
		for _, m := range result.Metadata.Included {
			if m.Name == name && !m.Dropped {
				found = true
			}
		}
		if !found {
			t.Fatalf("required module %q missing from build, got %+v", name, result.Metadata.Included)
		}
	}
}

func TestBuildSanitizesWorkspacePath(t *testing.T) {
	b := New()
	result := b.Build(baseContext())

	if strings.Contains(result.Prompt, "/home/alice") {
		t.Fatalf("prompt leaked host home path:\n%s", result.Prompt)
	}
	if !strings.Contains(result.Prompt, "./workspace") {
		t.Fatalf("expected sanitized workspace label in prompt:\n%s", result.Prompt)
	}
}

func TestBuildSurfacesElevatedDefenseOverThreshold(t *testing.T) {
	b := New()
	ctx := baseContext()
	ctx.TaintRatio = 0.9
	ctx.TaintThreshold = 0.3

	result := b.Build(ctx)
	if !strings.Contains(result.Prompt, "ELEVATED DEFENSE") {
		t.Fatalf("expected elevated defense paragraph, got:\n%s", result.Prompt)
	}
}

func TestBuildOmitsElevatedDefenseUnderThreshold(t *testing.T) {
	b := New()
	ctx := baseContext()
	ctx.TaintRatio = 0.1
	ctx.TaintThreshold = 0.3

	result := b.Build(ctx)
	if strings.Contains(result.Prompt, "ELEVATED DEFENSE") {
		t.Fatalf("did not expect elevated defense paragraph, got:\n%s", result.Prompt)
	}
}

func TestBuildDropsOptionalModulesUnderTightBudget(t *testing.T) {
	b := New()
	ctx := baseContext()
	ctx.ContextWindow = 4096 + 50 // only a sliver left after reserve + required modules
	ctx.HistoryTokens = 0
	ctx.Skills = []string{strings.Repeat("a very long skill description line\n", 200)}

	result := b.Build(ctx)

	droppedSkills := false
	for _, m := range result.Metadata.Included {
		if m.Name == "skills" && m.Dropped {
			droppedSkills = true
		}
	}
	if !droppedSkills {
		t.Fatalf("expected skills module to be dropped under tight budget, got %+v", result.Metadata.Included)
	}
}

func TestBuildBootstrapModeDropsOptionalModules(t *testing.T) {
	b := New()
	ctx := baseContext()
	ctx.Bootstrapping = true

	result := b.Build(ctx)

	for _, header := range []string{"## Context", "## Available Skills", "## Runtime", "## Heartbeat", "## Reply Gate"} {
		if strings.Contains(result.Prompt, header) {
			t.Fatalf("expected %q omitted in bootstrap mode, got:\n%s", header, result.Prompt)
		}
	}
	if !strings.Contains(result.Prompt, "## Identity") {
		t.Fatalf("expected identity module still rendered in bootstrap mode")
	}
}

func TestContextBudgetClampsAtZero(t *testing.T) {
	ctx := Context{ContextWindow: 100, HistoryTokens: 1000}
	if got := ctx.Budget(); got != 0 {
		t.Fatalf("Budget() = %d, want 0", got)
	}
}
