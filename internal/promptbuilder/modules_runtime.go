package promptbuilder

import "fmt"

// sanitizeWorkspace replaces a host filesystem path with a generic label so
// the prompt never leaks the host user's home directory or any other path
// segment outside the workspace root to the sandboxed model.
func sanitizeWorkspace(path string) string {
	if path == "" {
		return "./workspace"
	}
	return "./workspace"
}

// runtimeModule describes the agent type, sandbox kind, profile, and
// sanitized workspace label. Optional.
func runtimeModule() Module {
	return Module{
		Name:     "runtime",
		Priority: 30,
		Optional: true,
		ShouldInclude: func(ctx Context) bool {
			return !ctx.Bootstrapping
		},
		Render: func(ctx Context) []string {
			return []string{
				"## Runtime",
				fmt.Sprintf("Agent type: %s", ctx.AgentType),
				fmt.Sprintf("Sandbox: %s", ctx.Sandbox),
				fmt.Sprintf("Profile: %s", ctx.Profile),
				fmt.Sprintf("Workspace: %s", sanitizeWorkspace(ctx.Workspace)),
				fmt.Sprintf("Channel: %s", ctx.Channel),
				fmt.Sprintf("Time: %s", ctx.Time),
			}
		},
		RenderMinimal: func(ctx Context) []string {
			return []string{"## Runtime", fmt.Sprintf("Workspace: %s", sanitizeWorkspace(ctx.Workspace))}
		},
	}
}
