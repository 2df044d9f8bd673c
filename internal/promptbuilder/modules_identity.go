package promptbuilder

import "github.com/nextlevelbuilder/goclaw/internal/bootstrap"

// identityModule renders the agent's loaded identity files. It is one of
// the three required modules and is still included in bootstrap mode —
// IDENTITY.md is what tells the agent who it is while it's asking the
// admin what it's for.
func identityModule() Module {
	return Module{
		Name:          "identity",
		Required:      true,
		ShouldInclude: func(ctx Context) bool { return true },
		Render: func(ctx Context) []string {
			lines := []string{"## Identity"}
			if content, ok := contextFile(ctx, bootstrap.IdentityFile); ok && content != "" {
				lines = append(lines, content)
			} else {
				lines = append(lines, "No identity file has been configured yet.")
			}
			if content, ok := contextFile(ctx, bootstrap.SoulFile); ok && content != "" {
				lines = append(lines, content)
			}
			return lines
		},
		RenderMinimal: func(ctx Context) []string {
			content, _ := contextFile(ctx, bootstrap.IdentityFile)
			return []string{"## Identity", content}
		},
	}
}
