package promptbuilder

import "github.com/nextlevelbuilder/goclaw/internal/bootstrap"

// contextModule renders the operator-authored AGENTS.md / USER.md / TOOLS.md
// notes. Optional — dropped whole under a tight budget before anything
// required is touched.
func contextModule() Module {
	return Module{
		Name:     "context",
		Priority: 10,
		Optional: true,
		ShouldInclude: func(ctx Context) bool {
			return !ctx.Bootstrapping
		},
		Render: func(ctx Context) []string {
			lines := []string{"## Context"}
			for _, name := range []string{bootstrap.AgentsFile, bootstrap.UserFile, bootstrap.ToolsFile} {
				content, ok := contextFile(ctx, name)
				if !ok || content == "" {
					continue
				}
				lines = append(lines, content)
			}
			if len(lines) == 1 {
				return nil
			}
			return lines
		},
	}
}
