package promptbuilder

import "github.com/nextlevelbuilder/goclaw/internal/bootstrap"

// heartbeatModule carries the operator's HEARTBEAT.md instructions, only
// when non-empty — an empty file means heartbeats are disabled for this
// agent per the teacher's seed.go default content.
func heartbeatModule() Module {
	return Module{
		Name:     "heartbeat",
		Priority: 40,
		Optional: true,
		ShouldInclude: func(ctx Context) bool {
			if ctx.Bootstrapping {
				return false
			}
			content, ok := contextFile(ctx, bootstrap.HeartbeatFile)
			return ok && content != ""
		},
		Render: func(ctx Context) []string {
			content, _ := contextFile(ctx, bootstrap.HeartbeatFile)
			return []string{"## Heartbeat", content}
		},
	}
}
