package ipc

// Action is a closed enum of IPC request kinds, grouped into families the
// way pkg/protocol/methods.go groups its RPC method constants — except
// these cross the host↔sandbox trust boundary rather than a client↔server
// websocket, so every family here is something the sandboxed agent is
// never trusted to do on its own: touch persisted memory, reach the
// network, mint a scheduled job, or read/write audit history.
type Action string

const (
	// Model family: the sandbox asks the host to run one LLM turn
	// through the credential proxy, never holding a vendor key itself.
	ActionModelComplete Action = "model.complete"
	ActionModelStream   Action = "model.stream"

	// Memory family: memory_write/memory_read/memory_query/memory_delete/
	// memory_list, plus memory_search and memory_get, the two retrieval
	// shapes the teacher's full-text/semantic lookup already distinguished.
	ActionMemorySearch Action = "memory.search"
	ActionMemoryQuery  Action = "memory.query"
	ActionMemoryGet    Action = "memory.get"
	ActionMemoryRead   Action = "memory.read"
	ActionMemoryList   Action = "memory.list"
	ActionMemoryWrite  Action = "memory.write"
	ActionMemoryDelete Action = "memory.delete"

	// Web/browser family. Each browser_* action keeps its own payload
	// schema rather than collapsing into one generic instruction, so
	// DecodePayload's strict-field validation applies per-action.
	ActionWebSearch        Action = "web.search"
	ActionWebFetch         Action = "web.fetch"
	ActionBrowserNavigate  Action = "browser.navigate"
	ActionBrowserSnapshot  Action = "browser.snapshot"
	ActionBrowserClick     Action = "browser.click"
	ActionBrowserType      Action = "browser.type"
	ActionBrowserShot      Action = "browser.screenshot"

	// Skills family.
	ActionSkillsList    Action = "skills.list"
	ActionSkillsGet     Action = "skills.get"
	ActionSkillsPropose Action = "skills.propose"

	// Scheduler family: recurring (create) and one-off (run_at) jobs
	// share the list/delete actions since both persist as a CronJob.
	ActionSchedulerCreate Action = "scheduler.create"
	ActionSchedulerRunAt  Action = "scheduler.run_at"
	ActionSchedulerList   Action = "scheduler.list"
	ActionSchedulerDelete Action = "scheduler.delete"

	// Audit family: read-only from the sandbox's side. The audit log
	// itself is append-only from the host — every dispatched action is
	// already recorded by Server.dispatch regardless of what handler ran,
	// so there is no sandbox-reachable write action here.
	ActionAuditQuery Action = "audit.query"

	// Delegation family: spawn/await a subagent turn sharing this
	// session's taint state.
	ActionDelegationSpawn Action = "delegation.spawn"
	ActionDelegationAwait Action = "delegation.await"

	// Sessions family: read-only peer-session operations reachable from
	// a sandboxed agent's "sessions" tool group.
	ActionSessionsList    Action = "sessions.list"
	ActionSessionsHistory Action = "sessions.history"
	ActionSessionsSend    Action = "sessions.send"
)

// sensitiveActions require a non-exhausted taint budget before the
// handler runs — gated centrally in server.go rather than per-handler,
// so a new handler can't forget the check.
var sensitiveActions = map[Action]bool{
	ActionMemoryWrite:     true,
	ActionMemoryDelete:    true,
	ActionSchedulerCreate: true,
	ActionSchedulerRunAt:  true,
	ActionSchedulerDelete: true,
	ActionDelegationSpawn: true,
	ActionSessionsSend:    true,
}

// IsSensitive reports whether a handles a capability the taint budget gates.
func (a Action) IsSensitive() bool { return sensitiveActions[a] }
