package sessions

import "strings"

// Address is the typed form of a canonical session key: a colon-joined
// hierarchical path (provider, scope, identifiers) with an optional
// parent, so a forum-topic or subagent session can point back at the
// channel/thread it was spawned from without re-deriving it from string
// parsing at every call site. For DM, group, forum-topic and subagent
// keys, String() reproduces the canonical form BuildSessionKey and friends
// emit. Cron keys lose their run ID when parsed and do not round-trip, and
// neither do keys with fewer than three segments after the agent ID
// (main and per-peer DM keys).
type Address struct {
	AgentID  string
	Channel  string // "telegram", "discord", "cron", "subagent", ...
	Kind     PeerKind
	ID       string // chat/peer/job ID
	Topic    string // forum topic ID, empty if not a topic thread
	Parent   *Address
}

// String renders the canonical session key for this address.
func (a Address) String() string {
	if a.Channel == "subagent" {
		return BuildSubagentSessionKey(a.AgentID, a.ID)
	}
	if a.Topic != "" {
		return BuildGroupTopicSessionKeyFromAddress(a)
	}
	return BuildSessionKey(a.AgentID, a.Channel, a.Kind, a.ID)
}

// BuildGroupTopicSessionKeyFromAddress renders a.Topic using the same
// format as BuildGroupTopicSessionKey, accepting a string topic ID since
// Address stores it as one (topic IDs arrive as strings over IPC/channel
// webhooks and are only parsed to int at the channel adapter boundary).
func BuildGroupTopicSessionKeyFromAddress(a Address) string {
	return "agent:" + a.AgentID + ":" + a.Channel + ":group:" + a.ID + ":topic:" + a.Topic
}

// ParseAddress parses a canonical session key back into an Address. It
// does not populate Parent — callers that need the thread→channel tree
// reconstruct Parent explicitly from context (e.g. the router knows the
// channel session a subagent was spawned from without needing to decode
// it back out of the subagent's own key).
func ParseAddress(key string) (Address, bool) {
	agentID, rest := ParseSessionKey(key)
	if agentID == "" {
		return Address{}, false
	}
	parts := strings.Split(rest, ":")

	if len(parts) >= 2 && parts[0] == "subagent" {
		return Address{AgentID: agentID, Channel: "subagent", ID: strings.Join(parts[1:], ":")}, true
	}
	if len(parts) >= 4 && parts[0] == "cron" {
		return Address{AgentID: agentID, Channel: "cron", ID: parts[1]}, true
	}
	if len(parts) >= 3 {
		channel, kind, id := parts[0], parts[1], parts[2]
		addr := Address{AgentID: agentID, Channel: channel, Kind: PeerKind(kind), ID: id}
		if len(parts) >= 5 && parts[3] == "topic" {
			addr.Topic = parts[4]
		}
		return addr, true
	}
	return Address{AgentID: agentID, Channel: "", ID: rest}, true
}

// WithParent returns a copy of a with Parent set, forming a thread→channel
// tree (e.g. a forum-topic Address's parent is the bare group Address; a
// subagent Address's parent is the session that spawned it).
func (a Address) WithParent(parent Address) Address {
	a.Parent = &parent
	return a
}

// Root walks Parent pointers to the top of the tree.
func (a Address) Root() Address {
	cur := a
	for cur.Parent != nil {
		cur = *cur.Parent
	}
	return cur
}
