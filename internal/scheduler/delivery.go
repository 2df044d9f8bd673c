package scheduler

import "fmt"

// LastChannelLookup resolves the channel/chat a given agent last
// exchanged a message on. internal/store.SessionStore.LastUsedChannel
// satisfies this once adapted to the single-agent key space.
type LastChannelLookup func(agentID string) (channel, target string, err error)

// ResolveDelivery expands d.Target == LastUsedTarget into the concrete
// channel/chat pair lookup returns, leaving any other Delivery
// unchanged. A fixed (non-"last") target is never rewritten — it is
// already the agent's own job-creation-time intent, and honoring it
// verbatim is what keeps delivery pinned to a job's persisted config
// instead of anything decided at fire time.
func ResolveDelivery(d Delivery, agentID string, lookup LastChannelLookup) (Delivery, error) {
	if d.Mode != DeliverChannel || d.Target != LastUsedTarget {
		return d, nil
	}
	if lookup == nil {
		return Delivery{}, fmt.Errorf("scheduler: delivery targets %q but no last-channel lookup is configured", LastUsedTarget)
	}
	channel, target, err := lookup(agentID)
	if err != nil {
		return Delivery{}, fmt.Errorf("scheduler: resolve last-used channel for agent %s: %w", agentID, err)
	}
	if channel == "" || target == "" {
		return Delivery{}, fmt.Errorf("scheduler: agent %s has no prior channel activity to deliver to", agentID)
	}
	return Delivery{Mode: DeliverChannel, Channel: channel, Target: target}, nil
}
