package taint

import "testing"

func TestSessionTrackerRecordsInOrder(t *testing.T) {
	tr := NewSessionTracker(0.4)
	tr.Record("user:msg-1", TrustUser, 10)
	tr.Record("web_fetch:https://example.com", TrustExternal, 20)

	tags := tr.Tags()
	if len(tags) != 2 {
		t.Fatalf("len(tags) = %d, want 2", len(tags))
	}
	if tags[0].Source != "user:msg-1" || tags[1].Source != "web_fetch:https://example.com" {
		t.Fatalf("tags out of order: %+v", tags)
	}
}

func TestRegistryGetIsStableAcrossCalls(t *testing.T) {
	r := NewRegistry(0.4)
	a := r.Get("session-1")
	b := r.Get("session-1")
	if a != b {
		t.Fatal("Get should return the same tracker instance for the same key")
	}
}

func TestRegistryForkInheritsParentTaint(t *testing.T) {
	r := NewRegistry(0.3)
	parent := r.Get("parent")
	parent.Record("web_fetch:https://evil.example", TrustExternal, 100)
	parent.Record("user:msg", TrustUser, 50)

	child := r.Fork("parent", "child")
	if !child.Exhausted() {
		t.Fatalf("forked child should inherit parent's exhausted budget, ratio=%v", child.Budget().Ratio())
	}
	if len(child.Tags()) != 2 {
		t.Fatalf("child should inherit parent's tag history, got %d tags", len(child.Tags()))
	}

	// Independent going forward: recording on the child must not affect the parent.
	child.Record("web_fetch:https://more-evil.example", TrustExternal, 10)
	if len(parent.Tags()) != 2 {
		t.Fatalf("parent tags mutated after child fork: %+v", parent.Tags())
	}
}

func TestRegistryRelease(t *testing.T) {
	r := NewRegistry(0.4)
	first := r.Get("session-1")
	first.Record("user:msg", TrustUser, 5)
	r.Release("session-1")

	second := r.Get("session-1")
	if len(second.Tags()) != 0 {
		t.Fatal("released session should start fresh on next Get")
	}
}
