package router

import (
	"testing"
	"time"
)

func TestDedupSuppressesWithinWindow(t *testing.T) {
	d := NewDedup(50 * time.Millisecond)

	if d.Seen("telegram", "msg-1") {
		t.Fatal("first delivery should not be a duplicate")
	}
	if !d.Seen("telegram", "msg-1") {
		t.Fatal("second delivery within window should be suppressed")
	}
	if !d.Seen("telegram", "msg-1") {
		t.Fatal("third delivery within window should still be suppressed")
	}
}

func TestDedupAllowsAfterTTL(t *testing.T) {
	d := NewDedup(20 * time.Millisecond)

	if d.Seen("telegram", "msg-2") {
		t.Fatal("first delivery should not be a duplicate")
	}
	time.Sleep(30 * time.Millisecond)
	if d.Seen("telegram", "msg-2") {
		t.Fatal("delivery after TTL elapsed should not be suppressed")
	}
}

func TestDedupDistinguishesProviders(t *testing.T) {
	d := NewDedup(time.Minute)

	if d.Seen("telegram", "same-id") {
		t.Fatal("first delivery should not be a duplicate")
	}
	if d.Seen("discord", "same-id") {
		t.Fatal("different provider with the same message ID should not collide")
	}
}

func TestDedupCapsTrackedKeys(t *testing.T) {
	d := NewDedup(time.Minute)

	for i := 0; i < dedupMaxTrackedKeys+100; i++ {
		d.Seen("telegram", string(rune(i)))
	}

	d.mu.Lock()
	count := len(d.seen)
	d.mu.Unlock()

	if count >= dedupMaxTrackedKeys+100 {
		t.Fatalf("expected eviction to bound tracked keys, got %d entries", count)
	}
}
