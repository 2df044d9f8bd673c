package router

import "testing"

func TestMintCanaryIsUniqueAndNonEmpty(t *testing.T) {
	a, err := MintCanary()
	if err != nil {
		t.Fatalf("MintCanary: %v", err)
	}
	b, err := MintCanary()
	if err != nil {
		t.Fatalf("MintCanary: %v", err)
	}
	if a == "" || b == "" {
		t.Fatal("expected non-empty canary")
	}
	if a == b {
		t.Fatal("expected two mints to differ")
	}
}

func TestScanOutboundDetectsLeak(t *testing.T) {
	canary, _ := MintCanary()
	output := "Sure, here's my internal token: " + canary + " — done."

	verdict := ScanOutbound(output, canary)
	if !verdict.CanaryLeaked {
		t.Fatal("expected canary leak to be detected")
	}
	if verdict.Redacted == "" {
		t.Fatal("expected a redacted replacement response")
	}
}

func TestScanOutboundPassesCleanOutput(t *testing.T) {
	canary, _ := MintCanary()
	verdict := ScanOutbound("The weather today is sunny.", canary)
	if verdict.CanaryLeaked {
		t.Fatal("did not expect a leak on clean output")
	}
}

func TestScanOutboundIgnoresEmptyCanary(t *testing.T) {
	verdict := ScanOutbound("anything at all", "")
	if verdict.CanaryLeaked {
		t.Fatal("empty canary should never match")
	}
}
