package bootstrap

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestNeedsBootstrapTrueWhenOnlyBootstrapFileExists(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, BootstrapFile, "setup me")

	if !NeedsBootstrap(dir) {
		t.Fatal("expected NeedsBootstrap = true")
	}
}

func TestNeedsBootstrapFalseOnceSoulFileExists(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, BootstrapFile, "setup me")
	writeFile(t, dir, SoulFile, "who I am")

	if NeedsBootstrap(dir) {
		t.Fatal("expected NeedsBootstrap = false once SOUL.md exists")
	}
}

func TestNeedsBootstrapFalseWhenNoBootstrapFile(t *testing.T) {
	dir := t.TempDir()

	if NeedsBootstrap(dir) {
		t.Fatal("expected NeedsBootstrap = false with no BOOTSTRAP.md")
	}
}

func TestIsAdminMatchesCaseInsensitiveAndTrimmed(t *testing.T) {
	ids := []string{" Telegram:386246614 ", "discord:999"}

	if !IsAdmin("telegram:386246614", ids) {
		t.Fatal("expected sender to match admin list")
	}
	if IsAdmin("telegram:000000", ids) {
		t.Fatal("unexpected admin match")
	}
}

func TestGateAllowsNonAdminOutsideBootstrap(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, SoulFile, "configured")

	got := Gate(dir, "telegram:anyone", nil)
	if !got.Allowed {
		t.Fatalf("expected allowed, got %+v", got)
	}
}

func TestGateDeniesNonAdminDuringBootstrap(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, BootstrapFile, "setup me")

	got := Gate(dir, "telegram:stranger", []string{"telegram:386246614"})
	if got.Allowed {
		t.Fatal("expected denied during bootstrap")
	}
	if got.Reason == "" {
		t.Fatal("expected a reason message")
	}
}

func TestGateAllowsAdminDuringBootstrap(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, BootstrapFile, "setup me")

	got := Gate(dir, "telegram:386246614", []string{"telegram:386246614"})
	if !got.Allowed {
		t.Fatalf("expected admin allowed during bootstrap, got %+v", got)
	}
}
