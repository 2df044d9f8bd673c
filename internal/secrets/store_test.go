package secrets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewStoreLoadsFromEnv(t *testing.T) {
	t.Setenv("AX_ANTHROPIC_API_KEY", "sk-test-123")
	s := NewStore()
	if got := s.Get(Anthropic); got != "sk-test-123" {
		t.Fatalf("Get(Anthropic) = %q, want sk-test-123", got)
	}
	if !s.Has(Anthropic) {
		t.Fatal("Has(Anthropic) = false, want true")
	}
}

func TestDescribeRedactsValues(t *testing.T) {
	s := NewStore()
	s.Set(OpenAI, "sk-abcdefghijklmnop")
	desc := s.Describe()
	if desc[OpenAI] == "sk-abcdefghijklmnop" {
		t.Fatal("Describe must not return the raw secret value")
	}
	if desc[Anthropic] != "(unset)" {
		t.Fatalf("unset secret should describe as (unset), got %q", desc[Anthropic])
	}
}

func TestSaveDotenvPreservesUnrelatedLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	initial := "# my notes\nAX_OPENAI_API_KEY=old-value\nAX_FOO=bar\n"
	if err := os.WriteFile(path, []byte(initial), 0600); err != nil {
		t.Fatal(err)
	}

	if err := SaveDotenv(path, map[Name]string{OpenAI: "new-value"}); err != nil {
		t.Fatalf("SaveDotenv: %v", err)
	}

	out, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	content := string(out)
	if !strings.Contains(content, "# my notes") {
		t.Fatal("comment line was not preserved")
	}
	if !strings.Contains(content, "AX_FOO=bar") {
		t.Fatal("unrelated var was not preserved")
	}
	if !strings.Contains(content, "AX_OPENAI_API_KEY=new-value") {
		t.Fatal("target var was not updated")
	}
	if strings.Contains(content, "old-value") {
		t.Fatal("old value should have been replaced, not appended alongside")
	}
}

func TestSaveDotenvAppendsNewKey(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")

	if err := SaveDotenv(path, map[Name]string{Groq: "gsk-1"}); err != nil {
		t.Fatalf("SaveDotenv: %v", err)
	}
	out, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), "AX_GROQ_API_KEY=gsk-1") {
		t.Fatalf("expected appended key, got %q", out)
	}
}
