package msgcat

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEmbeddedDefaultsLoad(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	out, err := c.Render("conn.connected", nil)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if out == "" {
		t.Fatal("embedded default rendered empty")
	}
}

func TestRenderWithData(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	out, err := c.Render("lobby.challenge_prompt", map[string]any{"From": "bob"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if out == "" {
		t.Fatal("templated message rendered empty")
	}
}

func TestUnknownKeyFails(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := c.Render("no.such.key", nil); err == nil {
		t.Fatal("unknown key should fail so callers can fall back")
	}
}

func TestOverrideDirWins(t *testing.T) {
	dir := t.TempDir()
	override := []byte("conn:\n  connected: \"custom hello\"\n")
	if err := os.WriteFile(filepath.Join(dir, "10-local.yaml"), override, 0o644); err != nil {
		t.Fatalf("write override: %v", err)
	}

	c, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	out, err := c.Render("conn.connected", nil)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if out != "custom hello" {
		t.Fatalf("override not applied: %q", out)
	}
	// Keys the override does not touch keep their defaults.
	if _, err := c.Render("auth.logged_out", nil); err != nil {
		t.Fatalf("default lost after override: %v", err)
	}
}
