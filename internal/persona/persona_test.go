package persona

import (
	"os"
	"path/filepath"
	"testing"
)

func TestInitCreatesDefault(t *testing.T) {
	store := NewStore(t.TempDir())
	if err := store.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}

	p, err := store.Load(defaultName)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Name != "General Analysis" {
		t.Errorf("name = %q", p.Name)
	}
	if len(p.Agents) != 12 {
		t.Errorf("agents = %d, want 12", len(p.Agents))
	}
	if store.ActiveName() != defaultName {
		t.Errorf("active = %q, want %q", store.ActiveName(), defaultName)
	}

	// Init again must not clobber anything.
	if err := store.Init(); err != nil {
		t.Fatalf("second Init: %v", err)
	}
}

func TestListFlagsActive(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	if err := store.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}

	data := []byte(`{"name": "Debate Club", "agents": [{"role": "Advocate", "prompt": "argue for"}]}`)
	if err := os.WriteFile(filepath.Join(dir, "personas", "debate.json"), data, 0o644); err != nil {
		t.Fatalf("writing persona: %v", err)
	}

	infos, err := store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("infos = %+v, want 2", infos)
	}
	// Sorted: debate, general.
	if infos[0].Name != "debate" || infos[0].Active {
		t.Errorf("infos[0] = %+v", infos[0])
	}
	if infos[1].Name != "general" || !infos[1].Active {
		t.Errorf("infos[1] = %+v", infos[1])
	}
}

func TestUse(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	if err := store.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}

	if err := store.Use("missing"); err == nil {
		t.Error("Use of an unknown persona should fail")
	}

	data := []byte(`{"name": "Debate Club", "agents": []}`)
	if err := os.WriteFile(filepath.Join(dir, "personas", "debate.json"), data, 0o644); err != nil {
		t.Fatalf("writing persona: %v", err)
	}
	if err := store.Use("debate"); err != nil {
		t.Fatalf("Use: %v", err)
	}
	if store.ActiveName() != "debate" {
		t.Errorf("active = %q, want debate", store.ActiveName())
	}

	p := store.Active()
	if p.Name != "Debate Club" {
		t.Errorf("Active() = %+v", p)
	}
}

func TestActiveFallsBack(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	if err := store.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}

	// Point the state at a persona whose file is gone.
	if err := writeJSON(store.statePath(), state{ActivePersona: "vanished"}); err != nil {
		t.Fatalf("writing state: %v", err)
	}

	p := store.Active()
	if p == nil || p.Name != defaultPersona.Name {
		t.Errorf("Active() = %+v, want the built-in default", p)
	}
	if len(p.Agents) != len(defaultPersona.Agents) {
		t.Errorf("agents = %d, want %d", len(p.Agents), len(defaultPersona.Agents))
	}
}

func TestLoadMissing(t *testing.T) {
	store := NewStore(t.TempDir())
	if _, err := store.Load("nope"); err == nil {
		t.Error("Load of a missing persona should fail")
	}
}
