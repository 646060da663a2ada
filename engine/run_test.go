package engine

import (
	"strings"
	"testing"
)

func TestRunReleasesResourcesOnSetupError(t *testing.T) {
	var opened *Store
	openStore = func(path string) (*Store, error) {
		st, err := OpenStore(path)
		opened = st
		return st, err
	}
	t.Cleanup(func() { openStore = OpenStore })

	cfg := DefaultConfig()
	cfg.Participant = "sub-200"
	cfg.Condition = string(ModeAttentionCue)
	cfg.DryRun = true
	cfg.DataDir = t.TempDir()
	cfg.StimuliDir = t.TempDir()
	cfg.ConditionsFile = writeFile(t, "conditions.csv", "up,12,10,3\n")

	err := Run(cfg)
	if err == nil || !strings.Contains(err.Error(), "conditions") {
		t.Fatalf("Run = %v, want the conditions error", err)
	}
	if opened == nil {
		t.Fatal("store was never opened")
	}
	if err := opened.db.Ping(); err == nil {
		t.Error("store left open after a failed setup")
	}
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DataDir = t.TempDir()
	if err := Run(cfg); err == nil {
		t.Fatal("Run accepted a config without participant")
	}
}
