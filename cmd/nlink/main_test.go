package main

import (
	"path/filepath"
	"testing"

	"github.com/san-kum/nlink/internal/config"
)

func parseConfig(t *testing.T, args ...string) (*config.Config, error) {
	t.Helper()
	cmd := newRunCmd()
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	return buildConfig(cmd)
}

func TestBuildConfigDefaults(t *testing.T) {
	cfg, err := parseConfig(t)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Links != config.DefaultLinks || len(cfg.Masses) != config.DefaultLinks {
		t.Errorf("expected default chain, got %d links", cfg.Links)
	}
}

func TestBuildConfigFlags(t *testing.T) {
	cfg, err := parseConfig(t, "--links", "3", "--dt", "0.005", "--formulation", "lagrangian", "--theta", "0.1,0.2,0.3")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Links != 3 || cfg.Dt != 0.005 || cfg.Formulation != "lagrangian" {
		t.Errorf("flags not applied: %+v", cfg)
	}
	if cfg.InitState.Theta[2] != 0.3 || len(cfg.InitState.DTheta) != 3 {
		t.Errorf("initial state = %+v", cfg.InitState)
	}
}

func TestBuildConfigPreset(t *testing.T) {
	want := config.GetPreset("double", "chaos")
	cfg, err := parseConfig(t, "--preset", "double/chaos", "--time", "2")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Links != 2 || cfg.Dt != want.Dt {
		t.Errorf("preset not applied: %+v", cfg)
	}
	if cfg.Duration != 2 {
		t.Errorf("flag should override preset duration, got %f", cfg.Duration)
	}

	if _, err := parseConfig(t, "--preset", "chaos"); err == nil {
		t.Error("expected error for preset without group")
	}
	if _, err := parseConfig(t, "--preset", "double/nope"); err == nil {
		t.Error("expected error for unknown preset")
	}
}

func TestBuildConfigFileOverriddenByFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chain.yaml")
	file := config.DefaultConfig()
	file.Links = 4
	file.Cadence = 7
	if err := config.Save(path, file); err != nil {
		t.Fatal(err)
	}

	cfg, err := parseConfig(t, "--config", path, "--cadence", "3")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Links != 4 {
		t.Errorf("expected 4 links from file, got %d", cfg.Links)
	}
	if cfg.Cadence != 3 {
		t.Errorf("expected cadence 3 from flag, got %d", cfg.Cadence)
	}
}

func TestBuildConfigInfersLinksFromLists(t *testing.T) {
	cfg, err := parseConfig(t, "--masses", "1,2,3")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Links != 3 || len(cfg.Lengths) != 3 || len(cfg.InitState.Theta) != 3 {
		t.Errorf("expected 3 links inferred from masses, got %d links, lengths %v", cfg.Links, cfg.Lengths)
	}

	cfg, err = parseConfig(t, "--preset", "double/chaos", "--theta", "0.1,0.2,0.3,0.4")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Links != 4 || len(cfg.Masses) != 4 || len(cfg.InitState.DTheta) != 4 {
		t.Errorf("expected preset lists resized to 4 links, got %d links, masses %v", cfg.Links, cfg.Masses)
	}
	if cfg.InitState.Theta[3] != 0.4 {
		t.Errorf("expected theta from flag, got %v", cfg.InitState.Theta)
	}

	if _, err := parseConfig(t, "--masses", "1,2,3", "--lengths", "1,2"); err == nil {
		t.Error("expected error for lists of different lengths")
	}
}

func TestBuildConfigInvalid(t *testing.T) {
	if _, err := parseConfig(t, "--dt", "-1"); err == nil {
		t.Error("expected error for negative dt")
	}
	if _, err := parseConfig(t, "--links", "2", "--masses", "1,2,3"); err == nil {
		t.Error("expected error for mismatched masses")
	}
}
