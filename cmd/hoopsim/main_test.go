package main

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/san-kum/hoopsim/internal/config"
	"github.com/san-kum/hoopsim/internal/experiment"
	"github.com/san-kum/hoopsim/internal/storage"
)

func simCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	addSimFlags(cmd)
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	return cmd
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{config.EnvGravity, config.EnvRadius, config.EnvDt} {
		t.Setenv(k, "")
	}
}

func TestResolveConfigDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := resolveConfig(simCommand(t))
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Balls) != 3 || cfg.Gravity != config.DefaultGravity {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestResolveConfigLayering(t *testing.T) {
	clearEnv(t)
	t.Setenv(config.EnvDt, "0.001")

	path := filepath.Join(t.TempDir(), "hoop.yaml")
	if err := os.WriteFile(path, []byte("radius: 3.0\nduration: 4.0\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cmd := simCommand(t, "--preset", "mass_comparison", "--config", path, "--environment", "moon", "--time", "1.5")
	cfg, err := resolveConfig(cmd)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Preset != "mass_comparison" {
		t.Errorf("expected preset name kept, got %q", cfg.Preset)
	}
	if len(cfg.Balls) != 3 || cfg.Balls[2].Name != "heavy" {
		t.Errorf("expected preset balls, got %+v", cfg.Balls)
	}
	if cfg.Radius != 3.0 {
		t.Errorf("expected radius from config file, got %v", cfg.Radius)
	}
	if cfg.Dt != 0.001 {
		t.Errorf("expected dt from environment, got %v", cfg.Dt)
	}
	if cfg.Gravity != 1.62 {
		t.Errorf("expected moon gravity, got %v", cfg.Gravity)
	}
	if cfg.Duration != 1.5 {
		t.Errorf("expected duration from flag, got %v", cfg.Duration)
	}
}

func TestResolveConfigErrors(t *testing.T) {
	clearEnv(t)
	tests := [][]string{
		{"--preset", "nope"},
		{"--environment", "mars"},
		{"--dt", "0"},
		{"--edit-policy", "locked"},
	}
	for _, args := range tests {
		if _, err := resolveConfig(simCommand(t, args...)); err == nil {
			t.Errorf("expected error for %v", args)
		}
	}
}

func TestRecordField(t *testing.T) {
	r := storage.Record{Theta: 1, Omega: 2, Speed: 3, Kinetic: 4, Potential: 5, Total: 6, Centripetal: 7}
	for name, want := range map[string]float64{
		"theta": 1, "omega": 2, "speed": 3, "kinetic": 4, "potential": 5, "total": 6, "centripetal": 7,
	} {
		f, err := recordField(name)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if got := f(r); got != want {
			t.Errorf("%s: got %v, want %v", name, got, want)
		}
	}
	if _, err := recordField("mass"); err == nil {
		t.Error("expected error for unknown field")
	}
}

func TestSaveRecordingStoresLiveEdits(t *testing.T) {
	dataDir = t.TempDir()
	exp, err := experiment.New(config.DefaultConfig(), nil)
	if err != nil {
		t.Fatal(err)
	}
	sc := exp.Scene()
	if err := sc.SetGravity(24.8); err != nil {
		t.Fatal(err)
	}
	if err := sc.SetMass("ball1", 0.5); err != nil {
		t.Fatal(err)
	}
	sc.StartRecording()
	sc.Start()
	for i := 0; i < 10; i++ {
		if err := sc.Tick(0.002); err != nil {
			t.Fatal(err)
		}
	}
	sc.Pause()

	if _, err := saveRecording(exp)(sc.Records()); err != nil {
		t.Fatalf("save: %v", err)
	}

	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil || len(runs) != 1 {
		t.Fatalf("expected one stored run, got %d (%v)", len(runs), err)
	}
	meta := runs[0]
	if meta.Gravity != 24.8 {
		t.Errorf("stored gravity %v, want 24.8", meta.Gravity)
	}
	if meta.Bodies[0].Mass != 0.5 {
		t.Errorf("stored ball1 mass %v, want 0.5", meta.Bodies[0].Mass)
	}
	if math.Abs(meta.Duration-0.02) > 1e-9 {
		t.Errorf("stored duration %v, want 0.02", meta.Duration)
	}
}

func TestWriteConfigRoundTrips(t *testing.T) {
	clearEnv(t)
	outFile = filepath.Join(t.TempDir(), "lab.yaml")
	t.Cleanup(func() { outFile = "" })

	cmd := simCommand(t, "--preset", "mass_comparison", "--environment", "moon")
	if err := writeConfig(cmd, nil); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(outFile)
	if err != nil {
		t.Fatal(err)
	}
	want := config.GetPreset("mass_comparison")
	if cfg.Preset != "mass_comparison" || cfg.Gravity != 1.62 || len(cfg.Balls) != len(want.Balls) {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.FrameRate != want.FrameRate {
		t.Errorf("frame rate %d, want %d", cfg.FrameRate, want.FrameRate)
	}
}
