package simulator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shargri-la/shargri-la/core"
	"github.com/shargri-la/shargri-la/environment"
	"github.com/shargri-la/shargri-la/params"
	"github.com/shargri-la/shargri-la/randsrc"
)

func TestRunWritesReportsToOutputDir(t *testing.T) {
	duration := core.Slot(2)
	sim := New(randsrc.New(1), duration)
	dir := t.TempDir()

	if err := sim.Run(environment.SetupOptions{UserNum: 10}, dir); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if sim.Environment.Blockchain.Slot != duration {
		t.Errorf("Slot = %d, want %d", sim.Environment.Blockchain.Slot, duration)
	}
	if _, err := os.Stat(filepath.Join(dir, params.OutputBaseFeeCSV)); err != nil {
		t.Errorf("expected %s to be written: %v", params.OutputBaseFeeCSV, err)
	}
}

func TestRunUsesDefaultOutputDirWhenEmpty(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd() error = %v", err)
	}
	tmp := t.TempDir()
	if err := os.Chdir(tmp); err != nil {
		t.Fatalf("Chdir() error = %v", err)
	}
	defer os.Chdir(wd)

	sim := New(randsrc.New(1), core.Slot(1))
	if err := sim.Run(environment.SetupOptions{UserNum: 5}, ""); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if _, err := os.Stat(DefaultOutputDirPath); err != nil {
		t.Errorf("expected default output dir %q to be created: %v", DefaultOutputDirPath, err)
	}
}

func TestRunReusesExistingOutputDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}

	sim := New(randsrc.New(1), core.Slot(1))
	if err := sim.Run(environment.SetupOptions{UserNum: 5}, dir); err != nil {
		t.Fatalf("Run() on a pre-existing output dir should not error, got %v", err)
	}
}
