// Package simulator drives a full simulation run: setup, slot-by-slot
// processing, and the final CSV/console report. Ported from
// original_source/fee-analysis/src/simulator.rs.
package simulator

import (
	"log"
	"os"

	"github.com/shargri-la/shargri-la/core"
	"github.com/shargri-la/shargri-la/environment"
	"github.com/shargri-la/shargri-la/randsrc"
	"github.com/shargri-la/shargri-la/report"
)

// DefaultOutputDirPath is used when the caller does not request a specific
// output directory.
const DefaultOutputDirPath = "data"

// Simulator owns one Environment and runs it for a fixed number of slots.
type Simulator struct {
	Environment *environment.Environment
	Duration    core.Slot
}

// New returns a simulator over a fresh environment seeded from stream, set
// to run for duration slots.
func New(stream *randsrc.Stream, duration core.Slot) *Simulator {
	return &Simulator{
		Environment: environment.New(stream),
		Duration:    duration,
	}
}

// Run sets up the environment, advances it slot by slot, then writes every
// report CSV into outputDirPath and prints a console summary to stdout. A non-existent
// output directory is created; an already-existing one is reused, matching
// Simulator::run's std::fs::create_dir call (which ignores AlreadyExists
// and surfaces anything else).
func (s *Simulator) Run(opts environment.SetupOptions, outputDirPath string) error {
	if outputDirPath == "" {
		outputDirPath = DefaultOutputDirPath
	}

	if err := s.Environment.Setup(opts); err != nil {
		return err
	}

	if err := os.MkdirAll(outputDirPath, 0o755); err != nil {
		return err
	}

	for slot := core.Slot(0); slot < s.Duration; slot++ {
		log.Printf("simulator: slot %d", s.Environment.Blockchain.Slot)
		s.Environment.Process()
	}

	for _, err := range report.WriteAll(outputDirPath, s.Environment, int(s.Duration)) {
		log.Printf("simulator: %v", err)
	}

	report.PrintSummary(os.Stdout, s.Environment)
	return nil
}
