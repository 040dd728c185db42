package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/shargri-la/shargri-la/environment"
	"github.com/shargri-la/shargri-la/params"
	"github.com/shargri-la/shargri-la/randsrc"
)

func runTinySimulation(t *testing.T, duration int) *environment.Environment {
	t.Helper()
	env := environment.New(randsrc.New(1))
	if err := env.Setup(environment.SetupOptions{UserNum: 10}); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	for i := 0; i < duration; i++ {
		env.Process()
	}
	return env
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening %s: %v", path, err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return rows
}

func TestWriteAllProducesOneRowPerSlot(t *testing.T) {
	duration := 3
	env := runTinySimulation(t, duration)
	dir := t.TempDir()

	if errs := WriteAll(dir, env, duration); len(errs) != 0 {
		t.Fatalf("WriteAll() errors = %v", errs)
	}

	perShardFiles := []string{params.OutputBaseFeeCSV, params.OutputActiveUserNumCSV, params.OutputMempoolCSV}
	for _, file := range perShardFiles {
		rows := readCSV(t, filepath.Join(dir, file))
		if len(rows) != duration {
			t.Errorf("%s: got %d rows, want %d", file, len(rows), duration)
		}
		if len(rows) > 0 && len(rows[0]) != len(env.Blockchain.Shards) {
			t.Errorf("%s: row width = %d, want %d (one column per shard)", file, len(rows[0]), len(env.Blockchain.Shards))
		}
	}

	functionRows := readCSV(t, filepath.Join(dir, params.OutputFunctionNumCSV))
	if len(functionRows) != duration {
		t.Errorf("function_num.csv: got %d rows, want %d", len(functionRows), duration)
	}
	if len(functionRows) > 0 && len(functionRows[0]) != 10 {
		t.Errorf("function_num.csv: row width = %d, want 10", len(functionRows[0]))
	}
}

func TestWriteUsersCSVHasOneRowPerUser(t *testing.T) {
	duration := 2
	env := runTinySimulation(t, duration)
	dir := t.TempDir()

	if errs := WriteAll(dir, env, duration); len(errs) != 0 {
		t.Fatalf("WriteAll() errors = %v", errs)
	}

	rows := readCSV(t, filepath.Join(dir, params.OutputUsersCSV))
	if len(rows) != len(env.Users) {
		t.Fatalf("users.csv rows = %d, want %d", len(rows), len(env.Users))
	}
	for _, row := range rows {
		if len(row) != 4 {
			t.Errorf("users.csv row width = %d, want 4", len(row))
		}
	}
}

func TestWriteAllCreatesMissingOutputDir(t *testing.T) {
	duration := 1
	env := runTinySimulation(t, duration)
	dir := filepath.Join(t.TempDir(), "nested", "output")

	if errs := WriteAll(dir, env, duration); len(errs) != 0 {
		t.Fatalf("WriteAll() errors = %v", errs)
	}
	if _, err := os.Stat(filepath.Join(dir, params.OutputBaseFeeCSV)); err != nil {
		t.Errorf("expected output dir to be created: %v", err)
	}
}
