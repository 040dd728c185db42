// Package report writes the simulation's per-slot history to CSV and prints
// a console summary once a run finishes. Ported from
// original_source/fee-analysis/src/simulator.rs's output_csv_* methods,
// which write one CSV per metric directly from the chain's retained state
// rather than a purpose-built metrics object.
package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"

	"github.com/cockroachdb/errors"

	"github.com/shargri-la/shargri-la/core"
	"github.com/shargri-la/shargri-la/environment"
	"github.com/shargri-la/shargri-la/params"
)

// WriteAll writes every output CSV for a completed run of the given
// duration into outputDir, creating it if necessary. Mirrors
// Simulator::run's tail: each writer's failure is collected into the
// returned slice and does not stop the others from running.
func WriteAll(outputDir string, env *environment.Environment, duration int) []error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return []error{errors.Wrap(err, "report: creating output dir")}
	}

	var errs []error
	writers := []struct {
		file string
		fn   func(string, *environment.Environment, int) error
	}{
		{params.OutputBaseFeeCSV, writeBaseFeeCSV},
		{params.OutputActiveUserNumCSV, writeActiveUserNumCSV},
		{params.OutputUsersCSV, writeUsersCSV},
		{params.OutputFunctionNumCSV, writeFunctionNumCSV},
		{params.OutputMempoolCSV, writeMempoolCSV},
	}

	for _, w := range writers {
		path := filepath.Join(outputDir, w.file)
		if err := w.fn(path, env, duration); err != nil {
			errs = append(errs, errors.Wrapf(err, "report: writing %s", w.file))
		}
	}
	return errs
}

func createWriter(path string) (*os.File, *csv.Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, csv.NewWriter(f), nil
}

// writeBaseFeeCSV writes one row per slot, one column per shard, of the
// base fee in effect during that slot.
func writeBaseFeeCSV(path string, env *environment.Environment, duration int) error {
	f, w, err := createWriter(path)
	if err != nil {
		return err
	}
	defer f.Close()

	shardNum := len(env.Blockchain.Shards)
	for slot := 0; slot < duration; slot++ {
		row := make([]string, shardNum)
		for shardID, shard := range env.Blockchain.Shards {
			row[shardID] = shard.States[slot].BaseFee.String()
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// writeActiveUserNumCSV writes one row per slot, one column per shard, of
// the account count snapshot Environment.Process recorded for that slot.
func writeActiveUserNumCSV(path string, env *environment.Environment, duration int) error {
	f, w, err := createWriter(path)
	if err != nil {
		return err
	}
	defer f.Close()

	for slot := 0; slot < duration && slot < len(env.UserNumMem); slot++ {
		row := intsToStrings(env.UserNumMem[slot])
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// writeUsersCSV writes one row per user: address, strategy, total fee paid
// across the whole run, and transaction count. Fee attribution mirrors
// Simulator::output_csv_users exactly: base_fee(at execution slot) times the
// gas of the transaction's first function, accrued to tx.From.
func writeUsersCSV(path string, env *environment.Environment, duration int) error {
	f, w, err := createWriter(path)
	if err != nil {
		return err
	}
	defer f.Close()

	totalFee := make(map[core.Address]*core.Wei, len(env.Users))
	txNum := make(map[core.Address]int, len(env.Users))

	for _, shard := range env.Blockchain.Shards {
		for slot := 0; slot < duration && slot < len(shard.Blocks); slot++ {
			baseFee := shard.States[slot].BaseFee
			for _, tx := range shard.Blocks[slot].ExecutedTransactions {
				if len(tx.Functions) == 0 {
					continue
				}
				fee := new(core.Wei).Mul(baseFee, tx.Functions[0].Gas())
				if cur, ok := totalFee[tx.From]; ok {
					totalFee[tx.From] = new(core.Wei).Add(cur, fee)
				} else {
					totalFee[tx.From] = fee
				}
				txNum[tx.From]++
			}
		}
	}

	for _, user := range env.Users {
		fee, ok := totalFee[user.AccountAddr]
		if !ok {
			fee = new(core.Wei)
		}
		row := []string{
			strconv.Itoa(user.AccountAddr),
			strconv.Itoa(int(user.UserType)),
			fee.String(),
			strconv.Itoa(txNum[user.AccountAddr]),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// writeFunctionNumCSV writes one row per slot: a count of executed
// functions by type, with switcher-user functions tallied in a second bank
// of five columns so the two populations are distinguishable in the
// output. Mirrors Simulator::output_csv_function_num's 10-wide record.
func writeFunctionNumCSV(path string, env *environment.Environment, duration int) error {
	f, w, err := createWriter(path)
	if err != nil {
		return err
	}
	defer f.Close()

	for slot := 0; slot < duration; slot++ {
		counts := make([]int, 10)
		for _, shard := range env.Blockchain.Shards {
			if slot >= len(shard.Blocks) {
				continue
			}
			for _, tx := range shard.Blocks[slot].ExecutedTransactions {
				if tx.From < 0 || tx.From >= len(env.Users) {
					continue
				}
				user := env.Users[tx.From]
				for _, fn := range tx.Functions {
					idx := int(fn.FType)
					if user.UserType.IsSwitcher() {
						idx += 5
					}
					counts[idx]++
				}
			}
		}
		if err := w.Write(intsToStrings(counts)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// writeMempoolCSV writes one row per slot, one column per shard, of the
// mempool length snapshot Environment.Process recorded for that slot.
func writeMempoolCSV(path string, env *environment.Environment, duration int) error {
	f, w, err := createWriter(path)
	if err != nil {
		return err
	}
	defer f.Close()

	for slot := 0; slot < duration && slot < len(env.MempoolTxMem); slot++ {
		row := intsToStrings(env.MempoolTxMem[slot])
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func intsToStrings(xs []int) []string {
	out := make([]string, len(xs))
	for i, x := range xs {
		out[i] = strconv.Itoa(x)
	}
	return out
}
