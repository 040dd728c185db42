package report

import (
	"io"
	"math/big"

	"github.com/olekukonko/tablewriter"

	"github.com/shargri-la/shargri-la/environment"
)

// PrintSummary renders a final per-shard snapshot table to w: base fee (in
// Gwei, instantaneous and rolling-average), account count, in-flight
// migration count, and mempool depth. The reference simulator never prints
// anything past its per-slot stdout lines; this is a console-reporting
// supplement in the teacher's tablewriter idiom, run once after the last
// slot closes.
func PrintSummary(w io.Writer, env *environment.Environment) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{
		"Shard", "Base Fee (Gwei)", "Avg Base Fee (Gwei)", "Accounts", "Migrating", "Mempool",
	})

	for _, shard := range env.Blockchain.Shards {
		baseFee := gweiString(shard.GetBaseFee().ToBig())
		avgBaseFee := gweiString(env.BaseFees.GetAvgBaseFee(shard.ID).ToBig())

		table.Append([]string{
			itoa(shard.ID),
			baseFee,
			avgBaseFee,
			itoa(shard.AccountsLen()),
			itoa(shard.MovingAccountsLen()),
			itoa(shard.MempoolLen()),
		})
	}

	table.SetFooter([]string{"", "", "", "", "Pending migrations", itoa(env.Migrations.PendingCount())})
	table.Render()
}

func gweiString(wei *big.Int) string {
	gwei := new(big.Float).Quo(new(big.Float).SetInt(wei), big.NewFloat(1_000_000_000))
	return gwei.Text('f', 4)
}

func itoa(x int) string {
	return big.NewInt(int64(x)).String()
}
