// Command shargrila runs the sharded blockchain fee-market simulator.
// Flags mirror original_source/fee-analysis/src/main.rs's clap arguments,
// translated to pflag.
package main

import (
	"fmt"
	"log"

	"github.com/spf13/pflag"

	"github.com/shargri-la/shargri-la/core"
	"github.com/shargri-la/shargri-la/environment"
	"github.com/shargri-la/shargri-la/params"
	"github.com/shargri-la/shargri-la/randsrc"
	"github.com/shargri-la/shargri-la/simulator"
)

func main() {
	bigQueryCSV := pflag.String("csv", "", "a BigQuery Ethereum transactions csv file")
	endSlot := pflag.Int("end_slot", params.DefaultEndSlot, "the number of slots")
	userNum := pflag.Int("user_num", params.DefaultUserNum, "the maximum number of users")
	percentOfMinimum := pflag.Float64("percentage_of_minimum", params.DefaultPercentageOfMinimum, "")
	percentOfWeightedRandom := pflag.Float64("percentage_of_weighted_random", params.DefaultPercentageOfWeightedRandom, "")
	percentOfDecreasingMinimum := pflag.Float64("percentage_of_decreasing_minimum", params.DefaultPercentageOfDecreasingMinimum, "")
	popularUserExists := pflag.Bool("popular_user_exists", false, "whether there is a popular user")
	popularUserIsSwitcher := pflag.Bool("popular_user_is_switcher", false, "whether the popular user is a switcher")
	outputDirPath := pflag.String("output_dir_path", simulator.DefaultOutputDirPath, "the path of the output directory")
	configPath := pflag.String("config", "", "a JSON file overlaying the simulation's constants")
	pflag.Parse()

	fmt.Println("Hello, Shargri-La!")

	params.ReadConfigFile(*configPath)

	stream := randsrc.New(params.RandSeed)
	sim := simulator.New(stream, core.Slot(*endSlot))

	opts := environment.SetupOptions{
		UserNum:                       *userNum,
		PercentageOfMinimum:           *percentOfMinimum,
		PercentageOfWeightedRandom:    *percentOfWeightedRandom,
		PercentageOfDecreasingMinimum: *percentOfDecreasingMinimum,
		PopularUserExists:             *popularUserExists,
		PopularUserIsSwitcher:         *popularUserIsSwitcher,
		BigQueryCSV:                   *bigQueryCSV,
	}

	if err := sim.Run(opts, *outputDirPath); err != nil {
		log.Fatalf("shargrila: %v", err)
	}
}
