package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var distanceCmd = &cobra.Command{
	Use:   "distance <from> <to>",
	Short: "Resolve the distance between two cities",
	Args:  cobra.ExactArgs(2),
	Run:   runDistance,
}

func init() {
	rootCmd.AddCommand(distanceCmd)
}

func runDistance(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	ctx := cmd.Context()

	app := newApp(ctx, cfg)
	defer func() {
		_ = app.Close()
	}()

	lookup := app.Distance(ctx, args[0], args[1])
	if !lookup.Reachable() {
		fmt.Printf("%s -> %s: unreachable (%s after %d attempts)\n", args[0], args[1], lookup.Outcome, lookup.Attempts)
		return
	}
	fmt.Printf("%s -> %s: %d (%s)\n", args[0], args[1], lookup.Distance, lookup.Outcome)
}
