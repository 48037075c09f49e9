package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List the flattened events of the taxonomy",
	Run:   runEvents,
}

func init() {
	rootCmd.AddCommand(eventsCmd)
}

func runEvents(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	ctx := context.Background()

	app := newApp(ctx, cfg)
	events, err := app.Events(ctx)
	_ = app.Close()
	if err != nil {
		slog.Error("Failed to load taxonomy", "error", err)
		os.Exit(1)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "#\tNAME\tCITY\tPRICE\tVENUE\tDATE")

	for i, e := range events {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t%s\n", i+1, e.Name, e.City, e.Price, e.Venue, e.Date)
	}
	_ = w.Flush()
}
