package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/i474232898/eco-ops-dashboard/internal/external"
)

var (
	syncLocation string
	syncPeriod   string
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch external data once and print the bundle",
	RunE:  runSync,
}

func init() {
	syncCmd.Flags().StringVar(&syncLocation, "location", "", "Location (default DEFAULT_LOCATION)")
	syncCmd.Flags().StringVar(&syncPeriod, "period", "", "Billing period YYYY-MM (default current month)")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	if err := checkPeriod(syncPeriod); err != nil {
		return err
	}

	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.Close()

	location := syncLocation
	if location == "" {
		location = a.cfg.DefaultLocation
	}

	b := a.fetcher.Fetch(cmd.Context(), external.Params{Location: location, Period: syncPeriod})

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(b)
}

// checkPeriod accepts an empty period or a YYYY-MM month.
func checkPeriod(period string) error {
	if period == "" {
		return nil
	}
	if _, err := time.Parse(external.PeriodLayout, period); err != nil {
		return fmt.Errorf("invalid --period %q: must be YYYY-MM", period)
	}
	return nil
}
