package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
)

var statsLocation string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Compute dashboard statistics once and print them",
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().StringVar(&statsLocation, "location", "", "Location (default DEFAULT_LOCATION)")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.Close()

	st := a.aggregator.Run(cmd.Context(), statsLocation)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(st)
}
