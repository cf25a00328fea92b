package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/i474232898/eco-ops-dashboard/internal/hours"
	"github.com/i474232898/eco-ops-dashboard/internal/store"
)

var seedForce bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the sample hour entries into the SQLite database",
	RunE:  runSeed,
}

func init() {
	seedCmd.Flags().BoolVar(&seedForce, "force", false, "Seed even if the database already has entries")
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.Close()

	sqlStore, ok := a.hours.(*store.SQLiteStore)
	if !ok {
		return errors.New("seed needs a database: set DATABASE_PATH or --db")
	}

	ctx := cmd.Context()
	existing, err := sqlStore.ListHours(ctx, hours.Filter{})
	if err != nil {
		return err
	}
	if len(existing) > 0 && !seedForce {
		fmt.Printf("Database already has %d entries, skipping (use --force to seed anyway)\n", len(existing))
		return nil
	}

	inserted := 0
	for _, e := range hours.SeedEntries() {
		if err := sqlStore.Insert(ctx, e); err != nil {
			a.log.Warnw("seed_entry_failed", "id", e.ID, "error", err)
			continue
		}
		inserted++
	}
	fmt.Printf("Seeded %d entries\n", inserted)
	return nil
}
