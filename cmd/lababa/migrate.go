package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lababa/lababa/internal/bootstrap"
	"github.com/lababa/lababa/internal/migrations"
)

func init() {
	var migrateCmd = &cobra.Command{
		Use:   "migrate [up|down|status]",
		Short: "Database migration management",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := bootstrap.OpenDatabase(context.Background(), cfg.DB, newLogger(true))
			if err != nil {
				return err
			}
			defer db.Close()
			fmt.Fprintf(cmd.OutOrStdout(), "Using %s database\n", db.Driver)

			set, err := db.Migrations()
			if err != nil {
				return err
			}

			action := "up"
			if len(args) > 0 {
				action = args[0]
			}
			switch action {
			case "up":
				return migrations.Up(db.SQL, set)
			case "down":
				return migrations.Down(db.SQL, set)
			case "status":
				return migrations.Status(db.SQL, set)
			default:
				return fmt.Errorf("unknown migrate action %q", action)
			}
		},
	}
	rootCmd.AddCommand(migrateCmd)
}
