package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/pocketbook/internal/database"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(
		migrateStep("up", "Apply all pending migrations", (*database.Migrator).Up),
		migrateStep("down", "Roll back the most recent migration", (*database.Migrator).Down),
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrator(func(mg *database.Migrator) error {
					v, dirty, err := mg.Version()
					if err != nil {
						return err
					}

					out := cmd.OutOrStdout()
					if v == 0 && !dirty {
						fmt.Fprintln(out, "no migrations applied")
						return nil
					}

					fmt.Fprintf(out, "version %d", v)

					if dirty {
						fmt.Fprint(out, " (dirty)")
					}

					fmt.Fprintln(out)

					return nil
				})
			},
		},
	)

	return cmd
}

func migrateStep(use, short string, step func(*database.Migrator) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(func(mg *database.Migrator) error {
				if err := step(mg); err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "migrate %s: done\n", use)

				return nil
			})
		},
	}
}

func withMigrator(fn func(mg *database.Migrator) error) error {
	_, db, err := connect()
	if err != nil {
		return err
	}
	defer db.Close()

	mg, err := database.NewMigrator(db)
	if err != nil {
		return err
	}

	return fn(mg)
}
