package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/banshee-data/pitwall/internal/db"
	"github.com/banshee-data/pitwall/internal/monitoring"
)

func newMigrateCmd() *cobra.Command {
	var dbPath string
	withStore := func(fn func(*db.DB) error) error {
		store, err := db.OpenDB(dbPath)
		if err != nil {
			return err
		}
		defer store.Close()
		return fn(store)
	}

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the sqlite store schema",
	}
	cmd.PersistentFlags().StringVar(&dbPath, "db", "pitwall.db", "sqlite store path")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withStore(func(s *db.DB) error {
					if err := s.MigrateUp(); err != nil {
						return err
					}
					v, _, err := s.MigrateVersion()
					if err != nil {
						return err
					}
					monitoring.Logf("Store %s at schema version %d", dbPath, v)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withStore(func(s *db.DB) error { return s.MigrateDown() })
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the schema version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withStore(func(s *db.DB) error {
					v, dirty, err := s.MigrateVersion()
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "version %d dirty %t\n", v, dirty)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "force <version>",
			Short: "Set the schema version without running migrations, clearing the dirty flag",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				v, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid version %q: %w", args[0], err)
				}
				return withStore(func(s *db.DB) error { return s.MigrateForce(v) })
			},
		},
		&cobra.Command{
			Use:   "to <version>",
			Short: "Migrate up or down to a specific version",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				v, err := strconv.ParseUint(args[0], 10, 0)
				if err != nil {
					return fmt.Errorf("invalid version %q: %w", args[0], err)
				}
				return withStore(func(s *db.DB) error { return s.MigrateTo(uint(v)) })
			},
		},
	)
	return cmd
}
