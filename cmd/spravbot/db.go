package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spravuz/spravbot/internal/config"
	"github.com/spravuz/spravbot/internal/db"
	"github.com/spravuz/spravbot/internal/store"
)

func newMigrateCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			gormDB, err := openDB(cfg)
			if err != nil {
				return err
			}
			if err := db.AutoMigrate(gormDB); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Migrated %d tables\n", len(db.AllModels()))
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "spravbot.yaml", "path to config file")
	return cmd
}

func newStatsCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print request and user counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			gormDB, err := openDB(cfg)
			if err != nil {
				return err
			}
			st, err := store.New(gormDB)
			if err != nil {
				return err
			}
			stats, err := st.Stats()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Requests:    %d\n", stats.TotalRequests)
			fmt.Fprintf(out, "  new:         %d\n", stats.NewRequests)
			fmt.Fprintf(out, "  in_progress: %d\n", stats.InProgress)
			fmt.Fprintf(out, "  completed:   %d\n", stats.Completed)
			fmt.Fprintf(out, "Users:       %d\n", stats.TotalUsers)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "spravbot.yaml", "path to config file")
	return cmd
}
