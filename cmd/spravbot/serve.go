package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spravuz/spravbot/internal/admin"
	"github.com/spravuz/spravbot/internal/bot"
	"github.com/spravuz/spravbot/internal/config"
	"github.com/spravuz/spravbot/internal/db"
	"github.com/spravuz/spravbot/internal/dialog"
	"github.com/spravuz/spravbot/internal/gateway/telegram"
	"github.com/spravuz/spravbot/internal/store"
	"gorm.io/gorm"
)

func newServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the bot and the operator console",
		Long:  "Connects to Telegram, drives the data-collection dialogue, and serves the operator console HTTP API.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "spravbot.yaml", "path to config file")
	return cmd
}

func runServe(cmd *cobra.Command, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Telegram.Token == "" {
		return fmt.Errorf("no bot token configured (set telegram.token or BOT_TOKEN)")
	}

	gormDB, err := openDB(cfg)
	if err != nil {
		return err
	}
	if err := db.AutoMigrate(gormDB); err != nil {
		return err
	}

	st, err := store.New(gormDB)
	if err != nil {
		return err
	}

	gw, err := telegram.New(telegram.Opts{
		Token:          cfg.Telegram.Token,
		PollTimeoutSec: cfg.Telegram.PollTimeoutSec,
	})
	if err != nil {
		return err
	}

	daemon, err := bot.NewDaemon(bot.DaemonOpts{
		Store:   st,
		States:  dialog.NewMemoryStateStore(),
		Gateway: gw,
		Digest: bot.DigestOpts{
			Enabled: cfg.Digest.Enabled,
			Cron:    cfg.Digest.Cron,
			ChatID:  cfg.Digest.ChatID,
		},
		Out: cmd.OutOrStdout(),
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	// The console shares the gateway so operator replies reach users.
	errCh := make(chan error, 1)
	go func() {
		errCh <- admin.Start(ctx, admin.StartOpts{
			Store:   st,
			Gateway: gw,
			Port:    cfg.Admin.Port,
			Out:     cmd.OutOrStdout(),
		})
	}()

	if err := daemon.Run(ctx); err != nil {
		return err
	}
	cancel()
	return <-errCh
}

func openDB(cfg *config.Config) (*gorm.DB, error) {
	return db.Open(db.Options{
		Driver:   cfg.Database.Driver,
		Path:     cfg.Database.Path,
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		Name:     cfg.Database.Name,
	})
}
