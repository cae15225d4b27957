package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/CrowderSoup/zenboard/board"
	"github.com/CrowderSoup/zenboard/config"
	"github.com/CrowderSoup/zenboard/database"
	"github.com/CrowderSoup/zenboard/storage"
)

const (
	Version = "0.1.0"
	appName = "zenboard"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var envPath string

	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Kanban board server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&envPath, "env", ".env", "Path to the .env file")

	load := func(cmd *cobra.Command) (*config.Config, error) {
		cfg, err := config.Load(envPath, cmd.Flags().Changed("env"))
		if err != nil {
			return nil, err
		}
		if err := setupLogging(cfg.Log); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	cmd.AddCommand(
		serveCmd(load),
		showCmd(load),
		dispatchCmd(load),
		exportCmd(load),
		importCmd(load),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
			},
		},
	)

	return cmd
}

type loader func(cmd *cobra.Command) (*config.Config, error)

func setupLogging(cfg config.LogConfig) error {
	level := log.InfoLevel
	if cfg.Level != "" {
		var err error
		if level, err = log.ParseLevel(cfg.Level); err != nil {
			return fmt.Errorf("LOG_LEVEL: %w", err)
		}
	}
	log.SetLevel(level)

	switch strings.ToLower(cfg.Format) {
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	default:
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	log.SetOutput(os.Stderr)
	return nil
}

// openStorage connects the configured medium. The returned function releases
// it.
func openStorage(ctx context.Context, cfg *config.Config) (*storage.Storage, func() error, error) {
	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		db, err := database.InitDB(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		return storage.New(database.NewSQLiteMedium(db)), db.Close, nil

	case config.DriverRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, cfg.Redis.Timeout)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		medium := database.NewRedisMedium(client, cfg.Redis.Namespace, cfg.Redis.Timeout)
		return storage.New(medium), client.Close, nil

	case config.DriverMemory:
		log.Warn("using in-memory storage, the board will not survive a restart")
		return storage.New(storage.NewMemory()), func() error { return nil }, nil
	}

	return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}

// openStore loads config, connects storage and restores the board.
func openStore(cmd *cobra.Command, load loader) (*config.Config, *storage.Storage, *board.Store, func() error, error) {
	cfg, err := load(cmd)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	st, closeFn, err := openStorage(cmd.Context(), cfg)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	log.WithFields(log.Fields{
		"driver": cfg.Storage.Driver,
	}).Debug("storage opened")

	return cfg, st, board.NewStore(st), closeFn, nil
}
