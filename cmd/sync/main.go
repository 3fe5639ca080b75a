package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/promocraft/catalog/app/models"
	"github.com/promocraft/catalog/app/repository"
	"github.com/promocraft/catalog/internal/pkg/cache"
	"github.com/promocraft/catalog/internal/pkg/database"
	"github.com/promocraft/catalog/internal/pkg/env"
	"github.com/promocraft/catalog/internal/pkg/syncer"
	"github.com/promocraft/catalog/internal/pkg/zecat"
)

var (
	flagIncremental bool
	flagConcurrency int
	flagPageLimit   int
	flagMaxRetries  int
	flagSyncType    string
)

var rootCmd = &cobra.Command{
	Use:   "sync",
	Short: "Catalog synchronization jobs",
	Long: `Pulls the supplier catalog into the local store and reports on
previous runs. Designed to be invoked from cron or by an operator.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		env.SetupEnvFile()
		database.SetupDatabase()
		cache.SetupCache()
		repository.InitializeFactory(database.GetDB())
		return nil
	},
}

var zecatCmd = &cobra.Command{
	Use:   "zecat",
	Short: "Run a full supplier catalog sync",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cfg := zecat.ConfigFromEnv()
		if flagPageLimit > 0 {
			cfg.PageLimit = flagPageLimit
		}
		if flagMaxRetries > 0 {
			cfg.MaxRetries = flagMaxRetries
		}
		client := zecat.NewClient(cfg)

		opts := syncer.OptionsFromEnv()
		if cmd.Flags().Changed("incremental") {
			opts.Incremental = flagIncremental
		}
		if flagConcurrency > 0 {
			opts.Concurrency = flagConcurrency
		}
		if flagMaxRetries > 0 {
			opts.MaxRetries = flagMaxRetries
		}

		runner := syncer.NewRunner(client, repository.GetGlobalRepositories(), opts)
		if err := runner.Run(ctx); err != nil {
			if errors.Is(err, syncer.ErrAlreadyRunning) {
				return errors.New("a sync of this type is already running")
			}
			return err
		}
		return nil
	},
}

var familiesCmd = &cobra.Command{
	Use:   "families",
	Short: "Sync the supplier family listing",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		client := zecat.NewClient(zecat.ConfigFromEnv())
		runner := syncer.NewRunner(client, repository.GetGlobalRepositories(), syncer.OptionsFromEnv())
		return runner.RunFamilies(ctx)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the last run of every sync type",
	RunE: func(_ *cobra.Command, _ []string) error {
		meta := repository.GetGlobalRepositories().SyncMetadata

		var records []models.SyncMetadata
		if flagSyncType != "" {
			record, err := meta.GetByType(flagSyncType)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("no runs recorded for type %q", flagSyncType)
				}
				return err
			}
			records = append(records, *record)
		} else {
			all, err := meta.GetAll()
			if err != nil {
				return err
			}
			records = all
		}
		if len(records) == 0 {
			fmt.Println("No sync runs recorded yet.")
			return nil
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		for _, rec := range records {
			if err := enc.Encode(rec); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	zecatCmd.Flags().BoolVar(&flagIncremental, "incremental", false, "skip entries whose volatile fields are unchanged")
	zecatCmd.Flags().IntVar(&flagConcurrency, "concurrency", 0, "number of parallel fetch workers")
	zecatCmd.Flags().IntVar(&flagPageLimit, "page-limit", 0, "products per listing page")
	zecatCmd.Flags().IntVar(&flagMaxRetries, "max-retries", 0, "fetch attempts per product")
	statusCmd.Flags().StringVar(&flagSyncType, "type", "", "limit output to one sync type, e.g. zecat_sync")

	rootCmd.AddCommand(zecatCmd, familiesCmd, statusCmd)
}

func main() {
	start := time.Now()
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error after %s: %v\n", time.Since(start).Round(time.Millisecond), err)
		os.Exit(1)
	}
}
