package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"diario/internal/accounts"
	"diario/internal/config"
	"diario/internal/db"
	"diario/internal/logging"
	"diario/internal/models"
	"diario/internal/server"
)

// setup loads configuration the same way the server does.
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	log, err := logging.New(cfg.IsDevelopment())
	if err != nil {
		return nil, nil, fmt.Errorf("logger: %w", err)
	}
	return cfg, log, nil
}

func migrateCmd() *cobra.Command {
	var down bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer log.Sync()
			if cfg.DBDriver == "memory" {
				return errors.New("nothing to migrate for the memory driver")
			}
			conn, err := db.Open(cfg.DBDriver, cfg.DBConnection, log)
			if err != nil {
				return err
			}
			defer conn.Close()
			if down {
				return db.MigrateDown(conn, log)
			}
			return db.RunMigrations(conn, log)
		},
	}
	cmd.Flags().BoolVar(&down, "down", false, "roll back the most recent migration instead")
	return cmd
}

func importCmd() *cobra.Command {
	var userID, file string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a browser storage export into a user's records",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read %s: %w", file, err)
			}
			var ds models.Dataset
			if err := json.Unmarshal(raw, &ds); err != nil {
				return fmt.Errorf("parse %s: %w", file, err)
			}

			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer log.Sync()
			b, err := server.NewBackend(cfg, log)
			if err != nil {
				return err
			}
			defer b.Close()

			if _, err := b.Accounts.Profile(cmd.Context(), userID); err != nil {
				return fmt.Errorf("user %s: %w", userID, err)
			}
			res, err := b.Records.Import(cmd.Context(), userID, ds)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d entries, %d challenges, %d letters, %d meal plans\n",
				res.Entries, res.Challenges, res.Letters, res.MealPlans)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "target user id")
	cmd.Flags().StringVar(&file, "file", "", "path to the exported JSON dataset")
	cmd.MarkFlagRequired("user")
	cmd.MarkFlagRequired("file")
	return cmd
}

func purgeUserCmd() *cobra.Command {
	var userID string
	cmd := &cobra.Command{
		Use:   "purge-user",
		Short: "Delete a user's records, account and sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer log.Sync()
			b, err := server.NewBackend(cfg, log)
			if err != nil {
				return err
			}
			defer b.Close()

			ctx := cmd.Context()
			if err := b.Records.Purge(ctx, userID); err != nil {
				return err
			}
			if err := b.Accounts.DeleteAccount(ctx, userID); err != nil && !errors.Is(err, accounts.ErrNotFound) {
				return err
			}
			if err := b.Sessions.RevokeAll(ctx, userID); err != nil {
				return err
			}
			log.Info("user purged", zap.String("user_id", userID))
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id to purge")
	cmd.MarkFlagRequired("user")
	return cmd
}
