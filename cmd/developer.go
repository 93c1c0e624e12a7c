package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/eduflow/eduflow-server/internal/auth"
	"github.com/eduflow/eduflow-server/internal/models"
	"github.com/eduflow/eduflow-server/internal/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newSeedDeveloperCmd(setup func() (*env, error)) *cobra.Command {
	var username, password, displayName string

	cmd := &cobra.Command{
		Use:   "seed-developer",
		Short: "Create a developer-portal account, or reset its password if it exists",
		Long: `Creates or updates a developer-portal account with a bcrypt password hash.
Flags default to DEV_SEED_USERNAME, DEV_SEED_PASSWORD and DEV_SEED_DISPLAY_NAME.`,
		RunE: run(setup, func(cmd *cobra.Command, args []string, e *env) error {
			seed := e.cfg.DevSeed
			name := firstNonEmpty(username, seed.Username)
			secret := password
			if secret == "" {
				secret = seed.Password
			}
			if name == "" || secret == "" {
				return errors.New("username and password are required (flags or DEV_SEED_USERNAME/DEV_SEED_PASSWORD)")
			}

			hash, err := auth.HashPassword(auth.SchemeBcrypt, secret)
			if err != nil {
				return err
			}

			return withDevelopers(cmd.Context(), e, func(store *storage.AppStore) error {
				dev := &models.Developer{
					Username:     name,
					PasswordHash: hash,
					DisplayName:  firstNonEmpty(displayName, seed.DisplayName, name),
				}
				if err := store.UpsertDeveloper(cmd.Context(), dev); err != nil {
					return err
				}
				e.logger.Info("Developer seeded", zap.String("username", name))
				return nil
			})
		}),
	}

	cmd.Flags().StringVar(&username, "username", "", "developer username")
	cmd.Flags().StringVar(&password, "password", "", "developer password")
	cmd.Flags().StringVar(&displayName, "display-name", "", "name shown in the portal")
	return cmd
}

func newDeactivateDeveloperCmd(setup func() (*env, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "deactivate-developer <username>",
		Short: "Revoke a developer's access; live sessions stop on their next request",
		Args:  cobra.ExactArgs(1),
		RunE: run(setup, func(cmd *cobra.Command, args []string, e *env) error {
			username := strings.TrimSpace(args[0])

			return withDevelopers(cmd.Context(), e, func(store *storage.AppStore) error {
				dev, err := store.GetDeveloperByUsername(cmd.Context(), username)
				if err != nil {
					if errors.Is(err, storage.ErrDeveloperNotFound) {
						return fmt.Errorf("developer %q not found", username)
					}
					return err
				}
				if err := store.SetDeveloperActive(cmd.Context(), dev.ID, false); err != nil {
					return err
				}
				e.logger.Info("Developer deactivated", zap.String("username", username), zap.Int64("id", dev.ID))
				return nil
			})
		}),
	}
}

// withDevelopers opens only the app database, migrates it and hands the store to fn.
func withDevelopers(ctx context.Context, e *env, fn func(*storage.AppStore) error) error {
	db, err := storage.Open(ctx, e.cfg.Database, e.cfg.Pool)
	if err != nil {
		return fmt.Errorf("opening app database: %w", err)
	}
	defer closeDatabase(e.logger, "app", db)

	store := storage.NewAppStore(db.Gorm)
	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migrating app database: %w", err)
	}
	return fn(store)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
