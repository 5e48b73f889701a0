package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/school-roster-api/internal/app"
	"github.com/noah-isme/school-roster-api/internal/models"
	"github.com/noah-isme/school-roster-api/internal/repository"
	"github.com/noah-isme/school-roster-api/internal/service"
	"github.com/noah-isme/school-roster-api/pkg/config"
	"github.com/noah-isme/school-roster-api/pkg/database"
	"github.com/noah-isme/school-roster-api/pkg/logger"
)

type runtime struct {
	cfg *config.Config
	log *zap.Logger
}

func newRootCmd() *cobra.Command {
	rt := &runtime{}
	root := &cobra.Command{
		Use:           "schoolctl",
		Short:         "Administrative tasks for the school roster API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			l, err := logger.New(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			rt.cfg, rt.log = cfg, l
			return nil
		},
	}
	root.AddCommand(newMigrateCmd(rt), newSeedCmd(rt), newAddUserCmd(rt))
	return root
}

func newMigrateCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending Postgres schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if rt.cfg.Storage.Driver != config.DriverPostgres {
				return fmt.Errorf("migrate requires STORAGE_DRIVER=%s", config.DriverPostgres)
			}
			db, err := database.NewPostgres(cmd.Context(), rt.cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := repository.Migrate(cmd.Context(), db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

func newSeedCmd(rt *runtime) *cobra.Command {
	var key string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the demo admin and teacher accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withUsers(cmd.Context(), rt, func(users *service.UserService) error {
				res, err := users.Seed(cmd.Context(), key)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), res.Message)
				for _, id := range res.UserIDs {
					fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", id)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "seed secret key (SEED_SECRET_KEY)")
	_ = cmd.MarkFlagRequired("key")
	return cmd
}

func newAddUserCmd(rt *runtime) *cobra.Command {
	var (
		req     models.CreateUserRequest
		role    string
		classes string
	)
	cmd := &cobra.Command{
		Use:   "adduser",
		Short: "Create an account or replace the one with the same email",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req.Role = models.UserRole(strings.ToLower(strings.TrimSpace(role)))
			req.TeacherClasses = parseClasses(classes)
			return withUsers(cmd.Context(), rt, func(users *service.UserService) error {
				profile, err := users.Provision(cmd.Context(), req)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n", profile.ID, profile.Email, profile.Role)
				return nil
			})
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&req.Email, "email", "", "login email")
	flags.StringVar(&req.Name, "name", "", "display name")
	flags.StringVar(&req.Password, "password", "", "plain password, hashed before storage")
	flags.StringVar(&role, "role", string(models.RoleTeacher), "admin or teacher")
	flags.StringVar(&classes, "classes", "", "comma separated grades for a teacher, e.g. \"KG1,Grade 1\"")
	for _, name := range []string{"email", "name", "password"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func withUsers(ctx context.Context, rt *runtime, fn func(*service.UserService) error) error {
	stores, err := app.OpenStores(ctx, rt.cfg, false)
	if err != nil {
		return err
	}
	defer stores.Close(context.Background()) //nolint:errcheck
	return fn(service.NewUserService(stores.Users, nil, rt.log, app.SeedConfig(rt.cfg)))
}

func parseClasses(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
