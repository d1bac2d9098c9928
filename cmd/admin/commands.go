package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"cinelight-api/internal/config"
	"cinelight-api/internal/db"
	"cinelight-api/internal/domain"
	"cinelight-api/internal/logger"
	"cinelight-api/internal/repository"
	"cinelight-api/internal/service"
	"github.com/spf13/cobra"
)

var migrateCommands = map[string]string{
	"up":      "Apply all pending migrations",
	"down":    "Roll back the most recent migration",
	"status":  "Print the status of every migration",
	"version": "Print the current schema version",
	"reset":   "DANGER: roll back every migration",
}

type adminOptions struct {
	username  string
	password  string
	email     string
	firstName string
	lastName  string
}

func newRootCmd() *cobra.Command {
	var (
		cfg config.Config
		log *slog.Logger
	)
	root := &cobra.Command{
		Use:           "cinelight-admin",
		Short:         "Administrative tasks for the Cinelight quotation API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.LoadDatabase()
			log = logger.New(cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				log.Error("failed to load config", "err", err)
				return err
			}
			return nil
		},
	}

	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}
	for name, short := range migrateCommands {
		command := name
		migrate.AddCommand(&cobra.Command{
			Use:   command,
			Short: short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx, stop := signalContext()
				defer stop()
				if err := db.Migrate(ctx, cfg.DatabaseURL, command); err != nil {
					log.Error("migration failed", "command", command, "err", err)
					return err
				}
				log.Info("migration finished", "command", command)
				return nil
			},
		})
	}

	opts := adminOptions{}
	createAdmin := &cobra.Command{
		Use:   "create-admin",
		Short: "Create the administrator account if it does not exist yet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()
			pg, err := db.New(ctx, cfg.DatabaseURL)
			if err != nil {
				log.Error("failed to connect database", "err", err)
				return err
			}
			defer pg.Close()

			users := service.UserService{Users: repository.UserRepository{DB: pg}, Logger: log}
			created, err := createAdminUser(ctx, users, opts)
			if err != nil {
				log.Error("failed to create admin", "err", err)
				return err
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "admin user %q created\n", opts.username)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "user %q already exists\n", opts.username)
			}
			return nil
		},
	}
	createAdmin.Flags().StringVar(&opts.username, "username", "admin", "administrator username")
	createAdmin.Flags().StringVar(&opts.password, "password", "admin", "administrator password")
	createAdmin.Flags().StringVar(&opts.email, "email", "admin@example.com", "administrator email")
	createAdmin.Flags().StringVar(&opts.firstName, "first-name", "Admin", "first name")
	createAdmin.Flags().StringVar(&opts.lastName, "last-name", "User", "last name")

	root.AddCommand(migrate, createAdmin)
	return root
}

// userCreator is the part of service.UserService create-admin needs.
type userCreator interface {
	Create(ctx context.Context, in service.CreateUserInput) (*domain.User, error)
}

// createAdminUser reports false when the username is already taken.
func createAdminUser(ctx context.Context, users userCreator, opts adminOptions) (bool, error) {
	active := true
	_, err := users.Create(ctx, service.CreateUserInput{
		Username:  opts.username,
		Password:  opts.password,
		Email:     opts.email,
		FirstName: opts.firstName,
		LastName:  opts.lastName,
		IsActive:  &active,
		Role:      domain.RoleAdmin,
	})
	if errors.Is(err, service.ErrDuplicate) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
