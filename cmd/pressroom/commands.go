// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"errors"
	"fmt"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"

	"github.com/olegiv/pressroom/internal/config"
	"github.com/olegiv/pressroom/internal/handler/api"
	"github.com/olegiv/pressroom/internal/service"
	"github.com/olegiv/pressroom/internal/store"
	"github.com/olegiv/pressroom/internal/version"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the API server (default)",
		RunE:  serveCommand,
	}
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and print their status",
		RunE: func(_ *cobra.Command, _ []string) error {
			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.close()
			return store.MigrationStatus(a.db)
		},
	}
}

// create-admin flags
const (
	emailFlag    = "email"
	passwordFlag = "password"
	usernameFlag = "username"
)

var createAdminFlags = map[string]cobraflags.Flag{
	emailFlag: &cobraflags.StringFlag{
		Name:  emailFlag,
		Value: "",
		Usage: "Administrator email (required)",
	},
	passwordFlag: &cobraflags.StringFlag{
		Name:  passwordFlag,
		Value: "",
		Usage: "Password for a new account (required)",
	},
	usernameFlag: &cobraflags.StringFlag{
		Name:  usernameFlag,
		Value: "",
		Usage: "Optional username",
	},
}

func newCreateAdminCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator, or promote an existing user",
		Long: `Create an administrator account with the subscriber role.

If a user with the email already exists it is promoted and keeps its password.`,
		RunE: createAdminCommand,
	}
	cobraflags.RegisterMap(cmd, createAdminFlags)
	return cmd
}

func createAdminCommand(cmd *cobra.Command, _ []string) error {
	email := createAdminFlags[emailFlag].GetString()
	password := createAdminFlags[passwordFlag].GetString()
	username := createAdminFlags[usernameFlag].GetString()
	if email == "" || password == "" {
		return errors.New("--email and --password are required")
	}

	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.close()

	user, created, err := service.NewUserService(a.db, nil).CreateAdmin(cmd.Context(), email, password, username)
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		for field, msg := range verr.Fields {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", field, msg)
		}
		return errors.New("invalid administrator details")
	}
	if err != nil {
		return err
	}

	if created {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created administrator %s (id %d)\n", user.Email, user.ID)
	} else {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "User %s (id %d) is an administrator\n", user.Email, user.ID)
	}
	return nil
}

func newRoutesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "Print the route documentation as Markdown",
		RunE: func(cmd *cobra.Command, _ []string) error {
			r := newRouter(routerDeps{cfg: &config.Config{Env: config.EnvDevelopment}})
			_, err := fmt.Fprintln(cmd.OutOrStdout(), api.RoutesMarkdown(r))
			return err
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), version.Get().Long())
		},
	}
}
