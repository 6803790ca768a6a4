package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	"vicinity/internal/db"
	"vicinity/internal/db/migrations"
	"vicinity/internal/domain/accesscontrol"
	"vicinity/internal/domain/users"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	dsn string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "migrate",
		Short:         "Vicinity database tooling",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(opts.dsn) == "" {
				return errors.New("no database address: set DB_ADDR or pass --dsn")
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.dsn, "dsn", os.Getenv("DB_ADDR"), "postgres connection string")

	cmd.AddCommand(newUpCommand(opts))
	cmd.AddCommand(newDownCommand(opts))
	cmd.AddCommand(newStatusCommand(opts))
	cmd.AddCommand(newGrantAdminCommand(opts))

	return cmd
}

// withDB opens a database/sql handle on lib/pq for goose.
func withDB(opts *rootOptions, fn func(*sql.DB) error) error {
	conn, err := sql.Open("postgres", opts.dsn)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := conn.Ping(); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return fn(conn)
}

func newUpCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(opts, func(conn *sql.DB) error {
				if err := migrations.Up(cmd.Context(), conn); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
				return nil
			})
		},
	}
}

func newDownCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(opts, func(conn *sql.DB) error {
				return goose.DownContext(cmd.Context(), conn, ".")
			})
		},
	}
}

func newStatusCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the state of every migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(opts, func(conn *sql.DB) error {
				return goose.StatusContext(cmd.Context(), conn, ".")
			})
		},
	}
}

func newGrantAdminCommand(opts *rootOptions) *cobra.Command {
	var revoke bool

	cmd := &cobra.Command{
		Use:   "grant-admin <email>",
		Short: "Give a user the admin role (or take it away with --revoke)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return grantAdmin(cmd.Context(), opts.dsn, args[0], revoke, cmd)
		},
	}
	cmd.Flags().BoolVar(&revoke, "revoke", false, "remove the role instead")
	return cmd
}

func grantAdmin(ctx context.Context, dsn, email string, revoke bool, cmd *cobra.Command) error {
	pool, err := db.New(dsn, 2, 0, "1m")
	if err != nil {
		return err
	}
	defer pool.Close()

	user, err := users.NewRepository(pool).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return fmt.Errorf("no active user with email %s", email)
		}
		return err
	}

	roles := accesscontrol.NewRepository(pool)
	if revoke {
		if err := roles.RemoveRole(ctx, user.ID, accesscontrol.RoleAdmin); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "admin role removed from %s\n", email)
		return nil
	}

	if err := roles.AssignRole(ctx, user.ID, accesscontrol.RoleAdmin); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "admin role granted to %s\n", email)
	return nil
}
