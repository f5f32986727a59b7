package main

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/redmonkez12/go-auth-service/cmd/authctl/ui"
	"github.com/redmonkez12/go-auth-service/internal/auth"
	"github.com/redmonkez12/go-auth-service/internal/config"
	"github.com/redmonkez12/go-auth-service/internal/database"
	"github.com/redmonkez12/go-auth-service/internal/user"
)

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "authctl",
		Short:         "Administer the auth service",
		Long:          "Operator CLI for the auth service: run migrations, create accounts and manage account flags.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(a.out)
	rootCmd.SetErr(a.out)

	rootCmd.AddCommand(
		newMigrateCmd(a),
		newCreateUserCmd(a),
		newHashPasswordCmd(a),
		newGenKeyCmd(a),
		newSetFlagCmd(a, "set-premium", "Grant or revoke premium on an account", func(s user.Store) func(*cobra.Command, int64, bool) error {
			return func(cmd *cobra.Command, id int64, on bool) error { return s.SetPremium(cmd.Context(), id, on) }
		}),
		newSetFlagCmd(a, "set-active", "Enable or disable an account", func(s user.Store) func(*cobra.Command, int64, bool) error {
			return func(cmd *cobra.Command, id int64, on bool) error { return s.SetActive(cmd.Context(), id, on) }
		}),
	)

	return rootCmd
}

// fail prints err and returns it so cobra exits non-zero.
func (a *app) fail(err error) error {
	ui.PrintError(a.out, err.Error())
	return err
}

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return a.fail(err)
			}
			if cfg.Database.Driver == config.DriverMemory {
				return a.fail(errors.New("the memory driver has no schema to migrate"))
			}

			db, err := database.Open(cmd.Context(), cfg.Database)
			if err != nil {
				return a.fail(err)
			}
			defer db.Close()

			if err := database.Migrate(cmd.Context(), db.DB, cfg.Database.Driver); err != nil {
				return a.fail(err)
			}

			ui.PrintSuccess(a.out, "Migrations applied")
			return nil
		},
	}
}

func newCreateUserCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create an account",
		Long:  "Create an account. Without --email and --password an interactive form is shown.",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			displayName, _ := cmd.Flags().GetString("display-name")
			password, _ := cmd.Flags().GetString("password")
			premium, _ := cmd.Flags().GetBool("premium")

			var in *ui.NewUserInput
			if email != "" && password != "" {
				in = &ui.NewUserInput{Email: email, Password: password, Premium: premium}
				if displayName != "" {
					in.DisplayName = &displayName
				}
			} else {
				var err error
				if in, err = a.runForm(); err != nil {
					return fmt.Errorf("form cancelled: %w", err)
				}
			}

			ui.PrintSummary(a.out, in)

			cfg, err := a.loadConfig()
			if err != nil {
				return a.fail(err)
			}
			store, closeStore, err := a.openStore(cmd.Context(), cfg, a.logger)
			if err != nil {
				return a.fail(err)
			}
			defer closeStore()

			tokens, err := auth.NewTokenService(&cfg.Auth)
			if err != nil {
				return a.fail(err)
			}
			svc := auth.NewService(&cfg.Auth, store, auth.NewPasswordHasher(&cfg.Auth), tokens, a.logger)

			u, err := svc.Register(cmd.Context(), in.Email, in.DisplayName, in.Password)
			if err != nil {
				return a.fail(err)
			}

			if in.Premium {
				if err := store.SetPremium(cmd.Context(), u.ID, true); err != nil {
					return a.fail(err)
				}
				u.Premium = true
			}

			ui.PrintSuccess(a.out, "Account created")
			ui.PrintUser(a.out, u)
			return nil
		},
	}

	cmd.Flags().String("email", "", "Account email")
	cmd.Flags().String("display-name", "", "Optional display name")
	cmd.Flags().String("password", "", "Account password (prefer the interactive form)")
	cmd.Flags().Bool("premium", false, "Mark the account as premium")

	return cmd
}

func newHashPasswordCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password",
		Short: "Hash a password with the configured scheme",
		Long:  "Read a password from the terminal without echo (or from stdin) and print its encoded hash.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return a.fail(err)
			}

			password, err := a.readPassword("Password: ")
			if err != nil {
				return a.fail(err)
			}
			if password == "" {
				return a.fail(errors.New("password is empty"))
			}

			hash, err := auth.NewPasswordHasher(&cfg.Auth).Hash(password)
			if err != nil {
				return a.fail(err)
			}

			fmt.Fprintln(a.out, hash)
			return nil
		},
	}
}

func newGenKeyCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gen-key",
		Short: "Generate a random TOKEN_SECRET",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")

			key, err := generateKey(format)
			if err != nil {
				return a.fail(err)
			}

			fmt.Fprintln(a.out, key)
			return nil
		},
	}

	cmd.Flags().String("format", config.TokenFormatPaseto, "Token format the key is for (jwt, paseto)")

	return cmd
}

// generateKey returns printable random key material: exactly 32 characters
// for PASETO v4.local and 64 for HS256.
func generateKey(format string) (string, error) {
	var n int
	switch format {
	case config.TokenFormatPaseto:
		n = 24
	case config.TokenFormatJWT:
		n = 48
	default:
		return "", fmt.Errorf("unsupported token format: %s", format)
	}

	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate key: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(b), nil
}

func newSetFlagCmd(a *app, use, short string, setter func(user.Store) func(*cobra.Command, int64, bool) error) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			on, _ := cmd.Flags().GetBool("on")
			if email == "" {
				return a.fail(errors.New("--email is required"))
			}

			cfg, err := a.loadConfig()
			if err != nil {
				return a.fail(err)
			}
			store, closeStore, err := a.openStore(cmd.Context(), cfg, a.logger)
			if err != nil {
				return a.fail(err)
			}
			defer closeStore()

			u, err := store.FindByEmail(cmd.Context(), email)
			if err != nil {
				return a.fail(err)
			}

			if err := setter(store)(cmd, u.ID, on); err != nil {
				return a.fail(err)
			}

			u, err = store.FindByID(cmd.Context(), u.ID)
			if err != nil {
				return a.fail(err)
			}

			ui.PrintSuccess(a.out, "Account updated")
			ui.PrintUser(a.out, u)
			return nil
		},
	}

	cmd.Flags().String("email", "", "Account email")
	cmd.Flags().Bool("on", true, "Flag value; pass --on=false to clear")

	return cmd
}
