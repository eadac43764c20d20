package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/budgetwise-dev/budgetwise/internal/auth"
	"github.com/budgetwise-dev/budgetwise/internal/forms"
	"github.com/budgetwise-dev/budgetwise/internal/session"
)

func newRegisterCommand(a *app) *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		Args:  cobra.NoArgs,
		RunE: opened(a, func(cmd *cobra.Command, args []string) error {
			if password == "" {
				p, err := a.term.Password("Password")
				if err != nil {
					return fmt.Errorf("reading password: %w", err)
				}
				password = p
			}
			f := forms.NewRegister(a.gate)
			if err := fill(f.Controller, map[string]string{"name": name, "email": email, "password": password}); err != nil {
				return err
			}
			err := f.Submit(cmd.Context())
			a.record(cmd.Context(), "register", email, err)
			if err != nil {
				return a.formFailure(f.Controller, err)
			}
			printDecision(a, f.Decision)
			return nil
		}),
	}

	cmd.Flags().StringVar(&name, "name", "", "your name (required)")
	cmd.Flags().StringVar(&email, "email", "", "email address (required)")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted if omitted)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func newLoginCommand(a *app) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and check whether the profile is complete",
		Args:  cobra.NoArgs,
		RunE: opened(a, func(cmd *cobra.Command, args []string) error {
			if password == "" {
				p, err := a.term.Password("Password")
				if err != nil {
					return fmt.Errorf("reading password: %w", err)
				}
				password = p
			}
			f := forms.NewLogin(a.gate)
			if err := fill(f.Controller, map[string]string{"email": email, "password": password}); err != nil {
				return err
			}
			err := f.Submit(cmd.Context())
			a.record(cmd.Context(), "login", email, err)
			if err != nil {
				return a.formFailure(f.Controller, err)
			}
			printDecision(a, f.Decision)
			return nil
		}),
	}

	cmd.Flags().StringVar(&email, "email", "", "email address (required)")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted if omitted)")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func newLogoutCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the session",
		Args:  cobra.NoArgs,
		RunE: opened(a, func(cmd *cobra.Command, args []string) error {
			user := a.user(cmd.Context())
			_, err := a.gate.SignOut(cmd.Context())
			if rerr := a.activity.Record(user, "logout", "", err); rerr != nil {
				a.log.Warn().Err(rerr).Msg("writing activity log")
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Signed out.")
			return nil
		}),
	}
}

func newWhoamiCommand(a *app) *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		Long: "Show the current session. The token is decoded locally without verification; " +
			"--check asks the server whether the session is still valid and the profile complete.",
		Args: cobra.NoArgs,
		RunE: opened(a, func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			token, ok, err := a.session.Token(ctx)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(a.out, "Not logged in.")
				return nil
			}

			if claims, err := session.Inspect(token); err != nil {
				fmt.Fprintln(a.out, "Session: active (opaque token)")
			} else {
				fmt.Fprintln(a.out, "Session: active")
				if claims.Subject != "" {
					fmt.Fprintf(a.out, "User:    %s\n", claims.Subject)
				}
				if !claims.ExpiresAt.IsZero() {
					note := ""
					if claims.Expired(a.now()) {
						note = " (expired)"
					}
					fmt.Fprintf(a.out, "Expires: %s%s\n", claims.ExpiresAt.Local().Format(time.RFC3339), note)
				}
			}

			if !check {
				return nil
			}
			d, err := a.gate.Current(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "State:   %s\n", d.State)
			fmt.Fprintf(a.out, "Next:    %s\n", d.Next)
			return nil
		}),
	}

	cmd.Flags().BoolVar(&check, "check", false, "verify the session with the server")

	return cmd
}

func printDecision(a *app, d auth.Decision) {
	switch d.State {
	case auth.AuthenticatedNoProfile:
		fmt.Fprintln(a.out, "Logged in. Complete your profile with 'budgetwise profile setup'.")
	default:
		fmt.Fprintln(a.out, "Logged in.")
	}
	fmt.Fprintf(a.out, "Next: %s\n", d.Next)
}
