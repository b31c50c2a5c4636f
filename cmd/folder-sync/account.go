package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/alexjbarnes/folder-sync/internal/models"
	"github.com/spf13/cobra"
)

func newLoginCmd() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session token",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
			if email == "" {
				email = a.cfg.Email
			}

			if email == "" {
				return fmt.Errorf("email required: pass --email or set EMAIL")
			}

			password := a.cfg.Password
			if password == "" {
				p, err := prompt(cmd.InOrStdin(), cmd.ErrOrStderr(), "Password: ")
				if err != nil {
					return err
				}

				password = p
			}

			resp, err := a.client.SignIn(ctx, email, password)
			if err != nil {
				return err
			}

			if err := a.state.SetToken(a.client.Token()); err != nil {
				return fmt.Errorf("saving token: %w", err)
			}

			a.logger.Info("signed in", slog.String("email", email))
			fmt.Fprintln(cmd.OutOrStdout(), greeting(resp, email))

			return nil
		}),
	}

	cmd.Flags().StringVar(&email, "email", "", "account email (defaults to EMAIL)")

	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Close the session and forget the token",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
			if a.client.Token() != "" {
				if err := a.client.SignOut(ctx); err != nil {
					a.logger.Warn("server sign out failed", slog.String("error", err.Error()))
				}
			}

			if err := a.state.SetToken(""); err != nil {
				return fmt.Errorf("clearing token: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "signed out")

			return nil
		}),
	}
}

func newRegisterCmd() *cobra.Command {
	var req models.RegistrationRequest

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
			if req.EmailAddress == "" {
				req.EmailAddress = a.cfg.Email
			}

			if req.EmailAddress == "" || req.FirstName == "" || req.LastName == "" {
				return fmt.Errorf("--first-name, --last-name and --email are required")
			}

			req.Password = a.cfg.Password

			resp, err := a.client.Register(ctx, req)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), messageOr(resp, "registered "+req.EmailAddress))

			return nil
		}),
	}

	cmd.Flags().StringVar(&req.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&req.LastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&req.EmailAddress, "email", "", "email address (defaults to EMAIL)")

	return cmd
}

func newAccountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage the account",
	}

	cmd.AddCommand(newResetPasswordCmd(), newSetPasswordCmd(), newUpdateAccountCmd())

	return cmd
}

func newResetPasswordCmd() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Request a password reset email",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
			if email == "" {
				email = a.cfg.Email
			}

			if email == "" {
				return fmt.Errorf("email required: pass --email or set EMAIL")
			}

			resp, err := a.client.RequestPasswordReset(ctx, email)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), messageOr(resp, "reset requested for "+email))

			return nil
		}),
	}

	cmd.Flags().StringVar(&email, "email", "", "account email (defaults to EMAIL)")

	return cmd
}

func newSetPasswordCmd() *cobra.Command {
	var resetToken string

	cmd := &cobra.Command{
		Use:   "set-password",
		Short: "Set a new password, optionally with a reset token",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
			in := bufio.NewReader(cmd.InOrStdin())

			password, err := prompt(in, cmd.ErrOrStderr(), "New password: ")
			if err != nil {
				return err
			}

			confirm, err := prompt(in, cmd.ErrOrStderr(), "Confirm password: ")
			if err != nil {
				return err
			}

			resp, err := a.client.UpdatePassword(ctx, models.PasswordUpdateRequest{
				ResetToken:           resetToken,
				Password:             password,
				PasswordConfirmation: confirm,
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), messageOr(resp, "password updated"))

			return nil
		}),
	}

	cmd.Flags().StringVar(&resetToken, "reset-token", "", "token from the reset email")

	return cmd
}

func newUpdateAccountCmd() *cobra.Command {
	var req models.AccountUpdateRequest

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Change name or email",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
			if req == (models.AccountUpdateRequest{}) {
				return fmt.Errorf("nothing to update: pass --first-name, --last-name or --email")
			}

			resp, err := a.client.UpdateAccount(ctx, req)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), messageOr(resp, "account updated"))

			return nil
		}),
	}

	cmd.Flags().StringVar(&req.FirstName, "first-name", "", "new first name")
	cmd.Flags().StringVar(&req.LastName, "last-name", "", "new last name")
	cmd.Flags().StringVar(&req.EmailAddress, "email", "", "new email address")

	return cmd
}

// prompt writes label to w and reads one line from r.
func prompt(r io.Reader, w io.Writer, label string) (string, error) {
	fmt.Fprint(w, label)

	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}

	line, err := br.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("no input")
	}

	return strings.TrimRight(line, "\r\n"), nil
}

func greeting(resp *models.SessionResponse, email string) string {
	if resp.User != nil && resp.User.FirstName != "" {
		return "signed in as " + resp.User.FirstName
	}

	return "signed in as " + email
}

func messageOr(resp *models.SessionResponse, fallback string) string {
	if resp != nil && resp.Message != "" {
		return resp.Message
	}

	return fallback
}
