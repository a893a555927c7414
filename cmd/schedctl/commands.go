package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"task-scheduling-assistant/internal/app"
	"task-scheduling-assistant/internal/calendar"
	"task-scheduling-assistant/internal/notification"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create missing tables and indexes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// app.New already ensures the schema.
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				fmt.Fprintf(cmd.OutOrStdout(), "schema up to date (%s)\n", a.Config.Database.Driver)
				return nil
			})
		},
	}
}

func authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth [user-id]",
		Short: "Connect a user's Google Calendar",
		Long: `Prints the Google consent URL for the user, reads the authorization
code from stdin and stores the resulting token.

Examples:
  schedctl auth telegram_123456
  schedctl auth telegram_123456 --code 4/0Ab...`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID := args[0]
			code, _ := cmd.Flags().GetString("code")

			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				if code == "" {
					url, err := a.Calendar.AuthCodeURL(userID)
					if errors.Is(err, calendar.ErrOAuthDisabled) {
						return fmt.Errorf("set google_calendar.credentials_path first: %w", err)
					}
					if err != nil {
						return err
					}

					out := cmd.OutOrStdout()
					fmt.Fprintln(out, "Open this URL and sign in with the Google account to connect:")
					fmt.Fprintln(out)
					fmt.Fprintln(out, url)
					fmt.Fprintln(out)
					fmt.Fprint(out, "Authorization code: ")

					line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
					if err != nil && line == "" {
						return fmt.Errorf("read authorization code: %w", err)
					}
					code = strings.TrimSpace(line)
				}
				if code == "" {
					return errors.New("authorization code is empty")
				}

				if err := a.Calendar.Exchange(ctx, userID, code); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "calendar connected for %s\n", userID)
				return nil
			})
		},
	}
	cmd.Flags().String("code", "", "authorization code (skips the prompt)")
	return cmd
}

func sweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Delete local events whose calendar event was removed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				res, err := a.Reconciler().Run(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "users=%d deleted=%d failed=%d\n", res.Users, res.Deleted, res.Failed)
				return nil
			})
		},
	}
}

func remindCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remind",
		Short: "Send due start reminders and completion checks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				res, err := a.Reminder().Run(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "reminders=%d post_checks=%d skipped=%d\n", res.Reminders, res.PostChecks, res.Skipped)
				return nil
			})
		},
	}
}

func dispatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dispatch",
		Short: "Deliver pending outbox notifications once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				res, err := a.Dispatcher().Run(ctx)
				if errors.Is(err, notification.ErrNoTarget) {
					return fmt.Errorf("set notification.primary_url first: %w", err)
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "delivered=%d retried=%d dead=%d\n", res.Delivered, res.Retried, res.Dead)
				return nil
			})
		},
	}
}

func deadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dead",
		Short: "List notifications that exhausted their retries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				rows, err := a.Outbox.ListDead(ctx, limit)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, r := range rows {
					fmt.Fprintf(out, "%s\t%s\t%s\tattempts=%d\t%s\n", r.ID, r.Kind, r.UserID, r.Attempts, r.LastError)
				}
				fmt.Fprintf(out, "%d dead notification(s)\n", len(rows))
				return nil
			})
		},
	}
	cmd.Flags().IntP("limit", "n", 50, "maximum rows")
	return cmd
}
