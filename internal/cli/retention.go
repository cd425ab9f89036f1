package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/lazypower/dettato/internal/retention"
)

var retentionCmd = &cobra.Command{
	Use:   "retention",
	Short: "Manage per-user note retention",
}

var retentionGetCmd = &cobra.Command{
	Use:   "get <user-id>",
	Short: "Show a user's retention window",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, _, err := openDB(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		days, ok, err := db.RetentionDays(args[0])
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: keep forever\n", args[0])
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d days\n", args[0], days)
		return nil
	},
}

var retentionSetCmd = &cobra.Command{
	Use:   "set <user-id> <days>",
	Short: "Set a user's retention window in days",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		days, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("days: %w", err)
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, _, err := openDB(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.SetRetentionDays(args[0], days); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d days\n", args[0], days)
		return nil
	},
}

var retentionClearCmd = &cobra.Command{
	Use:   "clear <user-id>",
	Short: "Keep a user's notes forever",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, _, err := openDB(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.ClearRetention(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: keep forever\n", args[0])
		return nil
	},
}

var cleanupCmd = &cobra.Command{
	Use:   "cleanup [user-id]",
	Short: "Delete expired notes for one user, or every user with a retention window",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, _, err := openDB(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		var deleted int
		if len(args) == 1 {
			deleted, err = db.CleanupExpired(args[0])
			if err != nil {
				return err
			}
		} else {
			deleted = retention.New(db, 0, newLogger(cfg, io.Discard)).SweepOnce()
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d expired note(s)\n", deleted)
		return nil
	},
}

func init() {
	retentionCmd.AddCommand(retentionGetCmd)
	retentionCmd.AddCommand(retentionSetCmd)
	retentionCmd.AddCommand(retentionClearCmd)
}
