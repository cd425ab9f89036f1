package cli

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var sessionsLimit int

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List recent conversations",
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

		sessions, err := db.GetRecentSessions(sessionsLimit)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(sessions) == 0 {
			fmt.Fprintln(out, "No sessions.")
			return nil
		}
		for _, s := range sessions {
			started := time.UnixMilli(s.StartedAt)
			fmt.Fprintf(out, "%s  %-6s  %3d turns  %s  %s\n",
				s.SessionID, s.Status, s.TurnCount, humanize.RelTime(started, db.Now(), "ago", "from now"), s.UserID)
		}
		return nil
	},
}

func init() {
	sessionsCmd.Flags().IntVarP(&sessionsLimit, "limit", "n", 20, "Maximum number of sessions")
}
