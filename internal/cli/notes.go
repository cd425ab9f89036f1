package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/lazypower/dettato/internal/store"
)

var (
	notesLimit int
	notesAll   bool
)

var notesCmd = &cobra.Command{
	Use:   "notes",
	Short: "Inspect and import notes",
}

var notesListCmd = &cobra.Command{
	Use:   "list <user-id>",
	Short: "List a user's notes, newest first",
	Args:  cobra.ExactArgs(1),
	RunE:  runNotesList,
}

var notesAddCmd = &cobra.Command{
	Use:   "add <user-id> <text...>",
	Short: "Save a note for a user",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runNotesAdd,
}

func init() {
	notesListCmd.Flags().IntVarP(&notesLimit, "limit", "n", store.DefaultRecentLimit, "Maximum number of notes")
	notesListCmd.Flags().BoolVar(&notesAll, "all", false, "List every note")

	notesCmd.AddCommand(notesListCmd)
	notesCmd.AddCommand(notesAddCmd)
}

func runNotesList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, _, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	userID := args[0]
	var notes []store.Note
	if notesAll {
		notes, err = db.AllNotes(userID)
	} else {
		notes, err = db.RecentNotes(userID, notesLimit)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(notes) == 0 {
		fmt.Fprintf(out, "No notes for %s.\n", userID)
		return nil
	}
	for i, n := range notes {
		fmt.Fprintf(out, "%d. [%s] %s\n", i+1, age(n, db.Now()), n.Content)
	}
	return nil
}

func age(n store.Note, now time.Time) string {
	t, err := n.CreatedTime()
	if err != nil {
		return n.CreatedAt
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

func runNotesAdd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, _, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	n, err := db.SaveNote(args[0], strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %s at %s\n", n.ID, n.CreatedAt)
	return nil
}
