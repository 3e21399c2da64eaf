package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/decoda/decoda/internal/session"
)

// sessionsCmd groups session management subcommands
var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage conversation sessions",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openSessions()
		if err != nil {
			return err
		}
		ids, err := store.List()
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			fmt.Println("No stored sessions.")
			return nil
		}
		for _, id := range ids {
			sess, err := store.Get(id)
			if err != nil {
				fmt.Printf("%s  (unreadable)\n", id)
				continue
			}
			fmt.Printf("%s  queries=%d pins=%d updated=%s\n",
				sess.ID, len(sess.Queries), len(sess.PinnedItems),
				sess.LastUpdated.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show a session record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openSessions()
		if err != nil {
			return err
		}
		sess, err := store.Get(args[0])
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(sess)
	},
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <session-id>",
	Short: "Delete a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openSessions()
		if err != nil {
			return err
		}
		if err := store.Delete(args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted session %s\n", args[0])
		return nil
	},
}

var sessionsSweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Remove sessions past the retention window",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openSessions()
		if err != nil {
			return err
		}
		removed, err := store.Sweep()
		if err != nil {
			return err
		}
		fmt.Printf("Removed %d expired sessions\n", removed)
		return nil
	},
}

// pinCmd pins content to a session for the rest of the conversation
var pinCmd = &cobra.Command{
	Use:   "pin <session-id> <content>",
	Short: "Pin content to a session",
	Long:  `Pin stores content in a session so later queries carry it as context.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openSessions()
		if err != nil {
			return err
		}
		sess, err := store.Pin(args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("Pinned to session %s (%d pinned items)\n", sess.ID, len(sess.PinnedItems))
		return nil
	},
}

func openSessions() (*session.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return session.NewStore(cfg.Session.Dir, cfg.Session.RetentionDays, newLogger())
}

func init() {
	sessionsCmd.AddCommand(sessionsListCmd, sessionsShowCmd, sessionsDeleteCmd, sessionsSweepCmd)
	rootCmd.AddCommand(sessionsCmd, pinCmd)
}
