package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/teemow/iris/internal/config"
	"github.com/teemow/iris/internal/conversation"
)

// History output formats.
const (
	historyFormatText = "text"
	historyFormatJSON = "json"
	historyFormatYAML = "yaml"
)

func newHistoryCmd() *cobra.Command {
	var (
		format       string
		listSessions bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print a stored conversation",
		Long: `Print the stored conversation transcript and the last created or updated event.

With the file backend the transcript file is read. With the SQLite backend
--session selects the conversation; --list-sessions shows what is stored.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if listSessions {
				if cfg.Store.Backend != config.BackendSQLite {
					return fmt.Errorf("--list-sessions requires the sqlite store backend")
				}
				db, err := conversation.OpenSQLiteDB(ctx, cfg.Store.Path)
				if err != nil {
					return err
				}
				defer db.Close()
				sessions, err := conversation.ListSessions(ctx, db)
				if err != nil {
					return err
				}
				printSessions(out, sessions)
				return nil
			}

			state, err := loadHistory(ctx, cfg)
			if err != nil {
				return err
			}
			return printHistory(out, state, format, cfg.AssistantName)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", historyFormatText, "Output format: text, json or yaml")
	cmd.Flags().BoolVar(&listSessions, "list-sessions", false, "List SQLite sessions instead of printing one")
	return cmd
}

func loadHistory(ctx context.Context, cfg *config.Config) (conversation.State, error) {
	if cfg.Store.Backend != config.BackendSQLite {
		return conversation.NewFileStore(cfg.Store.Path).Load(ctx)
	}
	if cfg.Store.Session == "" {
		return conversation.State{}, fmt.Errorf("--session is required with the sqlite store backend")
	}
	db, err := conversation.OpenSQLiteDB(ctx, cfg.Store.Path)
	if err != nil {
		return conversation.State{}, err
	}
	defer db.Close()
	store, err := conversation.NewSQLiteStore(db, cfg.Store.Session)
	if err != nil {
		return conversation.State{}, err
	}
	return store.Load(ctx)
}

func printHistory(w io.Writer, state conversation.State, format, name string) error {
	switch format {
	case historyFormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(state)
	case historyFormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(state); err != nil {
			return err
		}
		return enc.Close()
	case historyFormatText:
	default:
		return fmt.Errorf("invalid format %q, must be one of: text, json, yaml", format)
	}

	if len(state.Turns) == 0 {
		fmt.Fprintln(w, "No conversation stored.")
		return nil
	}
	for _, turn := range state.Turns {
		if turn.Role == conversation.RoleUser {
			fmt.Fprintf(w, "%s %s\n", userStyle.Render("You:"), turn.Content)
			continue
		}
		fmt.Fprintf(w, "%s %s\n", assistantStyle.Render(name+":"), turn.Content)
	}
	if last := state.LastAction; last != nil {
		fmt.Fprintf(w, "\n%s\n", noticeStyle.Render(fmt.Sprintf("Last action: %s %q (%s to %s)",
			last.Action, last.Summary, last.StartTime, last.EndTime)))
	}
	return nil
}

func printSessions(w io.Writer, sessions []conversation.SessionInfo) {
	if len(sessions) == 0 {
		fmt.Fprintln(w, "No sessions stored.")
		return
	}
	for _, s := range sessions {
		fmt.Fprintf(w, "%s  %d turns  updated %s\n", s.ID, s.Turns, s.UpdatedAt.Local().Format(time.DateTime))
	}
}
