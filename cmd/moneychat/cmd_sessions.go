package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/HideOnBush-dev/MoneyKeeper-sub001/internal/apiclient"
	"github.com/HideOnBush-dev/MoneyKeeper-sub001/internal/localstore"
)

// sessionsCmd lists the conversations stored by the backend
var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List saved conversations",
	RunE:  runSessionsList,
}

// recallCmd prints the device-local memory
var recallCmd = &cobra.Command{
	Use:   "recall [key]",
	Short: "Print remembered notes",
	Long: `Prints the notes saved with /remember on this device.

With a key, prints only that note.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRecall,
}

// statusCmd prints the last known connection history
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the last connection attempts",
	RunE:  runStatus,
}

func runSessionsList(cmd *cobra.Command, args []string) error {
	sessions, err := apiclient.NewClient(cfg.APIURL, cfg.HTTPTimeout).ListSessions(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(sessions) == 0 {
		fmt.Fprintln(out, "No saved conversations found.")
		return nil
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].UpdatedAt.After(sessions[j].UpdatedAt)
	})
	fmt.Fprintln(out, "Saved conversations")
	fmt.Fprintln(out, strings.Repeat("─", 50))
	for i, s := range sessions {
		info := s.Personality.Info()
		fmt.Fprintf(out, "  %d. %s %s  %s  %s\n", i+1, info.Icon, s.ID, info.Name, s.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
	fmt.Fprintln(out, strings.Repeat("─", 50))
	fmt.Fprintf(out, "Total: %d conversations\n", len(sessions))
	return nil
}

func runRecall(cmd *cobra.Command, args []string) error {
	store, err := localstore.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open local store: %w", err)
	}
	defer store.Close()

	ctx := cmd.Context()
	memory := localstore.NewMemory(store)
	out := cmd.OutOrStdout()

	if len(args) == 1 {
		value, ok, err := memory.Recall(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to recall %q: %w", args[0], err)
		}
		if !ok {
			return fmt.Errorf("nothing remembered for %q", args[0])
		}
		fmt.Fprintln(out, value)
		return nil
	}

	notes, err := memory.All(ctx)
	if err != nil {
		return fmt.Errorf("failed to read memory: %w", err)
	}
	if len(notes) == 0 {
		fmt.Fprintln(out, "Nothing remembered yet.")
		return nil
	}
	keys := make([]string, 0, len(notes))
	for k := range notes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(out, "%s: %s\n", k, notes[k])
	}
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	store, err := localstore.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open local store: %w", err)
	}
	defer store.Close()

	snap, err := localstore.NewDiagnostics(store).Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to read connection history: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "API:       %s\n", cfg.APIURL)
	fmt.Fprintf(out, "Chat:      %s/chat\n", strings.TrimRight(cfg.WSURL, "/"))
	fmt.Fprintf(out, "Connected: %s\n", formatWhen(snap.LastConnected))
	if snap.LastError != "" {
		fmt.Fprintf(out, "Error:     %s (%s)\n", snap.LastError, formatWhen(snap.LastErrorAt))
	}
	return nil
}

func formatWhen(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
