package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"lulu/internal/config"
	"lulu/internal/history"
	"lulu/internal/ui"
)

var (
	flagClearHistory bool
	flagHistoryLimit int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past downloads and fetch one again",
	Args:  cobra.NoArgs,
	RunE:  historyRun,
}

func init() {
	historyCmd.Flags().BoolVar(&flagClearHistory, "clear", false, "Delete all history entries")
	historyCmd.Flags().IntVar(&flagHistoryLimit, "limit", 50, "Number of entries to show (0 for all)")
}

func historyRun(cmd *cobra.Command, args []string) error {
	path, err := config.HistoryPath()
	if err != nil {
		return err
	}

	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	if flagClearHistory {
		if err := store.Clear(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "History cleared.")
		return nil
	}

	entries, err := store.List(flagHistoryLimit)
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}

	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No history entries found.")
		return nil
	}

	items := history.FormatForDisplay(entries)
	idx, err := ui.Select("History", items)
	if errors.Is(err, ui.ErrNoFzf) {
		// Without fzf the list is all we can offer
		for _, item := range items {
			fmt.Fprintln(cmd.OutOrStdout(), item)
		}
		return nil
	}
	if err != nil {
		return err
	}

	selected := entries[idx]
	debugf("fetching again: %s (%s)", selected.Title, selected.URL)

	ex, cleanup, err := newExtractor()
	if err != nil {
		return err
	}
	defer cleanup()

	opts, err := extractOptions()
	if err != nil {
		return err
	}
	return ex.Extract(selected.URL, opts)
}
