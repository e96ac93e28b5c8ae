package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/rangosemfila/consumo/internal/cli"
	"github.com/rangosemfila/consumo/internal/config"
	"github.com/rangosemfila/consumo/internal/store"
)

var (
	flagJournalLimit int
	flagOlderThan    time.Duration
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Show recent report fetches",
	Long:  "List fetch outcomes recorded locally. Report contents are never stored.",
	Args:  cobra.NoArgs,
	RunE:  runJournal,
}

var journalPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete old journal entries",
	Args:  cobra.NoArgs,
	RunE:  runJournalPrune,
}

func init() {
	journalCmd.Flags().IntVarP(&flagJournalLimit, "limit", "l", 20, "Number of entries to show")
	journalPruneCmd.Flags().DurationVar(&flagOlderThan, "older-than", 0, "Delete entries older than this (default: journal.retention_days)")

	journalCmd.AddCommand(journalPruneCmd)
	rootCmd.AddCommand(journalCmd)
}

func openJournalStrict() (*store.Journal, error) {
	log := newLogger(zapcore.Lock(os.Stderr))
	j, err := store.Open(config.JournalPath(), log)
	if err != nil {
		return nil, fmt.Errorf("opening journal: %w", err)
	}
	return j, nil
}

func runJournal(_ *cobra.Command, _ []string) error {
	j, err := openJournalStrict()
	if err != nil {
		return err
	}
	defer j.Close()

	entries, err := j.Recent(flagJournalLimit)
	if err != nil {
		return fmt.Errorf("reading journal: %w", err)
	}
	if len(entries) == 0 {
		fmt.Println("  No fetches recorded yet.")
		return nil
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		status := "-"
		if e.StatusCode > 0 {
			status = fmt.Sprintf("%d", e.StatusCode)
		}
		rows = append(rows, []string{
			e.FetchedAt.Local().Format("2006-01-02 15:04:05"),
			e.ClientID,
			e.Outcome,
			status,
			cli.FormatLatency(e.Duration),
		})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("Recent fetches (%s)", config.JournalPath()),
		Headers: []string{"When", "Client", "Outcome", "HTTP", "Took"},
		Rows:    rows,
	}))
	return nil
}

func runJournalPrune(_ *cobra.Command, _ []string) error {
	keep := flagOlderThan
	if keep == 0 {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		keep = cfg.Journal.Retention()
	}
	if keep <= 0 {
		return errors.New("no retention configured; pass --older-than")
	}

	j, err := openJournalStrict()
	if err != nil {
		return err
	}
	defer j.Close()

	n, err := j.Prune(time.Now().Add(-keep))
	if err != nil {
		return err
	}
	fmt.Printf("  Pruned %s entries older than %s\n", cli.FormatNumber(n), keep)
	return nil
}
