package cmd

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rangosemfila/consumo/internal/config"
	"github.com/rangosemfila/consumo/internal/tui"
	"github.com/rangosemfila/consumo/internal/tui/theme"
)

var tuiCmd = &cobra.Command{
	Use:   "tui [id|url]",
	Short: "Browse a consumption report interactively",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runTUI,
}

func init() {
	tuiCmd.Flags().StringVar(&flagID, "id", "", "Client identifier (alternative to the positional argument)")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	theme.SetActive(cfg.Appearance.Theme)

	// Logs go to a file; stderr would corrupt the alternate screen.
	log := zap.NewNop()
	if err := os.MkdirAll(config.CacheDir(), 0o750); err == nil {
		//nolint:gosec // log path is derived from the user's cache dir
		f, err := os.OpenFile(config.LogPath(), os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
		if err == nil {
			defer func() { _ = f.Close() }()
			log = newLogger(zapcore.AddSync(f))
		}
	}
	defer func() { _ = log.Sync() }()

	journal := openJournal(cfg, log)
	if journal != nil {
		defer journal.Close()
	}
	client := newClient(cfg, log, journalObservers(journal)...)

	// Force TrueColor profile so all background styling produces ANSI codes
	lipgloss.SetColorProfile(termenv.TrueColor)

	app := tui.NewApp(client, resolveIdentifier(args), log)
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
