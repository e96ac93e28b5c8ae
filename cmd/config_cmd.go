package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rangosemfila/consumo/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.Path())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [API]")
	fmt.Printf("    Base URL: %s\n", config.GetBaseURL(cfg))
	if os.Getenv("CONSUMO_API_URL") != "" {
		fmt.Println("              (from CONSUMO_API_URL)")
	}
	if cfg.API.TimeoutSec > 0 {
		fmt.Printf("    Timeout:  %ds\n", cfg.API.TimeoutSec)
	} else {
		fmt.Println("    Timeout:  none")
	}
	fmt.Println()

	fmt.Println("  [Server]")
	fmt.Printf("    Address: %s\n", cfg.Server.Addr)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [Journal]")
	fmt.Printf("    Enabled:   %v\n", cfg.Journal.Enabled)
	fmt.Printf("    Retention: %d days\n", cfg.Journal.RetentionDays)
	fmt.Printf("    Path:      %s\n", config.JournalPath())
	fmt.Println()

	fmt.Println("  Run `consumo setup` to reconfigure.")
	return nil
}
