package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"

	"github.com/rangosemfila/consumo/internal/config"
	"github.com/rangosemfila/consumo/internal/tui/theme"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive configuration",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

type setupValues struct {
	baseURL   string
	timeout   string
	addr      string
	themeName string
	journal   bool
	retention string
}

func runSetup(_ *cobra.Command, _ []string) error {
	// Load existing config or defaults
	cfg, _ := config.Load()

	vals := setupValues{
		baseURL:   cfg.API.BaseURL,
		timeout:   strconv.Itoa(cfg.API.TimeoutSec),
		addr:      cfg.Server.Addr,
		themeName: cfg.Appearance.Theme,
		journal:   cfg.Journal.Enabled,
		retention: strconv.Itoa(cfg.Journal.RetentionDays),
	}

	if err := newSetupForm(&vals).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("  Setup canceled, nothing saved.")
			return nil
		}
		return fmt.Errorf("setup form: %w", err)
	}

	if err := applySetup(&cfg, vals); err != nil {
		return err
	}

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.Path())
	fmt.Println("  Run `consumo setup` anytime to reconfigure.")
	fmt.Println()

	return nil
}

func newSetupForm(vals *setupValues) *huh.Form {
	v := validator.New()

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Reporting API base URL").
				Description("Leave empty for the production API.").
				Placeholder("https://api.rangosemfila.com.br").
				Value(&vals.baseURL).
				Validate(func(s string) error {
					if err := v.Var(strings.TrimSpace(s), "omitempty,http_url"); err != nil {
						return errors.New("not an http(s) URL")
					}
					return nil
				}),
			huh.NewInput().
				Title("Request timeout (seconds)").
				Description("0 disables the client timeout.").
				Value(&vals.timeout).
				Validate(nonNegativeInt),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Page server address").
				Value(&vals.addr).
				Validate(func(s string) error {
					if err := v.Var(strings.TrimSpace(s), "required,hostname_port"); err != nil {
						return errors.New("expected host:port")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(huh.NewOptions(theme.Names()...)...).
				Value(&vals.themeName),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Record fetches in the local journal?").
				Value(&vals.journal),
			huh.NewInput().
				Title("Journal retention (days)").
				Description("0 keeps everything.").
				Value(&vals.retention).
				Validate(nonNegativeInt),
		),
	)
}

func nonNegativeInt(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return errors.New("enter a whole number, 0 or more")
	}
	return nil
}

func applySetup(cfg *config.Config, vals setupValues) error {
	timeout, err := strconv.Atoi(strings.TrimSpace(vals.timeout))
	if err != nil {
		return fmt.Errorf("timeout: %w", err)
	}
	retention, err := strconv.Atoi(strings.TrimSpace(vals.retention))
	if err != nil {
		return fmt.Errorf("retention: %w", err)
	}

	cfg.API.BaseURL = strings.TrimRight(strings.TrimSpace(vals.baseURL), "/")
	cfg.API.TimeoutSec = timeout
	cfg.Server.Addr = strings.TrimSpace(vals.addr)
	cfg.Appearance.Theme = theme.ByName(vals.themeName).Name
	cfg.Journal.Enabled = vals.journal
	cfg.Journal.RetentionDays = retention
	return nil
}
