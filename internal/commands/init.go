package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/budgetwise-dev/budgetwise/internal/config"
)

func newInitCommand(a *app) *cobra.Command {
	var apiURL string
	var currency string
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file and create the local state database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.configPath
			if path == "" {
				p, err := config.DefaultPath()
				if err != nil {
					return err
				}
				path = p
			}
			if err := writeConfig(path, apiURL, currency, force); err != nil {
				return err
			}
			a.configPath = path
			return opened(a, func(cmd *cobra.Command, args []string) error {
				fmt.Fprintf(a.out, "Initialized budgetwise at %s\n", path)
				fmt.Fprintf(a.out, "  api:      %s\n", a.cfg.API.BaseURL)
				fmt.Fprintf(a.out, "  state:    %s\n", a.cfg.State.Path)
				fmt.Fprintf(a.out, "  activity: %s\n", a.cfg.Activity.Path)
				return nil
			})(cmd, args)
		},
	}

	cmd.Flags().StringVar(&apiURL, "api-url", "", "BudgetWise server URL")
	cmd.Flags().StringVar(&currency, "currency", "", "ISO 4217 currency code for display")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")

	return cmd
}

func writeConfig(path, apiURL, currency string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("config %s already exists (use --force to overwrite)", path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("checking config: %w", err)
	}

	cfg := config.Default(filepath.Dir(path))
	if apiURL != "" {
		cfg.API.BaseURL = apiURL
	}
	if currency != "" {
		cfg.Display.Currency = currency
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	return config.Save(path, cfg)
}
