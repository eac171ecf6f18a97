package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/foxzi/tweetsift/internal/web/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration commands",
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	RunE:  runConfigValidate,
}

func init() {
	configValidateCmd.Flags().StringVarP(&configFile, "config", "c", "/etc/tweetsift/web.yaml", "Path to configuration file")
	configCmd.AddCommand(configValidateCmd)
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	fmt.Println("Configuration is valid")
	fmt.Printf("  Listen address: %s\n", cfg.Server.ListenAddr)
	fmt.Printf("  Backend: %s\n", cfg.Backend.BaseURL)
	fmt.Printf("  Display delay: %s\n", cfg.Delay())
	fmt.Printf("  CSRF: %v\n", cfg.Security.CSRFEnabled)
	fmt.Printf("  Metrics: %v\n", cfg.Metrics.Enabled)
	fmt.Printf("  Labels: %s\n", strings.Join(cfg.App.Labels, ", "))

	if !cfg.Configured() {
		fmt.Printf("\nWarning: the application needs a name and at least 2 labels.\n")
		fmt.Printf("Until then every page shows the setup notice. Configure it at %s\n", cfg.AdminURL())
	}

	return nil
}
