package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"dam-inspection-system/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "api-gateway",
		Short:         "Robotic inspection orchestration and dam safety feedback service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML configuration file")

	root.AddCommand(newServeCmd(&configPath), newValidateCmd(&configPath))
	return root
}

func newValidateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration file and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "configuration OK: %d units, listen %s\n", len(cfg.Fleet.Units), cfg.Server.Addr)
			return nil
		},
	}
}
