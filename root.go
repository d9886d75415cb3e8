package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"devicectrl/inputbridge/config"
	"devicectrl/inputbridge/platform"
)

// EnvStatusAddr enables the status server when --status-addr is not given
const EnvStatusAddr = "STATUS_ADDR"

type options struct {
	configPath string
	logLevel   string
	statusAddr string
}

// newRootCmd creates the inputbridge command with its subcommands attached
func newRootCmd() *cobra.Command {
	opts := &options{}
	defaultConfig, _ := config.ConfigPath()

	cmd := &cobra.Command{
		Use:           "inputbridge",
		Short:         "Forward input device key presses to a devicectrl server",
		Long:          "inputbridge reads key events from evdev input devices, matches them against\nconfigured triggers and sends the resulting actions to the server over mutual TLS.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(os.Stdout, opts.logLevel)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}

			agent, err := NewAgent(cfg, platform.Open, opts.statusAddr)
			if err != nil {
				return fmt.Errorf("failed to create agent: %w", err)
			}
			return agent.Run(cmd.Context())
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", defaultConfig, "configuration file, JSON or TOML (env "+config.EnvConfigPath+")")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", os.Getenv(EnvLogLevel), "debug, info, warn or error (env "+EnvLogLevel+")")
	cmd.Flags().StringVar(&opts.statusAddr, "status-addr", os.Getenv(EnvStatusAddr), "listen address of the status server, disabled when empty (env "+EnvStatusAddr+")")

	cmd.AddCommand(newValidateCmd(opts))
	return cmd
}

// newValidateCmd creates the "inputbridge validate" subcommand
func newValidateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration and print the trigger table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			table := cfg.TriggerTable()
			for i, entry := range table.Entries() {
				fmt.Fprintf(out, "%d\t%s\t->", i+1, entry.Trigger)
				if len(entry.Actions) == 0 {
					fmt.Fprint(out, " (no actions)")
				}
				for _, action := range entry.Actions {
					fmt.Fprintf(out, " [%s]", action)
				}
				fmt.Fprintln(out)
			}
			fmt.Fprintf(out, "%d triggers, server %s (%s)\n", table.Len(), cfg.ServerConnection.ServerAddr, cfg.ServerConnection.ServerDomain)
			return nil
		},
	}
}

func loadConfig(opts *options) (*config.Config, error) {
	if opts.configPath == "" {
		return nil, fmt.Errorf("no configuration file: pass --config or set %s", config.EnvConfigPath)
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}
