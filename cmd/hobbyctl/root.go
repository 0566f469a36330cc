package main

import (
	"hobbyhub/internal/config"

	"github.com/spf13/cobra"
)

func rootCmd() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:           "hobbyctl",
		Short:         "HobbyHub command line client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := cmd.PersistentFlags()
	pf.StringVarP(&flags.configFile, "config", "c", "", "Config file path (default ~/.hobbyhub/config.yaml)")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pf.StringVar(&flags.baseURL, "base-url", "", "API base URL, overrides api.base_url")
	pf.StringVar(&flags.storage, "storage", "", "Session storage file, overrides storage.path")

	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if flags.configFile == "" {
			flags.configFile = config.DefaultClientConfigFile()
		}
	}

	cmd.AddCommand(
		loginCmd(flags),
		registerCmd(flags),
		socialCmd(flags),
		logoutCmd(flags),
		meCmd(flags),
		hobbiesCmd(flags),
		eventsCmd(flags),
		feedCmd(flags),
		watchCmd(flags),
	)
	return cmd
}
