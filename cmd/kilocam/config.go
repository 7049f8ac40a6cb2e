package main

import (
	"fmt"
	"slices"

	"kilocam/cmd/kilocam/cli"
	"kilocam/internal/config"
	"kilocam/internal/errors"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func (a *app) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change the console configuration",
	}
	cmd.AddCommand(a.configShowCmd(), a.configThemesCmd(), a.configSetCmd())
	return cmd
}

func (a *app) configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the configuration in effect, flags and environment included",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := yaml.Marshal(a.cfg)
			if err != nil {
				return errors.Wrap(err, "failed to marshal config")
			}
			out := cmd.OutOrStdout()
			cli.PrintInfo(out, "Config file: "+a.configPath())
			fmt.Fprint(out, string(data))
			return nil
		},
	}
}

func (a *app) configThemesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "themes",
		Short: "List the color themes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, name := range config.ListThemes() {
				marker := "  "
				if name == a.cfg.Theme.Name {
					marker = "* "
				}
				fmt.Fprintln(out, marker+name)
			}
			return nil
		},
	}
}

func (a *app) configSetCmd() *cobra.Command {
	var (
		theme     string
		logFormat string
		pacing    int
		dir       string
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change values in the config file",
		Long: `Change values in the config file. Only the given flags are written;
--url and KILOCAM_URL are never saved.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if !flags.Changed("theme") && !flags.Changed("log-format") &&
				!flags.Changed("pacing-ms") && !flags.Changed("download-dir") {
				return errors.New("nothing to change, see --help for the config flags")
			}
			if flags.Changed("theme") && !slices.Contains(config.ListThemes(), theme) {
				return errors.NewConfigError("unknown theme", theme, errors.InvalidConfig, nil)
			}

			path := a.configPath()
			if path == "" {
				return errors.New("no config file location, pass --config")
			}
			err := config.UpdateFile(path, func(c *config.Config) {
				if flags.Changed("theme") {
					c.ApplyTheme(theme)
				}
				if flags.Changed("log-format") {
					c.LogFormat = logFormat
				}
				if flags.Changed("pacing-ms") {
					c.Downloads.PacingMS = pacing
				}
				if flags.Changed("download-dir") {
					c.Downloads.Dir = dir
				}
			})
			if err != nil {
				return err
			}
			cli.PrintSuccess(cmd.OutOrStdout(), "Saved "+path)
			return nil
		},
	}

	cmd.Flags().StringVar(&theme, "theme", "", "color theme (see 'kilocam config themes')")
	cmd.Flags().StringVar(&logFormat, "log-format", "", "text or json")
	cmd.Flags().IntVar(&pacing, "pacing-ms", 0, "delay between bulk download triggers")
	cmd.Flags().StringVar(&dir, "download-dir", "", "local download directory")
	return cmd
}
