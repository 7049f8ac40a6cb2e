package main

import (
	"fmt"

	"kilocam/cmd/kilocam/cli"
	"kilocam/internal/confirm"
	"kilocam/internal/config"
	"kilocam/internal/control"
	"kilocam/internal/device"
	"kilocam/internal/log"

	"github.com/spf13/cobra"
)

// app holds the global flags and what they resolve to once the config is
// loaded.
type app struct {
	cfgFile string
	url     string
	debug   bool
	logJSON bool
	yes     bool

	cfg       *config.Config
	client    *device.Client
	confirmer confirm.Confirmer

	// newConfirmer builds the prompt used when --yes is not in effect.
	newConfirmer func(cmd *cobra.Command) confirm.Confirmer
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	return newRootCmd(&app{newConfirmer: terminalConfirmer})
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "kilocam",
		Short: "Control panel for a KiloCam field camera",
		Long: `kilocam talks to a KiloCam over its Wi-Fi access point.

It reads the device status, changes the capture settings, syncs the
clock, starts or stops a collection run, takes test photos and browses,
downloads and deletes the files on the camera's storage.`,
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.config/kilocam/config.yaml)")
	flags.StringVar(&a.url, "url", "", "device address (overrides config and "+config.EnvURL+")")
	flags.BoolVar(&a.debug, "debug", false, "enable debug logging")
	flags.BoolVar(&a.logJSON, "log-json", false, "write log lines as JSON")
	flags.BoolVarP(&a.yes, "yes", "y", false, "answer yes to every confirmation")

	rootCmd.AddCommand(
		a.statusCmd(),
		a.settingsCmd(),
		a.syncTimeCmd(),
		a.startCmd(),
		a.shutdownCmd(),
		a.lightCmd(),
		a.captureCmd(),
		a.filesCmd(),
		a.tuiCmd(),
		a.guiCmd(),
		a.configCmd(),
	)
	return rootCmd
}

// setup loads the configuration, applies the global flags and connects the
// client.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	log.SetDebug(a.debug)

	var err error
	if a.cfgFile != "" {
		a.cfg, err = config.LoadConfigFile(a.cfgFile)
	} else {
		a.cfg, err = config.LoadConfig()
	}
	if err != nil {
		cli.PrintWarning(cmd.ErrOrStderr(), fmt.Sprintf("%v, using default settings", err))
		a.cfg = config.New()
		a.cfg.ApplyEnv()
	}

	if a.url != "" {
		a.cfg.Device.URL = a.url
		if err := a.cfg.Validate(); err != nil {
			return err
		}
	}
	if a.yes {
		a.cfg.Confirm.AssumeYes = true
	}
	if a.logJSON {
		a.cfg.LogFormat = "json"
	}
	log.SetJSON(a.cfg.LogFormat == "json")
	cli.SetTheme(a.cfg.Theme)

	a.client = device.NewClient(a.cfg.Device.URL, device.WithTimeout(a.cfg.Timeout()))
	if a.cfg.Confirm.AssumeYes {
		a.confirmer = confirm.Yes
	} else {
		a.confirmer = a.newConfirmer(cmd)
	}
	log.Debugf("using device at %s", a.client.BaseURL())
	return nil
}

// configPath is the file the interactive surfaces watch for changes.
func (a *app) configPath() string {
	if a.cfgFile != "" {
		return a.cfgFile
	}
	path, err := config.DefaultPath()
	if err != nil {
		return ""
	}
	return path
}

func (a *app) controller() *control.Controller {
	return control.New(a.client, a.confirmer)
}

func terminalConfirmer(cmd *cobra.Command) confirm.Confirmer {
	t := confirm.NewTerminal()
	t.In = cmd.InOrStdin()
	t.Out = cmd.OutOrStdout()
	return t
}
