package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"kilocam/cmd/kilocam/cli"
	"kilocam/internal/errors"
	"kilocam/internal/format"
	"kilocam/internal/timesync"

	"github.com/spf13/cobra"
)

func (a *app) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the device status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.controller().Status(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.DrawBox("KiloCam "+a.client.BaseURL()+"\n\n"+format.StatusCard(s)))
			return nil
		},
	}
}

func (a *app) settingsCmd() *cobra.Command {
	var (
		interval int
		pwm      int
		warmup   int
		name     string
	)

	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Change the capture interval, light brightness, light warmup or name",
		Long: `Change the device settings in one update. Flags that are not given keep
the value the device reports, so the current status is read first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if !flags.Changed("interval") && !flags.Changed("light-pwm") &&
				!flags.Changed("light-warmup") && !flags.Changed("name") {
				return errors.New("nothing to change, see --help for the settings flags")
			}

			ctrl := a.controller()
			s, err := ctrl.Status(cmd.Context())
			if err != nil {
				return errors.Wrap(err, "reading current settings")
			}
			settings := s.Settings()
			settings.Name = ""
			if flags.Changed("interval") {
				settings.Interval = interval
			}
			if flags.Changed("light-pwm") {
				settings.LightPWM = pwm
			}
			if flags.Changed("light-warmup") {
				settings.LightDur = warmup
			}
			if flags.Changed("name") {
				settings.Name = name
			}

			text, err := ctrl.SaveSettings(cmd.Context(), settings)
			if err != nil {
				return err
			}
			cli.PrintSuccess(cmd.OutOrStdout(), text)
			return nil
		},
	}

	cmd.Flags().IntVar(&interval, "interval", 0, "seconds between captures")
	cmd.Flags().IntVar(&pwm, "light-pwm", 0, "light brightness (1000-2000)")
	cmd.Flags().IntVar(&warmup, "light-warmup", 0, "light warmup before a capture, in ms")
	cmd.Flags().StringVar(&name, "name", "", "device name")
	return cmd
}

func (a *app) syncTimeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync-time",
		Short: "Set the device clock from this computer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now()
			text, err := a.controller().SyncTime(cmd.Context(), now)
			if err != nil {
				return err
			}
			cli.PrintSuccess(cmd.OutOrStdout(), text)
			fmt.Fprintln(cmd.OutOrStdout(), cli.Muted("sent "+timesync.Compute(now).String()))
			return nil
		},
	}
}

func (a *app) startCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start a new collection run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.confirmedAction(cmd, a.controller().StartCollection)
		},
	}
}

func (a *app) shutdownCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shutdown",
		Short: "Put the device into deep sleep",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.confirmedAction(cmd, a.controller().Shutdown)
		},
	}
}

func (a *app) confirmedAction(cmd *cobra.Command, action func(context.Context) (string, error)) error {
	text, err := action(cmd.Context())
	if errors.IsDeclined(err) {
		cli.PrintWarning(cmd.OutOrStdout(), "Cancelled")
		return nil
	}
	if err != nil {
		return err
	}
	cli.PrintSuccess(cmd.OutOrStdout(), text)
	return nil
}

func (a *app) lightCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "light",
		Short: "Toggle the light",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := a.controller().ToggleLight(cmd.Context())
			if err != nil {
				return err
			}
			cli.PrintSuccess(cmd.OutOrStdout(), text)
			return nil
		},
	}
}

func (a *app) captureCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Take a test photo",
		Long: `Take a test photo and show a preview. The photo is saved to the preview
directory, or to the file given with --output.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.controller().TakePhoto(cmd.Context())
			if err != nil {
				return err
			}

			saved := output
			if saved != "" {
				if err := os.WriteFile(saved, p.Data, 0644); err != nil {
					return errors.Wrap(err, "failed to write photo")
				}
			} else if saved, err = p.Save(a.cfg.Preview.Dir); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if thumb, err := p.Thumbnail(a.cfg.Preview.Width); err == nil {
				fmt.Fprintln(out, thumb)
			} else {
				cli.PrintWarning(out, "cannot preview: "+err.Error())
			}
			cli.PrintSuccess(out, fmt.Sprintf("Photo %s saved to %s", p.Summary(format.Size), saved))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the photo to this file")
	return cmd
}
