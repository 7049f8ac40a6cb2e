package main

import (
	"fmt"

	"kilocam/internal/gui"
	"kilocam/internal/tui"

	"github.com/spf13/cobra"
)

func (a *app) tuiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Start the terminal user interface",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return tui.Run(a.cfg, a.configPath())
		},
	}
}

func (a *app) guiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gui",
		Short: "Launch the graphical user interface",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !gui.IsGUIAvailable() {
				return fmt.Errorf("this build has no GUI, use 'kilocam tui'")
			}
			return gui.StartGUI(a.cfg, a.configPath())
		},
	}
}
