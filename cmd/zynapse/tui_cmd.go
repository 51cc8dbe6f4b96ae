package main

import (
	"time"

	"github.com/spf13/cobra"

	"zynapse/cmd/zynapse/tui"
	"zynapse/internal/zerrors"
)

// Decay parameters for interactive sessions: links untouched for a
// month lose a tenth of their strength per pass.
const (
	decayAfter  = 30 * 24 * time.Hour
	decayFactor = 0.9
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal interface",
	Long: `Opens the full-screen interface: browse notes, preview rendered
markdown, search as you type, and follow links between notes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.WatchNotes(cmd.Context()); err != nil {
			return err
		}
		a.AutoDecay(cmd.Context(), decayAfter, decayFactor)

		if err := tui.Run(a); err != nil {
			return zerrors.TUI(err, "terminal interface failed")
		}
		return nil
	},
}
