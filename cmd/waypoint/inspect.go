package main

import (
	"fmt"
	"os"

	"github.com/aretw0/waypoint/internal/presentation/tui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <journey-id|file>",
	Short: "Show a journey summary in the terminal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		j, err := loadJourney(cmd.Context(), cfg, logger, args[0])
		if err != nil {
			return err
		}
		md := tui.JourneyMarkdown(j)

		// Plain markdown when piped.
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Print(md)
			return nil
		}
		tui.PrintBanner(os.Stdout)
		render, err := tui.NewRenderer()
		if err != nil {
			return err
		}
		out, err := render(md)
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
