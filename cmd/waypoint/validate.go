package main

import (
	"fmt"

	"github.com/aretw0/waypoint/internal/validator"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <journey-id|file>...",
	Short: "Check journeys for consistency",
	Long: `Reports broken references, repeated keys and edges, self-loops, and lint warnings
such as unreachable steps or loaders with no function bound.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		strict, _ := cmd.Flags().GetBool("strict")
		failed := 0
		for _, arg := range args {
			j, err := loadJourney(cmd.Context(), cfg, logger, arg)
			if err != nil {
				return err
			}
			report := validator.Validate(j)
			for _, v := range report.Violations {
				fmt.Printf("%s: error: %s\n", arg, v.Error())
			}
			for _, w := range report.Warnings {
				fmt.Printf("%s: warning: %s\n", arg, w)
			}
			if report.Err() != nil || (strict && len(report.Warnings) > 0) {
				failed++
				continue
			}
			fmt.Printf("%s: journey is valid! ✅\n", arg)
		}
		if failed > 0 {
			return fmt.Errorf("validation failed for %d journey(s)", failed)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().Bool("strict", false, "Treat warnings as errors")
}
