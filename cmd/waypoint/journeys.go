package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/waypoint/internal/config"
	"github.com/aretw0/waypoint/pkg/adapters/file"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/spf13/cobra"
)

var journeysCmd = &cobra.Command{
	Use:   "journeys",
	Short: "Manage stored journeys",
	Long:  `List, show, import and remove journeys in the configured store.`,
}

var journeysLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List stored journeys",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBackend(cmd, func(ctx context.Context, b *backend) error {
			list, err := b.repo.List(ctx)
			if err != nil {
				return fmt.Errorf("failed to list journeys: %w", err)
			}
			if len(list) == 0 {
				fmt.Println("No journeys found.")
				return nil
			}
			for _, s := range list {
				status := "inactive"
				if s.IsActive {
					status = "ACTIVE"
				}
				fmt.Printf("- %s  %s  [%s]  %s\n", s.ID, s.Name, status, s.UpdatedAt.Format("2006-01-02 15:04"))
			}
			return nil
		})
	},
}

var journeysShowCmd = &cobra.Command{
	Use:   "show <journey-id|file>",
	Short: "Print a journey as JSON",
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
		data, err := json.MarshalIndent(j, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode journey: %w", err)
		}
		fmt.Println(string(data))
		return nil
	},
}

var journeysImportCmd = &cobra.Command{
	Use:   "import <file>...",
	Short: "Copy journey files into the configured store",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBackend(cmd, func(ctx context.Context, b *backend) error {
			for _, path := range args {
				j, err := file.ReadJourney(path)
				if err != nil {
					return err
				}
				if violations := domain.Check(j); len(violations) > 0 {
					return fmt.Errorf("%s: %w", path, violations[0])
				}
				if err := b.repo.Save(ctx, j); err != nil {
					return fmt.Errorf("failed to store %s: %w", path, err)
				}
				fmt.Printf("Imported '%s' as %s\n", j.Name, j.ID)
			}
			return nil
		})
	},
}

var journeysRmCmd = &cobra.Command{
	Use:   "rm <journey-id>...",
	Short: "Remove one or more journeys",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBackend(cmd, func(ctx context.Context, b *backend) error {
			hasError := false
			for _, id := range args {
				if err := b.repo.Delete(ctx, id); err != nil {
					fmt.Printf("Error removing '%s': %v\n", id, err)
					hasError = true
				} else {
					fmt.Printf("Removed journey '%s'\n", id)
				}
			}
			if hasError {
				return fmt.Errorf("some journeys could not be removed")
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(journeysCmd)
	journeysCmd.AddCommand(journeysLsCmd)
	journeysCmd.AddCommand(journeysShowCmd)
	journeysCmd.AddCommand(journeysImportCmd)
	journeysCmd.AddCommand(journeysRmCmd)
}

// withBackend loads the config, opens the store and runs fn.
func withBackend(cmd *cobra.Command, fn func(ctx context.Context, b *backend) error) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	return withConfiguredBackend(cmd.Context(), cfg, logger, fn)
}

func withConfiguredBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger, fn func(ctx context.Context, b *backend) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	b, err := openBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer b.close()
	return fn(ctx, b)
}

// loadJourney reads arg as a file when it exists on disk, or else as a journey id in
// the configured store.
func loadJourney(ctx context.Context, cfg *config.Config, logger *slog.Logger, arg string) (*domain.Journey, error) {
	if info, err := os.Stat(arg); err == nil && !info.IsDir() {
		return file.ReadJourney(arg)
	}
	var j *domain.Journey
	err := withConfiguredBackend(ctx, cfg, logger, func(ctx context.Context, b *backend) error {
		var err error
		j, err = b.repo.Load(ctx, arg)
		return err
	})
	return j, err
}
