package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adhuhaam/laraos-sub001/internal/backend"
	"github.com/adhuhaam/laraos-sub001/internal/config"
)

var backendsCmd = &cobra.Command{
	Use:   "backends",
	Short: "Show configured OCR backends and their availability",
	Long: `List every backend in the configured priority order and whether it is
available with the current environment. Availability is decided once at
startup from credentials and configuration, never per request.`,
	RunE: runBackends,
}

func init() {
	rootCmd.AddCommand(backendsCmd)
}

func runBackends(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	_, descriptors := backend.BuildAdapters(context.Background(), cfg)

	fmt.Println("Backend priority order:")
	for i, d := range descriptors {
		state := "unavailable (not configured)"
		if d.Available {
			state = "available"
		}
		fmt.Printf("  %d. %-16s %s\n", i+1, d.Name, state)
	}
	return nil
}
