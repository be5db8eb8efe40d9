package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/adhuhaam/laraos-sub001/internal/config"
	"github.com/adhuhaam/laraos-sub001/internal/logger"
	"github.com/adhuhaam/laraos-sub001/internal/pipeline"
	"github.com/adhuhaam/laraos-sub001/pkg/models"
)

var scanCmd = &cobra.Command{
	Use:   "scan [image-file]",
	Short: "Extract identity data from a document image",
	Long: `Run the full extraction pipeline on a photographed passport or ID image.

The image is preprocessed into several enhanced variants and sent through the
configured OCR backends in priority order until enough usable text has been
collected. The best result is decoded (machine-readable zone first, pattern
rules second) into a structured record.

Backends are configured through the environment; see 'idscan backends' for
what is currently available.`,
	Example: `  # Scan a passport photo, print the record
  idscan scan passport.jpg

  # Full outcome with per-attempt diagnostics as JSON
  idscan scan passport.jpg --json -o outcome.json

  # Watch the fallback chain progress
  idscan scan passport.jpg --progress`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	scanCmd.Flags().Bool("json", false, "Output the full outcome as JSON")
	scanCmd.Flags().Bool("progress", false, "Print backend/strategy progress while scanning")
	scanCmd.Flags().Int("timeout", 300, "Overall timeout in seconds")
}

func runScan(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("scan")

	outputPath, _ := cmd.Flags().GetString("output")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	showProgress, _ := cmd.Flags().GetBool("progress")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	imagePath := args[0]
	image, err := os.ReadFile(imagePath)
	if err != nil {
		return fmt.Errorf("failed to read image file: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(time.Duration(timeoutSecs) * time.Second)
	defer cancel()

	opts := pipeline.Options{}
	if showProgress {
		opts.OnProgress = func(p pipeline.Progress) {
			fmt.Fprintf(os.Stderr, "[%3d%%] %s / %s\n", p.Percent, p.Backend, p.Strategy)
		}
	}

	svc := pipeline.NewService(ctx, cfg, opts)

	log.Info().Str("file", imagePath).Int("size", len(image)).Msg("starting extraction")

	outcome, err := svc.Extract(ctx, image)
	if err != nil {
		switch {
		case errors.Is(err, pipeline.ErrInvalidInput):
			return fmt.Errorf("input rejected: %w", err)
		case errors.Is(err, pipeline.ErrAllBackendsFailed):
			// The outcome still carries the attempt diagnostics; print
			// them and signal that manual entry is the way forward.
			if writeErr := writeOutcome(outcome, outputPath, jsonOutput); writeErr != nil {
				return writeErr
			}
			return fmt.Errorf("no backend could read this image; enter the record manually")
		default:
			return err
		}
	}

	return writeOutcome(outcome, outputPath, jsonOutput)
}

// signalContext returns a context bounded by the overall timeout and wired
// to SIGINT/SIGTERM so an abandoned scan cancels any in-flight backend call.
func signalContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

func writeOutcome(outcome *pipeline.Outcome, outputPath string, jsonOutput bool) error {
	var data []byte
	var err error

	if jsonOutput {
		data, err = json.MarshalIndent(outcome, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to create JSON output: %w", err)
		}
	} else {
		data = []byte(formatRecord(outcome))
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, data, 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		return nil
	}
	_, err = os.Stdout.Write(append(data, '\n'))
	return err
}

func formatRecord(outcome *pipeline.Outcome) string {
	rec := outcome.Record
	out := fmt.Sprintf("Status: %s\n", outcome.Status)
	out += fmt.Sprintf("Attempts: %d (MRZ found: %v)\n\n", len(outcome.Results), outcome.MRZFound)
	out += recordLines(rec)
	return out
}

func recordLines(rec *models.ExtractedRecord) string {
	line := func(label, value, field string) string {
		if value == "" {
			return fmt.Sprintf("%-18s -\n", label+":")
		}
		mark := ""
		if rec.IsInferred(field) {
			mark = "  (inferred)"
		}
		return fmt.Sprintf("%-18s %s%s\n", label+":", value, mark)
	}
	out := line("Passport number", rec.PassportNumber, "passport_number")
	out += line("Full name", rec.FullName, "full_name")
	out += line("Nationality", rec.Nationality, "nationality")
	out += line("Date of birth", rec.DateOfBirth, "date_of_birth")
	out += line("Issue date", rec.IssueDate, "issue_date")
	out += line("Expiry date", rec.ExpiryDate, "expiry_date")
	out += line("Sex", rec.Sex, "sex")
	out += line("Place of birth", rec.PlaceOfBirth, "place_of_birth")
	out += line("Authority", rec.IssuingAuthority, "issuing_authority")
	out += line("Address", rec.Address, "address")
	return out
}
