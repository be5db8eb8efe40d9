package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/adhuhaam/laraos-sub001/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "idscan",
	Short: "Passport and ID document data extraction",
	Long: `idscan extracts structured identity data from photographed passport and
ID document images: passport number, name, nationality, dates, sex, place of
birth and issuing authority.

Recognition runs through a prioritized chain of OCR backends (Google Vision,
Document AI, OCR.space, OpenAI vision, local tesseract) with per-backend
image preprocessing fallback. Extracted text is decoded through the ICAO TD3
machine-readable zone when present, and pattern rules fill the rest.`,
	Version: version,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error(err, "Command execution failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
