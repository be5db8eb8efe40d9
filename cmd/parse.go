package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/adhuhaam/laraos-sub001/internal/extract"
	"github.com/adhuhaam/laraos-sub001/internal/mrz"
)

var parseCmd = &cobra.Command{
	Use:   "parse [text-file]",
	Short: "Extract identity data from already-OCRed text",
	Long: `Run MRZ decoding and heuristic field extraction over raw OCR text,
skipping the image and backend stages. Reads from the given file, or from
stdin when no file is given.

Useful for re-running extraction from the raw text saved with an earlier
scan's diagnostics.`,
	Example: `  idscan parse saved-ocr.txt
  cat saved-ocr.txt | idscan parse --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().Bool("json", false, "Output the record as JSON")
}

func runParse(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	var raw []byte
	var err error
	if len(args) == 1 {
		raw, err = os.ReadFile(args[0])
	} else {
		raw, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		return fmt.Errorf("failed to read input text: %w", err)
	}

	text := string(raw)
	fields := mrz.Parse(text)
	record := extract.Extract(text, fields)

	if jsonOutput {
		data, err := json.MarshalIndent(record, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to create JSON output: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("MRZ found: %v\n\n", fields != nil)
	fmt.Print(recordLines(record))
	return nil
}
