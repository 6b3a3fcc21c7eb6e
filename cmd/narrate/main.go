// Command narrate generates case narratives from a spreadsheet export without running the HTTP service.
//
//	narrate --input cases.xlsx
//	pbpaste | narrate --format json
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/giygas/narratives-api/batch"
	"github.com/giygas/narratives-api/config"
	"github.com/giygas/narratives-api/entities"
	"github.com/giygas/narratives-api/ingest"
	"github.com/giygas/narratives-api/logging"
	"github.com/giygas/narratives-api/narrative"
	"github.com/giygas/narratives-api/render"
	"github.com/giygas/narratives-api/validation"
	"github.com/spf13/cobra"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load .env file:", err)
		os.Exit(1)
	}

	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "narrate",
		Short:         "Generate case narratives from tabular case data",
		Long:          "Reads case records from a TSV grid, a JSON array or an XLSX workbook, groups them by regulatory_ID and prints one narrative per case.",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE:          run,
	}

	receiver := os.Getenv("NARRATIVE_RECEIVER")
	if receiver == "" {
		receiver = narrative.DefaultReceiver
	}

	cmd.Flags().StringP("input", "i", "-", "Input file, - for stdin")
	cmd.Flags().String("kind", "auto", "Input kind: auto, tsv, json or xlsx (auto uses the file extension)")
	cmd.Flags().StringP("format", "f", "text", "Output format: text or json")
	cmd.Flags().String("receiver", receiver, "Organization named as receiving the cases")
	cmd.Flags().Int("workers", 0, "Case groups generated concurrently (0 uses one per CPU)")
	cmd.Flags().Int("max-records", 0, "Reject inputs with more records (0 disables the limit)")
	cmd.Flags().Duration("timeout", 30*time.Second, "Deadline for the whole batch")
	cmd.Flags().BoolP("verbose", "v", false, "Log batch details to stderr")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	input, _ := cmd.Flags().GetString("input")
	kind, _ := cmd.Flags().GetString("kind")
	format, _ := cmd.Flags().GetString("format")
	receiver, _ := cmd.Flags().GetString("receiver")
	workers, _ := cmd.Flags().GetInt("workers")
	maxRecords, _ := cmd.Flags().GetInt("max-records")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	verbose, _ := cmd.Flags().GetBool("verbose")

	format = strings.ToLower(format)
	if format != "text" && format != "json" {
		return fmt.Errorf("unsupported format %q, expected text or json", format)
	}

	level := "warn"
	if verbose {
		level = "info"
	}
	logging.InitLogger("", logging.Options{
		Env:     config.EnvProduction,
		Level:   level,
		Console: cmd.ErrOrStderr(),
	})

	records, err := readRecords(cmd.InOrStdin(), input, kind)
	if err != nil {
		return err
	}

	processor := batch.NewProcessor(
		narrative.New(narrative.WithReceiver(receiver)),
		validation.NewGroupValidator(maxRecords),
		nil,
		workers,
	)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	results, err := processor.Process(ctx, records)
	if err != nil {
		return err
	}

	return writeResults(cmd.OutOrStdout(), format, results)
}

// readRecords opens the input and decodes it by kind
func readRecords(stdin io.Reader, input, kind string) ([]entities.Record, error) {
	var r io.Reader = stdin
	if input != "-" {
		f, err := os.Open(input)
		if err != nil {
			return nil, fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		r = f
	}

	switch detectKind(input, kind) {
	case "xlsx":
		return ingest.ParseXLSX(r)
	case "json":
		return ingest.DecodeJSON(r)
	case "tsv":
		return ingest.ParseTSV(r)
	default:
		return nil, fmt.Errorf("unsupported input kind %q", kind)
	}
}

func detectKind(input, kind string) string {
	kind = strings.ToLower(kind)
	if kind != "" && kind != "auto" {
		return kind
	}
	switch strings.ToLower(filepath.Ext(input)) {
	case ".xlsx":
		return "xlsx"
	case ".json":
		return "json"
	default:
		return "tsv"
	}
}

func writeResults(w io.Writer, format string, results []entities.NarrativeResult) error {
	if format == "text" {
		return render.TextBlocks(w, results)
	}

	if results == nil {
		results = []entities.NarrativeResult{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}
	return nil
}
