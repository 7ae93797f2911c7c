// Package main provides the CLI entry point for sheetmeta.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sheetmeta/sheetmeta/pkg/sheetmeta"
	"github.com/sheetmeta/sheetmeta/pkg/sheetmeta/annotate"
	"github.com/sheetmeta/sheetmeta/pkg/sheetmeta/models"
	"github.com/sheetmeta/sheetmeta/pkg/sheetmeta/output"
)

var (
	outputPath string
	pretty     bool
	mode       string
	sheetsDir  string
	annotateAI bool
	envFile    string
	verboseLog bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "sheetmeta [input.xlsx]",
		Short: "Extract structural metadata from spreadsheet packages",
		Long: `sheetmeta extracts structural metadata (cells, drawing anchors, charts,
SmartArt diagrams, inferred table/text regions) from xlsx packages and
outputs JSON.`,
		Args: cobra.ExactArgs(1),
		RunE: run,
	}

	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: stdout)")
	rootCmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	rootCmd.Flags().StringVar(&mode, "mode", "standard", "Extraction mode: light, standard, verbose")
	rootCmd.Flags().StringVar(&sheetsDir, "sheets-dir", "", "Directory for per-sheet output files")
	rootCmd.Flags().BoolVar(&annotateAI, "annotate", false, "Annotate results via the OpenAI API")
	rootCmd.Flags().StringVar(&envFile, "env", "", "Environment file to load")
	rootCmd.Flags().BoolVarP(&verboseLog, "verbose", "v", false, "Verbose logging")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	inputPath := args[0]

	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", inputPath)
	}

	log := logrus.New()
	log.SetLevel(logrus.WarnLevel)
	if verboseLog {
		log.SetLevel(logrus.DebugLevel)
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			log.WithError(err).Warnf("could not load env file %s", envFile)
		}
	}

	var extractMode sheetmeta.Mode
	switch mode {
	case "light":
		extractMode = sheetmeta.ModeLight
	case "standard":
		extractMode = sheetmeta.ModeStandard
	case "verbose":
		extractMode = sheetmeta.ModeVerbose
	default:
		return fmt.Errorf("invalid mode: %s (must be light, standard, or verbose)", mode)
	}

	opts := sheetmeta.Options{
		Mode:   extractMode,
		Logger: log,
	}

	if annotateAI {
		apiKey := os.Getenv("SHEETMETA_OPENAI_API_KEY")
		if apiKey == "" {
			return fmt.Errorf("--annotate requires SHEETMETA_OPENAI_API_KEY")
		}
		opts.Annotator = annotate.New(apiKey, os.Getenv("SHEETMETA_OPENAI_MODEL"), log)
	}

	wb, err := sheetmeta.ExtractFile(cmd.Context(), inputPath, opts)
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	jsonData, err := output.ToJSON(wb, pretty)
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, jsonData, 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	} else if sheetsDir == "" {
		fmt.Println(string(jsonData))
	}

	if sheetsDir != "" {
		if err := writeSheetFiles(wb, sheetsDir); err != nil {
			return fmt.Errorf("failed to write sheet files: %w", err)
		}
	}

	return nil
}

func writeSheetFiles(wb *models.WorkbookMetadata, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	for i := range wb.Sheets {
		sheet := &wb.Sheets[i]
		jsonData, err := output.SheetToJSON(sheet, pretty)
		if err != nil {
			return err
		}

		filename := filepath.Join(dir, sheet.Name+".json")
		if err := os.WriteFile(filename, jsonData, 0644); err != nil {
			return err
		}
	}

	return nil
}
