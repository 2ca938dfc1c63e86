/*
Copyright © 2025 Your Name

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"asogen/internal/config"
	"asogen/internal/core"
	"asogen/internal/llm"
	"asogen/internal/logger"
	"asogen/internal/orchestrator"
)

var (
	generateInput    string
	generateAppName  string
	generateLanguage string
	generateFeatures []string
	generateOutput   string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the five listing fields from a keyword ranking CSV",
	Long: `Generate reads a keyword ranking table (CSV with keyword, ranking,
popularity and difficulty columns), selects the primary keyword and
composes the keyword field, title, subtitle, description and what's-new
text for the requested language.

The result is written as JSON to stdout, or to the file given with
--output.`,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVarP(&generateInput, "input", "i", "", "path to the keyword ranking CSV (required)")
	generateCmd.Flags().StringVarP(&generateAppName, "app-name", "a", "", "app name used in title and prompts (required)")
	generateCmd.Flags().StringVarP(&generateLanguage, "language", "l", "en", "target language (ja or en)")
	generateCmd.Flags().StringSliceVarP(&generateFeatures, "feature", "f", nil, "app feature, repeatable (required)")
	generateCmd.Flags().StringVarP(&generateOutput, "output", "o", "", "write the JSON result to this file instead of stdout")
	generateCmd.MarkFlagRequired("input")
	generateCmd.MarkFlagRequired("app-name")
	generateCmd.MarkFlagRequired("feature")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	logger.SetLevel(cfg.App.LogLevel)

	table, err := readTable(generateInput)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	client, err := llm.NewClient(ctx, cfg.Gemini)
	if err != nil {
		return err
	}
	orch, err := orchestrator.New(cfg, client)
	if err != nil {
		return err
	}

	result, err := orch.GenerateAll(ctx, core.GenerationRequest{
		Table:    table,
		AppName:  generateAppName,
		Features: generateFeatures,
		Language: generateLanguage,
	})
	if err != nil {
		return err
	}

	return writeResult(result, generateOutput)
}

// readTable loads a CSV file into a raw table: first record is the column
// header, the rest are data rows. Cell-level parsing and validation happen
// downstream.
func readTable(path string) (core.RawTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return core.RawTable{}, fmt.Errorf("failed to open input file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // row width is validated downstream, with row numbers
	records, err := reader.ReadAll()
	if err != nil {
		return core.RawTable{}, fmt.Errorf("failed to parse CSV %s: %w", path, err)
	}
	if len(records) == 0 {
		return core.RawTable{}, fmt.Errorf("input file %s is empty", path)
	}

	return core.RawTable{
		Columns: records[0],
		Rows:    records[1:],
	}, nil
}

func writeResult(result *core.GenerationResult, path string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	data = append(data, '\n')

	if path == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write result to %s: %w", path, err)
	}
	fmt.Fprintln(os.Stderr, "Result written to", path)
	return nil
}
