// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/AgenticAITest/prd-to-tasks-sub001/internal/extract"
	"github.com/AgenticAITest/prd-to-tasks-sub001/pkg/types"
)

var extractCmd = &cobra.Command{
	Use:   "extract [file]",
	Short: "Extract structured requirements from a PRD document",
	Long: `Extract scans a document for FR/BR/VR/SCR identifiers, links rules and
screens to their owning requirements, and prints the StructuredPRD as
YAML. With --batch every markdown file in --docs-dir is processed and
results are written to --out-dir/extracted/.`,
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().Bool("batch", false, "process all documents in docs-dir")
	extractCmd.Flags().String("docs-dir", "docs", "base directory for input documents")
	extractCmd.Flags().String("out-dir", "out", "base directory for extraction output")

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	batch, _ := cmd.Flags().GetBool("batch")

	if batch {
		docsDir, _ := cmd.Flags().GetString("docs-dir")
		outDir, _ := cmd.Flags().GetString("out-dir")
		cfg := types.ExtractionConfig{DocsDir: docsDir, OutDir: outDir}

		summary, err := extract.All(cfg, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\nextracted: %d, failed: %d\n", summary.Extracted, summary.Failed)
		if summary.HasFailures() {
			return fmt.Errorf("%d of %d documents failed", summary.Failed, summary.Total())
		}
		return nil
	}

	if len(args) != 1 {
		return fmt.Errorf("expected a document path (or --batch)")
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	prd := extract.PRD(string(data))
	prd.RawContent = "" // keep stdout output readable

	out, err := yaml.Marshal(prd)
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), string(out))
	return nil
}
