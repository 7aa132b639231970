// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/AgenticAITest/prd-to-tasks-sub001/internal/parser"
	"github.com/AgenticAITest/prd-to-tasks-sub001/pkg/types"
)

var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Parse a document into its section structure",
	Long: `Parse reads a markdown-flavoured document and prints its structural
view: the section tree plus counts of code blocks, tables, and lists.
With --yaml the full parsed structure is printed instead of the outline.`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().Bool("yaml", false, "print the full parsed structure as YAML")

	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	doc := parser.Parse(string(data))

	asYAML, _ := cmd.Flags().GetBool("yaml")
	if asYAML {
		out, err := yaml.Marshal(doc)
		if err != nil {
			return fmt.Errorf("marshaling document: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), string(out))
		return nil
	}

	printOutline(cmd, doc)
	return nil
}

func printOutline(cmd *cobra.Command, doc *types.ParsedDocument) {
	w := cmd.OutOrStdout()
	if doc.Title != "" {
		fmt.Fprintf(w, "%s\n\n", doc.Title)
	}
	for _, sec := range doc.Sections {
		title := sec.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", sec.Level-2), title)
		for _, child := range sec.Children {
			fmt.Fprintf(w, "  %s\n", child.Title)
		}
	}
	fmt.Fprintf(w, "\n%d sections, %d code blocks, %d tables, %d lists\n",
		len(doc.Sections), len(doc.CodeBlocks), len(doc.Tables), len(doc.Lists))
}
