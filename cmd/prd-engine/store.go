// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/AgenticAITest/prd-to-tasks-sub001/internal/extract"
	"github.com/AgenticAITest/prd-to-tasks-sub001/internal/store"
	"github.com/AgenticAITest/prd-to-tasks-sub001/pkg/types"
)

var storeCmd = &cobra.Command{
	Use:   "store <file>...",
	Short: "Extract documents and index them in the model store",
	Long: `Store runs extraction and entity derivation on each document and writes
the results to the SQLite index under --out-dir/index/. Requirement
titles and descriptions are indexed for full-text search; re-storing a
document replaces its previous records.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runStore,
}

var queryCmd = &cobra.Command{
	Use:   "query [search terms]",
	Short: "Query stored requirements",
	Long: `Query searches stored requirements. Positional arguments form an FTS5
full-text query over titles and descriptions; --priority, --doc, and
--workflow filter structurally. With no arguments or filters, all
requirements are listed up to --max-results.`,
	RunE: runQuery,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the full stored model",
	Long: `Export writes every stored requirement, entity, and relationship to
--out-dir/index/export.yaml (or export.json with --format json).`,
	RunE: runExport,
}

func init() {
	for _, c := range []*cobra.Command{storeCmd, queryCmd, exportCmd} {
		c.Flags().String("out-dir", "out", "base directory for the store")
	}
	queryCmd.Flags().String("priority", "", "filter by priority (must, should, could, wont)")
	queryCmd.Flags().String("doc", "", "filter by document ID")
	queryCmd.Flags().Bool("workflow", false, "only workflow requirements")
	queryCmd.Flags().Int("max-results", 0, "maximum results (default from config)")
	queryCmd.Flags().Bool("yaml", false, "print full results as YAML")
	exportCmd.Flags().String("format", "yaml", "export format (yaml or json)")

	rootCmd.AddCommand(storeCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(exportCmd)
}

// storeConfig assembles the store configuration from flags and viper.
func storeConfig(cmd *cobra.Command) types.StoreConfig {
	outDir, _ := cmd.Flags().GetString("out-dir")
	maxResults := viper.GetInt("store.max_results")
	if maxResults <= 0 {
		maxResults = 20
	}
	return types.StoreConfig{OutDir: outDir, MaxResults: maxResults}
}

func runStore(cmd *cobra.Command, args []string) error {
	st, err := store.New(storeConfig(cmd))
	if err != nil {
		return err
	}
	defer st.Close()

	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}

		prd := extract.PRD(string(data))

		var screens []types.Screen
		for _, fr := range prd.FunctionalRequirements {
			screens = append(screens, fr.Screens...)
		}
		graph := extract.Graph(extract.GraphInput{
			Declared: prd.DataRequirements.Entities,
			Screens:  screens,
		})

		docID := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		if err := st.Save(cmd.Context(), docID, prd, graph); err != nil {
			return fmt.Errorf("storing %s: %w", docID, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Stored %s: %d requirements, %d entities\n",
			docID, len(prd.FunctionalRequirements), len(graph.Entities))
	}
	return nil
}

func runQuery(cmd *cobra.Command, args []string) error {
	st, err := store.New(storeConfig(cmd))
	if err != nil {
		return err
	}
	defer st.Close()

	priority, _ := cmd.Flags().GetString("priority")
	docID, _ := cmd.Flags().GetString("doc")
	workflowOnly, _ := cmd.Flags().GetBool("workflow")
	maxResults, _ := cmd.Flags().GetInt("max-results")

	results, err := st.Requirements(cmd.Context(), store.QueryOptions{
		Query:        strings.Join(args, " "),
		Priority:     types.Priority(priority),
		DocID:        docID,
		WorkflowOnly: workflowOnly,
		MaxResults:   maxResults,
	})
	if err != nil {
		return err
	}

	asYAML, _ := cmd.Flags().GetBool("yaml")
	if asYAML {
		out, err := yaml.Marshal(results)
		if err != nil {
			return fmt.Errorf("marshaling results: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), string(out))
		return nil
	}

	if len(results) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No requirements found.")
		return nil
	}
	for _, r := range results {
		fmt.Fprintf(cmd.OutOrStdout(), "%s/%s [%s] %s (%d rules, %d screens)\n",
			r.DocID, r.ID, r.Priority, r.Title, r.RuleCount, r.ScreenCount)
	}
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	st, err := store.New(storeConfig(cmd))
	if err != nil {
		return err
	}
	defer st.Close()

	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "yaml":
		err = st.ExportYAML(cmd.Context())
	case "json":
		err = st.ExportJSON(cmd.Context())
	default:
		return fmt.Errorf("unknown format %q (want yaml or json)", format)
	}
	if err != nil {
		return err
	}

	outDir, _ := cmd.Flags().GetString("out-dir")
	fmt.Fprintf(cmd.OutOrStdout(), "Exported model to %s\n",
		filepath.Join(outDir, "index", "export."+format))
	return nil
}
