// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/AgenticAITest/prd-to-tasks-sub001/internal/extract"
	"github.com/AgenticAITest/prd-to-tasks-sub001/pkg/types"
)

var entitiesCmd = &cobra.Command{
	Use:   "entities [file]",
	Short: "Derive a normalized entity graph from a PRD document",
	Long: `Entities builds the data model for a PRD: declared entities, entities
implied by screen field mappings, and (with --ai) entities extracted by
a Claude model. All candidates are normalized, merged, and checked for
referential consistency. The resulting graph is written to
--out-dir/entities/<name>-entities.yaml, or to stdout with --stdout.`,
	Args: cobra.ExactArgs(1),
	RunE: runEntities,
}

func init() {
	entitiesCmd.Flags().Bool("ai", false, "enable model-assisted entity extraction")
	entitiesCmd.Flags().String("model", "claude-sonnet-4-5-20250929", "AI model identifier")
	entitiesCmd.Flags().String("api-key", "", "AI API key (default: .secrets/anthropic-api-key)")
	entitiesCmd.Flags().Int("max-retries", 3, "retry attempts for failed API calls")
	entitiesCmd.Flags().String("out-dir", "out", "base directory for entity graph output")
	entitiesCmd.Flags().Bool("stdout", false, "print the graph to stdout instead of writing a file")

	rootCmd.AddCommand(entitiesCmd)
}

// entityConfig assembles the stage configuration from flags, viper, and
// loaded secrets.
func entityConfig(cmd *cobra.Command) types.EntityConfig {
	model, _ := cmd.Flags().GetString("model")
	apiKey, _ := cmd.Flags().GetString("api-key")
	maxRetries, _ := cmd.Flags().GetInt("max-retries")
	outDir, _ := cmd.Flags().GetString("out-dir")
	useAI, _ := cmd.Flags().GetBool("ai")

	if v := viper.GetString("entities.model"); v != "" && !cmd.Flags().Changed("model") {
		model = v
	}

	return types.EntityConfig{
		AIConfig: types.AIConfig{
			Model:      model,
			APIKey:     secretDefault("anthropic-api-key", apiKey),
			MaxRetries: maxRetries,
		},
		HTTPConfig: types.HTTPConfig{
			Timeout:   2 * time.Minute,
			UserAgent: "prd-engine/" + version,
		},
		OutDir: outDir,
		UseAI:  useAI,
	}
}

func runEntities(cmd *cobra.Command, args []string) error {
	cfg := entityConfig(cmd)

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	prd := extract.PRD(string(data))

	var graph *types.EntityGraph
	if cfg.UseAI {
		if cfg.APIKey == "" {
			return fmt.Errorf("--ai requires an API key (flag --api-key or .secrets/anthropic-api-key)")
		}
		backend := &extract.ClaudeBackend{
			APIKey: cfg.APIKey,
			Model:  cfg.Model,
			Client: &http.Client{Timeout: cfg.Timeout},
		}
		graph, err = extract.EntityGraph(cmd.Context(), backend, prd, cfg.MaxRetries)
		if err != nil {
			return fmt.Errorf("extracting entities: %w", err)
		}
	} else {
		var screens []types.Screen
		for _, fr := range prd.FunctionalRequirements {
			screens = append(screens, fr.Screens...)
		}
		graph = extract.Graph(extract.GraphInput{
			Declared: prd.DataRequirements.Entities,
			Screens:  screens,
		})
	}

	out, err := yaml.Marshal(graph)
	if err != nil {
		return fmt.Errorf("marshaling graph: %w", err)
	}

	toStdout, _ := cmd.Flags().GetBool("stdout")
	if toStdout {
		fmt.Fprint(cmd.OutOrStdout(), string(out))
		return nil
	}

	entitiesDir := filepath.Join(cfg.OutDir, "entities")
	if err := os.MkdirAll(entitiesDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	base := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
	outPath := filepath.Join(entitiesDir, base+"-entities.yaml")
	if err := os.WriteFile(outPath, out, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", outPath, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d entities, %d relationships to %s\n",
		len(graph.Entities), len(graph.Relationships), outPath)
	for _, w := range graph.Warnings {
		fmt.Fprintf(cmd.OutOrStdout(), "warning [%s]: %s\n", w.Code, w.Message)
	}
	return nil
}
