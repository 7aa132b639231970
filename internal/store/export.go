// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/AgenticAITest/prd-to-tasks-sub001/pkg/types"
)

// ExportModel is the serialized shape of the whole store: requirements
// with their documents plus the entity graph.
type ExportModel struct {
	Requirements  []QueryResult        `json:"requirements" yaml:"requirements"`
	Entities      []types.Entity       `json:"entities" yaml:"entities"`
	Relationships []types.Relationship `json:"relationships" yaml:"relationships"`
}

const exportLimit = 100000

// ExportYAML writes the full model to outDir/index/export.yaml.
func (s *Store) ExportYAML(ctx context.Context) error {
	model, err := s.exportModel(ctx)
	if err != nil {
		return err
	}

	path := filepath.Join(s.outDir, indexDir, "export.yaml")
	data, err := yaml.Marshal(model)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ExportJSON writes the full model to outDir/index/export.json.
func (s *Store) ExportJSON(ctx context.Context) error {
	model, err := s.exportModel(ctx)
	if err != nil {
		return err
	}

	path := filepath.Join(s.outDir, indexDir, "export.json")
	data, err := json.MarshalIndent(model, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func (s *Store) exportModel(ctx context.Context) (*ExportModel, error) {
	reqs, err := s.Requirements(ctx, QueryOptions{MaxResults: exportLimit})
	if err != nil {
		return nil, fmt.Errorf("querying requirements for export: %w", err)
	}
	entities, err := s.Entities(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("querying entities for export: %w", err)
	}
	rels, err := s.Relationships(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("querying relationships for export: %w", err)
	}

	return &ExportModel{
		Requirements:  reqs,
		Entities:      entities,
		Relationships: rels,
	}, nil
}
