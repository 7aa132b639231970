// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/AgenticAITest/prd-to-tasks-sub001/pkg/types"
)

// QueryOptions holds parameters for requirement queries.
type QueryOptions struct {
	// Query is the FTS5 full-text search string over title and
	// description.
	Query string

	// Priority filters by requirement priority.
	Priority types.Priority

	// DocID filters by document.
	DocID string

	// WorkflowOnly keeps only workflow requirements.
	WorkflowOnly bool

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Query == "" && q.Priority == "" && q.DocID == "" && !q.WorkflowOnly
}

// QueryResult is a stored requirement with its document title and child
// counts.
type QueryResult struct {
	types.FunctionalRequirement `yaml:",inline"`

	DocID       string `json:"doc_id" yaml:"doc_id"`
	DocTitle    string `json:"doc_title" yaml:"doc_title"`
	RuleCount   int    `json:"rule_count" yaml:"rule_count"`
	ScreenCount int    `json:"screen_count" yaml:"screen_count"`
}

// Requirements queries stored requirements with optional full-text
// search and structured filters. Full-text queries rank by relevance;
// structured-only queries sort by document and requirement ID.
func (s *Store) Requirements(ctx context.Context, opts QueryOptions) ([]QueryResult, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = opts.Query != ""
	)

	if useFTS {
		qb.WriteString(
			`SELECT r.id, r.doc_id, r.title, r.description, r.priority, r.is_workflow,
				r.acceptance_criteria, r.involved_entities, d.title,
				(SELECT count(*) FROM rules WHERE rules.doc_id = r.doc_id AND rules.fr_id = r.id),
				(SELECT count(*) FROM screens WHERE screens.doc_id = r.doc_id AND screens.fr_id = r.id)
			FROM requirements_fts
			JOIN requirements r ON r.rowid = requirements_fts.rowid
			LEFT JOIN documents d ON r.doc_id = d.id
			WHERE requirements_fts MATCH ?`)
		args = append(args, opts.Query)
	} else {
		qb.WriteString(
			`SELECT r.id, r.doc_id, r.title, r.description, r.priority, r.is_workflow,
				r.acceptance_criteria, r.involved_entities, d.title,
				(SELECT count(*) FROM rules WHERE rules.doc_id = r.doc_id AND rules.fr_id = r.id),
				(SELECT count(*) FROM screens WHERE screens.doc_id = r.doc_id AND screens.fr_id = r.id)
			FROM requirements r
			LEFT JOIN documents d ON r.doc_id = d.id
			WHERE 1=1`)
	}

	if opts.Priority != "" {
		qb.WriteString(` AND r.priority = ?`)
		args = append(args, string(opts.Priority))
	}
	if opts.DocID != "" {
		qb.WriteString(` AND r.doc_id = ?`)
		args = append(args, opts.DocID)
	}
	if opts.WorkflowOnly {
		qb.WriteString(` AND r.is_workflow = 1`)
	}

	if useFTS {
		qb.WriteString(` ORDER BY requirements_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY r.doc_id, r.id`)
	}

	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying requirements: %w", err)
	}
	defer rows.Close()

	var results []QueryResult
	for rows.Next() {
		var (
			qr       QueryResult
			priority string
			acJSON   sql.NullString
			entJSON  sql.NullString
			docTitle sql.NullString
		)

		if err := rows.Scan(
			&qr.ID, &qr.DocID, &qr.Title, &qr.Description, &priority, &qr.IsWorkflow,
			&acJSON, &entJSON, &docTitle, &qr.RuleCount, &qr.ScreenCount,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		qr.Priority = types.Priority(priority)
		if acJSON.Valid {
			json.Unmarshal([]byte(acJSON.String), &qr.AcceptanceCriteria)
		}
		if entJSON.Valid {
			json.Unmarshal([]byte(entJSON.String), &qr.InvolvedEntities)
		}
		if docTitle.Valid {
			qr.DocTitle = docTitle.String
		}

		results = append(results, qr)
	}

	return results, rows.Err()
}

// Entities returns the stored entity graph for a document, or for all
// documents when docID is empty.
func (s *Store) Entities(ctx context.Context, docID string) ([]types.Entity, error) {
	query := `SELECT id, name, table_name, type, is_auditable, is_soft_delete, source, confidence, fields
		FROM entities`
	var args []any
	if docID != "" {
		query += ` WHERE doc_id = ?`
		args = append(args, docID)
	}
	query += ` ORDER BY name`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying entities: %w", err)
	}
	defer rows.Close()

	var entities []types.Entity
	for rows.Next() {
		var (
			e          types.Entity
			etype      string
			source     string
			fieldsJSON sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.Name, &e.TableName, &etype,
			&e.IsAuditable, &e.IsSoftDelete, &source, &e.Confidence, &fieldsJSON); err != nil {
			return nil, fmt.Errorf("scanning entity: %w", err)
		}
		e.Type = types.EntityType(etype)
		e.Source = types.SourceType(source)
		if fieldsJSON.Valid {
			json.Unmarshal([]byte(fieldsJSON.String), &e.Fields)
		}
		entities = append(entities, e)
	}

	return entities, rows.Err()
}

// Relationships returns the stored relationships for a document, or for
// all documents when docID is empty.
func (s *Store) Relationships(ctx context.Context, docID string) ([]types.Relationship, error) {
	query := `SELECT id, name, type, from_endpoint, to_endpoint, source FROM relationships`
	var args []any
	if docID != "" {
		query += ` WHERE doc_id = ?`
		args = append(args, docID)
	}
	query += ` ORDER BY name`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying relationships: %w", err)
	}
	defer rows.Close()

	var rels []types.Relationship
	for rows.Next() {
		var (
			r        types.Relationship
			rtype    string
			source   string
			fromJSON sql.NullString
			toJSON   sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.Name, &rtype, &fromJSON, &toJSON, &source); err != nil {
			return nil, fmt.Errorf("scanning relationship: %w", err)
		}
		r.Type = types.RelationType(rtype)
		r.Source = types.SourceType(source)
		if fromJSON.Valid {
			json.Unmarshal([]byte(fromJSON.String), &r.From)
		}
		if toJSON.Valid {
			json.Unmarshal([]byte(toJSON.String), &r.To)
		}
		rels = append(rels, r)
	}

	return rels, rows.Err()
}
