// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists extracted requirements and entity graphs in a
// SQLite database and builds a retrieval index over requirement text.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/AgenticAITest/prd-to-tasks-sub001/pkg/types"
)

const (
	indexDir = "index"
	dbFile   = "prd.db"
)

// Store manages the extraction model SQLite database.
type Store struct {
	db         *sql.DB
	outDir     string
	maxResults int
}

// New opens or creates the model database at cfg.OutDir/index/prd.db and
// creates the schema if it does not exist.
func New(cfg types.StoreConfig) (*Store, error) {
	dbDir := filepath.Join(cfg.OutDir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{
		db:         db,
		outDir:     cfg.OutDir,
		maxResults: maxResults,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			title TEXT,
			stored_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS requirements (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL,
			doc_id TEXT NOT NULL REFERENCES documents(id),
			title TEXT,
			description TEXT,
			priority TEXT,
			is_workflow INTEGER,
			acceptance_criteria TEXT,
			involved_entities TEXT,
			UNIQUE(doc_id, id)
		)`,
		`CREATE TABLE IF NOT EXISTS rules (
			id TEXT NOT NULL,
			doc_id TEXT NOT NULL REFERENCES documents(id),
			fr_id TEXT NOT NULL,
			name TEXT,
			type TEXT,
			description TEXT,
			formula TEXT,
			error_message TEXT,
			UNIQUE(doc_id, id)
		)`,
		`CREATE TABLE IF NOT EXISTS screens (
			id TEXT NOT NULL,
			doc_id TEXT NOT NULL REFERENCES documents(id),
			fr_id TEXT NOT NULL,
			name TEXT,
			type TEXT,
			route TEXT,
			field_mappings TEXT,
			actions TEXT,
			UNIQUE(doc_id, id)
		)`,
		`CREATE TABLE IF NOT EXISTS entities (
			id TEXT PRIMARY KEY,
			doc_id TEXT NOT NULL REFERENCES documents(id),
			name TEXT NOT NULL,
			table_name TEXT,
			type TEXT,
			is_auditable INTEGER,
			is_soft_delete INTEGER,
			source TEXT,
			confidence REAL,
			fields TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS relationships (
			id TEXT PRIMARY KEY,
			doc_id TEXT NOT NULL REFERENCES documents(id),
			name TEXT,
			type TEXT,
			from_endpoint TEXT,
			to_endpoint TEXT,
			source TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_requirements_doc ON requirements(doc_id)`,
		`CREATE INDEX IF NOT EXISTS idx_entities_doc ON entities(doc_id)`,
		`CREATE INDEX IF NOT EXISTS idx_entities_name ON entities(name)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table over requirement text with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='requirements_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE requirements_fts USING fts5(title, description, content=requirements, content_rowid=rowid)`,
			`CREATE TRIGGER requirements_ai AFTER INSERT ON requirements BEGIN
				INSERT INTO requirements_fts(rowid, title, description) VALUES (new.rowid, new.title, new.description);
			END`,
			`CREATE TRIGGER requirements_ad AFTER DELETE ON requirements BEGIN
				INSERT INTO requirements_fts(requirements_fts, rowid, title, description) VALUES('delete', old.rowid, old.title, old.description);
			END`,
			`CREATE TRIGGER requirements_au AFTER UPDATE ON requirements BEGIN
				INSERT INTO requirements_fts(requirements_fts, rowid, title, description) VALUES('delete', old.rowid, old.title, old.description);
				INSERT INTO requirements_fts(rowid, title, description) VALUES (new.rowid, new.title, new.description);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// Save stores one document's extraction output in a single transaction,
// replacing any prior rows for the same document ID.
func (s *Store) Save(ctx context.Context, docID string, prd *types.StructuredPRD, graph *types.EntityGraph) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"requirements", "rules", "screens", "entities", "relationships"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE doc_id = ?`, docID); err != nil {
			return fmt.Errorf("deleting old %s: %w", table, err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO documents (id, title, stored_at) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET title=excluded.title, stored_at=excluded.stored_at`,
		docID, prd.Title, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upserting document: %w", err)
	}

	if err := insertRequirements(ctx, tx, docID, prd.FunctionalRequirements); err != nil {
		return err
	}

	if graph != nil {
		if err := insertGraph(ctx, tx, docID, graph); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func insertRequirements(ctx context.Context, tx *sql.Tx, docID string, frs []types.FunctionalRequirement) error {
	frStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO requirements (id, doc_id, title, description, priority, is_workflow, acceptance_criteria, involved_entities)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing requirement insert: %w", err)
	}
	defer frStmt.Close()

	ruleStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO rules (id, doc_id, fr_id, name, type, description, formula, error_message)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing rule insert: %w", err)
	}
	defer ruleStmt.Close()

	scrStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO screens (id, doc_id, fr_id, name, type, route, field_mappings, actions)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing screen insert: %w", err)
	}
	defer scrStmt.Close()

	for _, fr := range frs {
		acJSON, _ := json.Marshal(fr.AcceptanceCriteria)
		entJSON, _ := json.Marshal(fr.InvolvedEntities)
		if _, err := frStmt.ExecContext(ctx,
			fr.ID, docID, fr.Title, fr.Description, string(fr.Priority),
			fr.IsWorkflow, string(acJSON), string(entJSON),
		); err != nil {
			return fmt.Errorf("inserting requirement %s: %w", fr.ID, err)
		}

		for _, rule := range fr.BusinessRules {
			if _, err := ruleStmt.ExecContext(ctx,
				rule.ID, docID, fr.ID, rule.Name, string(rule.Type),
				rule.Description, rule.Formula, rule.ErrorMessage,
			); err != nil {
				return fmt.Errorf("inserting rule %s: %w", rule.ID, err)
			}
		}

		for _, scr := range fr.Screens {
			fmJSON, _ := json.Marshal(scr.FieldMappings)
			actJSON, _ := json.Marshal(scr.Actions)
			if _, err := scrStmt.ExecContext(ctx,
				scr.ID, docID, fr.ID, scr.Name, string(scr.Type),
				scr.Route, string(fmJSON), string(actJSON),
			); err != nil {
				return fmt.Errorf("inserting screen %s: %w", scr.ID, err)
			}
		}
	}

	return nil
}

func insertGraph(ctx context.Context, tx *sql.Tx, docID string, graph *types.EntityGraph) error {
	entStmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO entities (id, doc_id, name, table_name, type, is_auditable, is_soft_delete, source, confidence, fields)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing entity insert: %w", err)
	}
	defer entStmt.Close()

	for _, e := range graph.Entities {
		fieldsJSON, _ := json.Marshal(e.Fields)
		if _, err := entStmt.ExecContext(ctx,
			e.ID, docID, e.Name, e.TableName, string(e.Type),
			e.IsAuditable, e.IsSoftDelete, string(e.Source), e.Confidence,
			string(fieldsJSON),
		); err != nil {
			return fmt.Errorf("inserting entity %s: %w", e.Name, err)
		}
	}

	relStmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO relationships (id, doc_id, name, type, from_endpoint, to_endpoint, source)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing relationship insert: %w", err)
	}
	defer relStmt.Close()

	for _, r := range graph.Relationships {
		fromJSON, _ := json.Marshal(r.From)
		toJSON, _ := json.Marshal(r.To)
		if _, err := relStmt.ExecContext(ctx,
			r.ID, docID, r.Name, string(r.Type),
			string(fromJSON), string(toJSON), string(r.Source),
		); err != nil {
			return fmt.Errorf("inserting relationship %s: %w", r.ID, err)
		}
	}

	return nil
}
