package storage

import (
	"context"
	"fmt"
)

// schema works unchanged on both sqlite and postgres: TEXT primary
// keys hold uuid strings and questions are stored as a JSON document.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS quizzes (
		id TEXT PRIMARY KEY,
		teacher_id TEXT NOT NULL,
		title TEXT NOT NULL,
		subject TEXT NOT NULL DEFAULT '',
		grade TEXT NOT NULL DEFAULT '',
		topic TEXT NOT NULL DEFAULT '',
		summary TEXT NOT NULL DEFAULT '',
		questions TEXT NOT NULL DEFAULT '[]',
		question_count INTEGER NOT NULL DEFAULT 0,
		language TEXT NOT NULL DEFAULT '',
		difficulty TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'ready',
		source_type TEXT NOT NULL DEFAULT '',
		source_object TEXT NOT NULL DEFAULT '',
		file_name TEXT NOT NULL DEFAULT '',
		document_id TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_quizzes_teacher ON quizzes (teacher_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		teacher_id TEXT NOT NULL,
		name TEXT NOT NULL,
		mime_type TEXT NOT NULL DEFAULT '',
		object_path TEXT NOT NULL DEFAULT '',
		text TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_documents_teacher ON documents (teacher_id, created_at)`,
}

// EnsureSchema creates the tables and indexes if they do not exist.
func EnsureSchema(ctx context.Context, db DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
