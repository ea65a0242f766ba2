package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrNotFound = errors.New("record not found")
)

// DB represents a database connection interface.
type DB interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// QuizRepository handles quiz CRUD operations.
type QuizRepository struct {
	db DB
}

// NewQuizRepository creates a new quiz repository.
func NewQuizRepository(db DB) *QuizRepository {
	return &QuizRepository{db: db}
}

// Create inserts a new quiz.
func (r *QuizRepository) Create(ctx context.Context, quiz *Quiz) error {
	if quiz.ID == uuid.Nil {
		quiz.ID = uuid.New()
	}
	if quiz.Status == "" {
		quiz.Status = QuizStatusReady
	}
	quiz.QuestionCount = len(quiz.Questions)
	quiz.CreatedAt = time.Now()
	quiz.UpdatedAt = time.Now()

	query := `
		INSERT INTO quizzes (id, teacher_id, title, subject, grade, topic, summary,
			questions, question_count, language, difficulty, status, source_type,
			source_object, file_name, document_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`
	_, err := r.db.ExecContext(ctx, query,
		quiz.ID, quiz.TeacherID, quiz.Title, quiz.Subject, quiz.Grade, quiz.Topic,
		quiz.Summary, quiz.Questions, quiz.QuestionCount, quiz.Language,
		quiz.Difficulty, quiz.Status, quiz.SourceType, quiz.SourceObject,
		quiz.FileName, quiz.DocumentID, quiz.CreatedAt, quiz.UpdatedAt,
	)
	return err
}

// GetByID retrieves a quiz by ID with teacher scoping.
func (r *QuizRepository) GetByID(ctx context.Context, teacherID string, quizID uuid.UUID) (*Quiz, error) {
	query := `
		SELECT id, teacher_id, title, subject, grade, topic, summary,
			questions, question_count, language, difficulty, status, source_type,
			source_object, file_name, document_id, created_at, updated_at
		FROM quizzes
		WHERE id = $1 AND teacher_id = $2
	`
	quiz := &Quiz{}
	err := r.db.QueryRowContext(ctx, query, quizID, teacherID).Scan(
		&quiz.ID, &quiz.TeacherID, &quiz.Title, &quiz.Subject, &quiz.Grade, &quiz.Topic,
		&quiz.Summary, &quiz.Questions, &quiz.QuestionCount, &quiz.Language,
		&quiz.Difficulty, &quiz.Status, &quiz.SourceType, &quiz.SourceObject,
		&quiz.FileName, &quiz.DocumentID, &quiz.CreatedAt, &quiz.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return quiz, err
}

// ListByTeacher lists all quizzes for a teacher, newest first. The
// questions column is omitted to keep list responses small.
func (r *QuizRepository) ListByTeacher(ctx context.Context, teacherID string) ([]*Quiz, error) {
	query := `
		SELECT id, teacher_id, title, subject, grade, topic, summary,
			question_count, language, difficulty, status, source_type,
			source_object, file_name, document_id, created_at, updated_at
		FROM quizzes
		WHERE teacher_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, teacherID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var quizzes []*Quiz
	for rows.Next() {
		quiz := &Quiz{}
		if err := rows.Scan(
			&quiz.ID, &quiz.TeacherID, &quiz.Title, &quiz.Subject, &quiz.Grade, &quiz.Topic,
			&quiz.Summary, &quiz.QuestionCount, &quiz.Language, &quiz.Difficulty,
			&quiz.Status, &quiz.SourceType, &quiz.SourceObject, &quiz.FileName,
			&quiz.DocumentID, &quiz.CreatedAt, &quiz.UpdatedAt,
		); err != nil {
			return nil, err
		}
		quizzes = append(quizzes, quiz)
	}
	return quizzes, rows.Err()
}

// UpdateStatus transitions a quiz to a new lifecycle state.
func (r *QuizRepository) UpdateStatus(ctx context.Context, teacherID string, quizID uuid.UUID, status QuizStatus) error {
	query := `
		UPDATE quizzes SET status = $1, updated_at = $2
		WHERE id = $3 AND teacher_id = $4
	`
	result, err := r.db.ExecContext(ctx, query, status, time.Now(), quizID, teacherID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// ListObjectPaths returns every source_object path referenced by any
// quiz. Used by reconciliation to decide which uploads are orphaned.
func (r *QuizRepository) ListObjectPaths(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT source_object FROM quizzes WHERE source_object != ''
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

// DocumentRepository handles document CRUD operations.
type DocumentRepository struct {
	db DB
}

// NewDocumentRepository creates a new document repository.
func NewDocumentRepository(db DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Create inserts a new document.
func (r *DocumentRepository) Create(ctx context.Context, doc *Document) error {
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	doc.CreatedAt = time.Now()

	query := `
		INSERT INTO documents (id, teacher_id, name, mime_type, object_path, text, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		doc.ID, doc.TeacherID, doc.Name, doc.MIMEType, doc.ObjectPath, doc.Text, doc.CreatedAt,
	)
	return err
}

// GetByID retrieves a document by ID.
func (r *DocumentRepository) GetByID(ctx context.Context, id uuid.UUID) (*Document, error) {
	query := `
		SELECT id, teacher_id, name, mime_type, object_path, text, created_at
		FROM documents WHERE id = $1
	`
	doc := &Document{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&doc.ID, &doc.TeacherID, &doc.Name, &doc.MIMEType, &doc.ObjectPath,
		&doc.Text, &doc.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return doc, err
}

// ListByTeacher lists documents for a teacher, newest first.
func (r *DocumentRepository) ListByTeacher(ctx context.Context, teacherID string) ([]*Document, error) {
	query := `
		SELECT id, teacher_id, name, mime_type, object_path, text, created_at
		FROM documents
		WHERE teacher_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, teacherID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*Document
	for rows.Next() {
		doc := &Document{}
		if err := rows.Scan(
			&doc.ID, &doc.TeacherID, &doc.Name, &doc.MIMEType, &doc.ObjectPath,
			&doc.Text, &doc.CreatedAt,
		); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// ListObjectPaths returns every object_path referenced by any document.
func (r *DocumentRepository) ListObjectPaths(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT object_path FROM documents WHERE object_path != ''
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

// Repositories bundles all repositories together.
type Repositories struct {
	Quizzes   *QuizRepository
	Documents *DocumentRepository
}

// NewRepositories creates all repositories with the given database connection.
func NewRepositories(db DB) *Repositories {
	return &Repositories{
		Quizzes:   NewQuizRepository(db),
		Documents: NewDocumentRepository(db),
	}
}
