package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/rahulbansod519/k8s-prometheus-analyzer/pkg/models"
)

//go:embed migrations/*.sql
var postgresFS embed.FS

// PostgresStore implements Store interface using PostgreSQL
type PostgresStore struct {
	db  *sql.DB
	dsn string
}

// NewPostgresStore creates a new PostgreSQL store
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &PostgresStore{
		db:  db,
		dsn: dsn,
	}

	if err := store.migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// migrate runs database migrations
func (s *PostgresStore) migrate() error {
	schema, err := postgresFS.ReadFile("migrations/001_postgres_schema.sql")
	if err != nil {
		return fmt.Errorf("failed to read schema: %w", err)
	}

	if _, err := s.db.Exec(string(schema)); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	return nil
}

// SaveSuggestion saves a suggestion
func (s *PostgresStore) SaveSuggestion(ctx context.Context, sg *models.Suggestion) error {
	if sg.ID == "" {
		sg.ID = uuid.New().String()
	}
	if sg.CreatedAt.IsZero() {
		sg.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO suggestions (
			id, namespace, pod,
			cpu_usage_cores, cpu_utilization,
			memory_usage_bytes, memory_utilization,
			actions, reasons, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := s.db.ExecContext(ctx, query,
		sg.ID, sg.Workload.Namespace, sg.Workload.Pod,
		sg.CPUUsageCores, sg.CPUUtilization,
		sg.MemoryUsageBytes, sg.MemoryUtilization,
		joinActions(sg.Actions), strings.Join(sg.Reasons, "; "), sg.CreatedAt,
	)

	return err
}

// GetSuggestion retrieves a suggestion by ID
func (s *PostgresStore) GetSuggestion(ctx context.Context, id string) (*models.Suggestion, error) {
	query := `
		SELECT id, namespace, pod,
			cpu_usage_cores, cpu_utilization,
			memory_usage_bytes, memory_utilization,
			actions, reasons, created_at
		FROM suggestions
		WHERE id = $1
	`

	sg, err := scanSuggestion(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("suggestion not found: %s", id)
	}
	if err != nil {
		return nil, err
	}

	return sg, nil
}

// ListSuggestions retrieves suggestions for a namespace, newest first
func (s *PostgresStore) ListSuggestions(ctx context.Context, namespace string, limit int) ([]*models.Suggestion, error) {
	query := `
		SELECT id, namespace, pod,
			cpu_usage_cores, cpu_utilization,
			memory_usage_bytes, memory_utilization,
			actions, reasons, created_at
		FROM suggestions
		WHERE namespace = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := s.db.QueryContext(ctx, query, namespace, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var suggestions []*models.Suggestion
	for rows.Next() {
		sg, err := scanSuggestion(rows)
		if err != nil {
			return nil, err
		}
		suggestions = append(suggestions, sg)
	}

	return suggestions, rows.Err()
}

// LogAction logs an action to the audit trail
func (s *PostgresStore) LogAction(ctx context.Context, entry *models.AuditEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.ExecutedAt.IsZero() {
		entry.ExecutedAt = time.Now()
	}

	query := `
		INSERT INTO audit_log (
			id, suggestion_id, action, status,
			error_message, executed_by, executed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := s.db.ExecContext(ctx, query,
		entry.ID, entry.SuggestionID, entry.Action, entry.Status,
		entry.ErrorMessage, entry.ExecutedBy, entry.ExecutedAt,
	)

	return err
}

// GetAuditLog retrieves audit log entries for a suggestion
func (s *PostgresStore) GetAuditLog(ctx context.Context, suggestionID string) ([]*models.AuditEntry, error) {
	query := `
		SELECT id, suggestion_id, action, status,
			error_message, executed_by, executed_at
		FROM audit_log
		WHERE suggestion_id = $1
		ORDER BY executed_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, suggestionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.AuditEntry
	for rows.Next() {
		var entry models.AuditEntry
		var errorMessage, executedBy sql.NullString

		err := rows.Scan(
			&entry.ID, &entry.SuggestionID, &entry.Action, &entry.Status,
			&errorMessage, &executedBy, &entry.ExecutedAt,
		)
		if err != nil {
			return nil, err
		}

		entry.ErrorMessage = errorMessage.String
		entry.ExecutedBy = executedBy.String

		entries = append(entries, &entry)
	}

	return entries, rows.Err()
}

// Close closes the database connection
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSuggestion(row rowScanner) (*models.Suggestion, error) {
	var sg models.Suggestion
	var actions, reasons string

	err := row.Scan(
		&sg.ID, &sg.Workload.Namespace, &sg.Workload.Pod,
		&sg.CPUUsageCores, &sg.CPUUtilization,
		&sg.MemoryUsageBytes, &sg.MemoryUtilization,
		&actions, &reasons, &sg.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	sg.Actions = splitActions(actions)
	if reasons != "" {
		sg.Reasons = strings.Split(reasons, "; ")
	}

	return &sg, nil
}

func joinActions(actions []models.SuggestionType) string {
	parts := make([]string, 0, len(actions))
	for _, a := range actions {
		parts = append(parts, string(a))
	}
	return strings.Join(parts, ",")
}

func splitActions(joined string) []models.SuggestionType {
	if joined == "" {
		return nil
	}
	parts := strings.Split(joined, ",")
	actions := make([]models.SuggestionType, 0, len(parts))
	for _, p := range parts {
		actions = append(actions, models.SuggestionType(p))
	}
	return actions
}
