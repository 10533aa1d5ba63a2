package storage

import (
	"context"

	"github.com/rahulbansod519/k8s-prometheus-analyzer/pkg/models"
)

// Store defines the interface for persistent suggestion history
type Store interface {
	SaveSuggestion(ctx context.Context, s *models.Suggestion) error
	GetSuggestion(ctx context.Context, id string) (*models.Suggestion, error)
	ListSuggestions(ctx context.Context, namespace string, limit int) ([]*models.Suggestion, error)

	LogAction(ctx context.Context, entry *models.AuditEntry) error
	GetAuditLog(ctx context.Context, suggestionID string) ([]*models.AuditEntry, error)

	Close() error
}
