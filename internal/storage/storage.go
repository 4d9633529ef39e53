package storage

import (
	"context"
	"errors"
	"time"

	"github.com/ndmitriev/docsweep/internal/models"
)

// ErrNotFound is returned when a status or report does not exist.
var ErrNotFound = errors.New("not found")

// ReportFilter narrows a report query. A zero filter matches everything.
type ReportFilter struct {
	EntityType string
	Limit      int
}

// Store is the persistence boundary of the core. Documents are owned by the
// collection store; the scanner borrows each one for a single
// validate-repair-apply cycle. Reports are append-only; Status is an upsert
// keyed by entity type.
type Store interface {
	// ListDocuments returns a snapshot of all documents of an entity type.
	// Iteration order is the store's own; callers must not assume a sort.
	ListDocuments(ctx context.Context, entityType string) ([]models.Document, error)

	// UpdateDocument writes a document's fields, creating it if absent.
	UpdateDocument(ctx context.Context, entityType, id string, fields models.Fields) error

	// DeleteDocument removes a document. Deleting an absent document is not
	// an error.
	DeleteDocument(ctx context.Context, entityType, id string) error

	// GetStatus returns the consistency status for an entity type, or
	// ErrNotFound before the first scan.
	GetStatus(ctx context.Context, entityType string) (*models.Status, error)

	// UpsertStatus overwrites the status for its entity type.
	UpsertStatus(ctx context.Context, status *models.Status) error

	// AppendReport persists a report and returns its assigned id.
	AppendReport(ctx context.Context, report *models.Report) (string, error)

	// QueryReports returns reports ordered newest first.
	QueryReports(ctx context.Context, filter ReportFilter) ([]*models.Report, error)

	// DeleteReportsOlderThan removes reports with a timestamp before cutoff,
	// optionally restricted to one entity type. Returns the number deleted.
	DeleteReportsOlderThan(ctx context.Context, cutoff time.Time, entityType string) (int, error)

	// Close releases the underlying store.
	Close() error
}
