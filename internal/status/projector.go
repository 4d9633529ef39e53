// Package status derives the per-entity consistency verdict from a
// completed scan report and keeps the stored Status record current.
package status

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ndmitriev/docsweep/internal/models"
	"github.com/ndmitriev/docsweep/internal/storage"
)

// Projector upserts consistency status records, one per entity type.
type Projector struct {
	store storage.Store
}

// NewProjector creates a projector over the given store.
func NewProjector(store storage.Store) *Projector {
	return &Projector{store: store}
}

// Project derives the status from a completed scan's report and upserts it.
//
// The collection is consistent when every detected issue was either repaired
// or removed via deletion. LastConsistentTime only moves forward on a
// consistent round; an inconsistent round carries the previous value so the
// record always answers "when was this last known good".
func (p *Projector) Project(ctx context.Context, entityType string, report *models.Report) (*models.Status, error) {
	now := time.Now()
	consistent := report.Resolved()

	st := &models.Status{
		EntityType:            entityType,
		IsConsistent:          consistent,
		LastCheckTime:         now,
		AllReplicasConsistent: consistent,
		ReportID:              report.ID,
	}

	if consistent {
		st.LastConsistentTime = now
	} else {
		prev, err := p.store.GetStatus(ctx, entityType)
		switch {
		case err == nil:
			st.LastConsistentTime = prev.LastConsistentTime
		case errors.Is(err, storage.ErrNotFound):
			// Never been consistent; leave the zero value.
		default:
			return nil, fmt.Errorf("load previous status: %w", err)
		}
	}

	if err := p.store.UpsertStatus(ctx, st); err != nil {
		return nil, fmt.Errorf("upsert status: %w", err)
	}
	return st, nil
}
