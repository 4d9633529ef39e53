// Package scanner coordinates a full consistency pass over one entity
// type's collection: validate each document, execute its repair plan
// against storage, accumulate the report, and hand the result to the
// status projector.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ndmitriev/docsweep/internal/models"
	"github.com/ndmitriev/docsweep/internal/repairer"
	"github.com/ndmitriev/docsweep/internal/rules"
	"github.com/ndmitriev/docsweep/internal/status"
	"github.com/ndmitriev/docsweep/internal/storage"
	"github.com/ndmitriev/docsweep/internal/validator"
)

// ErrScanInProgress is returned when a scan is requested while another is
// active. Callers should treat it as "retry later", not as a failure.
var ErrScanInProgress = errors.New("a scan is already in progress")

// Scanner runs consistency scans. At most one scan runs at a time
// process-wide, across all entity types; document mutation is applied
// directly to shared storage, so the loop is strictly sequential.
type Scanner struct {
	store     storage.Store
	registry  *rules.Registry
	projector *status.Projector

	// running is the single-slot scan guard.
	running atomic.Bool
}

// New creates a Scanner over the given store and rule registry.
func New(store storage.Store, registry *rules.Registry) *Scanner {
	return &Scanner{
		store:     store,
		registry:  registry,
		projector: status.NewProjector(store),
	}
}

// Scan runs one full pass over the entity type's documents and returns the
// report. The output contract is "always a Report": per-document faults and
// scan-level faults end up in the report's error list instead of failing
// the call. The only bare error is ErrScanInProgress, signaled before any
// report is constructed.
func (s *Scanner) Scan(ctx context.Context, entityType string) (*models.Report, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrScanInProgress
	}
	// Release on every exit path so the guard can never be stuck.
	defer s.running.Store(false)

	start := time.Now()
	report := &models.Report{
		EntityType: entityType,
		Timestamp:  start,
		Details:    []models.DetailEntry{},
	}

	// One rule-set snapshot for the whole scan. A nil snapshot is handled
	// by the validator, which reports it per document instead of failing.
	rs := s.registry.Get(entityType)

	docs, err := s.store.ListDocuments(ctx, entityType)
	if err != nil {
		// Scan-level fault: nothing to iterate, but the report contract
		// still holds. No status is projected from a pass that observed
		// nothing.
		report.Errors = append(report.Errors, fmt.Sprintf("list documents: %v", err))
		report.Duration = time.Since(start)
		return report, nil
	}
	report.TotalDocuments = len(docs)

	for _, doc := range docs {
		if err := s.processDocument(ctx, doc, rs, report); err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("document %s: %v", doc.ID, err))
		}
	}

	report.Duration = time.Since(start)

	if _, err := s.store.AppendReport(ctx, report); err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("persist report: %v", err))
	}
	if _, err := s.projector.Project(ctx, entityType, report); err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("project status: %v", err))
	}

	return report, nil
}

// processDocument runs one validate-repair-apply cycle. Faults, including
// panics out of custom predicates, are converted to errors so the scan
// moves on to the next document.
func (s *Scanner) processDocument(ctx context.Context, doc models.Document, rs *rules.RuleSet, report *models.Report) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	issues := validator.Validate(doc, rs)
	if len(issues) == 0 {
		return nil
	}
	report.InconsistenciesFound += len(issues)

	result := repairer.Repair(doc, issues, rs)

	switch {
	case result.ShouldDelete:
		if err := s.store.DeleteDocument(ctx, report.EntityType, doc.ID); err != nil {
			return fmt.Errorf("delete: %w", err)
		}
		report.DocumentsDeleted++
		report.Details = append(report.Details, models.DetailEntry{
			DocumentID: doc.ID,
			Issue:      "irreparable_document",
			Action:     models.ActionDeleted,
			Details:    joinDescriptions(issues),
		})

	case len(result.Repairs) > 0:
		if err := s.store.UpdateDocument(ctx, report.EntityType, doc.ID, result.Document.Fields); err != nil {
			return fmt.Errorf("update: %w", err)
		}
		report.RepairsApplied += len(result.Repairs)
		for _, r := range result.Repairs {
			report.Details = append(report.Details, models.DetailEntry{
				DocumentID: doc.ID,
				Field:      r.Field,
				Action:     r.Action,
				OldValue:   r.OldValue,
				NewValue:   r.NewValue,
			})
		}

	default:
		// Issues found, none repairable under current policy.
		report.Details = append(report.Details, models.DetailEntry{
			DocumentID: doc.ID,
			Issue:      "unrepaired_issues",
			Action:     models.ActionNone,
			Details:    joinDescriptions(issues),
		})
	}

	return nil
}

func joinDescriptions(issues []models.Issue) string {
	parts := make([]string, 0, len(issues))
	for _, issue := range issues {
		parts = append(parts, issue.Description)
	}
	return strings.Join(parts, "; ")
}
