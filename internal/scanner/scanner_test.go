package scanner

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ndmitriev/docsweep/internal/models"
	"github.com/ndmitriev/docsweep/internal/rules"
	"github.com/ndmitriev/docsweep/internal/storage"
)

func newScanner(t *testing.T) (*Scanner, storage.Store) {
	t.Helper()
	store, err := storage.OpenBadgerInMemory()
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return New(store, rules.NewRegistry()), store
}

func put(t *testing.T, store storage.Store, id string, fields models.Fields) {
	t.Helper()
	if err := store.UpdateDocument(context.Background(), "users", id, fields); err != nil {
		t.Fatalf("seed document %s: %v", id, err)
	}
}

func TestScanCleanCollection(t *testing.T) {
	s, store := newScanner(t)
	ctx := context.Background()

	put(t, store, "u1", models.Fields{"name": "Alice", "email": "a@example.com", "status": "active"})
	put(t, store, "u2", models.Fields{"name": "Bob", "email": "b@example.com", "status": "pending"})

	report, err := s.Scan(ctx, "users")
	if err != nil {
		t.Fatalf("scan: %v", err)
	}

	if report.TotalDocuments != 2 {
		t.Errorf("total = %d, want 2", report.TotalDocuments)
	}
	if report.InconsistenciesFound != 0 || report.RepairsApplied != 0 || report.DocumentsDeleted != 0 {
		t.Errorf("clean collection produced work: %+v", report)
	}
	if len(report.Details) != 0 {
		t.Errorf("unexpected details: %v", report.Details)
	}

	st, err := store.GetStatus(ctx, "users")
	if err != nil {
		t.Fatalf("get status: %v", err)
	}
	if !st.IsConsistent {
		t.Error("expected consistent status after a clean scan")
	}
	if st.ReportID != report.ID {
		t.Errorf("status references report %q, want %q", st.ReportID, report.ID)
	}
}

func TestScanRepairsAndReportsEveryIssue(t *testing.T) {
	s, store := newScanner(t)
	ctx := context.Background()

	// Every issue below maps to a repair: found == repaired, no deletions,
	// and the collection ends up consistent.
	put(t, store, "u1", models.Fields{"name": "Alice", "status": "active"})                                  // email missing -> default
	put(t, store, "u2", models.Fields{"name": "Bob", "email": "b@example.com", "status": "archived"})        // status invalid -> default
	put(t, store, "u3", models.Fields{"name": "Cid", "email": "c@example.com", "status": "active", "age": 300.0}) // out of range -> clamp

	report, err := s.Scan(ctx, "users")
	if err != nil {
		t.Fatalf("scan: %v", err)
	}

	if report.InconsistenciesFound != 3 {
		t.Errorf("found = %d, want 3", report.InconsistenciesFound)
	}
	if report.RepairsApplied != 3 {
		t.Errorf("repaired = %d, want 3", report.RepairsApplied)
	}
	if report.DocumentsDeleted != 0 {
		t.Errorf("deleted = %d, want 0", report.DocumentsDeleted)
	}
	if len(report.Details) != 3 {
		t.Errorf("details = %v", report.Details)
	}
	if len(report.Errors) != 0 {
		t.Errorf("errors = %v", report.Errors)
	}

	st, _ := store.GetStatus(ctx, "users")
	if st == nil || !st.IsConsistent {
		t.Errorf("expected consistent status, got %+v", st)
	}

	// Repairs landed in storage: a second scan finds nothing.
	second, err := s.Scan(ctx, "users")
	if err != nil {
		t.Fatalf("second scan: %v", err)
	}
	if second.InconsistenciesFound != 0 {
		t.Errorf("second scan found %d issues, want 0", second.InconsistenciesFound)
	}
}

func TestScanDeletesIrreparableDocument(t *testing.T) {
	s, store := newScanner(t)
	ctx := context.Background()

	// plan has an allowed set but no default: irreparable, high severity.
	put(t, store, "bad", models.Fields{"name": "Eve", "email": "e@example.com", "status": "active", "plan": "platinum"})
	put(t, store, "ok", models.Fields{"name": "Ann", "email": "a@example.com", "status": "active", "plan": "pro"})

	report, err := s.Scan(ctx, "users")
	if err != nil {
		t.Fatalf("scan: %v", err)
	}

	if report.DocumentsDeleted != 1 {
		t.Fatalf("deleted = %d, want 1", report.DocumentsDeleted)
	}
	if len(report.Details) != 1 {
		t.Fatalf("details = %v", report.Details)
	}
	d := report.Details[0]
	if d.DocumentID != "bad" || d.Issue != "irreparable_document" || d.Action != models.ActionDeleted {
		t.Errorf("detail = %+v", d)
	}
	if d.Details == "" {
		t.Error("deleted detail should carry the joined issue descriptions")
	}

	docs, _ := store.ListDocuments(ctx, "users")
	if len(docs) != 1 || docs[0].ID != "ok" {
		t.Errorf("wrong survivors: %v", docs)
	}
}

func TestScanRecordsUnrepairedIssues(t *testing.T) {
	s, store := newScanner(t)
	ctx := context.Background()

	// name is required with no default: detectable, unrepairable, and per
	// the deletion rule not a deletion candidate either.
	put(t, store, "u1", models.Fields{"email": "x@example.com", "status": "active"})

	report, err := s.Scan(ctx, "users")
	if err != nil {
		t.Fatalf("scan: %v", err)
	}

	if report.InconsistenciesFound != 1 || report.RepairsApplied != 0 || report.DocumentsDeleted != 0 {
		t.Errorf("counts = %+v", report)
	}
	if len(report.Details) != 1 {
		t.Fatalf("details = %v", report.Details)
	}
	d := report.Details[0]
	if d.Issue != "unrepaired_issues" || d.Action != models.ActionNone {
		t.Errorf("detail = %+v", d)
	}

	st, _ := store.GetStatus(ctx, "users")
	if st == nil || st.IsConsistent {
		t.Errorf("unrepaired issues should leave the collection inconsistent, got %+v", st)
	}

	// The document itself is untouched.
	docs, _ := store.ListDocuments(ctx, "users")
	if len(docs) != 1 {
		t.Fatalf("documents = %v", docs)
	}
	if _, present := docs[0].Fields["name"]; present {
		t.Error("unrepairable field should stay absent")
	}
}

func TestScanUnknownEntityType(t *testing.T) {
	s, store := newScanner(t)
	ctx := context.Background()

	if err := store.UpdateDocument(ctx, "orders", "o1", models.Fields{"total": 10.0}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	report, err := s.Scan(ctx, "orders")
	if err != nil {
		t.Fatalf("scan of unconfigured entity should not fail: %v", err)
	}

	if report.InconsistenciesFound != 1 {
		t.Errorf("found = %d, want 1 synthetic issue", report.InconsistenciesFound)
	}
	if len(report.Details) != 1 || report.Details[0].Issue != "unrepaired_issues" {
		t.Errorf("details = %v", report.Details)
	}

	st, _ := store.GetStatus(ctx, "orders")
	if st == nil || st.IsConsistent {
		t.Errorf("unconfigured entity should be inconsistent, got %+v", st)
	}
}

func TestScanPersistsReport(t *testing.T) {
	s, store := newScanner(t)
	ctx := context.Background()

	put(t, store, "u1", models.Fields{"name": "Alice", "status": "active"})

	report, err := s.Scan(ctx, "users")
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if report.ID == "" {
		t.Fatal("scan should persist the report and carry its id")
	}
	if report.Duration <= 0 {
		t.Error("duration should be stamped")
	}

	stored, err := store.QueryReports(ctx, storage.ReportFilter{EntityType: "users"})
	if err != nil || len(stored) != 1 {
		t.Fatalf("stored reports: %v (%d)", err, len(stored))
	}
	if stored[0].ID != report.ID {
		t.Errorf("stored id %q, want %q", stored[0].ID, report.ID)
	}
}

// blockingStore wedges ListDocuments until released, so a second scan can
// be attempted while the first is mid-flight.
type blockingStore struct {
	storage.Store
	enter   chan struct{}
	release chan struct{}
	once    sync.Once
}

func (b *blockingStore) ListDocuments(ctx context.Context, entityType string) ([]models.Document, error) {
	b.once.Do(func() { close(b.enter) })
	<-b.release
	return nil, nil
}

func TestScanRejectsConcurrentScan(t *testing.T) {
	inner, err := storage.OpenBadgerInMemory()
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = inner.Close() })

	blocking := &blockingStore{
		Store:   inner,
		enter:   make(chan struct{}),
		release: make(chan struct{}),
	}
	s := New(blocking, rules.NewRegistry())

	done := make(chan *models.Report, 1)
	go func() {
		report, _ := s.Scan(context.Background(), "users")
		done <- report
	}()

	<-blocking.enter

	if _, err := s.Scan(context.Background(), "users"); !errors.Is(err, ErrScanInProgress) {
		t.Errorf("concurrent scan error = %v, want ErrScanInProgress", err)
	}

	close(blocking.release)

	select {
	case report := <-done:
		if report == nil {
			t.Error("first scan should still produce a report")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("first scan did not finish")
	}

	// Guard released: a new scan is accepted.
	if _, err := s.Scan(context.Background(), "users"); err != nil {
		t.Errorf("scan after release: %v", err)
	}
}

// failingStore fails updates for one document id to exercise per-document
// fault tolerance.
type failingStore struct {
	storage.Store
	failID string
}

func (f *failingStore) UpdateDocument(ctx context.Context, entityType, id string, fields models.Fields) error {
	if id == f.failID {
		return errors.New("simulated storage failure")
	}
	return f.Store.UpdateDocument(ctx, entityType, id, fields)
}

func TestScanContinuesPastDocumentFault(t *testing.T) {
	inner, err := storage.OpenBadgerInMemory()
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = inner.Close() })
	ctx := context.Background()

	// Both documents need the email default; u1's update fails.
	_ = inner.UpdateDocument(ctx, "users", "u1", models.Fields{"name": "Ann", "status": "active"})
	_ = inner.UpdateDocument(ctx, "users", "u2", models.Fields{"name": "Bea", "status": "active"})

	s := New(&failingStore{Store: inner, failID: "u1"}, rules.NewRegistry())

	report, err := s.Scan(ctx, "users")
	if err != nil {
		t.Fatalf("scan: %v", err)
	}

	if len(report.Errors) != 1 {
		t.Fatalf("errors = %v, want one entry for u1", report.Errors)
	}
	// u2 was still processed and repaired.
	if report.RepairsApplied != 1 {
		t.Errorf("repaired = %d, want 1", report.RepairsApplied)
	}
	if report.TotalDocuments != 2 {
		t.Errorf("total = %d, want 2", report.TotalDocuments)
	}
}

// brokenListStore fails the snapshot read to exercise the scan-level fault
// path.
type brokenListStore struct {
	storage.Store
}

func (b *brokenListStore) ListDocuments(ctx context.Context, entityType string) ([]models.Document, error) {
	return nil, errors.New("collection unavailable")
}

func TestScanLevelFaultStillYieldsReport(t *testing.T) {
	inner, err := storage.OpenBadgerInMemory()
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = inner.Close() })

	s := New(&brokenListStore{Store: inner}, rules.NewRegistry())

	report, err := s.Scan(context.Background(), "users")
	if err != nil {
		t.Fatalf("scan-level fault must not surface as a bare error: %v", err)
	}
	if len(report.Errors) != 1 {
		t.Errorf("errors = %v", report.Errors)
	}
	if report.Duration < 0 {
		t.Error("duration should still be stamped")
	}

	// An aborted pass observed nothing; no status is projected.
	if _, err := inner.GetStatus(context.Background(), "users"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected no status after aborted scan, got %v", err)
	}

	// The guard is released even on the fault path.
	if _, err := s.Scan(context.Background(), "users"); err != nil {
		t.Errorf("scan after fault: %v", err)
	}
}
