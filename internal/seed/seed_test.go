package seed

import (
	"context"
	"strings"
	"testing"

	"github.com/ndmitriev/docsweep/internal/models"
	"github.com/ndmitriev/docsweep/internal/rules"
	"github.com/ndmitriev/docsweep/internal/storage"
	"github.com/ndmitriev/docsweep/internal/validator"
)

func TestGenerateCount(t *testing.T) {
	g := New(1)
	docs := g.Generate(25, 0.3)
	if len(docs) != 25 {
		t.Fatalf("expected 25 documents, got %d", len(docs))
	}

	seen := make(map[string]bool)
	for _, doc := range docs {
		if doc.ID == "" {
			t.Error("expected non-empty document ID")
		}
		if seen[doc.ID] {
			t.Errorf("duplicate document ID %s", doc.ID)
		}
		seen[doc.ID] = true
	}
}

func TestGenerateZeroCount(t *testing.T) {
	g := New(1)
	if docs := g.Generate(0, 0.5); docs != nil {
		t.Fatalf("expected nil for zero count, got %d documents", len(docs))
	}
}

func TestGenerateCleanWithZeroDefectRate(t *testing.T) {
	g := New(2)
	reg := rules.NewRegistry()
	rs := reg.Get("users")

	for _, doc := range g.Generate(40, 0) {
		if issues := validator.Validate(doc, rs); len(issues) != 0 {
			t.Errorf("document %s: expected clean, got %v", doc.ID, issues)
		}
		email, _ := doc.Fields["email"].(string)
		if email != strings.ToLower(email) {
			t.Errorf("document %s: email %q should be lowercase", doc.ID, email)
		}
	}
}

func TestGenerateDefectRateProducesIssues(t *testing.T) {
	g := New(3)
	reg := rules.NewRegistry()
	rs := reg.Get("users")

	defective := 0
	kinds := make(map[models.IssueKind]bool)
	for _, doc := range g.Generate(100, 0.5) {
		issues := validator.Validate(doc, rs)
		if len(issues) > 0 {
			defective++
		}
		for _, issue := range issues {
			kinds[issue.Kind] = true
		}
	}

	if defective != 50 {
		t.Errorf("expected 50 defective documents, got %d", defective)
	}

	// A large enough batch cycles through every injected defect kind.
	for _, kind := range []models.IssueKind{
		models.IssueMissingRequired,
		models.IssueInvalidValue,
		models.IssueOutOfRange,
	} {
		if !kinds[kind] {
			t.Errorf("expected issue kind %s in generated batch", kind)
		}
	}
}

func TestGenerateDeterministic(t *testing.T) {
	a := New(7).Generate(10, 0.3)
	b := New(7).Generate(10, 0.3)

	if len(a) != len(b) {
		t.Fatalf("length mismatch: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Fields["name"] != b[i].Fields["name"] {
			t.Errorf("document %d: name mismatch %v vs %v", i, a[i].Fields["name"], b[i].Fields["name"])
		}
	}
}

func TestPopulate(t *testing.T) {
	store, err := storage.OpenBadgerInMemory()
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	g := New(4)
	n, err := g.Populate(context.Background(), store, "users", 15, 0.3)
	if err != nil {
		t.Fatalf("Populate: %v", err)
	}
	if n != 15 {
		t.Fatalf("expected 15 documents written, got %d", n)
	}

	docs, err := store.ListDocuments(context.Background(), "users")
	if err != nil {
		t.Fatalf("ListDocuments: %v", err)
	}
	if len(docs) != 15 {
		t.Fatalf("expected 15 documents in store, got %d", len(docs))
	}
}
