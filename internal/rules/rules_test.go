package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ndmitriev/docsweep/internal/models"
)

func TestNewRegistryHasBuiltinUsers(t *testing.T) {
	r := NewRegistry()

	rs := r.Get("users")
	if rs == nil {
		t.Fatal("expected built-in users rule set")
	}
	if rs.EntityType != "users" {
		t.Errorf("entity type = %q, want users", rs.EntityType)
	}
	if rs.Types["age"] != models.KindNumber {
		t.Errorf("age kind = %q, want number", rs.Types["age"])
	}
	if _, ok := rs.Default("email"); !ok {
		t.Error("expected a default for email")
	}
	if _, ok := rs.Predicate("email"); !ok {
		t.Error("expected email predicate to be resolved")
	}
}

func TestRegistryGetUnknownEntity(t *testing.T) {
	r := NewRegistry()
	if rs := r.Get("orders"); rs != nil {
		t.Errorf("expected nil for unconfigured entity, got %+v", rs)
	}
}

func TestLoadFileReplacesBuiltin(t *testing.T) {
	content := `version: "1"
entities:
  users:
    required: [name]
    types:
      age: number
    ranges:
      age: {min: 18, max: 65}
    defaults:
      name: unknown
`
	path := writeRules(t, content)

	r := NewRegistry()
	if err := r.LoadFile(path); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	rs := r.Get("users")
	if len(rs.Required) != 1 || rs.Required[0] != "name" {
		t.Errorf("required = %v, want [name]", rs.Required)
	}
	if rs.Ranges["age"].Min != 18 {
		t.Errorf("age min = %v, want 18", rs.Ranges["age"].Min)
	}
}

func TestLoadFileAddsEntity(t *testing.T) {
	content := `version: "1"
entities:
  articles:
    required: [title]
    types:
      title: string
      views: number
`
	path := writeRules(t, content)

	r := NewRegistry()
	if err := r.LoadFile(path); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	if r.Get("articles") == nil {
		t.Fatal("expected articles rule set after load")
	}
	types := r.EntityTypes()
	if len(types) != 2 || types[0] != "articles" || types[1] != "users" {
		t.Errorf("entity types = %v, want [articles users]", types)
	}
}

func TestLoadFileRejectsBadKind(t *testing.T) {
	content := `version: "1"
entities:
  users:
    types:
      age: integer
`
	path := writeRules(t, content)

	r := NewRegistry()
	if err := r.LoadFile(path); err == nil {
		t.Error("expected error for unknown field kind")
	}
}

func TestLoadFileRejectsInvertedRange(t *testing.T) {
	content := `version: "1"
entities:
  users:
    ranges:
      age: {min: 100, max: 1}
`
	path := writeRules(t, content)

	r := NewRegistry()
	if err := r.LoadFile(path); err == nil {
		t.Error("expected error for min above max")
	}
}

func TestLoadFileRejectsUnknownPredicate(t *testing.T) {
	content := `version: "1"
entities:
  users:
    custom:
      email: no_such_predicate
`
	path := writeRules(t, content)

	r := NewRegistry()
	if err := r.LoadFile(path); err == nil {
		t.Error("expected error for unregistered predicate reference")
	}
}

func writeRules(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "docsweep-rules.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write rules file: %v", err)
	}
	return path
}

func TestPredicateRegistry(t *testing.T) {
	Register("always_true", func(any) bool { return true })

	p, ok := Lookup("always_true")
	if !ok {
		t.Fatal("expected registered predicate")
	}
	if !p(nil) {
		t.Error("predicate should return true")
	}

	if _, ok := Lookup("never_registered"); ok {
		t.Error("lookup of unregistered name should fail")
	}
}

func TestEmailFormatPredicate(t *testing.T) {
	p, ok := Lookup("email_format")
	if !ok {
		t.Fatal("email_format not registered")
	}

	valid := []string{"bob@example.com", "a.b@sub.domain.org"}
	for _, s := range valid {
		if !p(s) {
			t.Errorf("email_format(%q) = false, want true", s)
		}
	}

	invalid := []any{"bob-at-example.com", "no spaces@x.com", "", 42, nil}
	for _, v := range invalid {
		if p(v) {
			t.Errorf("email_format(%v) = true, want false", v)
		}
	}
}
