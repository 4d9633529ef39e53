package validator

import (
	"testing"

	"github.com/ndmitriev/docsweep/internal/models"
	"github.com/ndmitriev/docsweep/internal/rules"
)

func usersRules(t *testing.T) *rules.RuleSet {
	t.Helper()
	rs := rules.NewRegistry().Get("users")
	if rs == nil {
		t.Fatal("built-in users rule set missing")
	}
	return rs
}

func cleanDoc() models.Document {
	return models.Document{
		ID: "u1",
		Fields: models.Fields{
			"name":   "Alice",
			"email":  "alice@example.com",
			"status": "active",
			"role":   "admin",
			"age":    34.0,
			"active": true,
		},
	}
}

func findIssue(issues []models.Issue, field string, kind models.IssueKind) *models.Issue {
	for i := range issues {
		if issues[i].Field == field && issues[i].Kind == kind {
			return &issues[i]
		}
	}
	return nil
}

func TestValidateCleanDocument(t *testing.T) {
	issues := Validate(cleanDoc(), usersRules(t))
	if len(issues) != 0 {
		t.Errorf("expected no issues for a clean document, got %v", issues)
	}
}

func TestValidateNilRuleSet(t *testing.T) {
	issues := Validate(cleanDoc(), nil)
	if len(issues) != 1 {
		t.Fatalf("expected one synthetic issue, got %d", len(issues))
	}
	if issues[0].Kind != models.IssueNoRuleSet {
		t.Errorf("kind = %s, want %s", issues[0].Kind, models.IssueNoRuleSet)
	}
	if issues[0].Severity != models.SeverityHigh {
		t.Errorf("severity = %s, want high", issues[0].Severity)
	}
}

func TestValidateMissingRequired(t *testing.T) {
	doc := cleanDoc()
	delete(doc.Fields, "email")

	issues := Validate(doc, usersRules(t))
	issue := findIssue(issues, "email", models.IssueMissingRequired)
	if issue == nil {
		t.Fatalf("expected missing_required_field for email, got %v", issues)
	}
	if issue.Severity != models.SeverityHigh {
		t.Errorf("severity = %s, want high", issue.Severity)
	}
}

func TestValidateRequiredRejectsNilAndEmpty(t *testing.T) {
	for _, value := range []any{nil, ""} {
		doc := cleanDoc()
		doc.Fields["name"] = value

		issues := Validate(doc, usersRules(t))
		if findIssue(issues, "name", models.IssueMissingRequired) == nil {
			t.Errorf("value %v: expected missing_required_field for name", value)
		}
	}
}

func TestValidateNumericStringIsNotATypeIssue(t *testing.T) {
	doc := cleanDoc()
	doc.Fields["age"] = "42"

	issues := Validate(doc, usersRules(t))
	if len(issues) != 0 {
		t.Errorf("parseable numeric string should produce no issues, got %v", issues)
	}
}

func TestValidateUnparsableStringIsATypeIssue(t *testing.T) {
	doc := cleanDoc()
	doc.Fields["age"] = "forty-two"

	issues := Validate(doc, usersRules(t))
	issue := findIssue(issues, "age", models.IssueInvalidType)
	if issue == nil {
		t.Fatalf("expected invalid_type for age, got %v", issues)
	}
	if issue.Severity != models.SeverityMedium {
		t.Errorf("severity = %s, want medium", issue.Severity)
	}
}

func TestValidateWrongKind(t *testing.T) {
	doc := cleanDoc()
	doc.Fields["active"] = "yes"

	issues := Validate(doc, usersRules(t))
	if findIssue(issues, "active", models.IssueInvalidType) == nil {
		t.Errorf("expected invalid_type for active, got %v", issues)
	}
}

func TestValidateAllowedValues(t *testing.T) {
	doc := cleanDoc()
	doc.Fields["role"] = "superuser"

	issues := Validate(doc, usersRules(t))
	issue := findIssue(issues, "role", models.IssueInvalidValue)
	if issue == nil {
		t.Fatalf("expected invalid_value for role, got %v", issues)
	}
	if issue.Severity != models.SeverityHigh {
		t.Errorf("severity = %s, want high", issue.Severity)
	}
}

func TestValidateRange(t *testing.T) {
	tests := []struct {
		name      string
		age       any
		wantIssue bool
	}{
		{"below min", -5.0, true},
		{"above max", 130.0, true},
		{"at min", 0.0, false},
		{"at max", 120.0, false},
		{"numeric string above max", "200", true},
		{"inside", 42.0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := cleanDoc()
			doc.Fields["age"] = tt.age

			issues := Validate(doc, usersRules(t))
			got := findIssue(issues, "age", models.IssueOutOfRange) != nil
			if got != tt.wantIssue {
				t.Errorf("age %v: out_of_range = %v, want %v (issues: %v)", tt.age, got, tt.wantIssue, issues)
			}
		})
	}
}

func TestValidateCustomPredicate(t *testing.T) {
	doc := cleanDoc()
	doc.Fields["email"] = "not-an-email"

	issues := Validate(doc, usersRules(t))
	issue := findIssue(issues, "email", models.IssueCustomFailed)
	if issue == nil {
		t.Fatalf("expected custom_validation_failed for email, got %v", issues)
	}
	if issue.Severity != models.SeverityMedium {
		t.Errorf("severity = %s, want medium", issue.Severity)
	}
}

func TestValidateAbsentOptionalFieldsSkipped(t *testing.T) {
	// Only required fields present; typed/allowed/ranged/custom fields that
	// are absent must not produce issues.
	doc := models.Document{
		ID: "u2",
		Fields: models.Fields{
			"name":   "Bob",
			"email":  "bob@example.com",
			"status": "pending",
		},
	}

	issues := Validate(doc, usersRules(t))
	if len(issues) != 0 {
		t.Errorf("absent optional fields should be skipped, got %v", issues)
	}
}

func TestValidateAccumulatesMultipleIssues(t *testing.T) {
	doc := models.Document{
		ID: "u3",
		Fields: models.Fields{
			"name":   "",
			"status": "archived",
			"age":    500.0,
		},
	}

	issues := Validate(doc, usersRules(t))
	// name missing, email missing, status invalid_value, age out_of_range.
	if len(issues) != 4 {
		t.Fatalf("expected 4 issues, got %d: %v", len(issues), issues)
	}

	// Check order: required fields first, then allowed, then range.
	if issues[0].Kind != models.IssueMissingRequired {
		t.Errorf("first issue = %s, want missing_required_field", issues[0].Kind)
	}
	if issues[len(issues)-1].Kind != models.IssueOutOfRange {
		t.Errorf("last issue = %s, want out_of_range", issues[len(issues)-1].Kind)
	}
}
