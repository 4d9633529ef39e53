package models

import (
	"strconv"
	"strings"
	"time"
)

// FieldKind is the primitive kind a rule can declare for a field.
type FieldKind string

const (
	KindString  FieldKind = "string"
	KindNumber  FieldKind = "number"
	KindBoolean FieldKind = "boolean"
)

// Fields is the open attribute bag of a document. Values come from JSON
// decoding, so numbers may arrive as float64, int, or int64, and any field
// may be missing, nil, or mistyped.
type Fields map[string]any

// Document is one record of an entity type's collection. Storage enforces
// no schema beyond the identifier; inconsistency is expected.
type Document struct {
	ID     string `json:"id"`
	Fields Fields `json:"fields"`
}

// Clone returns a shallow copy of the document with its own fields map.
func (d Document) Clone() Document {
	fields := make(Fields, len(d.Fields))
	for k, v := range d.Fields {
		fields[k] = v
	}
	return Document{ID: d.ID, Fields: fields}
}

// KindOf reports the dynamic kind of a field value. The second return is
// false for nil and for types outside the string/number/boolean set.
func KindOf(v any) (FieldKind, bool) {
	switch v.(type) {
	case string:
		return KindString, true
	case float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return KindNumber, true
	case bool:
		return KindBoolean, true
	default:
		return "", false
	}
}

// NumberOf coerces a value to float64. Numeric strings are parsed; anything
// else reports false.
func NumberOf(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// ParseIntString parses a string holding a whole number. This is the exact
// parse the validator and repairer must agree on: a value the validator
// accepts as a repair opportunity must be one the repairer can convert.
func ParseIntString(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return n, true
}

// Severity levels for issues. Current rules only produce medium and high.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// IssueKind identifies the class of rule violation.
type IssueKind string

const (
	IssueMissingRequired IssueKind = "missing_required_field"
	IssueInvalidType     IssueKind = "invalid_type"
	IssueInvalidValue    IssueKind = "invalid_value"
	IssueOutOfRange      IssueKind = "out_of_range"
	IssueCustomFailed    IssueKind = "custom_validation_failed"
	// IssueNoRuleSet is the synthetic issue emitted when an entity type has
	// no configured rule set. The scan still produces a report instead of
	// failing.
	IssueNoRuleSet IssueKind = "no_rule_set"
)

// Issue is one detected rule violation on one field of one document.
// Issues are transient: they live inside a single validation pass and are
// folded into repair decisions and report detail entries.
type Issue struct {
	Field       string    `json:"field"`
	Kind        IssueKind `json:"kind"`
	Severity    Severity  `json:"severity"`
	Description string    `json:"description"`
}

// ActionKind identifies a repair mutation.
type ActionKind string

const (
	ActionSetDefault     ActionKind = "set_default"
	ActionTypeConversion ActionKind = "type_conversion"
	ActionClampToMin     ActionKind = "clamp_to_min"
	ActionClampToMax     ActionKind = "clamp_to_max"

	// Coordinator-level markers used in detail entries, not produced by the
	// repairer itself.
	ActionDeleted ActionKind = "deleted"
	ActionNone    ActionKind = "none"
)

// RepairAction is one concrete mutation the repairer decided on.
type RepairAction struct {
	Field    string     `json:"field"`
	Action   ActionKind `json:"action"`
	OldValue any        `json:"old_value"`
	NewValue any        `json:"new_value"`
}

// DetailEntry is one line of a report's per-document detail list.
//
// Two shapes share this struct: repair entries carry Field/OldValue/NewValue,
// while irreparable_document and unrepaired_issues entries carry Issue and a
// free-text Details string. Consumers depend on the distinction, so the
// shapes are not unified.
type DetailEntry struct {
	DocumentID string     `json:"document_id"`
	Field      string     `json:"field,omitempty"`
	Issue      string     `json:"issue,omitempty"`
	Action     ActionKind `json:"action"`
	OldValue   any        `json:"old_value,omitempty"`
	NewValue   any        `json:"new_value,omitempty"`
	Details    string     `json:"details,omitempty"`
}

// Report is the write-once record of one completed scan. It is created
// empty at scan start, mutated while documents are processed, finalized,
// then persisted and never edited. Retention cleanup is the only deletion
// path.
type Report struct {
	ID                   string        `json:"id,omitempty"`
	EntityType           string        `json:"entity_type"`
	Timestamp            time.Time     `json:"timestamp"`
	TotalDocuments       int           `json:"total_documents"`
	InconsistenciesFound int           `json:"inconsistencies_found"`
	RepairsApplied       int           `json:"repairs_applied"`
	DocumentsDeleted     int           `json:"documents_deleted"`
	Details              []DetailEntry `json:"details"`
	Errors               []string      `json:"errors,omitempty"`
	Duration             time.Duration `json:"duration"`
}

// Resolved reports whether every detected inconsistency was either repaired
// or removed by deleting its document.
func (r *Report) Resolved() bool {
	return r.InconsistenciesFound == 0 ||
		r.InconsistenciesFound == r.RepairsApplied+r.DocumentsDeleted
}

// Status is the current consistency belief for one entity type, overwritten
// after every scan. It is not history; reports are.
type Status struct {
	EntityType         string    `json:"entity_type"`
	IsConsistent       bool      `json:"is_consistent"`
	LastCheckTime      time.Time `json:"last_check_time"`
	LastConsistentTime time.Time `json:"last_consistent_time"`
	// AllReplicasConsistent mirrors IsConsistent. Placeholder for real
	// replica-quorum state.
	AllReplicasConsistent bool   `json:"all_replicas_consistent"`
	ReportID              string `json:"report_id,omitempty"`
}
