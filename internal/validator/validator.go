package validator

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/ndmitriev/docsweep/internal/models"
	"github.com/ndmitriev/docsweep/internal/rules"
)

// Validate checks one document against its entity type's rule set and
// returns the issues found, in a fixed check order: required fields, types,
// allowed values, ranges, custom predicates. Later checks assume earlier
// ones already recorded their finding, so a field can accumulate several
// issues.
//
// Validate is pure and total. A nil rule set yields a single synthetic
// issue instead of an error, so a scan of an unconfigured entity type still
// produces a report.
func Validate(doc models.Document, rs *rules.RuleSet) []models.Issue {
	if rs == nil {
		return []models.Issue{{
			Kind:        models.IssueNoRuleSet,
			Severity:    models.SeverityHigh,
			Description: "no rule set configured for this entity type",
		}}
	}

	var issues []models.Issue
	issues = append(issues, checkRequired(doc, rs)...)
	issues = append(issues, checkTypes(doc, rs)...)
	issues = append(issues, checkAllowed(doc, rs)...)
	issues = append(issues, checkRanges(doc, rs)...)
	issues = append(issues, checkCustom(doc, rs)...)
	return issues
}

// checkRequired flags fields that are absent, nil, or empty strings. This
// is the only check that treats absence as a defect; the rest skip absent
// fields because optional fields are optional.
func checkRequired(doc models.Document, rs *rules.RuleSet) []models.Issue {
	var issues []models.Issue
	for _, field := range rs.RequiredFields() {
		v, present := doc.Fields[field]
		if present && v != nil {
			if s, isStr := v.(string); !isStr || s != "" {
				continue
			}
		}
		issues = append(issues, models.Issue{
			Field:       field,
			Kind:        models.IssueMissingRequired,
			Severity:    models.SeverityHigh,
			Description: fmt.Sprintf("required field %q is missing or empty", field),
		})
	}
	return issues
}

// checkTypes compares the dynamic kind of each typed, present field against
// its declared kind. A numeric field holding a parseable integer string is
// not flagged: that is a repair opportunity, not a defect.
func checkTypes(doc models.Document, rs *rules.RuleSet) []models.Issue {
	var issues []models.Issue
	for _, field := range sortedKeys(rs.Types) {
		v, present := doc.Fields[field]
		if !present {
			continue
		}

		want := rs.Types[field]
		got, known := models.KindOf(v)
		if known && got == want {
			continue
		}

		if want == models.KindNumber {
			if s, isStr := v.(string); isStr {
				if _, ok := models.ParseIntString(s); ok {
					continue
				}
			}
		}

		issues = append(issues, models.Issue{
			Field:       field,
			Kind:        models.IssueInvalidType,
			Severity:    models.SeverityMedium,
			Description: fmt.Sprintf("field %q should be %s, got %v", field, want, describeValue(v)),
		})
	}
	return issues
}

// checkAllowed flags present fields whose value is not in the configured
// allowed set. Membership uses numeric-normalizing equality so 2 and 2.0
// compare equal regardless of decode path.
func checkAllowed(doc models.Document, rs *rules.RuleSet) []models.Issue {
	var issues []models.Issue
	for _, field := range sortedKeys(rs.Allowed) {
		v, present := doc.Fields[field]
		if !present {
			continue
		}

		member := false
		for _, allowed := range rs.Allowed[field] {
			if valuesEqual(v, allowed) {
				member = true
				break
			}
		}
		if member {
			continue
		}

		issues = append(issues, models.Issue{
			Field:       field,
			Kind:        models.IssueInvalidValue,
			Severity:    models.SeverityHigh,
			Description: fmt.Sprintf("field %q has value %v outside the allowed set", field, describeValue(v)),
		})
	}
	return issues
}

// checkRanges flags present numeric (or numeric-string) fields outside
// their inclusive [min, max] range. Values that cannot be coerced to a
// number are skipped: the type check already flagged them.
func checkRanges(doc models.Document, rs *rules.RuleSet) []models.Issue {
	var issues []models.Issue
	for _, field := range sortedKeys(rs.Ranges) {
		v, present := doc.Fields[field]
		if !present {
			continue
		}

		n, ok := models.NumberOf(v)
		if !ok {
			continue
		}

		r := rs.Ranges[field]
		if n >= r.Min && n <= r.Max {
			continue
		}

		issues = append(issues, models.Issue{
			Field:       field,
			Kind:        models.IssueOutOfRange,
			Severity:    models.SeverityMedium,
			Description: fmt.Sprintf("field %q value %v is outside range [%v, %v]", field, n, r.Min, r.Max),
		})
	}
	return issues
}

// checkCustom runs registered predicates against present fields.
func checkCustom(doc models.Document, rs *rules.RuleSet) []models.Issue {
	var issues []models.Issue
	for _, field := range sortedKeys(rs.Custom) {
		v, present := doc.Fields[field]
		if !present {
			continue
		}

		p, ok := rs.Predicate(field)
		if !ok || p(v) {
			continue
		}

		issues = append(issues, models.Issue{
			Field:       field,
			Kind:        models.IssueCustomFailed,
			Severity:    models.SeverityMedium,
			Description: fmt.Sprintf("field %q failed custom validation %q", field, rs.Custom[field]),
		})
	}
	return issues
}

// valuesEqual compares two dynamic values, treating all numeric types as
// float64 so YAML-decoded rule values match JSON-decoded document values.
func valuesEqual(a, b any) bool {
	an, aok := numericOnly(a)
	bn, bok := numericOnly(b)
	if aok && bok {
		return an == bn
	}
	if aok != bok {
		return false
	}
	if !isComparable(a) || !isComparable(b) {
		return false
	}
	return a == b
}

// isComparable guards against == panics on slice or map typed field values.
func isComparable(v any) bool {
	if v == nil {
		return true
	}
	return reflect.TypeOf(v).Comparable()
}

// numericOnly is NumberOf without the string coercion: "2" must not equal 2
// in an allowed-value set.
func numericOnly(v any) (float64, bool) {
	if _, isStr := v.(string); isStr {
		return 0, false
	}
	return models.NumberOf(v)
}

func describeValue(v any) string {
	if v == nil {
		return "null"
	}
	if s, ok := v.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return fmt.Sprintf("%v", v)
}

// sortedKeys keeps issue order deterministic across runs for map-driven
// checks.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
