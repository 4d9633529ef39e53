package repairer

import (
	"github.com/ndmitriev/docsweep/internal/models"
	"github.com/ndmitriev/docsweep/internal/rules"
)

// Result is the repair plan for one document. The coordinator executes it:
// delete when ShouldDelete, otherwise apply Document when Repairs is
// non-empty.
type Result struct {
	Document     models.Document
	Repairs      []models.RepairAction
	ShouldDelete bool
}

// Repair consumes the validator's issues in order and produces a repaired
// copy of the document, the actions taken, and a deletion verdict. It is
// pure: the input document is never mutated, and untouched fields pass
// through unchanged.
//
// Repair policy, per issue kind:
//   - missing_required_field: set the configured default if one exists;
//     without a default the field stays absent. This is deliberately NOT a
//     deletion trigger.
//   - invalid_type: only numeric fields holding a parseable integer string
//     are converted. Other mismatches are left alone; extending the
//     conversion table is an explicit extension point, not a bug.
//   - invalid_value: overwrite with the configured default if one exists.
//     Without a default the violation is irreparable, and because its
//     severity is high it marks the document for deletion.
//   - out_of_range: clamp to the nearest bound, using the coerced numeric
//     value so numeric strings clamp correctly.
//
// no_rule_set and custom_validation_failed have no repair policy.
func Repair(doc models.Document, issues []models.Issue, rs *rules.RuleSet) Result {
	out := doc.Clone()
	if rs == nil {
		// Nothing to repair against; the synthetic no_rule_set issue stays
		// unrepaired.
		return Result{Document: out}
	}

	var repairs []models.RepairAction
	shouldDelete := false

	for _, issue := range issues {
		switch issue.Kind {
		case models.IssueMissingRequired:
			def, ok := rs.Default(issue.Field)
			if !ok {
				continue
			}
			old := out.Fields[issue.Field]
			out.Fields[issue.Field] = def
			repairs = append(repairs, models.RepairAction{
				Field:    issue.Field,
				Action:   models.ActionSetDefault,
				OldValue: old,
				NewValue: def,
			})

		case models.IssueInvalidType:
			if rs.Types[issue.Field] != models.KindNumber {
				continue
			}
			s, isStr := out.Fields[issue.Field].(string)
			if !isStr {
				continue
			}
			n, ok := models.ParseIntString(s)
			if !ok {
				continue
			}
			out.Fields[issue.Field] = n
			repairs = append(repairs, models.RepairAction{
				Field:    issue.Field,
				Action:   models.ActionTypeConversion,
				OldValue: s,
				NewValue: n,
			})

		case models.IssueInvalidValue:
			def, ok := rs.Default(issue.Field)
			if !ok {
				if issue.Severity == models.SeverityHigh {
					shouldDelete = true
				}
				continue
			}
			old := out.Fields[issue.Field]
			out.Fields[issue.Field] = def
			repairs = append(repairs, models.RepairAction{
				Field:    issue.Field,
				Action:   models.ActionSetDefault,
				OldValue: old,
				NewValue: def,
			})

		case models.IssueOutOfRange:
			r, ok := rs.Ranges[issue.Field]
			if !ok {
				continue
			}
			n, ok := models.NumberOf(out.Fields[issue.Field])
			if !ok {
				continue
			}
			old := out.Fields[issue.Field]
			if n < r.Min {
				out.Fields[issue.Field] = r.Min
				repairs = append(repairs, models.RepairAction{
					Field:    issue.Field,
					Action:   models.ActionClampToMin,
					OldValue: old,
					NewValue: r.Min,
				})
			} else if n > r.Max {
				out.Fields[issue.Field] = r.Max
				repairs = append(repairs, models.RepairAction{
					Field:    issue.Field,
					Action:   models.ActionClampToMax,
					OldValue: old,
					NewValue: r.Max,
				})
			}
		}
	}

	return Result{
		Document:     out,
		Repairs:      repairs,
		ShouldDelete: shouldDelete,
	}
}
