package tui

import (
	"sort"
	"strings"

	"github.com/ndmitriev/docsweep/internal/models"
)

// filterState holds current active filters.
type filterState struct {
	Entity     string
	SearchText string
}

// sortField enumerates columns that can be sorted.
type sortField int

const (
	sortByTime sortField = iota
	sortByEntity
	sortByFound
	sortByRepaired
	sortByResult
)

// sortFieldCount is the total number of sortable columns.
const sortFieldCount = 5

// applyFilters returns reports matching all active filters.
func applyFilters(reports []models.Report, f filterState) []models.Report {
	result := make([]models.Report, 0, len(reports))
	searchLower := strings.ToLower(f.SearchText)

	for _, report := range reports {
		if f.Entity != "" && report.EntityType != f.Entity {
			continue
		}
		if searchLower != "" && !matchesSearch(report, searchLower) {
			continue
		}
		result = append(result, report)
	}
	return result
}

func matchesSearch(report models.Report, searchLower string) bool {
	if strings.Contains(strings.ToLower(report.EntityType), searchLower) ||
		strings.Contains(strings.ToLower(report.ID), searchLower) {
		return true
	}
	for _, d := range report.Details {
		if strings.Contains(strings.ToLower(d.DocumentID), searchLower) ||
			strings.Contains(strings.ToLower(d.Field), searchLower) ||
			strings.Contains(strings.ToLower(string(d.Action)), searchLower) ||
			strings.Contains(strings.ToLower(d.Details), searchLower) {
			return true
		}
	}
	for _, e := range report.Errors {
		if strings.Contains(strings.ToLower(e), searchLower) {
			return true
		}
	}
	return false
}

// sortReports sorts a slice of reports in place by the given field.
func sortReports(reports []models.Report, field sortField) {
	sort.SliceStable(reports, func(i, j int) bool {
		switch field {
		case sortByTime:
			return reports[i].Timestamp.After(reports[j].Timestamp)
		case sortByEntity:
			return reports[i].EntityType < reports[j].EntityType
		case sortByFound:
			return reports[i].InconsistenciesFound > reports[j].InconsistenciesFound
		case sortByRepaired:
			return reports[i].RepairsApplied > reports[j].RepairsApplied
		case sortByResult:
			// Unresolved scans first.
			return !reports[i].Resolved() && reports[j].Resolved()
		default:
			return false
		}
	})
}

// uniqueEntities returns deduplicated, sorted entity type names from reports.
func uniqueEntities(reports []models.Report) []string {
	seen := make(map[string]bool)
	var entities []string
	for _, report := range reports {
		if !seen[report.EntityType] {
			seen[report.EntityType] = true
			entities = append(entities, report.EntityType)
		}
	}
	sort.Strings(entities)
	return entities
}

// sortFieldName returns a human-readable name for the sort field.
func sortFieldName(f sortField) string {
	switch f {
	case sortByTime:
		return "time"
	case sortByEntity:
		return "entity"
	case sortByFound:
		return "found"
	case sortByRepaired:
		return "repaired"
	case sortByResult:
		return "result"
	default:
		return "unknown"
	}
}
