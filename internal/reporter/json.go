package reporter

import (
	"encoding/json"
	"io"

	"github.com/ndmitriev/docsweep/internal/models"
)

// JSONReporter generates machine-readable JSON reports
type JSONReporter struct {
	writer io.Writer
	pretty bool
}

// NewJSONReporter creates a new JSON reporter
func NewJSONReporter(writer io.Writer, pretty bool) *JSONReporter {
	return &JSONReporter{
		writer: writer,
		pretty: pretty,
	}
}

// Generate writes a full scan report as JSON
func (r *JSONReporter) Generate(report *models.Report) error {
	return r.write(report)
}

// GenerateStatus writes an entity status as JSON
func (r *JSONReporter) GenerateStatus(status *models.Status) error {
	return r.write(status)
}

// GenerateList writes a report listing as JSON
func (r *JSONReporter) GenerateList(reports []models.Report) error {
	return r.write(reports)
}

// GenerateSummaryOnly writes a compact summary without per-document details
func (r *JSONReporter) GenerateSummaryOnly(report *models.Report) error {
	summary := struct {
		ID                   string `json:"id,omitempty"`
		EntityType           string `json:"entity_type"`
		Timestamp            string `json:"timestamp"`
		TotalDocuments       int    `json:"total_documents"`
		InconsistenciesFound int    `json:"inconsistencies_found"`
		RepairsApplied       int    `json:"repairs_applied"`
		DocumentsDeleted     int    `json:"documents_deleted"`
		Resolved             bool   `json:"resolved"`
		Errors               int    `json:"errors"`
	}{
		ID:                   report.ID,
		EntityType:           report.EntityType,
		Timestamp:            report.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
		TotalDocuments:       report.TotalDocuments,
		InconsistenciesFound: report.InconsistenciesFound,
		RepairsApplied:       report.RepairsApplied,
		DocumentsDeleted:     report.DocumentsDeleted,
		Resolved:             report.Resolved(),
		Errors:               len(report.Errors),
	}

	return r.write(summary)
}

func (r *JSONReporter) write(v any) error {
	var data []byte
	var err error

	if r.pretty {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return err
	}

	_, err = r.writer.Write(data)
	if err != nil {
		return err
	}

	// Add trailing newline for terminal output
	_, err = r.writer.Write([]byte("\n"))
	return err
}
