// Package exporter writes the filtered assignment set to local files in
// several encodings, plus date-partitioned subsets keyed by due year and
// due month.
package exporter

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/akn101/assignmentsync/internal/models"
	"github.com/akn101/assignmentsync/internal/notion"
	"github.com/akn101/assignmentsync/pkg/export"
	"github.com/akn101/assignmentsync/pkg/storage"
)

var csvHeaders = []string{
	"ID", "Title", "Description", "Due Date", "Assigned Date", "Status",
	"Class ID", "Teacher", "Teacher Email", "Students", "All Turned In",
	"Submitted", "Total Submissions", "URL",
}

// Exporter renders and persists export artifacts. It always writes the
// complete filtered set it is given, regardless of sync mode.
type Exporter struct {
	store      *storage.LocalStorage
	csv        *export.CSVExporter
	pdf        *export.PDFExporter
	databaseID string
	logger     *zap.Logger
}

// New builds an exporter rooted at the given directory. databaseID is
// stamped into the record-store payload document so it can be replayed.
func New(store *storage.LocalStorage, databaseID string, logger *zap.Logger) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exporter{
		store:      store,
		csv:        export.NewCSVExporter(),
		pdf:        export.NewPDFExporter(),
		databaseID: databaseID,
		logger:     logger,
	}
}

// Write persists the full set at the top level and the date-partitioned
// subsets underneath. Items with unparsable due dates appear only in the
// top-level outputs.
func (e *Exporter) Write(items []models.Assignment) error {
	if err := e.writeSet("", items, true); err != nil {
		return err
	}

	for dir, subset := range partition(items, byYear) {
		if err := e.writeSet(filepath.Join("by-year", dir), subset, false); err != nil {
			return err
		}
	}
	for dir, subset := range partition(items, byMonth) {
		if err := e.writeSet(filepath.Join("by-month", dir), subset, false); err != nil {
			return err
		}
	}

	e.logger.Info("export complete",
		zap.Int("items", len(items)),
		zap.String("dir", e.store.Path("")))
	return nil
}

// writeSet renders one directory's artifacts. The PDF is only produced at
// the top level.
func (e *Exporter) writeSet(dir string, items []models.Assignment, topLevel bool) error {
	jsonBytes, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("encode assignments json: %w", err)
	}
	if _, err := e.store.Save(filepath.Join(dir, "assignments.json"), jsonBytes); err != nil {
		return err
	}

	dataset := toDataset(items)
	csvBytes, err := e.csv.Render(dataset)
	if err != nil {
		return fmt.Errorf("render csv: %w", err)
	}
	if _, err := e.store.Save(filepath.Join(dir, "assignments.csv"), csvBytes); err != nil {
		return err
	}

	if topLevel {
		pdfBytes, err := e.pdf.Render(dataset, "Assignments")
		if err != nil {
			return fmt.Errorf("render pdf: %w", err)
		}
		if _, err := e.store.Save(filepath.Join(dir, "assignments.pdf"), pdfBytes); err != nil {
			return err
		}
	}

	pages := make([]notion.Page, 0, len(items))
	for _, item := range items {
		pages = append(pages, notion.PagePayload(e.databaseID, item))
	}
	payloadBytes, err := json.MarshalIndent(pages, "", "  ")
	if err != nil {
		return fmt.Errorf("encode notion payload: %w", err)
	}
	if _, err := e.store.Save(filepath.Join(dir, "notion_payload.json"), payloadBytes); err != nil {
		return err
	}

	return nil
}

func toDataset(items []models.Assignment) export.Dataset {
	rows := make([]map[string]string, 0, len(items))
	for _, a := range items {
		rows = append(rows, map[string]string{
			"ID":                a.ID,
			"Title":             a.Title,
			"Description":       a.Description,
			"Due Date":          a.DueDate,
			"Assigned Date":     a.AssignedDate,
			"Status":            a.Status,
			"Class ID":          a.ClassID,
			"Teacher":           a.TeacherName,
			"Teacher Email":     a.TeacherEmail,
			"Students":          fmt.Sprintf("%d", a.StudentCount),
			"All Turned In":     fmt.Sprintf("%t", a.AllTurnedIn),
			"Submitted":         fmt.Sprintf("%d", a.SubmittedCount),
			"Total Submissions": fmt.Sprintf("%d", a.TotalSubmissions),
			"URL":               a.WebURL,
		})
	}
	return export.Dataset{Headers: csvHeaders, Rows: rows}
}

func byYear(due time.Time) string {
	return fmt.Sprintf("%04d", due.Year())
}

func byMonth(due time.Time) string {
	return filepath.Join(fmt.Sprintf("%04d", due.Year()), fmt.Sprintf("%02d", int(due.Month())))
}

// partition groups items by a due-date key, dropping items whose due date
// does not parse.
func partition(items []models.Assignment, key func(time.Time) string) map[string][]models.Assignment {
	groups := make(map[string][]models.Assignment)
	for _, item := range items {
		due, err := time.Parse(time.RFC3339, item.DueDate)
		if err != nil {
			continue
		}
		k := key(due)
		groups[k] = append(groups[k], item)
	}
	return groups
}
