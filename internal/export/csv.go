// Package export writes aggregation results to disk as CSV for manual
// review and CRM import.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	organizationdomain "github.com/oneeighty/connect/internal/organization/domain"
)

var csvHeader = []string{
	"id",
	"name",
	"status",
	"company_type",
	"address",
	"postcode",
	"city",
	"region",
	"website",
	"activities",
	"email",
	"source",
}

// Writer writes organization snapshots under a base directory, one file
// per run.
type Writer struct {
	dir string
}

func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// Write dumps the records to <dir>/organizations_<runID>.csv and returns
// the full path. The directory is created on first use.
func (w *Writer) Write(runID string, records []organizationdomain.Organization) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}

	path := filepath.Join(w.dir, fmt.Sprintf("organizations_%s.csv", runID))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create export file: %w", err)
	}
	defer f.Close()

	if err := WriteCSV(f, records); err != nil {
		return "", err
	}
	return path, nil
}

// WriteCSV streams the records as CSV to any writer. Used by the file
// export above and by the HTTP download endpoint.
func WriteCSV(out io.Writer, records []organizationdomain.Organization) error {
	cw := csv.NewWriter(out)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range records {
		row := []string{
			r.ID.String(),
			r.Name,
			r.Status,
			r.CompanyType,
			r.Address,
			r.Postcode,
			r.City,
			r.Region,
			r.Website,
			r.Activities,
			r.Email,
			r.SourceName,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Filename suggests a download name for ad-hoc exports.
func Filename(now time.Time) string {
	return fmt.Sprintf("organizations_%s.csv", now.Format("20060102T150405"))
}
