// Package dataset loads flat tabular policy datasets for classification.
// Input is CSV with a header row; columns are addressed by configurable
// names so datasets exported from app-store scrapes load without renaming.
package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"policyscan/internal/logging"
)

// Columns names the input columns carrying policy text and app identity.
type Columns struct {
	Policy string
	ID     string
	Name   string
}

// DefaultColumns returns the conventional column names.
func DefaultColumns() Columns {
	return Columns{Policy: "policy_text", ID: "app_id", Name: "app_name"}
}

// PolicyRecord is one input row, positioned by its zero-based index.
type PolicyRecord struct {
	Index      int
	AppID      string
	AppName    string
	PolicyText string
}

// Load reads every record from a CSV file. A column missing from the header
// yields empty values per record rather than failing the load; the batch
// runner decides what an empty policy or identifier means.
func Load(path string, cols Columns) ([]PolicyRecord, error) {
	rows, header, err := loadRaw(path)
	if err != nil {
		return nil, err
	}

	policyIdx := columnIndex(header, cols.Policy)
	idIdx := columnIndex(header, cols.ID)
	nameIdx := columnIndex(header, cols.Name)

	log := logging.Get(logging.CategoryDataset)
	if policyIdx < 0 {
		log.Warn("Policy column %q not found in %s; every record will load empty", cols.Policy, path)
	}

	records := make([]PolicyRecord, 0, len(rows))
	for i, row := range rows {
		records = append(records, PolicyRecord{
			Index:      i,
			AppID:      cell(row, idIdx),
			AppName:    cell(row, nameIdx),
			PolicyText: cell(row, policyIdx),
		})
	}

	log.Info("Loaded %d records from %s", len(records), path)
	return records, nil
}

// loadRaw reads the whole file, returning data rows and the header with any
// leading UTF-8 BOM stripped.
func loadRaw(path string) (rows [][]string, header []string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	all, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(all) == 0 {
		return nil, nil, fmt.Errorf("input file %s has no header row", path)
	}

	header = all[0]
	if len(header) > 0 {
		// Spreadsheet exports tend to lead with a UTF-8 BOM.
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}
	return all[1:], header, nil
}

func columnIndex(header []string, name string) int {
	for i, h := range header {
		if h == name {
			return i
		}
	}
	return -1
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
