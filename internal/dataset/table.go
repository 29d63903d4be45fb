package dataset

import "policyscan/internal/logging"

// Table is a raw view of an input file for callers that address columns by
// header name, such as the questionnaire scorer.
type Table struct {
	Path   string
	header []string
	index  map[string]int
	rows   [][]string
}

// LoadTable reads the whole file without binding to fixed column names.
func LoadTable(path string) (*Table, error) {
	rows, header, err := loadRaw(path)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		index[h] = i
	}

	logging.Get(logging.CategoryDataset).Info("Loaded %d rows, %d columns from %s", len(rows), len(header), path)
	return &Table{Path: path, header: header, index: index, rows: rows}, nil
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Columns returns the header in file order.
func (t *Table) Columns() []string {
	return append([]string(nil), t.header...)
}

// Get returns the cell at row and column, empty when either is absent.
func (t *Table) Get(row int, column string) string {
	if row < 0 || row >= len(t.rows) {
		return ""
	}
	idx, ok := t.index[column]
	if !ok {
		return ""
	}
	return cell(t.rows[row], idx)
}
