package dataset

import (
	"strings"
)

// ColumnInfo describes one input column with a sample value.
type ColumnInfo struct {
	Name   string
	Sample string
}

// Report summarizes an input file for pre-flight inspection: every column
// with its first non-empty value, keyword-detected column mappings, and a
// count of rows whose policy text is too short to classify.
type Report struct {
	Path          string
	Rows          int
	Columns       []ColumnInfo
	Detected      Columns
	ShortPolicies int
}

const sampleLimit = 100

var (
	policyTerms = []string{"policy", "privacy", "text", "content"}
	idTerms     = []string{"id", "identifier", "app_id"}
	nameTerms   = []string{"name", "app", "title"}
)

// Inspect loads a CSV and reports its columns, guessed mappings, and how
// many rows would short-circuit as empty or short policies.
func Inspect(path string, minPolicyChars int) (*Report, error) {
	records, header, err := loadRaw(path)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Path: path,
		Rows: len(records),
	}

	for i, name := range header {
		info := ColumnInfo{Name: name}
		for _, row := range records {
			if i < len(row) && strings.TrimSpace(row[i]) != "" {
				info.Sample = truncateSample(row[i])
				break
			}
		}
		report.Columns = append(report.Columns, info)
	}

	report.Detected = detectColumns(header)

	if report.Detected.Policy != "" {
		policyIdx := columnIndex(header, report.Detected.Policy)
		for _, row := range records {
			if len(strings.TrimSpace(cell(row, policyIdx))) < minPolicyChars {
				report.ShortPolicies++
			}
		}
	}

	return report, nil
}

// detectColumns guesses the policy, id, and name columns by keyword. A
// column claimed for one role is not considered for the next; for each
// role the last matching column wins.
func detectColumns(header []string) Columns {
	var detected Columns
	for _, name := range header {
		lower := strings.ToLower(name)
		switch {
		case containsAny(lower, policyTerms):
			detected.Policy = name
		case containsAny(lower, idTerms):
			detected.ID = name
		case containsAny(lower, nameTerms):
			detected.Name = name
		}
	}
	return detected
}

func containsAny(s string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(s, term) {
			return true
		}
	}
	return false
}

func truncateSample(s string) string {
	runes := []rune(s)
	if len(runes) <= sampleLimit {
		return s
	}
	return string(runes[:sampleLimit]) + "..."
}
