package report

import (
	"fmt"
	"io"

	"policyscan/internal/schema"
)

// SingleDocument is the nested JSON rendering of a one-off analysis. The
// embedded result keeps coppa_analysis and gdpr_analysis as sub-objects
// while its top-level fields sit beside app_id and the derived values.
type SingleDocument struct {
	AppID string `json:"app_id"`
	*schema.ClassificationResult
	Score int              `json:"privacy_compliance_score"`
	Risk  schema.RiskLevel `json:"privacy_risk_level"`
}

// NewSingleDocument builds the JSON rendering for one classified policy.
func NewSingleDocument(appID string, r *schema.ClassificationResult) SingleDocument {
	return SingleDocument{
		AppID:                appID,
		ClassificationResult: r,
		Score:                r.Score(),
		Risk:                 r.RiskLevel(),
	}
}

// RenderKeyValues writes one "column: value" line per output column in
// Header order. The app_id is skipped since callers print it as a heading,
// and the app_name and error cells are skipped when empty.
func RenderKeyValues(w io.Writer, rec FlatRecord) error {
	header := Header()
	row := rec.Row()
	for i, name := range header {
		switch name {
		case "app_id":
			continue
		case "app_name", "error":
			if row[i] == "" {
				continue
			}
		}
		if _, err := fmt.Fprintf(w, "%s: %s\n", name, row[i]); err != nil {
			return err
		}
	}
	return nil
}
