package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"policyscan/internal/schema"
)

// Header returns the fixed column order of the output artifact. Every
// snapshot carries exactly these columns regardless of how many records
// succeeded, short-circuited, or failed.
func Header() []string {
	cols := []string{"app_id", "app_name"}
	cols = append(cols, schema.IndicatorColumns()...)
	cols = append(cols,
		"third_party_list",
		"third_party_details",
		"coppa_mentions",
		"coppa_claims_compliance",
		"coppa_consent_methods",
		"coppa_consent_details",
		"coppa_exceptions",
		"coppa_exception_details",
		"coppa_age_threshold",
		"gdpr_mentions",
		"gdpr_claims_compliance",
		"gdpr_consent_methods",
		"gdpr_consent_details",
		"gdpr_lawful_bases",
		"gdpr_lawful_basis_details",
		"gdpr_age_threshold",
		"privacy_compliance_score",
		"privacy_risk_level",
		"error",
	)
	return cols
}

// Row renders the record in Header order. Score and risk level are computed
// from the indicators here so a stored artifact can never disagree with them.
func (r FlatRecord) Row() []string {
	score := r.Score()

	row := make([]string, 0, len(Header()))
	row = append(row, r.AppID, r.AppName)
	for _, v := range r.Indicators() {
		row = append(row, strconv.FormatBool(v))
	}
	row = append(row,
		r.ThirdPartyList,
		r.ThirdPartyDetails,
		r.COPPAMentions,
		r.COPPAClaimsCompliance,
		r.COPPAConsentMethods,
		r.COPPAConsentDetails,
		r.COPPAExceptions,
		r.COPPAExceptionDetails,
		r.COPPAAgeThreshold,
		r.GDPRMentions,
		r.GDPRClaimsCompliance,
		r.GDPRConsentMethods,
		r.GDPRConsentDetails,
		r.GDPRLawfulBases,
		r.GDPRLawfulBasisDetails,
		r.GDPRAgeThreshold,
		strconv.Itoa(score),
		string(schema.RiskForScore(score)),
		r.Error,
	)
	return row
}

// WriteSnapshot replaces the artifact at path with the full record set.
// The write lands in a sibling temp file first and moves into place with a
// rename, so an interrupted run never leaves a half-written artifact behind.
func WriteSnapshot(path string, records []FlatRecord) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create temp output file: %w", err)
	}

	if err := writeRecords(f, records); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write output file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to sync output file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to close output file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace output file: %w", err)
	}
	return nil
}

func writeRecords(f *os.File, records []FlatRecord) error {
	w := csv.NewWriter(f)
	if err := w.Write(Header()); err != nil {
		return err
	}
	for _, rec := range records {
		if err := w.Write(rec.Row()); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// ReadSnapshot loads a previously written artifact so a resumed run can seed
// its snapshot from durable output instead of reclassifying. The header must
// match Header exactly, otherwise the rows cannot be mapped safely.
func ReadSnapshot(path string) ([]FlatRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open output file: %w", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read output file: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("output file %s has no header row", path)
	}
	if !slices.Equal(rows[0], Header()) {
		return nil, fmt.Errorf("output file %s does not match the expected column layout", path)
	}

	records := make([]FlatRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		records = append(records, recordFromRow(row))
	}
	return records, nil
}

// recordFromRow is the inverse of Row. The reader has already enforced a
// uniform field count, so the cursor never runs past the row.
func recordFromRow(row []string) FlatRecord {
	i := 0
	next := func() string {
		v := row[i]
		i++
		return v
	}
	nextBool := func() bool {
		v, _ := strconv.ParseBool(next())
		return v
	}

	var rec FlatRecord
	rec.AppID = next()
	rec.AppName = next()

	rec.DataCollectionDisclosure = nextBool()
	rec.DataUsePurposeSpecification = nextBool()
	rec.ThirdPartySharingDisclosure = nextBool()
	rec.ParentalConsentMechanism = nextBool()
	rec.COPPAFERPAComplianceMention = nextBool()
	rec.DataRetentionPolicy = nextBool()
	rec.UserDataRights = nextBool()
	rec.DataSecurityEncryption = nextBool()
	rec.TrackingTechDisclosure = nextBool()

	rec.ThirdPartyList = next()
	rec.ThirdPartyDetails = next()

	rec.COPPAMentions = next()
	rec.COPPAClaimsCompliance = next()
	rec.COPPAConsentMethods = next()
	rec.COPPAConsentDetails = next()
	rec.COPPAExceptions = next()
	rec.COPPAExceptionDetails = next()
	rec.COPPAAgeThreshold = next()

	rec.GDPRMentions = next()
	rec.GDPRClaimsCompliance = next()
	rec.GDPRConsentMethods = next()
	rec.GDPRConsentDetails = next()
	rec.GDPRLawfulBases = next()
	rec.GDPRLawfulBasisDetails = next()
	rec.GDPRAgeThreshold = next()

	// Score and risk level are derived columns, recomputed on the next write.
	next()
	next()
	rec.Error = next()
	return rec
}
