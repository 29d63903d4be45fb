// Package report turns classification results into flat tabular rows,
// persists whole-snapshot output artifacts, and computes aggregate
// statistics over finished or partial runs.
package report

import (
	"strconv"
	"strings"

	"policyscan/internal/schema"
)

// Error codes recorded in the output artifact.
const (
	ErrEmptyOrShortPolicy = "empty_or_short_policy"
	ErrAnalysisFailed     = "analysis_failed"
)

// FlatRecord is one denormalized output row. The nine indicators stay typed;
// every nested detail renders to a string so failed records can hold empty
// cells instead of fabricated values. The compliance score and risk level
// are derived from the indicators at write time, never stored.
type FlatRecord struct {
	AppID   string
	AppName string

	DataCollectionDisclosure    bool
	DataUsePurposeSpecification bool
	ThirdPartySharingDisclosure bool
	ParentalConsentMechanism    bool
	COPPAFERPAComplianceMention bool
	DataRetentionPolicy         bool
	UserDataRights              bool
	DataSecurityEncryption      bool
	TrackingTechDisclosure      bool

	ThirdPartyList    string
	ThirdPartyDetails string

	COPPAMentions         string
	COPPAClaimsCompliance string
	COPPAConsentMethods   string
	COPPAConsentDetails   string
	COPPAExceptions       string
	COPPAExceptionDetails string
	COPPAAgeThreshold     string

	GDPRMentions           string
	GDPRClaimsCompliance   string
	GDPRConsentMethods     string
	GDPRConsentDetails     string
	GDPRLawfulBases        string
	GDPRLawfulBasisDetails string
	GDPRAgeThreshold       string

	Error string
}

// Flatten renders a successful classification into a FlatRecord.
func Flatten(appID, appName string, r *schema.ClassificationResult) FlatRecord {
	details := make([]string, 0, len(r.ThirdPartyDetails))
	for _, d := range r.ThirdPartyDetails {
		details = append(details, formatThirdParty(d))
	}

	return FlatRecord{
		AppID:   appID,
		AppName: appName,

		DataCollectionDisclosure:    r.DataCollectionDisclosure,
		DataUsePurposeSpecification: r.DataUsePurposeSpecification,
		ThirdPartySharingDisclosure: r.ThirdPartySharingDisclosure,
		ParentalConsentMechanism:    r.ParentalConsentMechanism,
		COPPAFERPAComplianceMention: r.COPPAFERPAComplianceMention,
		DataRetentionPolicy:         r.DataRetentionPolicy,
		UserDataRights:              r.UserDataRights,
		DataSecurityEncryption:      r.DataSecurityEncryption,
		TrackingTechDisclosure:      r.TrackingTechDisclosure,

		ThirdPartyList:    strings.Join(r.ThirdPartyList, "; "),
		ThirdPartyDetails: strings.Join(details, " | "),

		COPPAMentions:         strconv.FormatBool(r.COPPA.MentionsCOPPA),
		COPPAClaimsCompliance: strconv.FormatBool(r.COPPA.ClaimsCompliance),
		COPPAConsentMethods:   joinEnums(r.COPPA.ConsentMethods),
		COPPAConsentDetails:   r.COPPA.ConsentMethodDetails,
		COPPAExceptions:       joinEnums(r.COPPA.ExceptionsClaimed),
		COPPAExceptionDetails: r.COPPA.ExceptionDetails,
		COPPAAgeThreshold:     formatAge(r.COPPA.AgeThresholdStated),

		GDPRMentions:           strconv.FormatBool(r.GDPR.MentionsGDPR),
		GDPRClaimsCompliance:   strconv.FormatBool(r.GDPR.ClaimsCompliance),
		GDPRConsentMethods:     joinEnums(r.GDPR.ConsentMethods),
		GDPRConsentDetails:     r.GDPR.ConsentMethodDetails,
		GDPRLawfulBases:        joinEnums(r.GDPR.LawfulBases),
		GDPRLawfulBasisDetails: r.GDPR.LawfulBasisDetails,
		GDPRAgeThreshold:       formatAge(r.GDPR.AgeThresholdStated),
	}
}

// ErrorRecord renders a skipped or failed record: nine false indicators,
// every detail cell empty, and the error code set.
func ErrorRecord(appID, appName, code string) FlatRecord {
	return FlatRecord{
		AppID:   appID,
		AppName: appName,
		Error:   code,
	}
}

// Indicators returns the nine boolean values in canonical column order.
func (r FlatRecord) Indicators() []bool {
	return []bool{
		r.DataCollectionDisclosure,
		r.DataUsePurposeSpecification,
		r.ThirdPartySharingDisclosure,
		r.ParentalConsentMechanism,
		r.COPPAFERPAComplianceMention,
		r.DataRetentionPolicy,
		r.UserDataRights,
		r.DataSecurityEncryption,
		r.TrackingTechDisclosure,
	}
}

// Score counts the true indicators.
func (r FlatRecord) Score() int {
	score := 0
	for _, v := range r.Indicators() {
		if v {
			score++
		}
	}
	return score
}

// RiskLevel derives the risk bucket from the current indicators.
func (r FlatRecord) RiskLevel() schema.RiskLevel {
	return schema.RiskForScore(r.Score())
}

// formatThirdParty renders one third party as "Name (purpose): data, data".
// Empty purpose or data lists drop their segment rather than rendering
// placeholders.
func formatThirdParty(d schema.ThirdPartyDetail) string {
	s := d.Name
	if d.Purpose != "" {
		s += " (" + d.Purpose + ")"
	}
	if len(d.DataShared) > 0 {
		s += ": " + strings.Join(d.DataShared, ", ")
	}
	return s
}

func joinEnums[T ~string](items []T) string {
	if len(items) == 0 {
		return ""
	}
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = string(item)
	}
	return strings.Join(parts, "; ")
}

func formatAge(age *int) string {
	if age == nil {
		return ""
	}
	return strconv.Itoa(*age)
}
