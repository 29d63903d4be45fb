// Package schema defines the strict classification result model for
// privacy-policy analysis: nine boolean compliance indicators, third-party
// sharing details, and the COPPA/GDPR sub-analyses, together with the
// derived compliance score and risk level.
package schema

// RiskLevel buckets a compliance score into a coarse risk rating.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// ThirdPartyDetail describes one third party named in a policy and the data
// shared with it.
type ThirdPartyDetail struct {
	Name       string   `json:"name"`
	Purpose    string   `json:"purpose"`
	DataShared []string `json:"data_shared"`
}

// COPPAAnalysis captures the COPPA-specific findings of a policy.
type COPPAAnalysis struct {
	MentionsCOPPA        bool                 `json:"mentions_coppa"`
	ClaimsCompliance     bool                 `json:"claims_compliance"`
	ConsentMethods       []COPPAConsentMethod `json:"consent_methods"`
	ConsentMethodDetails string               `json:"consent_method_details"`
	ExceptionsClaimed    []COPPAException     `json:"exceptions_claimed"`
	ExceptionDetails     string               `json:"exception_details"`
	AgeThresholdStated   *int                 `json:"age_threshold_stated"`
}

// GDPRAnalysis captures the GDPR-specific findings of a policy.
type GDPRAnalysis struct {
	MentionsGDPR         bool                `json:"mentions_gdpr"`
	ClaimsCompliance     bool                `json:"claims_compliance"`
	ConsentMethods       []GDPRConsentMethod `json:"consent_methods"`
	ConsentMethodDetails string              `json:"consent_method_details"`
	LawfulBases          []GDPRLawfulBasis   `json:"lawful_bases"`
	LawfulBasisDetails   string              `json:"lawful_basis_details"`
	AgeThresholdStated   *int                `json:"age_threshold_stated"`
}

// ClassificationResult is the full structured verdict for one policy.
// The compliance score and risk level are derived from the booleans on
// demand and are never part of the wire format.
type ClassificationResult struct {
	DataCollectionDisclosure    bool `json:"data_collection_disclosure"`
	DataUsePurposeSpecification bool `json:"data_use_purpose_specification"`
	ThirdPartySharingDisclosure bool `json:"third_party_sharing_disclosure"`
	ParentalConsentMechanism    bool `json:"parental_consent_mechanism"`
	COPPAFERPAComplianceMention bool `json:"coppa_ferpa_compliance_mention"`
	DataRetentionPolicy         bool `json:"data_retention_policy"`
	UserDataRights              bool `json:"user_data_rights"`
	DataSecurityEncryption      bool `json:"data_security_encryption"`
	TrackingTechDisclosure      bool `json:"tracking_technologies_disclosure"`

	ThirdPartyList    []string           `json:"third_party_list"`
	ThirdPartyDetails []ThirdPartyDetail `json:"third_party_details"`

	COPPA COPPAAnalysis `json:"coppa_analysis"`
	GDPR  GDPRAnalysis  `json:"gdpr_analysis"`
}

// IndicatorColumns lists the nine indicator names in canonical order. The
// same order is used for flattened rows, summaries, and the wire schema.
func IndicatorColumns() []string {
	return []string{
		"data_collection_disclosure",
		"data_use_purpose_specification",
		"third_party_sharing_disclosure",
		"parental_consent_mechanism",
		"coppa_ferpa_compliance_mention",
		"data_retention_policy",
		"user_data_rights",
		"data_security_encryption",
		"tracking_technologies_disclosure",
	}
}

// Indicators returns the nine boolean values in canonical column order.
func (r *ClassificationResult) Indicators() []bool {
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

// Score counts the true indicators (0..9).
func (r *ClassificationResult) Score() int {
	score := 0
	for _, v := range r.Indicators() {
		if v {
			score++
		}
	}
	return score
}

// RiskLevel derives the risk rating from the current indicators.
func (r *ClassificationResult) RiskLevel() RiskLevel {
	return RiskForScore(r.Score())
}

// RiskForScore maps a compliance score to its risk bucket:
// 7..9 LOW, 4..6 MEDIUM, 0..3 HIGH.
func RiskForScore(score int) RiskLevel {
	switch {
	case score >= 7:
		return RiskLow
	case score >= 4:
		return RiskMedium
	default:
		return RiskHigh
	}
}

// EmptyResult returns the canonical all-false default used by every failure
// path: short-circuited inputs, failed analyses, and error rendering. All
// collections are initialized empty so downstream joins and JSON output stay
// uniform.
func EmptyResult() *ClassificationResult {
	return &ClassificationResult{
		ThirdPartyList:    []string{},
		ThirdPartyDetails: []ThirdPartyDetail{},
		COPPA: COPPAAnalysis{
			ConsentMethods:    []COPPAConsentMethod{},
			ExceptionsClaimed: []COPPAException{},
		},
		GDPR: GDPRAnalysis{
			ConsentMethods: []GDPRConsentMethod{},
			LawfulBases:    []GDPRLawfulBasis{},
		},
	}
}
