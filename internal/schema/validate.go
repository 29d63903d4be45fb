package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ValidationError reports why a classifier response failed strict schema
// validation. It is terminal: callers must not retry the request that
// produced it.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 0 {
		return "schema validation failed"
	}
	return "schema validation failed: " + strings.Join(e.Problems, "; ")
}

func violation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Problems: []string{fmt.Sprintf(format, args...)}}
}

// wireResult mirrors ClassificationResult with pointer fields so that
// missing required members are distinguishable from zero values.
type wireResult struct {
	DataCollectionDisclosure    *bool `json:"data_collection_disclosure"`
	DataUsePurposeSpecification *bool `json:"data_use_purpose_specification"`
	ThirdPartySharingDisclosure *bool `json:"third_party_sharing_disclosure"`
	ParentalConsentMechanism    *bool `json:"parental_consent_mechanism"`
	COPPAFERPAComplianceMention *bool `json:"coppa_ferpa_compliance_mention"`
	DataRetentionPolicy         *bool `json:"data_retention_policy"`
	UserDataRights              *bool `json:"user_data_rights"`
	DataSecurityEncryption      *bool `json:"data_security_encryption"`
	TrackingTechDisclosure      *bool `json:"tracking_technologies_disclosure"`

	ThirdPartyList    *[]string         `json:"third_party_list"`
	ThirdPartyDetails *[]wireThirdParty `json:"third_party_details"`

	COPPA *wireCOPPA `json:"coppa_analysis"`
	GDPR  *wireGDPR  `json:"gdpr_analysis"`
}

type wireThirdParty struct {
	Name       *string   `json:"name"`
	Purpose    *string   `json:"purpose"`
	DataShared *[]string `json:"data_shared"`
}

type wireCOPPA struct {
	MentionsCOPPA        *bool                 `json:"mentions_coppa"`
	ClaimsCompliance     *bool                 `json:"claims_compliance"`
	ConsentMethods       *[]COPPAConsentMethod `json:"consent_methods"`
	ConsentMethodDetails *string               `json:"consent_method_details"`
	ExceptionsClaimed    *[]COPPAException     `json:"exceptions_claimed"`
	ExceptionDetails     *string               `json:"exception_details"`
	AgeThresholdStated   *int                  `json:"age_threshold_stated"`
}

type wireGDPR struct {
	MentionsGDPR         *bool                `json:"mentions_gdpr"`
	ClaimsCompliance     *bool                `json:"claims_compliance"`
	ConsentMethods       *[]GDPRConsentMethod `json:"consent_methods"`
	ConsentMethodDetails *string              `json:"consent_method_details"`
	LawfulBases          *[]GDPRLawfulBasis   `json:"lawful_bases"`
	LawfulBasisDetails   *string              `json:"lawful_basis_details"`
	AgeThresholdStated   *int                 `json:"age_threshold_stated"`
}

// Validate decodes raw classifier output under the strict contract: unknown
// fields at any level, enum members outside their closed set, missing
// required fields, and type mismatches are all violations. Derived fields
// (score, risk level) are not part of the wire format, so their presence
// also fails as unknown fields.
func Validate(raw []byte) (*ClassificationResult, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()

	var w wireResult
	if err := dec.Decode(&w); err != nil {
		return nil, violation("%v", err)
	}
	if dec.More() {
		return nil, violation("trailing data after result object")
	}

	var problems []string
	missing := func(field string, ok bool) {
		if !ok {
			problems = append(problems, fmt.Sprintf("missing required field %q", field))
		}
	}

	missing("data_collection_disclosure", w.DataCollectionDisclosure != nil)
	missing("data_use_purpose_specification", w.DataUsePurposeSpecification != nil)
	missing("third_party_sharing_disclosure", w.ThirdPartySharingDisclosure != nil)
	missing("parental_consent_mechanism", w.ParentalConsentMechanism != nil)
	missing("coppa_ferpa_compliance_mention", w.COPPAFERPAComplianceMention != nil)
	missing("data_retention_policy", w.DataRetentionPolicy != nil)
	missing("user_data_rights", w.UserDataRights != nil)
	missing("data_security_encryption", w.DataSecurityEncryption != nil)
	missing("tracking_technologies_disclosure", w.TrackingTechDisclosure != nil)
	missing("third_party_list", w.ThirdPartyList != nil)
	missing("third_party_details", w.ThirdPartyDetails != nil)
	missing("coppa_analysis", w.COPPA != nil)
	missing("gdpr_analysis", w.GDPR != nil)

	if w.COPPA != nil {
		missing("coppa_analysis.mentions_coppa", w.COPPA.MentionsCOPPA != nil)
		missing("coppa_analysis.claims_compliance", w.COPPA.ClaimsCompliance != nil)
		missing("coppa_analysis.consent_methods", w.COPPA.ConsentMethods != nil)
		missing("coppa_analysis.consent_method_details", w.COPPA.ConsentMethodDetails != nil)
		missing("coppa_analysis.exceptions_claimed", w.COPPA.ExceptionsClaimed != nil)
		missing("coppa_analysis.exception_details", w.COPPA.ExceptionDetails != nil)
	}
	if w.GDPR != nil {
		missing("gdpr_analysis.mentions_gdpr", w.GDPR.MentionsGDPR != nil)
		missing("gdpr_analysis.claims_compliance", w.GDPR.ClaimsCompliance != nil)
		missing("gdpr_analysis.consent_methods", w.GDPR.ConsentMethods != nil)
		missing("gdpr_analysis.consent_method_details", w.GDPR.ConsentMethodDetails != nil)
		missing("gdpr_analysis.lawful_bases", w.GDPR.LawfulBases != nil)
		missing("gdpr_analysis.lawful_basis_details", w.GDPR.LawfulBasisDetails != nil)
	}
	if w.ThirdPartyDetails != nil {
		for i, tp := range *w.ThirdPartyDetails {
			missing(fmt.Sprintf("third_party_details[%d].name", i), tp.Name != nil)
			missing(fmt.Sprintf("third_party_details[%d].purpose", i), tp.Purpose != nil)
			missing(fmt.Sprintf("third_party_details[%d].data_shared", i), tp.DataShared != nil)
		}
	}

	if len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}

	result := &ClassificationResult{
		DataCollectionDisclosure:    *w.DataCollectionDisclosure,
		DataUsePurposeSpecification: *w.DataUsePurposeSpecification,
		ThirdPartySharingDisclosure: *w.ThirdPartySharingDisclosure,
		ParentalConsentMechanism:    *w.ParentalConsentMechanism,
		COPPAFERPAComplianceMention: *w.COPPAFERPAComplianceMention,
		DataRetentionPolicy:         *w.DataRetentionPolicy,
		UserDataRights:              *w.UserDataRights,
		DataSecurityEncryption:      *w.DataSecurityEncryption,
		TrackingTechDisclosure:      *w.TrackingTechDisclosure,
		ThirdPartyList:              *w.ThirdPartyList,
		COPPA: COPPAAnalysis{
			MentionsCOPPA:        *w.COPPA.MentionsCOPPA,
			ClaimsCompliance:     *w.COPPA.ClaimsCompliance,
			ConsentMethods:       *w.COPPA.ConsentMethods,
			ConsentMethodDetails: *w.COPPA.ConsentMethodDetails,
			ExceptionsClaimed:    *w.COPPA.ExceptionsClaimed,
			ExceptionDetails:     *w.COPPA.ExceptionDetails,
			AgeThresholdStated:   w.COPPA.AgeThresholdStated,
		},
		GDPR: GDPRAnalysis{
			MentionsGDPR:         *w.GDPR.MentionsGDPR,
			ClaimsCompliance:     *w.GDPR.ClaimsCompliance,
			ConsentMethods:       *w.GDPR.ConsentMethods,
			ConsentMethodDetails: *w.GDPR.ConsentMethodDetails,
			LawfulBases:          *w.GDPR.LawfulBases,
			LawfulBasisDetails:   *w.GDPR.LawfulBasisDetails,
			AgeThresholdStated:   w.GDPR.AgeThresholdStated,
		},
	}

	details := make([]ThirdPartyDetail, 0, len(*w.ThirdPartyDetails))
	for _, tp := range *w.ThirdPartyDetails {
		details = append(details, ThirdPartyDetail{
			Name:       *tp.Name,
			Purpose:    *tp.Purpose,
			DataShared: *tp.DataShared,
		})
	}
	result.ThirdPartyDetails = details

	return result, nil
}
