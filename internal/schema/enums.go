package schema

import (
	"encoding/json"
	"fmt"
)

// The four enum families below are closed sets: decoding any member outside
// the listed values is a schema violation, mirroring the strict wire
// contract enforced on the classifier backend.

// COPPAConsentMethod is an FTC-recognized verifiable parental consent
// mechanism under COPPA.
type COPPAConsentMethod string

const (
	COPPAConsentSignedForm      COPPAConsentMethod = "signed_consent_form"
	COPPAConsentCreditDebitCard COPPAConsentMethod = "credit_debit_card"
	COPPAConsentTollFreePhone   COPPAConsentMethod = "toll_free_phone"
	COPPAConsentVideoConference COPPAConsentMethod = "video_conference"
	COPPAConsentGovernmentID    COPPAConsentMethod = "government_id"
	COPPAConsentKnowledgeAuth   COPPAConsentMethod = "knowledge_based_auth"
	COPPAConsentEmailPlus       COPPAConsentMethod = "email_plus"
	COPPAConsentSchool          COPPAConsentMethod = "school_consent"
	COPPAConsentOther           COPPAConsentMethod = "other"
	COPPAConsentNotSpecified    COPPAConsentMethod = "not_specified"
	COPPAConsentNotApplicable   COPPAConsentMethod = "not_applicable"
)

// COPPAException is a recognized exception to the parental-consent
// requirement.
type COPPAException string

const (
	COPPAExceptionSchoolAuthorization COPPAException = "school_authorization"
	COPPAExceptionOneTimeResponse     COPPAException = "one_time_response"
	COPPAExceptionInternalOperations  COPPAException = "internal_operations"
	COPPAExceptionChildSafety         COPPAException = "child_safety"
	COPPAExceptionMultipleContact     COPPAException = "multiple_contact"
	COPPAExceptionNoneClaimed         COPPAException = "none_claimed"
	COPPAExceptionNotApplicable       COPPAException = "not_applicable"
)

// GDPRConsentMethod is a parental consent verification method under GDPR.
type GDPRConsentMethod string

const (
	GDPRConsentWritten           GDPRConsentMethod = "written_consent"
	GDPRConsentEmailVerification GDPRConsentMethod = "email_verification"
	GDPRConsentParentAccountLink GDPRConsentMethod = "parent_account_linking"
	GDPRConsentVideoPhone        GDPRConsentMethod = "video_phone_verification"
	GDPRConsentIDDocument        GDPRConsentMethod = "id_document"
	GDPRConsentReasonableEfforts GDPRConsentMethod = "reasonable_efforts"
	GDPRConsentOther             GDPRConsentMethod = "other"
	GDPRConsentNotSpecified      GDPRConsentMethod = "not_specified"
	GDPRConsentNotApplicable     GDPRConsentMethod = "not_applicable"
)

// GDPRLawfulBasis is a lawful basis for processing children's data.
type GDPRLawfulBasis string

const (
	GDPRBasisConsent              GDPRLawfulBasis = "consent"
	GDPRBasisContract             GDPRLawfulBasis = "contract"
	GDPRBasisLegalObligation      GDPRLawfulBasis = "legal_obligation"
	GDPRBasisVitalInterests       GDPRLawfulBasis = "vital_interests"
	GDPRBasisPublicTask           GDPRLawfulBasis = "public_task"
	GDPRBasisLegitimateInterests  GDPRLawfulBasis = "legitimate_interests"
	GDPRBasisPreventiveCounseling GDPRLawfulBasis = "preventive_counseling"
	GDPRBasisNotSpecified         GDPRLawfulBasis = "not_specified"
	GDPRBasisNotApplicable        GDPRLawfulBasis = "not_applicable"
)

// COPPAConsentMethods lists every valid member in declaration order.
func COPPAConsentMethods() []COPPAConsentMethod {
	return []COPPAConsentMethod{
		COPPAConsentSignedForm,
		COPPAConsentCreditDebitCard,
		COPPAConsentTollFreePhone,
		COPPAConsentVideoConference,
		COPPAConsentGovernmentID,
		COPPAConsentKnowledgeAuth,
		COPPAConsentEmailPlus,
		COPPAConsentSchool,
		COPPAConsentOther,
		COPPAConsentNotSpecified,
		COPPAConsentNotApplicable,
	}
}

// COPPAExceptions lists every valid member in declaration order.
func COPPAExceptions() []COPPAException {
	return []COPPAException{
		COPPAExceptionSchoolAuthorization,
		COPPAExceptionOneTimeResponse,
		COPPAExceptionInternalOperations,
		COPPAExceptionChildSafety,
		COPPAExceptionMultipleContact,
		COPPAExceptionNoneClaimed,
		COPPAExceptionNotApplicable,
	}
}

// GDPRConsentMethods lists every valid member in declaration order.
func GDPRConsentMethods() []GDPRConsentMethod {
	return []GDPRConsentMethod{
		GDPRConsentWritten,
		GDPRConsentEmailVerification,
		GDPRConsentParentAccountLink,
		GDPRConsentVideoPhone,
		GDPRConsentIDDocument,
		GDPRConsentReasonableEfforts,
		GDPRConsentOther,
		GDPRConsentNotSpecified,
		GDPRConsentNotApplicable,
	}
}

// GDPRLawfulBases lists every valid member in declaration order.
func GDPRLawfulBases() []GDPRLawfulBasis {
	return []GDPRLawfulBasis{
		GDPRBasisConsent,
		GDPRBasisContract,
		GDPRBasisLegalObligation,
		GDPRBasisVitalInterests,
		GDPRBasisPublicTask,
		GDPRBasisLegitimateInterests,
		GDPRBasisPreventiveCounseling,
		GDPRBasisNotSpecified,
		GDPRBasisNotApplicable,
	}
}

// Valid reports membership in the closed set.
func (m COPPAConsentMethod) Valid() bool {
	for _, v := range COPPAConsentMethods() {
		if m == v {
			return true
		}
	}
	return false
}

func (e COPPAException) Valid() bool {
	for _, v := range COPPAExceptions() {
		if e == v {
			return true
		}
	}
	return false
}

func (m GDPRConsentMethod) Valid() bool {
	for _, v := range GDPRConsentMethods() {
		if m == v {
			return true
		}
	}
	return false
}

func (b GDPRLawfulBasis) Valid() bool {
	for _, v := range GDPRLawfulBases() {
		if b == v {
			return true
		}
	}
	return false
}

// UnmarshalJSON rejects members outside the closed set so that enum
// violations surface during decode rather than downstream.
func (m *COPPAConsentMethod) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v := COPPAConsentMethod(s)
	if !v.Valid() {
		return fmt.Errorf("unknown coppa consent method %q", s)
	}
	*m = v
	return nil
}

func (e *COPPAException) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v := COPPAException(s)
	if !v.Valid() {
		return fmt.Errorf("unknown coppa exception %q", s)
	}
	*e = v
	return nil
}

func (m *GDPRConsentMethod) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v := GDPRConsentMethod(s)
	if !v.Valid() {
		return fmt.Errorf("unknown gdpr consent method %q", s)
	}
	*m = v
	return nil
}

func (b *GDPRLawfulBasis) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v := GDPRLawfulBasis(s)
	if !v.Valid() {
		return fmt.Errorf("unknown gdpr lawful basis %q", s)
	}
	*b = v
	return nil
}
