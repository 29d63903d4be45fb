package schema

import "sync"

// ResponseSchemaName identifies the structured-output schema to backends
// that require a named json_schema response format.
const ResponseSchemaName = "policy_analysis"

var (
	responseSchemaOnce sync.Once
	responseSchema     map[string]interface{}
)

// ResponseSchema returns the JSON Schema enforced on classifier output.
// Every object level forbids additional properties and requires all fields,
// so backend-side enforcement matches Validate exactly.
func ResponseSchema() map[string]interface{} {
	responseSchemaOnce.Do(func() {
		responseSchema = buildResponseSchema()
	})
	return responseSchema
}

func boolProp(desc string) map[string]interface{} {
	return map[string]interface{}{"type": "boolean", "description": desc}
}

func stringProp(desc string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "description": desc}
}

func stringArrayProp(desc string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "array",
		"description": desc,
		"items":       map[string]interface{}{"type": "string"},
	}
}

func enumArrayProp[T ~string](desc string, members []T) map[string]interface{} {
	values := make([]string, len(members))
	for i, m := range members {
		values[i] = string(m)
	}
	return map[string]interface{}{
		"type":        "array",
		"description": desc,
		"items":       map[string]interface{}{"type": "string", "enum": values},
	}
}

func nullableIntProp(desc string) map[string]interface{} {
	return map[string]interface{}{"type": []string{"integer", "null"}, "description": desc}
}

func strictObject(props map[string]interface{}, required []string) map[string]interface{} {
	return map[string]interface{}{
		"type":                 "object",
		"properties":           props,
		"required":             required,
		"additionalProperties": false,
	}
}

func buildResponseSchema() map[string]interface{} {
	thirdPartyDetail := strictObject(map[string]interface{}{
		"name":        stringProp("Name of the third party receiving data"),
		"purpose":     stringProp("Purpose for sharing with this third party (analytics, advertising, cloud storage, or 'not specified')"),
		"data_shared": stringArrayProp("Specific data types shared with this third party"),
	}, []string{"name", "purpose", "data_shared"})

	coppa := strictObject(map[string]interface{}{
		"mentions_coppa":         boolProp("TRUE if the policy explicitly mentions COPPA"),
		"claims_compliance":      boolProp("TRUE if the policy claims COPPA compliance"),
		"consent_methods":        enumArrayProp("Verifiable parental consent methods described in the policy", COPPAConsentMethods()),
		"consent_method_details": stringProp("Quoted or paraphrased policy text describing consent methods"),
		"exceptions_claimed":     enumArrayProp("COPPA parental-consent exceptions claimed in the policy", COPPAExceptions()),
		"exception_details":      stringProp("Quoted or paraphrased policy text describing exceptions"),
		"age_threshold_stated":   nullableIntProp("Age threshold stated for parental consent, or null if none stated"),
	}, []string{
		"mentions_coppa", "claims_compliance", "consent_methods",
		"consent_method_details", "exceptions_claimed", "exception_details",
		"age_threshold_stated",
	})

	gdpr := strictObject(map[string]interface{}{
		"mentions_gdpr":          boolProp("TRUE if the policy explicitly mentions GDPR"),
		"claims_compliance":      boolProp("TRUE if the policy claims GDPR compliance"),
		"consent_methods":        enumArrayProp("Parental consent verification methods for GDPR", GDPRConsentMethods()),
		"consent_method_details": stringProp("Quoted or paraphrased policy text describing consent methods"),
		"lawful_bases":           enumArrayProp("Lawful bases claimed for processing children's data", GDPRLawfulBases()),
		"lawful_basis_details":   stringProp("Quoted or paraphrased policy text describing lawful bases"),
		"age_threshold_stated":   nullableIntProp("Age of digital consent stated, or null if none stated"),
	}, []string{
		"mentions_gdpr", "claims_compliance", "consent_methods",
		"consent_method_details", "lawful_bases", "lawful_basis_details",
		"age_threshold_stated",
	})

	return strictObject(map[string]interface{}{
		"data_collection_disclosure":       boolProp("TRUE if the policy clearly discloses the types of personal data collected"),
		"data_use_purpose_specification":   boolProp("TRUE if the policy specifies purposes for data use and limits use to them"),
		"third_party_sharing_disclosure":   boolProp("TRUE if the policy details if and how data is shared with third parties"),
		"parental_consent_mechanism":       boolProp("TRUE if the policy addresses verifiable parental consent for children's data"),
		"coppa_ferpa_compliance_mention":   boolProp("TRUE if the policy explicitly mentions COPPA and/or FERPA compliance"),
		"data_retention_policy":            boolProp("TRUE if the policy provides a retention schedule or deletion timeframes"),
		"user_data_rights":                 boolProp("TRUE if the policy grants rights to access, correct, or delete data"),
		"data_security_encryption":         boolProp("TRUE if the policy names security measures such as encryption or access controls"),
		"tracking_technologies_disclosure": boolProp("TRUE if the policy discloses cookies, beacons, analytics, or other tracking"),
		"third_party_list":                 stringArrayProp("All third parties named in the policy that receive data"),
		"third_party_details":              map[string]interface{}{"type": "array", "description": "Per-party detail of what data is shared and why", "items": thirdPartyDetail},
		"coppa_analysis":                   coppa,
		"gdpr_analysis":                    gdpr,
	}, []string{
		"data_collection_disclosure", "data_use_purpose_specification",
		"third_party_sharing_disclosure", "parental_consent_mechanism",
		"coppa_ferpa_compliance_mention", "data_retention_policy",
		"user_data_rights", "data_security_encryption",
		"tracking_technologies_disclosure", "third_party_list",
		"third_party_details", "coppa_analysis", "gdpr_analysis",
	})
}
