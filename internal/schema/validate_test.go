package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validResultJSON = `{
	"data_collection_disclosure": true,
	"data_use_purpose_specification": true,
	"third_party_sharing_disclosure": true,
	"parental_consent_mechanism": false,
	"coppa_ferpa_compliance_mention": true,
	"data_retention_policy": false,
	"user_data_rights": true,
	"data_security_encryption": true,
	"tracking_technologies_disclosure": true,
	"third_party_list": ["Google Analytics", "AWS"],
	"third_party_details": [
		{"name": "Google Analytics", "purpose": "analytics", "data_shared": ["usage data", "device ID"]},
		{"name": "AWS", "purpose": "cloud storage", "data_shared": ["all collected data"]}
	],
	"coppa_analysis": {
		"mentions_coppa": true,
		"claims_compliance": true,
		"consent_methods": ["school_consent", "email_plus"],
		"consent_method_details": "Schools may consent on behalf of parents.",
		"exceptions_claimed": ["school_authorization"],
		"exception_details": "Consent obtained through the educational institution.",
		"age_threshold_stated": 13
	},
	"gdpr_analysis": {
		"mentions_gdpr": false,
		"claims_compliance": false,
		"consent_methods": ["not_specified"],
		"consent_method_details": "",
		"lawful_bases": ["not_specified"],
		"lawful_basis_details": "",
		"age_threshold_stated": null
	}
}`

// mutateJSON re-decodes the valid document, applies fn, and re-encodes it.
func mutateJSON(t *testing.T, fn func(map[string]interface{})) []byte {
	t.Helper()
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(validResultJSON), &doc))
	fn(doc)
	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	return raw
}

func TestValidateAcceptsCompleteResult(t *testing.T) {
	result, err := Validate([]byte(validResultJSON))
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.True(t, result.DataCollectionDisclosure)
	assert.False(t, result.ParentalConsentMechanism)
	assert.Equal(t, []string{"Google Analytics", "AWS"}, result.ThirdPartyList)
	require.Len(t, result.ThirdPartyDetails, 2)
	assert.Equal(t, "analytics", result.ThirdPartyDetails[0].Purpose)

	assert.True(t, result.COPPA.MentionsCOPPA)
	assert.Equal(t, []COPPAConsentMethod{COPPAConsentSchool, COPPAConsentEmailPlus}, result.COPPA.ConsentMethods)
	require.NotNil(t, result.COPPA.AgeThresholdStated)
	assert.Equal(t, 13, *result.COPPA.AgeThresholdStated)

	assert.False(t, result.GDPR.MentionsGDPR)
	assert.Nil(t, result.GDPR.AgeThresholdStated)

	assert.Equal(t, 7, result.Score())
	assert.Equal(t, RiskLow, result.RiskLevel())
}

func TestValidateRejectsUnknownTopLevelField(t *testing.T) {
	raw := mutateJSON(t, func(doc map[string]interface{}) {
		doc["unexpected_field"] = "surprise"
	})

	result, err := Validate(raw)
	assert.Nil(t, result)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Error(), "unexpected_field")
}

func TestValidateRejectsDerivedFieldsOnTheWire(t *testing.T) {
	// Score and risk are computed locally; a response carrying them is out
	// of contract.
	for _, field := range []string{"privacy_compliance_score", "privacy_risk_level"} {
		t.Run(field, func(t *testing.T) {
			raw := mutateJSON(t, func(doc map[string]interface{}) {
				doc[field] = 9
			})
			_, err := Validate(raw)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
		})
	}
}

func TestValidateRejectsUnknownEnumMember(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(map[string]interface{})
	}{
		{
			name: "coppa consent method",
			mutate: func(doc map[string]interface{}) {
				coppa := doc["coppa_analysis"].(map[string]interface{})
				coppa["consent_methods"] = []string{"telepathy"}
			},
		},
		{
			name: "coppa exception",
			mutate: func(doc map[string]interface{}) {
				coppa := doc["coppa_analysis"].(map[string]interface{})
				coppa["exceptions_claimed"] = []string{"cosmic_rays"}
			},
		},
		{
			name: "gdpr lawful basis",
			mutate: func(doc map[string]interface{}) {
				gdpr := doc["gdpr_analysis"].(map[string]interface{})
				gdpr["lawful_bases"] = []string{"vibes"}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := mutateJSON(t, tt.mutate)
			result, err := Validate(raw)
			assert.Nil(t, result)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
		})
	}
}

func TestValidateRejectsMissingRequiredField(t *testing.T) {
	raw := mutateJSON(t, func(doc map[string]interface{}) {
		delete(doc, "user_data_rights")
	})

	_, err := Validate(raw)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Error(), "user_data_rights")
}

func TestValidateRejectsMissingNestedField(t *testing.T) {
	raw := mutateJSON(t, func(doc map[string]interface{}) {
		coppa := doc["coppa_analysis"].(map[string]interface{})
		delete(coppa, "consent_method_details")
	})

	_, err := Validate(raw)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Error(), "coppa_analysis.consent_method_details")
}

func TestValidateRejectsUnknownNestedField(t *testing.T) {
	raw := mutateJSON(t, func(doc map[string]interface{}) {
		gdpr := doc["gdpr_analysis"].(map[string]interface{})
		gdpr["extra_gdpr_note"] = "nope"
	})

	_, err := Validate(raw)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestValidateRejectsTypeMismatch(t *testing.T) {
	raw := mutateJSON(t, func(doc map[string]interface{}) {
		doc["data_collection_disclosure"] = "yes"
	})

	_, err := Validate(raw)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestValidateRejectsTrailingData(t *testing.T) {
	raw := validResultJSON + `{"another": "object"}`
	_, err := Validate([]byte(raw))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Error(), "trailing")
}

func TestValidateRejectsNonObject(t *testing.T) {
	for _, raw := range []string{"", "[]", `"text"`, "not json at all"} {
		_, err := Validate([]byte(raw))
		assert.Error(t, err, "input %q must fail", raw)
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{}
	assert.Equal(t, "schema validation failed", err.Error())

	err = &ValidationError{Problems: []string{"a", "b"}}
	assert.Equal(t, "schema validation failed: a; b", err.Error())
}
