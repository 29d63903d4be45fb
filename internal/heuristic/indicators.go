// Package heuristic scores pre-extracted questionnaire datasets with keyword
// rules instead of classifier calls. It serves spreadsheets that carry
// structured Q&A answers about an app's privacy practices rather than raw
// policy text.
package heuristic

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"policyscan/internal/dataset"
	"policyscan/internal/logging"
	"policyscan/internal/report"
)

// Questionnaire columns recognized by the evaluator.
const (
	ColDataCollected   = "What data is collected?"
	ColWhyNeeded       = "Why is it needed?"
	ColWhoShared       = "Who is it shared with?"
	ColFamilyPolicy    = "FamilyPolicy"
	ColUnder13         = "policyUnder13_Yes"
	ColCOPPAAsserted   = "Vendor asserted COPPA Compliance Only"
	ColCOPPASafeHarbor = "COPPA Safe Harbor"
	ColRetention       = "How long is data retained?"
	ColUserRights      = "What are a user's rights?"
	ColSecurity        = "What security measures are taken?"
	ColHasAds          = "misc_hasAds"
	ColBehavioralAds   = "misc_hasBehavioralAds"
	ColRetargeting     = "misc_retargetingPresentField_Yes"
)

// Source yields the cell for a named questionnaire column, empty when absent.
type Source func(column string) string

// placeholders disqualify an answer regardless of its length.
var placeholders = map[string]bool{
	"":              true,
	"nan":           true,
	"none":          true,
	"not specified": true,
	"unknown":       true,
}

// Evaluate derives the nine indicators from one row of questionnaire
// answers. Free-text checks require a substantive answer (length floor,
// no placeholder) and, where the question alone is not enough, at least
// one on-topic keyword.
func Evaluate(src Source) report.FlatRecord {
	dataCollected := strings.ToLower(src(ColDataCollected))
	whyNeeded := strings.ToLower(src(ColWhyNeeded))
	whoShared := strings.ToLower(src(ColWhoShared))
	familyPolicy := strings.ToLower(src(ColFamilyPolicy))
	retention := strings.ToLower(src(ColRetention))
	rights := strings.ToLower(src(ColUserRights))
	security := strings.ToLower(src(ColSecurity))

	return report.FlatRecord{
		DataCollectionDisclosure: answered(dataCollected, 20),

		DataUsePurposeSpecification: answered(whyNeeded, 20) &&
			containsAny(whyNeeded, "education", "learning", "service"),

		ThirdPartySharingDisclosure: answered(whoShared, 10) &&
			whoShared != "no one" && whoShared != "not shared",

		ParentalConsentMechanism: flagSet(src(ColUnder13)) ||
			containsAny(familyPolicy, "parent", "consent"),

		COPPAFERPAComplianceMention: flagSet(src(ColCOPPAAsserted)) ||
			flagSet(src(ColCOPPASafeHarbor)) ||
			containsAny(familyPolicy, "coppa", "ferpa"),

		DataRetentionPolicy: answered(retention, 10) && retention != "indefinitely",

		UserDataRights: answered(rights, 10) &&
			containsAny(rights, "access", "delete", "correct", "review", "control"),

		DataSecurityEncryption: answered(security, 10) &&
			containsAny(security, "encrypt", "secure", "protect", "ssl", "tls", "firewall"),

		TrackingTechDisclosure: flagSet(src(ColHasAds)) ||
			flagSet(src(ColBehavioralAds)) ||
			flagSet(src(ColRetargeting)),
	}
}

// EvaluateAll scores every row of a questionnaire table. App identity falls
// back from the snake_case columns to the spreadsheet-style ones, then to a
// synthesized app_<index>.
func EvaluateAll(t *dataset.Table) []report.FlatRecord {
	log := logging.Get(logging.CategoryBatch)
	rows := make([]report.FlatRecord, 0, t.Len())

	for i := 0; i < t.Len(); i++ {
		if i%100 == 0 {
			log.Info("Scoring row %d/%d", i+1, t.Len())
		}

		rec := Evaluate(func(col string) string { return t.Get(i, col) })
		rec.AppID = firstNonEmpty(t.Get(i, "app_id"), t.Get(i, "App ID"))
		if rec.AppID == "" {
			rec.AppID = fmt.Sprintf("app_%d", i)
		}
		rec.AppName = firstNonEmpty(t.Get(i, "app_name"), t.Get(i, "App Name"))
		rows = append(rows, rec)
	}

	log.Info("Scored %d rows from %s", len(rows), t.Path)
	return rows
}

// answered reports whether a lowered answer is substantive: longer than
// minChars and not a placeholder.
func answered(text string, minChars int) bool {
	return utf8.RuneCountInString(text) > minChars && !placeholders[text]
}

func containsAny(text string, terms ...string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}

// flagSet interprets spreadsheet truthy cells: "1" and float exports like
// "1.0" both count.
func flagSet(cell string) bool {
	f, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	return err == nil && f == 1
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
