package report

import "policyscan/internal/schema"

// Summary aggregates flat records from a finished or partial run. Compliance
// rates, the average score, and the risk distribution cover classified
// records only; skipped and failed records count toward Total and ErrorCounts.
type Summary struct {
	Total       int
	Classified  int
	Errors      int
	ErrorCounts map[string]int

	// ComplianceRates maps each indicator column to the fraction of
	// classified records where it was true.
	ComplianceRates map[string]float64
	AverageScore    float64
	RiskCounts      map[schema.RiskLevel]int
}

// Summarize computes aggregate statistics over records.
func Summarize(records []FlatRecord) Summary {
	s := Summary{
		ErrorCounts:     make(map[string]int),
		ComplianceRates: make(map[string]float64),
		RiskCounts:      make(map[schema.RiskLevel]int),
	}

	trueCounts := make([]int, len(schema.IndicatorColumns()))
	scoreSum := 0
	for _, rec := range records {
		s.Total++
		if rec.Error != "" {
			s.Errors++
			s.ErrorCounts[rec.Error]++
			continue
		}
		s.Classified++
		for i, v := range rec.Indicators() {
			if v {
				trueCounts[i]++
			}
		}
		score := rec.Score()
		scoreSum += score
		s.RiskCounts[schema.RiskForScore(score)]++
	}

	if s.Classified > 0 {
		for i, name := range schema.IndicatorColumns() {
			s.ComplianceRates[name] = float64(trueCounts[i]) / float64(s.Classified)
		}
		s.AverageScore = float64(scoreSum) / float64(s.Classified)
	}
	return s
}
