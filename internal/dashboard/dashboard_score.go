package dashboard

import "math"

// Weights parameterize the compliance score. They are product policy and
// come from configuration.
type Weights struct {
	OverdueAuditPenalty  float64
	OpenGrievancePenalty float64
}

// Score is the audit pass rate minus penalties for overdue audits and open
// grievances, clamped to [0,100] and rounded to one decimal.
func Score(passRate float64, overdueAudits, openGrievances int64, w Weights) float64 {
	score := passRate -
		w.OverdueAuditPenalty*float64(overdueAudits) -
		w.OpenGrievancePenalty*float64(openGrievances)
	score = math.Max(0, math.Min(100, score))
	return math.Round(score*10) / 10
}
