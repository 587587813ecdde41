package service

import (
	"github.com/jengzang/riskdash-backend/internal/repository"
	"github.com/jengzang/riskdash-backend/internal/stats"
)

// Severity levels shown on the dashboard map and alerts table
const (
	SeverityCritical = "crítica"
	SeverityHigh     = "alta"
	SeverityMedium   = "media"
	SeverityLow      = "baja"
)

// Incident states
const (
	StateAttending = "En Atención"
	StateReported  = "Reportado"
)

// severityScale classifies values against the p50/p75/p90 of a population
type severityScale struct {
	p50, p75, p90 float64
}

func newSeverityScale(values []float64) severityScale {
	q := stats.Percentiles(values, []float64{50, 75, 90})
	return severityScale{p50: q[0], p75: q[1], p90: q[2]}
}

func (s severityScale) classify(v float64) string {
	switch {
	case v >= s.p90:
		return SeverityCritical
	case v >= s.p75:
		return SeverityHigh
	case v >= s.p50:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// attendingSubRegions lists the sub-regions with a high-risk row in the latest period
func attendingSubRegions(table *repository.FeatureTable) map[string]struct{} {
	out := make(map[string]struct{})
	latest, ok := table.LatestPeriod()
	if !ok {
		return out
	}
	for _, r := range table.PeriodRows(latest) {
		if r.SubRegion != "" && r.RiskLabel == 1 {
			out[r.SubRegion] = struct{}{}
		}
	}
	return out
}

func incidentState(attending map[string]struct{}, subRegion string) string {
	if _, ok := attending[subRegion]; ok {
		return StateAttending
	}
	return StateReported
}
