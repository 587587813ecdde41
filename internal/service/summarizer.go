package service

import (
	"fmt"
	"strings"

	"github.com/jengzang/riskdash-backend/internal/models"
)

const topSubRegions = 3

// Summarize filters rows by the non-empty fields of f and reports the
// dominant value of each dimension by summed incident count. Filter values
// are trimmed and compared as-is against the snapshot; callers upper-case
// user input. An empty selection yields NoData sentinels, never an error.
func Summarize(rows []models.FeatureRow, f models.SummaryFilter) models.Summary {
	f = normalizeFilter(f)

	var filtered []models.FeatureRow
	var total int64
	for _, r := range rows {
		if !matchesFilter(r, f) {
			continue
		}
		filtered = append(filtered, r)
		total += r.Count
	}

	s := models.Summary{
		Total:         total,
		TimeSlot:      dominant(filtered, func(r models.FeatureRow) string { return r.TimeSlot }),
		TopSubRegions: topValues(filtered, func(r models.FeatureRow) string { return r.SubRegion }, topSubRegions),
		Gender:        dominant(filtered, func(r models.FeatureRow) string { return r.Gender }),
		AgeGroup:      dominant(filtered, func(r models.FeatureRow) string { return r.AgeGroup }),
		Weekday:       dominant(filtered, func(r models.FeatureRow) string { return r.Weekday }),
		CrimeType:     dominant(filtered, func(r models.FeatureRow) string { return r.CrimeType }),
	}
	s.Recommendations = recommendations(s.TimeSlot)
	return s
}

func normalizeFilter(f models.SummaryFilter) models.SummaryFilter {
	clean := strings.TrimSpace
	return models.SummaryFilter{
		SubRegion: clean(f.SubRegion),
		CrimeType: clean(f.CrimeType),
		AgeGroup:  clean(f.AgeGroup),
		TimeSlot:  clean(f.TimeSlot),
		Gender:    clean(f.Gender),
	}
}

func matchesFilter(r models.FeatureRow, f models.SummaryFilter) bool {
	eq := func(want, got string) bool { return want == "" || want == got }
	return eq(f.SubRegion, r.SubRegion) &&
		eq(f.CrimeType, r.CrimeType) &&
		eq(f.AgeGroup, r.AgeGroup) &&
		eq(f.TimeSlot, r.TimeSlot) &&
		eq(f.Gender, r.Gender)
}

// topValues ranks the non-empty values of field by summed count; ties keep
// first-seen order
func topValues(rows []models.FeatureRow, field func(models.FeatureRow) string, n int) []string {
	sums := make(map[string]int64)
	var order []string
	for _, r := range rows {
		v := field(r)
		if v == "" {
			continue
		}
		if _, ok := sums[v]; !ok {
			order = append(order, v)
		}
		sums[v] += r.Count
	}

	// stable insertion sort keeps first-seen order among equal sums
	for i := 1; i < len(order); i++ {
		for j := i; j > 0 && sums[order[j]] > sums[order[j-1]]; j-- {
			order[j], order[j-1] = order[j-1], order[j]
		}
	}

	if len(order) > n {
		order = order[:n]
	}
	if order == nil {
		return []string{}
	}
	return order
}

func dominant(rows []models.FeatureRow, field func(models.FeatureRow) string) string {
	top := topValues(rows, field, 1)
	if len(top) == 0 {
		return models.NoData
	}
	return top[0]
}

func recommendations(timeSlot string) []string {
	return []string{
		fmt.Sprintf("Evita desplazarte en la franja %s en zonas de alta concentración.", strings.ToLower(timeSlot)),
		"Usa rutas iluminadas y comparte itinerarios con familiares.",
		"Reporta incidentes por canales oficiales (123).",
	}
}
