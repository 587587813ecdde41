package repository

import (
	"sort"
	"strings"

	"github.com/jengzang/riskdash-backend/internal/models"
)

// FeatureTable is the immutable, region-filtered snapshot with period indexes.
// It is safe for concurrent reads.
type FeatureTable struct {
	region   string
	rows     []models.FeatureRow
	byPeriod map[models.Period][]int
	periods  []models.Period
}

// NewFeatureTable indexes rows; the slice must not be modified afterwards
func NewFeatureTable(region string, rows []models.FeatureRow) *FeatureTable {
	t := &FeatureTable{
		region:   region,
		rows:     rows,
		byPeriod: make(map[models.Period][]int),
	}
	for i, row := range rows {
		p := row.Period()
		if _, ok := t.byPeriod[p]; !ok {
			t.periods = append(t.periods, p)
		}
		t.byPeriod[p] = append(t.byPeriod[p], i)
	}
	sort.Slice(t.periods, func(i, j int) bool {
		return t.periods[i].Before(t.periods[j])
	})
	return t
}

// Region returns the region the table was restricted to
func (t *FeatureTable) Region() string {
	return t.region
}

// Len returns the number of rows
func (t *FeatureTable) Len() int {
	return len(t.rows)
}

// Rows returns all rows in snapshot order
func (t *FeatureTable) Rows() []models.FeatureRow {
	return t.rows
}

// Periods returns the distinct periods ascending by (year, month)
func (t *FeatureTable) Periods() []models.Period {
	return t.periods
}

// LatestPeriod returns the last period, false when the table is empty
func (t *FeatureTable) LatestPeriod() (models.Period, bool) {
	if len(t.periods) == 0 {
		return models.Period{}, false
	}
	return t.periods[len(t.periods)-1], true
}

// LatestYear returns the greatest year, 0 when the table is empty
func (t *FeatureTable) LatestYear() int {
	p, ok := t.LatestPeriod()
	if !ok {
		return 0
	}
	return p.Year
}

// PeriodRows returns the rows of one period in snapshot order
func (t *FeatureTable) PeriodRows(p models.Period) []models.FeatureRow {
	idx := t.byPeriod[p]
	out := make([]models.FeatureRow, len(idx))
	for i, j := range idx {
		out[i] = t.rows[j]
	}
	return out
}

// Where returns the rows matching pred in snapshot order
func (t *FeatureTable) Where(pred func(models.FeatureRow) bool) []models.FeatureRow {
	var out []models.FeatureRow
	for _, row := range t.rows {
		if pred(row) {
			out = append(out, row)
		}
	}
	return out
}

// YearRows returns the rows of one year
func (t *FeatureTable) YearRows(year int) []models.FeatureRow {
	return t.Where(func(r models.FeatureRow) bool { return r.Year == year })
}

// Distinct returns the non-empty values of field in first-seen order
func (t *FeatureTable) Distinct(field func(models.FeatureRow) string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, row := range t.rows {
		v := field(row)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// SubRegions returns the distinct sub-regions sorted alphabetically
func (t *FeatureTable) SubRegions() []string {
	out := t.Distinct(func(r models.FeatureRow) string { return r.SubRegion })
	sort.Strings(out)
	return out
}

// SelectRepresentative returns the row with the highest count among the rows
// of period p (and sub-region, when non-empty). Ties keep the first row in
// snapshot order. ok is false when nothing matches.
func (t *FeatureTable) SelectRepresentative(subRegion string, p models.Period) (models.FeatureRow, bool) {
	var best models.FeatureRow
	found := false
	for _, j := range t.byPeriod[p] {
		row := t.rows[j]
		if subRegion != "" && !strings.EqualFold(row.SubRegion, subRegion) {
			continue
		}
		if !found || row.Count > best.Count {
			best = row
			found = true
		}
	}
	return best, found
}
