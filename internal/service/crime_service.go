package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/jengzang/riskdash-backend/internal/apperr"
	"github.com/jengzang/riskdash-backend/internal/models"
)

const (
	defaultQueryLimit  = 100
	maxQueryLimit      = 1000
	defaultRecentLimit = 20
	maxRecentLimit     = 200
)

// incidentNamespace seeds the deterministic alert ids
var incidentNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("riskdash/incidents"))

// CrimeService answers record-level queries over the snapshot
type CrimeService struct {
	state *State
}

// NewCrimeService creates a crime service
func NewCrimeService(state *State) *CrimeService {
	return &CrimeService{state: state}
}

// Query filters rows by equality on the non-empty fields of q
func (s *CrimeService) Query(ctx context.Context, q models.CrimeQuery) ([]models.CrimeRecord, error) {
	limit, err := clampLimit(q.Limit, defaultQueryLimit, maxQueryLimit)
	if err != nil {
		return nil, err
	}
	if q.Month < 0 || q.Month > 12 {
		return nil, apperr.New(apperr.InvalidInput, "mes must be between 1 and 12")
	}

	table, err := s.state.Table(ctx)
	if err != nil {
		return nil, err
	}

	sub := strings.ToUpper(strings.TrimSpace(q.SubRegion))
	crime := strings.ToUpper(strings.TrimSpace(q.CrimeType))

	out := make([]models.CrimeRecord, 0)
	for _, r := range table.Rows() {
		if len(out) >= limit {
			break
		}
		if sub != "" && r.SubRegion != sub {
			continue
		}
		if crime != "" && r.CrimeType != crime {
			continue
		}
		if q.Year != 0 && r.Year != q.Year {
			continue
		}
		if q.Month != 0 && r.Month != q.Month {
			continue
		}
		out = append(out, crimeRecord(r))
	}
	return out, nil
}

func crimeRecord(r models.FeatureRow) models.CrimeRecord {
	rec := models.CrimeRecord{
		Region:       r.Region,
		IncidentDate: r.IncidentDate,
		CrimeType:    r.CrimeType,
		Count:        r.Count,
	}
	if r.SubRegion != "" {
		sub := r.SubRegion
		rec.SubRegion = &sub
	}
	return rec
}

// Recent returns the latest rows by incident date as alert records
func (s *CrimeService) Recent(ctx context.Context, limit int) ([]models.CrimeAlert, error) {
	limit, err := clampLimit(limit, defaultRecentLimit, maxRecentLimit)
	if err != nil {
		return nil, err
	}

	table, err := s.state.Table(ctx)
	if err != nil {
		return nil, err
	}

	rows := append([]models.FeatureRow(nil), table.Rows()...)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].IncidentDate > rows[j].IncidentDate })
	if len(rows) > limit {
		rows = rows[:limit]
	}

	counts := make([]float64, 0, table.Len())
	for _, r := range table.Rows() {
		counts = append(counts, float64(r.Count))
	}
	scale := newSeverityScale(counts)
	attending := attendingSubRegions(table)

	out := make([]models.CrimeAlert, len(rows))
	for i, r := range rows {
		out[i] = models.CrimeAlert{
			ID:          alertID(r),
			Type:        strings.ToLower(strings.ReplaceAll(strings.TrimSpace(r.CrimeType), " ", "_")),
			Description: fmt.Sprintf("%d casos de %s", r.Count, strings.ToLower(r.CrimeType)),
			Location:    locationLabel(r.SubRegion, r.Region),
			Date:        r.IncidentDate,
			Severity:    scale.classify(float64(r.Count)),
			State:       incidentState(attending, r.SubRegion),
		}
	}
	return out, nil
}

// alertID is stable across restarts for the same row
func alertID(r models.FeatureRow) string {
	key := fmt.Sprintf("%s|%s|%s|%s|%d|%s|%s|%s",
		r.Region, r.SubRegion, r.IncidentDate, r.CrimeType, r.Count, r.Gender, r.AgeGroup, r.TimeSlot)
	return uuid.NewSHA1(incidentNamespace, []byte(key)).String()
}

func clampLimit(limit, def, max int) (int, error) {
	switch {
	case limit < 0:
		return 0, apperr.New(apperr.InvalidInput, "limit must not be negative")
	case limit == 0:
		return def, nil
	case limit > max:
		return max, nil
	}
	return limit, nil
}
