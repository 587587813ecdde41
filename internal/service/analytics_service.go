package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/jengzang/riskdash-backend/internal/apperr"
	"github.com/jengzang/riskdash-backend/internal/cache"
	"github.com/jengzang/riskdash-backend/internal/models"
	"github.com/jengzang/riskdash-backend/internal/repository"
	"github.com/jengzang/riskdash-backend/internal/riskmodel"
	"github.com/jengzang/riskdash-backend/internal/stats"
)

// rankingSize is the number of sub-regions returned with a prediction
const rankingSize = 5

// KPI card names
const (
	KPIIncidentsTotal = "incidents/total"
	KPIResponseTime   = "response-time"
	KPICrimeRate      = "crime-rate"
	KPICasesResolved  = "cases/resolved"
)

// AnalyticsService serves the dashboard analytics over the loaded snapshot
type AnalyticsService struct {
	state *State
	cache *cache.Cache
	noise NoiseSource
}

// NewAnalyticsService creates an analytics service; cache may be nil
func NewAnalyticsService(state *State, c *cache.Cache, noise NoiseSource) *AnalyticsService {
	if noise == nil {
		noise = ZeroNoise{}
	}
	return &AnalyticsService{state: state, cache: c, noise: noise}
}

func (s *AnalyticsService) load(ctx context.Context) (*repository.FeatureTable, riskmodel.Classifier, error) {
	table, err := s.state.Table(ctx)
	if err != nil {
		return nil, nil, err
	}
	model, err := s.state.Model(ctx)
	if err != nil {
		return nil, nil, err
	}
	return table, model, nil
}

// Metrics evaluates the model on the last year of the snapshot
func (s *AnalyticsService) Metrics(ctx context.Context) (models.ModelMetrics, error) {
	return cache.GetOrLoad(ctx, s.cache, "analytics:metrics", func() (models.ModelMetrics, error) {
		table, model, err := s.load(ctx)
		if err != nil {
			return models.ModelMetrics{}, err
		}
		ev := riskmodel.Evaluate(model, table.YearRows(table.LatestYear()))
		return models.ModelMetrics{ROCAUC: ev.ROCAUC, PRAUC: ev.PRAUC, Report: ev.Report}, nil
	})
}

// PredictRisk scores the representative row of (subRegion, year, month).
// A zero year or month selects the latest period. No matching row is NotFound.
func (s *AnalyticsService) PredictRisk(ctx context.Context, subRegion string, year, month int) (*models.RiskPrediction, error) {
	table, model, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	period, err := resolvePeriod(table, year, month)
	if err != nil {
		return nil, err
	}

	subRegion = strings.ToUpper(strings.TrimSpace(subRegion))
	row, ok := table.SelectRepresentative(subRegion, period)
	if !ok {
		return nil, apperr.New(apperr.NotFound, "no features for %s %02d/%d", locationLabel(subRegion, table.Region()), period.Month, period.Year)
	}

	in := riskmodel.InputFromRow(row)
	label, proba := riskmodel.Score(model, in)

	summary := Summarize(table.Rows(), models.SummaryFilter{SubRegion: subRegion})
	return &models.RiskPrediction{
		Prediction:   label,
		Probability:  proba,
		UsedFeatures: in.Map(),
		Year:         period.Year,
		Month:        period.Month,
		Context:      riskContext(locationLabel(subRegion, table.Region()), period, label, proba, summary),
		Ranking:      rankSubRegions(table, model, period),
	}, nil
}

// FallbackPrediction turns a NotFound prediction error into a zero-confidence
// response flagged as fallback. Other errors are returned unchanged.
func FallbackPrediction(region, subRegion string, year, month int, err error) (*models.RiskPrediction, error) {
	if !apperr.Is(err, apperr.NotFound) {
		return nil, err
	}
	sub := strings.ToUpper(strings.TrimSpace(subRegion))
	if sub == "" {
		sub = models.NoData
	}
	return &models.RiskPrediction{
		UsedFeatures: map[string]interface{}{
			"departamento": region,
			"municipio":    sub,
			"anio":         year,
			"mes":          month,
		},
		Year:     year,
		Month:    month,
		Fallback: true,
		Ranking:  []models.SubRegionRisk{},
	}, nil
}

func resolvePeriod(table *repository.FeatureTable, year, month int) (models.Period, error) {
	if month < 0 || month > 12 {
		return models.Period{}, apperr.New(apperr.InvalidInput, "mes must be between 1 and 12")
	}
	if year < 0 {
		return models.Period{}, apperr.New(apperr.InvalidInput, "anio must be positive")
	}
	if year != 0 && month != 0 {
		return models.Period{Year: year, Month: month}, nil
	}

	latest, ok := table.LatestPeriod()
	if !ok {
		return models.Period{}, apperr.New(apperr.NotFound, "snapshot holds no periods")
	}
	if year != 0 {
		latest.Year = year
	}
	if month != 0 {
		latest.Month = month
	}
	return latest, nil
}

func locationLabel(subRegion, region string) string {
	if subRegion != "" {
		return subRegion
	}
	return region
}

func riskContext(location string, p models.Period, label int, proba float64, s models.Summary) *models.RiskContext {
	level := "bajo"
	if label == 1 {
		level = "alto"
	}
	msg := fmt.Sprintf("Riesgo %s en %s para %02d/%d (probabilidad %.1f%%). Mayor incidencia en la franja %s, delito predominante %s.",
		level, location, p.Month, p.Year, proba*100, strings.ToLower(s.TimeSlot), s.CrimeType)
	return &models.RiskContext{
		Message:   msg,
		Gender:    s.Gender,
		AgeGroup:  s.AgeGroup,
		Weekday:   s.Weekday,
		TimeSlot:  s.TimeSlot,
		CrimeType: s.CrimeType,
	}
}

// rankSubRegions scores the representative row of every sub-region in p
func rankSubRegions(table *repository.FeatureTable, model riskmodel.Classifier, p models.Period) []models.SubRegionRisk {
	var subs []string
	var inputs []riskmodel.Input
	seen := make(map[string]struct{})
	for _, r := range table.PeriodRows(p) {
		if r.SubRegion == "" {
			continue
		}
		if _, ok := seen[r.SubRegion]; ok {
			continue
		}
		seen[r.SubRegion] = struct{}{}
		row, _ := table.SelectRepresentative(r.SubRegion, p)
		subs = append(subs, r.SubRegion)
		inputs = append(inputs, riskmodel.InputFromRow(row))
	}

	ranking := make([]models.SubRegionRisk, 0, len(subs))
	if len(subs) == 0 {
		return ranking
	}

	scores := make([]float64, len(subs))
	if pc, ok := model.(riskmodel.ProbabilisticClassifier); ok {
		scores = pc.PredictProba(inputs)
	} else {
		for i, label := range model.Predict(inputs) {
			scores[i] = float64(label)
		}
	}

	for i, sub := range subs {
		ranking = append(ranking, models.SubRegionRisk{SubRegion: sub, Probability: scores[i]})
	}
	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].Probability > ranking[j].Probability
	})
	if len(ranking) > rankingSize {
		ranking = ranking[:rankingSize]
	}
	for i := range ranking {
		ranking[i].Rank = i + 1
	}
	return ranking
}

// Trend returns the actual vs. predicted series
func (s *AnalyticsService) Trend(ctx context.Context) ([]models.TrendPoint, error) {
	table, model, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return BuildTrend(table, model, s.noise), nil
}

// Reduction returns the reduction percentage of the last trend period
func (s *AnalyticsService) Reduction(ctx context.Context) (models.ReductionResponse, error) {
	points, err := s.Trend(ctx)
	if err != nil {
		return models.ReductionResponse{}, err
	}
	return ReductionPercentage(points), nil
}

// Distribution sums incidents per sub-region over the last year, descending
func (s *AnalyticsService) Distribution(ctx context.Context) ([]models.SubRegionDistribution, error) {
	return cache.GetOrLoad(ctx, s.cache, "analytics:distribution", func() ([]models.SubRegionDistribution, error) {
		table, err := s.state.Table(ctx)
		if err != nil {
			return nil, err
		}

		sums := make(map[string]int64)
		var order []string
		for _, r := range table.YearRows(table.LatestYear()) {
			if r.SubRegion == "" {
				continue
			}
			if _, ok := sums[r.SubRegion]; !ok {
				order = append(order, r.SubRegion)
			}
			sums[r.SubRegion] += r.Count
		}

		out := make([]models.SubRegionDistribution, len(order))
		for i, sub := range order {
			out[i] = models.SubRegionDistribution{SubRegion: sub, Incidents: sums[sub]}
		}
		sort.SliceStable(out, func(i, j int) bool { return out[i].Incidents > out[j].Incidents })
		return out, nil
	})
}

// SubRegions lists the distinct sub-regions, sorted
func (s *AnalyticsService) SubRegions(ctx context.Context) ([]string, error) {
	return cache.GetOrLoad(ctx, s.cache, "analytics:municipios", func() ([]string, error) {
		table, err := s.state.Table(ctx)
		if err != nil {
			return nil, err
		}
		subs := table.SubRegions()
		if subs == nil {
			subs = []string{}
		}
		return subs, nil
	})
}

// KPI computes a dashboard card and its change vs. the previous window
func (s *AnalyticsService) KPI(ctx context.Context, name string) (models.KPI, error) {
	table, err := s.state.Table(ctx)
	if err != nil {
		return models.KPI{}, err
	}
	periods := table.Periods()

	var cur, prev float64
	switch name {
	case KPIIncidentsTotal:
		cur = windowCount(table, periods, 0, 1)
		prev = windowCount(table, periods, 1, 1)
	case KPIResponseTime:
		cur = windowCount(table, periods, 0, 3)
		prev = windowCount(table, periods, 3, 3)
	case KPICrimeRate:
		cur = meanRegionRate(table, periods, 0)
		prev = meanRegionRate(table, periods, 1)
	case KPICasesResolved:
		cur = lowRiskSubRegions(table, periods, 0)
		prev = lowRiskSubRegions(table, periods, 1)
	default:
		return models.KPI{}, apperr.New(apperr.InvalidInput, "unknown KPI %q", name)
	}

	return models.KPI{
		Value:        stats.Round(cur, 4),
		VariationPct: stats.Round(stats.PercentChange(prev, cur), 2),
	}, nil
}

// periodsBack returns up to n periods ending offset periods before the latest
func periodsBack(periods []models.Period, offset, n int) []models.Period {
	end := len(periods) - offset
	if end <= 0 {
		return nil
	}
	start := end - n
	if start < 0 {
		start = 0
	}
	return periods[start:end]
}

func windowCount(table *repository.FeatureTable, periods []models.Period, offset, n int) float64 {
	var total int64
	for _, p := range periodsBack(periods, offset, n) {
		for _, r := range table.PeriodRows(p) {
			total += r.Count
		}
	}
	return float64(total)
}

func meanRegionRate(table *repository.FeatureTable, periods []models.Period, offset int) float64 {
	var values []float64
	for _, p := range periodsBack(periods, offset, 1) {
		for _, r := range table.PeriodRows(p) {
			if !math.IsNaN(r.RegionRateLag) {
				values = append(values, r.RegionRateLag)
			}
		}
	}
	return stats.Mean(values)
}

func lowRiskSubRegions(table *repository.FeatureTable, periods []models.Period, offset int) float64 {
	high := make(map[string]bool)
	for _, p := range periodsBack(periods, offset, 1) {
		for _, r := range table.PeriodRows(p) {
			if r.SubRegion == "" {
				continue
			}
			high[r.SubRegion] = high[r.SubRegion] || r.RiskLabel == 1
		}
	}
	var n float64
	for _, isHigh := range high {
		if !isHigh {
			n++
		}
	}
	return n
}
