package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/riskdash-backend/internal/apperr"
	"github.com/jengzang/riskdash-backend/internal/cache"
	"github.com/jengzang/riskdash-backend/internal/models"
	"github.com/jengzang/riskdash-backend/internal/repository"
)

func newAnalytics(t *testing.T) *AnalyticsService {
	t.Helper()
	c := cache.New(cache.NewLocalCache(time.Minute, 100, 0), nil)
	t.Cleanup(func() { c.Close() })
	return NewAnalyticsService(fixtureState(), c, ZeroNoise{})
}

func TestPredictRisk_SelectsHighestCountRow(t *testing.T) {
	svc := newAnalytics(t)

	pred, err := svc.PredictRisk(context.Background(), "bucaramanga", 2024, 1)
	require.NoError(t, err)

	assert.Equal(t, 1, pred.Prediction)
	assert.InDelta(t, 0.7, pred.Probability, 1e-9)
	assert.Equal(t, 70.0, pred.UsedFeatures["acumulado_90d"])
	assert.Equal(t, "SANTANDER", pred.UsedFeatures["departamento"])
	assert.False(t, pred.Fallback)

	require.NotNil(t, pred.Context)
	assert.Equal(t, "NOCHE", pred.Context.TimeSlot)
	assert.Equal(t, "VIERNES", pred.Context.Weekday)
	assert.Contains(t, pred.Context.Message, "BUCARAMANGA")
}

func TestPredictRisk_DefaultsToLatestPeriod(t *testing.T) {
	svc := newAnalytics(t)

	pred, err := svc.PredictRisk(context.Background(), "", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 2024, pred.Year)
	assert.Equal(t, 2, pred.Month)
	assert.InDelta(t, 0.8, pred.Probability, 1e-9)

	require.Len(t, pred.Ranking, 3)
	assert.Equal(t, models.SubRegionRisk{Rank: 1, SubRegion: "BUCARAMANGA", Probability: 0.8}, pred.Ranking[0])
	assert.Equal(t, "FLORIDABLANCA", pred.Ranking[1].SubRegion)
	assert.Equal(t, "GIRÓN", pred.Ranking[2].SubRegion)
	assert.Equal(t, 3, pred.Ranking[2].Rank)
}

func TestPredictRisk_NotFoundAndFallback(t *testing.T) {
	svc := newAnalytics(t)

	_, err := svc.PredictRisk(context.Background(), "CUCUTA", 2024, 2)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.NotFound))

	pred, err := FallbackPrediction("SANTANDER", "cucuta", 2024, 2, err)
	require.NoError(t, err)
	assert.True(t, pred.Fallback)
	assert.Zero(t, pred.Prediction)
	assert.Zero(t, pred.Probability)
	assert.Equal(t, "CUCUTA", pred.UsedFeatures["municipio"])

	pred, err = FallbackPrediction("SANTANDER", "", 2024, 2, apperr.New(apperr.NotFound, "x"))
	require.NoError(t, err)
	assert.Equal(t, models.NoData, pred.UsedFeatures["municipio"])

	other := apperr.New(apperr.DataUnavailable, "no snapshot")
	_, err = FallbackPrediction("SANTANDER", "", 2024, 2, other)
	assert.True(t, errors.Is(err, other))
}

func TestPredictRisk_InvalidMonth(t *testing.T) {
	_, err := newAnalytics(t).PredictRisk(context.Background(), "", 2024, 13)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.InvalidInput))
}

func TestMetrics(t *testing.T) {
	m, err := newAnalytics(t).Metrics(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 1.0, m.ROCAUC, 1e-9)
	assert.InDelta(t, 1.0, m.PRAUC, 1e-9)
	assert.Contains(t, m.Report, "accuracy")
}

func TestMetrics_SingleClassDegrades(t *testing.T) {
	rows := fixtureRows()
	for i := range rows {
		rows[i].RiskLabel = 0
	}
	st := NewLoadedState(repository.NewFeatureTable("SANTANDER", rows), cumModel{})

	m, err := NewAnalyticsService(st, nil, nil).Metrics(context.Background())
	require.NoError(t, err)
	assert.Zero(t, m.ROCAUC)
	assert.Zero(t, m.PRAUC)
}

func TestDistribution_LastYearDescending(t *testing.T) {
	dist, err := newAnalytics(t).Distribution(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.SubRegionDistribution{
		{SubRegion: "BUCARAMANGA", Incidents: 40},
		{SubRegion: "GIRÓN", Incidents: 6},
		{SubRegion: "FLORIDABLANCA", Incidents: 6},
	}, dist)
}

func TestSubRegions_Sorted(t *testing.T) {
	subs, err := newAnalytics(t).SubRegions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"BUCARAMANGA", "FLORIDABLANCA", "GIRÓN"}, subs)
}

func TestKPIs(t *testing.T) {
	svc := newAnalytics(t)
	ctx := context.Background()

	kpi, err := svc.KPI(ctx, KPIIncidentsTotal)
	require.NoError(t, err)
	assert.Equal(t, models.KPI{Value: 36, VariationPct: 80}, kpi)

	kpi, err = svc.KPI(ctx, KPIResponseTime)
	require.NoError(t, err)
	assert.Equal(t, models.KPI{Value: 61, VariationPct: 510}, kpi)

	kpi, err = svc.KPI(ctx, KPICrimeRate)
	require.NoError(t, err)
	assert.InDelta(t, 1.3, kpi.Value, 1e-9)
	assert.InDelta(t, 18.18, kpi.VariationPct, 1e-9)

	kpi, err = svc.KPI(ctx, KPICasesResolved)
	require.NoError(t, err)
	assert.Equal(t, models.KPI{Value: 2, VariationPct: 0}, kpi)

	_, err = svc.KPI(ctx, "unknown")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.InvalidInput))
}

func TestTrendAndReduction(t *testing.T) {
	svc := NewAnalyticsService(NewLoadedState(fixtureTable(), labelModel{}), nil, nil)

	points, err := svc.Trend(context.Background())
	require.NoError(t, err)
	require.Len(t, points, 4)

	red, err := svc.Reduction(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, -15.0, red.Percentage, 1e-9)
}

func TestAnalytics_DataUnavailable(t *testing.T) {
	st := NewState(&fakeSource{err: apperr.New(apperr.DataUnavailable, "gone")}, "SANTANDER", "x", nil)
	svc := NewAnalyticsService(st, nil, nil)

	_, err := svc.Distribution(context.Background())
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.DataUnavailable))
}
