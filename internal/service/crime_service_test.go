package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/riskdash-backend/internal/apperr"
	"github.com/jengzang/riskdash-backend/internal/models"
)

func TestCrimeQuery_Filters(t *testing.T) {
	svc := NewCrimeService(fixtureState())
	ctx := context.Background()

	recs, err := svc.Query(ctx, models.CrimeQuery{SubRegion: "bucaramanga", Year: 2024})
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "2024-01-15", recs[0].IncidentDate)
	require.NotNil(t, recs[0].SubRegion)
	assert.Equal(t, "BUCARAMANGA", *recs[0].SubRegion)

	recs, err = svc.Query(ctx, models.CrimeQuery{CrimeType: "hurto", Year: 2024, Month: 2})
	require.NoError(t, err)
	require.Len(t, recs, 4)
	assert.Nil(t, recs[2].SubRegion, "rows without municipio keep a null")

	recs, err = svc.Query(ctx, models.CrimeQuery{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, recs, 2)

	recs, err = svc.Query(ctx, models.CrimeQuery{SubRegion: "CUCUTA"})
	require.NoError(t, err)
	assert.NotNil(t, recs)
	assert.Empty(t, recs)
}

func TestCrimeQuery_InvalidInput(t *testing.T) {
	svc := NewCrimeService(fixtureState())

	_, err := svc.Query(context.Background(), models.CrimeQuery{Month: 13})
	assert.True(t, apperr.Is(err, apperr.InvalidInput))

	_, err = svc.Query(context.Background(), models.CrimeQuery{Limit: -1})
	assert.True(t, apperr.Is(err, apperr.InvalidInput))
}

func TestClampLimit(t *testing.T) {
	n, err := clampLimit(0, 100, 1000)
	require.NoError(t, err)
	assert.Equal(t, 100, n)

	n, err = clampLimit(5000, 100, 1000)
	require.NoError(t, err)
	assert.Equal(t, 1000, n)
}

func TestCrimeRecent(t *testing.T) {
	svc := NewCrimeService(fixtureState())

	alerts, err := svc.Recent(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, alerts, 3)

	assert.Equal(t, "2024-02-09", alerts[0].Date)
	assert.Equal(t, "FLORIDABLANCA", alerts[0].Location)
	assert.Equal(t, "hurto", alerts[0].Type)
	assert.Equal(t, SeverityLow, alerts[0].Severity)
	assert.Equal(t, StateReported, alerts[0].State)
	assert.Equal(t, "SANTANDER", alerts[1].Location)

	again, err := svc.Recent(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, alerts[0].ID, again[0].ID)
	assert.NotEqual(t, alerts[0].ID, alerts[1].ID)

	all, err := svc.Recent(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, all, 8)
	for _, a := range all {
		if a.Date == "2024-02-02" {
			assert.Equal(t, SeverityCritical, a.Severity)
			assert.Equal(t, StateAttending, a.State)
		}
	}
}

func TestCrimeRecent_StateFollowsLatestPeriod(t *testing.T) {
	svc := NewCrimeService(fixtureState())

	all, err := svc.Recent(context.Background(), 0)
	require.NoError(t, err)

	states := make(map[string]string)
	for _, a := range all {
		states[a.Date] = a.State
	}
	// BUCARAMANGA is high risk in 2024-02, so its older rows are attended too
	assert.Equal(t, StateAttending, states["2024-01-15"])
	assert.Equal(t, StateAttending, states["2023-11-03"])
	// GIRÓN was high risk only in 2023-12
	assert.Equal(t, StateReported, states["2023-12-10"])
	assert.Equal(t, StateReported, states["2024-02-05"])
	assert.Equal(t, StateReported, states["2024-02-07"])
}
