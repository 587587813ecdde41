package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeoIncidents(t *testing.T) {
	svc := NewGeoService(fixtureState(), nil)

	markers, err := svc.Incidents(context.Background())
	require.NoError(t, err)
	require.Len(t, markers, 2, "sub-regions without coordinates are skipped")

	buc := markers[0]
	assert.Equal(t, "BUCARAMANGA", buc.SubRegion)
	assert.Equal(t, int64(40), buc.Incidents)
	assert.InDelta(t, 7.12, buc.Latitude, 0.01)
	assert.InDelta(t, -73.12, buc.Longitude, 0.01)
	assert.Equal(t, SeverityCritical, buc.Severity)
	assert.Equal(t, StateAttending, buc.State)

	giron := markers[1]
	assert.Equal(t, "GIRÓN", giron.SubRegion)
	assert.Equal(t, SeverityLow, giron.Severity)
	assert.Equal(t, StateReported, giron.State)
}

func TestSeverityScale(t *testing.T) {
	s := newSeverityScale([]float64{4, 5, 6, 6, 8, 10, 12, 20})
	assert.Equal(t, SeverityLow, s.classify(6))
	assert.Equal(t, SeverityMedium, s.classify(8))
	assert.Equal(t, SeverityHigh, s.classify(12))
	assert.Equal(t, SeverityCritical, s.classify(20))
}
