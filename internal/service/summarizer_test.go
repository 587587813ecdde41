package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jengzang/riskdash-backend/internal/models"
)

func TestSummarize_WholeRegion(t *testing.T) {
	s := Summarize(fixtureRows(), models.SummaryFilter{})

	assert.Equal(t, int64(71), s.Total)
	assert.Equal(t, "NOCHE", s.TimeSlot)
	assert.Equal(t, []string{"BUCARAMANGA", "GIRÓN", "FLORIDABLANCA"}, s.TopSubRegions)
	assert.Equal(t, "MASCULINO", s.Gender)
	assert.Equal(t, "HURTO", s.CrimeType)
	assert.Len(t, s.Recommendations, 3)
	assert.Contains(t, s.Recommendations[0], "noche")
}

func TestSummarize_FilterIsTrimmed(t *testing.T) {
	s := Summarize(fixtureRows(), models.SummaryFilter{SubRegion: "  BUCARAMANGA ", CrimeType: "HURTO"})

	assert.Equal(t, int64(38), s.Total)
	assert.Equal(t, []string{"BUCARAMANGA"}, s.TopSubRegions)
	assert.Equal(t, "VIERNES", s.Weekday)
}

func TestSummarize_UnknownSubRegionDegradesToSentinels(t *testing.T) {
	s := Summarize(fixtureRows(), models.SummaryFilter{SubRegion: "CUCUTA"})

	assert.Zero(t, s.Total)
	assert.Equal(t, models.NoData, s.TimeSlot)
	assert.Equal(t, models.NoData, s.Gender)
	assert.Equal(t, models.NoData, s.AgeGroup)
	assert.Equal(t, models.NoData, s.Weekday)
	assert.Equal(t, models.NoData, s.CrimeType)
	assert.NotNil(t, s.TopSubRegions)
	assert.Empty(t, s.TopSubRegions)
	assert.Contains(t, s.Recommendations[0], "sin_dato")
}

func TestSummarize_TiesKeepFirstSeen(t *testing.T) {
	rows := []models.FeatureRow{
		{SubRegion: "B", TimeSlot: "TARDE", Count: 5},
		{SubRegion: "A", TimeSlot: "NOCHE", Count: 5},
	}
	s := Summarize(rows, models.SummaryFilter{})
	assert.Equal(t, "TARDE", s.TimeSlot)
	assert.Equal(t, []string{"B", "A"}, s.TopSubRegions)
}

func TestSummarize_KeepsSnapshotCase(t *testing.T) {
	rows := []models.FeatureRow{
		{SubRegion: "Bucaramanga", CrimeType: "Hurto", TimeSlot: "Noche", Count: 7},
		{SubRegion: "BUCARAMANGA", CrimeType: "HURTO", TimeSlot: "NOCHE", Count: 2},
	}

	s := Summarize(rows, models.SummaryFilter{SubRegion: "Bucaramanga", TimeSlot: "Noche"})
	assert.Equal(t, int64(7), s.Total)
	assert.Equal(t, "Noche", s.TimeSlot)
	assert.Equal(t, []string{"Bucaramanga"}, s.TopSubRegions)
}
