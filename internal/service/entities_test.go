package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jengzang/riskdash-backend/internal/models"
	"github.com/jengzang/riskdash-backend/internal/repository"
)

func detectorFor(rows ...models.FeatureRow) *EntityDetector {
	return NewEntityDetector(repository.NewFeatureTable("SANTANDER", rows))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "giron en la manana", Normalize("Girón en la MAÑANA"))
	assert.Equal(t, "", Normalize(""))
}

func TestDetect_SubRegionAndCrimeType(t *testing.T) {
	d := detectorFor(models.FeatureRow{SubRegion: "BUCARAMANGA", CrimeType: "HURTO"})

	e := d.Detect("incidentes en bucaramanga de hurto")
	assert.Equal(t, "BUCARAMANGA", e.SubRegion)
	assert.Equal(t, "HURTO", e.CrimeType)
	assert.Empty(t, e.AgeGroup)
}

func TestDetect_IgnoresAccentsAndCase(t *testing.T) {
	d := NewEntityDetector(fixtureTable())

	e := d.Detect("¿Qué pasa en GIRON durante la mañana?")
	assert.Equal(t, "GIRÓN", e.SubRegion)
	assert.Equal(t, "MAÑANA", e.TimeSlot)
}

func TestDetect_WordBoundariesAndLongestMatch(t *testing.T) {
	d := detectorFor(
		models.FeatureRow{SubRegion: "SAN GIL", CrimeType: "HURTO"},
		models.FeatureRow{SubRegion: "GIL", CrimeType: "HURTO A PERSONAS"},
		models.FeatureRow{SubRegion: "LEBRIJA"},
	)

	e := d.Detect("hurto a personas en san gil")
	assert.Equal(t, "SAN GIL", e.SubRegion)
	assert.Equal(t, "HURTO A PERSONAS", e.CrimeType)

	e = d.Detect("los lebrijanos reportan hurtos")
	assert.Empty(t, e.SubRegion)
	assert.Empty(t, e.CrimeType)
}

func TestDetect_CategoryOrderAndGender(t *testing.T) {
	d := NewEntityDetector(fixtureTable())

	e := d.Detect("mujeres jovenes, genero femenino, en la noche")
	assert.Equal(t, "FEMENINO", e.Gender)
	assert.Equal(t, "JOVENES", e.AgeGroup)
	assert.Equal(t, "NOCHE", e.TimeSlot)
}
