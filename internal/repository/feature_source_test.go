package repository

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/riskdash-backend/internal/apperr"
	"github.com/jengzang/riskdash-backend/internal/database"
	"github.com/jengzang/riskdash-backend/internal/models"
)

func sampleRows() []models.FeatureRow {
	return []models.FeatureRow{
		{
			Region: "SANTANDER", SubRegion: "BUCARAMANGA", Year: 2024, Month: 1,
			IncidentDate: "2024-01-05", CrimeType: "HURTO", Count: 12,
			SubRegionRateLag: 1.5, RegionRateLag: 0.8, Cumulative90d: 40, RiskLabel: 1,
			Gender: "MASCULINO", AgeGroup: "ADULTOS", Weekday: "LUNES", TimeSlot: "NOCHE",
			Latitude: 7.119, Longitude: -73.122,
		},
		{
			Region: "SANTANDER", SubRegion: "", Year: 2024, Month: 2,
			IncidentDate: "2024-02-11", CrimeType: "LESIONES", Count: 3,
			SubRegionRateLag: math.NaN(), RegionRateLag: 0.7, Cumulative90d: math.NaN(), RiskLabel: 0,
			Latitude: math.NaN(), Longitude: math.NaN(),
		},
		{
			Region: "BOYACA", SubRegion: "TUNJA", Year: 2024, Month: 1,
			IncidentDate: "2024-01-07", CrimeType: "HURTO", Count: 5,
			SubRegionRateLag: 0.1, RegionRateLag: 0.2, Cumulative90d: 9, RiskLabel: 0,
			Latitude: math.NaN(), Longitude: math.NaN(),
		},
	}
}

func TestParquetSource_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "features.parquet")
	require.NoError(t, WriteParquet(path, sampleRows()))

	src, err := NewFeatureSource(path)
	require.NoError(t, err)

	rows, err := src.Load(context.Background(), "SANTANDER")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "BUCARAMANGA", rows[0].SubRegion)
	assert.Equal(t, int64(12), rows[0].Count)
	assert.InDelta(t, 1.5, rows[0].SubRegionRateLag, 1e-9)
	assert.True(t, rows[0].HasLocation())

	assert.Equal(t, "", rows[1].SubRegion)
	assert.True(t, math.IsNaN(rows[1].SubRegionRateLag))
	assert.False(t, rows[1].HasLocation())
}

func TestParquetSource_MissingColumns(t *testing.T) {
	type partial struct {
		Region string `parquet:"departamento"`
		Year   int64  `parquet:"anio"`
	}
	path := filepath.Join(t.TempDir(), "partial.parquet")
	require.NoError(t, parquet.WriteFile(path, []partial{{Region: "SANTANDER", Year: 2024}}))

	_, err := NewParquetSource(path).Load(context.Background(), "SANTANDER")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.DataUnavailable))
	assert.Contains(t, err.Error(), "cantidad")
}

func TestParquetSource_MissingFile(t *testing.T) {
	_, err := NewParquetSource(filepath.Join(t.TempDir(), "nope.parquet")).Load(context.Background(), "SANTANDER")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.DataUnavailable))
}

func TestParquetSource_InvalidRow(t *testing.T) {
	rows := sampleRows()
	rows[1].Month = 13
	path := filepath.Join(t.TempDir(), "bad.parquet")
	require.NoError(t, WriteParquet(path, rows))

	_, err := NewParquetSource(path).Load(context.Background(), "SANTANDER")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.DataUnavailable))
	assert.Contains(t, err.Error(), "row 1")
}

func TestParquetSource_InvalidRowOtherRegionIgnored(t *testing.T) {
	rows := sampleRows()
	rows[2].Month = 13
	rows[2].RiskLabel = 4
	path := filepath.Join(t.TempDir(), "other.parquet")
	require.NoError(t, WriteParquet(path, rows))

	loaded, err := NewParquetSource(path).Load(context.Background(), "SANTANDER")
	require.NoError(t, err)
	assert.Len(t, loaded, 2)

	_, err = NewParquetSource(path).Load(context.Background(), "BOYACA")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
}

func TestSQLSource_Sqlite(t *testing.T) {
	db, err := database.Open(database.Config{Driver: "sqlite", DSN: ":memory:"})
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, database.NewMigrationManager(db).RunMigrations())
	require.NoError(t, InsertRows(db, sampleRows()))

	rows, err := NewSQLSource(db).Load(context.Background(), "SANTANDER")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "HURTO", rows[0].CrimeType)
	assert.Equal(t, "", rows[1].SubRegion)
	assert.True(t, math.IsNaN(rows[1].Cumulative90d))
}

func TestNewFeatureSource_Unsupported(t *testing.T) {
	_, err := NewFeatureSource("features.csv")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.DataUnavailable))

	src, err := NewFeatureSource("sqlite://snapshot.db")
	require.NoError(t, err)
	assert.Equal(t, "sql:sqlite", src.Name())
}
