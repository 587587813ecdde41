package repository

import (
	"fmt"
	"math"

	"github.com/jengzang/riskdash-backend/internal/models"
)

// snapshotRecord is the on-disk schema of the feature snapshot. The same
// struct is used for parquet files and SQL tables.
type snapshotRecord struct {
	Region           string   `parquet:"departamento" db:"departamento"`
	SubRegion        *string  `parquet:"municipio,optional" db:"municipio"`
	Year             int64    `parquet:"anio" db:"anio"`
	Month            int64    `parquet:"mes" db:"mes"`
	IncidentDate     string   `parquet:"fecha_hecho" db:"fecha_hecho"`
	CrimeType        *string  `parquet:"tipo_delito,optional" db:"tipo_delito"`
	Count            int64    `parquet:"cantidad" db:"cantidad"`
	SubRegionRateLag *float64 `parquet:"tasa_delitos_muni_mes_lag,optional" db:"tasa_delitos_muni_mes_lag"`
	RegionRateLag    *float64 `parquet:"tasa_delitos_dep_mes_lag,optional" db:"tasa_delitos_dep_mes_lag"`
	Cumulative90d    *float64 `parquet:"acumulado_90d,optional" db:"acumulado_90d"`
	RiskLabel        int64    `parquet:"riesgo_alto" db:"riesgo_alto"`
	Gender           *string  `parquet:"genero,optional" db:"genero"`
	AgeGroup         *string  `parquet:"grupo_etario,optional" db:"grupo_etario"`
	Weekday          *string  `parquet:"dia_semana,optional" db:"dia_semana"`
	TimeSlot         *string  `parquet:"franja_hora,optional" db:"franja_hora"`
	Latitude         *float64 `parquet:"latitud,optional" db:"latitud"`
	Longitude        *float64 `parquet:"longitud,optional" db:"longitud"`
}

// requiredColumns must exist in every snapshot; latitud/longitud are optional
var requiredColumns = []string{
	"departamento", "municipio", "anio", "mes", "fecha_hecho", "tipo_delito",
	"cantidad", "tasa_delitos_muni_mes_lag", "tasa_delitos_dep_mes_lag",
	"acumulado_90d", "riesgo_alto", "genero", "grupo_etario", "dia_semana",
	"franja_hora",
}

var snapshotColumns = append(append([]string{}, requiredColumns...), "latitud", "longitud")

func (r snapshotRecord) toRow() models.FeatureRow {
	return models.FeatureRow{
		Region:           r.Region,
		SubRegion:        str(r.SubRegion),
		Year:             int(r.Year),
		Month:            int(r.Month),
		IncidentDate:     r.IncidentDate,
		CrimeType:        str(r.CrimeType),
		Count:            r.Count,
		SubRegionRateLag: num(r.SubRegionRateLag),
		RegionRateLag:    num(r.RegionRateLag),
		Cumulative90d:    num(r.Cumulative90d),
		RiskLabel:        int(r.RiskLabel),
		Gender:           str(r.Gender),
		AgeGroup:         str(r.AgeGroup),
		Weekday:          str(r.Weekday),
		TimeSlot:         str(r.TimeSlot),
		Latitude:         num(r.Latitude),
		Longitude:        num(r.Longitude),
	}
}

func recordFromRow(row models.FeatureRow) snapshotRecord {
	return snapshotRecord{
		Region:           row.Region,
		SubRegion:        strPtr(row.SubRegion),
		Year:             int64(row.Year),
		Month:            int64(row.Month),
		IncidentDate:     row.IncidentDate,
		CrimeType:        strPtr(row.CrimeType),
		Count:            row.Count,
		SubRegionRateLag: numPtr(row.SubRegionRateLag),
		RegionRateLag:    numPtr(row.RegionRateLag),
		Cumulative90d:    numPtr(row.Cumulative90d),
		RiskLabel:        int64(row.RiskLabel),
		Gender:           strPtr(row.Gender),
		AgeGroup:         strPtr(row.AgeGroup),
		Weekday:          strPtr(row.Weekday),
		TimeSlot:         strPtr(row.TimeSlot),
		Latitude:         numPtr(row.Latitude),
		Longitude:        numPtr(row.Longitude),
	}
}

// validate catches schema mismatches at load time instead of at aggregation time
func (r snapshotRecord) validate(index int) error {
	switch {
	case r.Region == "":
		return fmt.Errorf("row %d: empty departamento", index)
	case r.Month < 1 || r.Month > 12:
		return fmt.Errorf("row %d: mes %d out of range", index, r.Month)
	case r.Year <= 0:
		return fmt.Errorf("row %d: invalid anio %d", index, r.Year)
	case r.Count < 0:
		return fmt.Errorf("row %d: negative cantidad %d", index, r.Count)
	case r.RiskLabel != 0 && r.RiskLabel != 1:
		return fmt.Errorf("row %d: riesgo_alto must be 0 or 1, got %d", index, r.RiskLabel)
	}
	return nil
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func num(p *float64) float64 {
	if p == nil {
		return math.NaN()
	}
	return *p
}

func numPtr(f float64) *float64 {
	if math.IsNaN(f) {
		return nil
	}
	return &f
}
