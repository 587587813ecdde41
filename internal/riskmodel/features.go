// Package riskmodel implements the risk classification pipeline: one-hot
// encoding of the region, zero imputation and standard scaling of the numeric
// inputs, and a gradient-boosted tree classifier on top.
package riskmodel

import (
	"math"

	"github.com/jengzang/riskdash-backend/internal/models"
)

// FeatureColumns are the canonical model inputs in pipeline order. An
// artifact fitted on a different list is rejected at load.
var FeatureColumns = []string{
	"departamento",
	"anio",
	"mes",
	"tasa_delitos_muni_mes_lag",
	"tasa_delitos_dep_mes_lag",
	"acumulado_90d",
}

// Input is one row of model inputs. Missing numeric values are NaN.
type Input struct {
	Region           string
	Year             int
	Month            int
	SubRegionRateLag float64
	RegionRateLag    float64
	Cumulative90d    float64
}

// InputFromRow projects a feature row onto the canonical columns
func InputFromRow(row models.FeatureRow) Input {
	return Input{
		Region:           row.Region,
		Year:             row.Year,
		Month:            row.Month,
		SubRegionRateLag: row.SubRegionRateLag,
		RegionRateLag:    row.RegionRateLag,
		Cumulative90d:    row.Cumulative90d,
	}
}

// InputsFromRows projects every row
func InputsFromRows(rows []models.FeatureRow) []Input {
	out := make([]Input, len(rows))
	for i, row := range rows {
		out[i] = InputFromRow(row)
	}
	return out
}

// numeric returns the numeric columns in FeatureColumns order
func (in Input) numeric() []float64 {
	return []float64{
		float64(in.Year),
		float64(in.Month),
		in.SubRegionRateLag,
		in.RegionRateLag,
		in.Cumulative90d,
	}
}

// Map renders the input keyed by column name; missing values become nil
func (in Input) Map() map[string]interface{} {
	return map[string]interface{}{
		"departamento":              in.Region,
		"anio":                      in.Year,
		"mes":                       in.Month,
		"tasa_delitos_muni_mes_lag": nullable(in.SubRegionRateLag),
		"tasa_delitos_dep_mes_lag":  nullable(in.RegionRateLag),
		"acumulado_90d":             nullable(in.Cumulative90d),
	}
}

func nullable(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}
