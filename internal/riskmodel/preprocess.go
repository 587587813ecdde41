package riskmodel

import (
	"math"

	"github.com/jengzang/riskdash-backend/internal/stats"
)

// OneHotEncoder encodes the region column; unseen categories encode to all zeros
type OneHotEncoder struct {
	Categories []string `json:"categories"`
}

func fitEncoder(inputs []Input) OneHotEncoder {
	seen := make(map[string]struct{})
	var cats []string
	for _, in := range inputs {
		if _, ok := seen[in.Region]; ok {
			continue
		}
		seen[in.Region] = struct{}{}
		cats = append(cats, in.Region)
	}
	return OneHotEncoder{Categories: cats}
}

func (e OneHotEncoder) transform(region string, dst []float64) {
	for i, c := range e.Categories {
		if c == region {
			dst[i] = 1
		} else {
			dst[i] = 0
		}
	}
}

// StandardScaler imputes missing numerics to 0 and standardizes each column
type StandardScaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

func fitScaler(inputs []Input) StandardScaler {
	const cols = 5
	columns := make([][]float64, cols)
	for _, in := range inputs {
		for j, v := range in.numeric() {
			columns[j] = append(columns[j], impute(v))
		}
	}

	s := StandardScaler{Mean: make([]float64, cols), Scale: make([]float64, cols)}
	for j := range columns {
		s.Mean[j] = stats.Mean(columns[j])
		s.Scale[j] = stats.PopulationStdDev(columns[j])
		if s.Scale[j] == 0 {
			s.Scale[j] = 1
		}
	}
	return s
}

func (s StandardScaler) transform(values []float64, dst []float64) {
	for j, v := range values {
		dst[j] = (impute(v) - s.Mean[j]) / s.Scale[j]
	}
}

func impute(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}
