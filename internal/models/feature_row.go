package models

import "math"

// FeatureRow is one observed period/location record of the feature snapshot.
// Rows are immutable once loaded.
type FeatureRow struct {
	Region       string
	SubRegion    string // empty when the snapshot has no municipio
	Year         int
	Month        int
	IncidentDate string
	CrimeType    string
	Count        int64

	// Model inputs; NaN when missing in the snapshot
	SubRegionRateLag float64
	RegionRateLag    float64
	Cumulative90d    float64

	RiskLabel int // 0 or 1

	Gender   string
	AgeGroup string
	Weekday  string
	TimeSlot string

	Latitude  float64 // NaN when absent
	Longitude float64 // NaN when absent
}

// Period returns the (year, month) key of the row
func (r FeatureRow) Period() Period {
	return Period{Year: r.Year, Month: r.Month}
}

// HasLocation reports whether the row carries coordinates
func (r FeatureRow) HasLocation() bool {
	return !math.IsNaN(r.Latitude) && !math.IsNaN(r.Longitude)
}

// Period identifies a calendar month
type Period struct {
	Year  int `json:"anio"`
	Month int `json:"mes"`
}

// Before orders periods ascending by (year, month)
func (p Period) Before(o Period) bool {
	if p.Year != o.Year {
		return p.Year < o.Year
	}
	return p.Month < o.Month
}

// Prev returns the preceding calendar month
func (p Period) Prev() Period {
	if p.Month <= 1 {
		return Period{Year: p.Year - 1, Month: 12}
	}
	return Period{Year: p.Year, Month: p.Month - 1}
}
