package models

// TrendPoint is one period of the actual vs. predicted series
type TrendPoint struct {
	Year      int   `json:"anio"`
	Month     int   `json:"mes"`
	Actual    int64 `json:"reales"`
	Predicted int64 `json:"predichos"`
}

// ReductionResponse is the month-over-month reduction between the last two periods
type ReductionResponse struct {
	Percentage float64 `json:"reduccion_pct"`
	Year       int     `json:"anio"`
	Month      int     `json:"mes"`
}

// RiskPrediction is returned by the risk predict endpoint
type RiskPrediction struct {
	Prediction   int                    `json:"prediction"`
	Probability  float64                `json:"probability"`
	UsedFeatures map[string]interface{} `json:"used_features"`
	Year         int                    `json:"anio"`
	Month        int                    `json:"mes"`
	Fallback     bool                   `json:"fallback"`
	Context      *RiskContext           `json:"contexto,omitempty"`
	Ranking      []SubRegionRisk        `json:"ranking_municipios"`
}

// RiskContext is the narrative summary attached to a prediction
type RiskContext struct {
	Message   string `json:"mensaje"`
	Gender    string `json:"genero_predominante"`
	AgeGroup  string `json:"grupo_etario_predominante"`
	Weekday   string `json:"dia_semana_critico"`
	TimeSlot  string `json:"franja_horaria_critica"`
	CrimeType string `json:"tipo_delito_predominante"`
}

// SubRegionRisk ranks a sub-region by predicted probability
type SubRegionRisk struct {
	Rank        int     `json:"ranking"`
	SubRegion   string  `json:"municipio"`
	Probability float64 `json:"probabilidad"`
}

// ModelMetrics is the validation report of the risk model
type ModelMetrics struct {
	ROCAUC float64                `json:"roc_auc"`
	PRAUC  float64                `json:"pr_auc"`
	Report map[string]interface{} `json:"report"`
}

// SubRegionDistribution is the incident total of one sub-region
type SubRegionDistribution struct {
	SubRegion string `json:"municipio"`
	Incidents int64  `json:"incidentes"`
}

// KPI is a dashboard card value with its change vs. the previous window
type KPI struct {
	Value        float64 `json:"valor"`
	VariationPct float64 `json:"variacion_pct"`
}
