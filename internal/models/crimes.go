package models

// CrimeQuery is the body of POST /crimes/query
type CrimeQuery struct {
	SubRegion string `json:"municipio"`
	CrimeType string `json:"tipo_delito"`
	Year      int    `json:"anio"`
	Month     int    `json:"mes"`
	Limit     int    `json:"limit"`
}

// CrimeRecord is one row returned by a crime query
type CrimeRecord struct {
	Region       string  `json:"departamento"`
	SubRegion    *string `json:"municipio"`
	IncidentDate string  `json:"fecha_hecho"`
	CrimeType    string  `json:"tipo_delito"`
	Count        int64   `json:"cantidad"`
}

// GeoIncident is the map marker of one sub-region
type GeoIncident struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
	Severity  string  `json:"severidad"`
	State     string  `json:"estado"`
	SubRegion string  `json:"municipio"`
	Incidents int64   `json:"incidentes"`
}

// CrimeAlert is one row of the dashboard alerts table
type CrimeAlert struct {
	ID          string `json:"id"`
	Type        string `json:"tipo"`
	Description string `json:"descripcion"`
	Location    string `json:"ubicacion"`
	Date        string `json:"fecha"`
	Severity    string `json:"severidad"`
	State       string `json:"estado"`
}
