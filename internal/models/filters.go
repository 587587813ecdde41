package models

// RiskPredictFilter represents query parameters of GET /analytics/risk/predict
type RiskPredictFilter struct {
	SubRegion string `form:"municipio"`
	Year      int    `form:"anio"` // 0 selects the latest period
	Month     int    `form:"mes"`  // 0 selects the latest period
}

// QuickFilter represents query parameters of GET /chatbot/quick/{type}
type QuickFilter struct {
	SubRegion string `form:"municipio"`
}
