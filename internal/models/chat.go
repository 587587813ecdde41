package models

// NoData is the sentinel used when a filtered query yields no rows
const NoData = "SIN_DATO"

// SummaryFilter restricts rows by equality on each non-empty field
type SummaryFilter struct {
	SubRegion string
	CrimeType string
	AgeGroup  string
	TimeSlot  string
	Gender    string
}

// Summary is the fixed-shape context computed from filtered rows
type Summary struct {
	Total           int64
	TimeSlot        string
	TopSubRegions   []string
	Gender          string
	AgeGroup        string
	Weekday         string
	CrimeType       string
	Recommendations []string
}

// Entities holds the categorical values detected in a free-text question
type Entities struct {
	SubRegion string
	CrimeType string
	AgeGroup  string
	TimeSlot  string
	Gender    string
}

// Filter converts detected entities into a summary filter
func (e Entities) Filter() SummaryFilter {
	return SummaryFilter{
		SubRegion: e.SubRegion,
		CrimeType: e.CrimeType,
		AgeGroup:  e.AgeGroup,
		TimeSlot:  e.TimeSlot,
		Gender:    e.Gender,
	}
}

// ChatRequest is the body of POST /chatbot/ask
type ChatRequest struct {
	Question  string `json:"pregunta" binding:"required"`
	SubRegion string `json:"municipio"`
	CrimeType string `json:"delito"`
}

// ChatResponse wraps an answer for the dashboard
type ChatResponse struct {
	Answer string `json:"answer"`
}
