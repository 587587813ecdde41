package service

import (
	"context"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jengzang/riskdash-backend/internal/llm"
	"github.com/jengzang/riskdash-backend/internal/models"
	"github.com/jengzang/riskdash-backend/internal/repository"
	"github.com/jengzang/riskdash-backend/internal/riskmodel"
)

func row(sub string, year, month int, date, crime string, count int64, cum float64, label int, slot, gender, age, weekday string, lat, lon, rate float64) models.FeatureRow {
	return models.FeatureRow{
		Region: "SANTANDER", SubRegion: sub, Year: year, Month: month,
		IncidentDate: date, CrimeType: crime, Count: count,
		SubRegionRateLag: cum / 10, RegionRateLag: rate, Cumulative90d: cum,
		RiskLabel: label, TimeSlot: slot, Gender: gender, AgeGroup: age, Weekday: weekday,
		Latitude: lat, Longitude: lon,
	}
}

// fixtureRows spans four periods; period totals are 10, 5, 20 and 36
func fixtureRows() []models.FeatureRow {
	nan := math.NaN()
	return []models.FeatureRow{
		row("BUCARAMANGA", 2023, 11, "2023-11-03", "HURTO", 10, 20, 0, "NOCHE", "MASCULINO", "ADULTOS", "LUNES", 7.119, -73.122, 1.0),
		row("GIRÓN", 2023, 12, "2023-12-10", "LESIONES", 5, 60, 1, "MAÑANA", "FEMENINO", "JOVENES", "MARTES", 7.07, -73.17, 1.2),
		row("BUCARAMANGA", 2024, 1, "2024-01-15", "HURTO", 8, 30, 0, "NOCHE", "MASCULINO", "ADULTOS", "SABADO", 7.12, -73.12, 1.1),
		row("BUCARAMANGA", 2024, 1, "2024-01-20", "LESIONES", 12, 70, 1, "TARDE", "FEMENINO", "ADULTOS", "DOMINGO", 7.118, -73.121, 1.1),
		row("BUCARAMANGA", 2024, 2, "2024-02-02", "HURTO", 20, 80, 1, "NOCHE", "MASCULINO", "ADULTOS", "VIERNES", 7.12, -73.12, 1.3),
		row("GIRÓN", 2024, 2, "2024-02-05", "HURTO", 6, 10, 0, "NOCHE", "MASCULINO", "JOVENES", "VIERNES", 7.07, -73.17, 1.3),
		row("", 2024, 2, "2024-02-07", "HURTO", 4, nan, 0, "MADRUGADA", "", "", "", nan, nan, nan),
		row("FLORIDABLANCA", 2024, 2, "2024-02-09", "HURTO", 6, 40, 0, "TARDE", "FEMENINO", "ADULTOS", "LUNES", nan, nan, 1.3),
	}
}

func fixtureTable() *repository.FeatureTable {
	return repository.NewFeatureTable("SANTANDER", fixtureRows())
}

// cumModel scores the 90-day accumulation as a probability
type cumModel struct{}

func (cumModel) PredictProba(inputs []riskmodel.Input) []float64 {
	out := make([]float64, len(inputs))
	for i, in := range inputs {
		if !math.IsNaN(in.Cumulative90d) {
			out[i] = math.Min(in.Cumulative90d/100, 1)
		}
	}
	return out
}

func (m cumModel) Predict(inputs []riskmodel.Input) []int {
	out := make([]int, len(inputs))
	for i, p := range m.PredictProba(inputs) {
		if p > 0.5 {
			out[i] = 1
		}
	}
	return out
}

// labelModel exposes only hard labels
type labelModel struct{}

func (labelModel) Predict(inputs []riskmodel.Input) []int {
	return cumModel{}.Predict(inputs)
}

func fixtureState() *State {
	return NewLoadedState(fixtureTable(), cumModel{})
}

// fakeSource counts loads and can fail on demand
type fakeSource struct {
	rows  []models.FeatureRow
	err   error
	delay time.Duration
	loads atomic.Int32
}

func (s *fakeSource) Load(ctx context.Context, region string) ([]models.FeatureRow, error) {
	s.loads.Add(1)
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.rows, nil
}

func (s *fakeSource) Name() string { return "fake" }

// fakeChat records requests and replies with a fixed answer
type fakeChat struct {
	mu       sync.Mutex
	requests []llm.ChatRequest
	answer   string
	err      error
}

func (c *fakeChat) Complete(ctx context.Context, req llm.ChatRequest) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests = append(c.requests, req)
	return c.answer, c.err
}

func (c *fakeChat) last() llm.ChatRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.requests[len(c.requests)-1]
}

// constNoise returns the same jitter every time
type constNoise float64

func (n constNoise) Jitter() float64 { return float64(n) }
