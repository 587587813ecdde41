package service

import (
	"math"
	"math/rand/v2"
	"sync"

	"github.com/jengzang/riskdash-backend/internal/models"
	"github.com/jengzang/riskdash-backend/internal/repository"
	"github.com/jengzang/riskdash-backend/internal/riskmodel"
	"github.com/jengzang/riskdash-backend/internal/stats"
)

const (
	// noiseScale bounds the jitter to 5% of the raw prediction
	noiseScale = 0.05
	// trendWindow is the trailing moving-average window
	trendWindow = 3
)

// NoiseSource yields jitter in [-1, 1]
type NoiseSource interface {
	Jitter() float64
}

// ZeroNoise disables jitter
type ZeroNoise struct{}

// Jitter always returns 0
func (ZeroNoise) Jitter() float64 { return 0 }

// RandomNoise draws uniform jitter from a seeded PCG generator
type RandomNoise struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomNoise creates a noise source; equal seeds give equal sequences
func NewRandomNoise(seed uint64) *RandomNoise {
	return &RandomNoise{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Jitter returns a uniform value in [-1, 1)
func (n *RandomNoise) Jitter() float64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.rng.Float64()*2 - 1
}

// rawPrediction is the expected incident mass of a period: Σ(p × count) with
// probabilistic scoring, else the number of rows predicted high-risk
func rawPrediction(c riskmodel.Classifier, rows []models.FeatureRow) float64 {
	inputs := riskmodel.InputsFromRows(rows)
	if pc, ok := c.(riskmodel.ProbabilisticClassifier); ok {
		var total float64
		for i, p := range pc.PredictProba(inputs) {
			total += p * float64(rows[i].Count)
		}
		return total
	}

	var total float64
	for _, label := range c.Predict(inputs) {
		total += float64(label)
	}
	return total
}

// jitter applies bounded noise, clamps at zero and truncates
func jitter(raw float64, noise NoiseSource) float64 {
	v := raw + noise.Jitter()*noiseScale*raw
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	return math.Trunc(v)
}

// Calibrate rescales predicted so its sum matches the sum of actual.
// An all-zero prediction is returned unchanged.
func Calibrate(actual []int64, predicted []float64) []float64 {
	var sumActual int64
	for _, a := range actual {
		sumActual += a
	}
	sumPred := stats.Sum(predicted)

	factor := 1.0
	if sumPred != 0 {
		factor = float64(sumActual) / sumPred
	}

	out := make([]float64, len(predicted))
	for i, p := range predicted {
		out[i] = p * factor
	}
	return out
}

// BuildTrend computes the actual vs. calibrated, smoothed predicted series
// ordered by (year, month)
func BuildTrend(table *repository.FeatureTable, c riskmodel.Classifier, noise NoiseSource) []models.TrendPoint {
	if noise == nil {
		noise = ZeroNoise{}
	}

	periods := table.Periods()
	actual := make([]int64, len(periods))
	predicted := make([]float64, len(periods))

	for i, p := range periods {
		rows := table.PeriodRows(p)
		for _, r := range rows {
			actual[i] += r.Count
		}
		predicted[i] = jitter(rawPrediction(c, rows), noise)
	}

	smoothed := stats.MovingAverage(Calibrate(actual, predicted), trendWindow)

	points := make([]models.TrendPoint, len(periods))
	for i, p := range periods {
		var pred int64
		if i < len(smoothed) {
			pred = int64(smoothed[i])
		}
		points[i] = models.TrendPoint{
			Year:      p.Year,
			Month:     p.Month,
			Actual:    actual[i],
			Predicted: pred,
		}
	}
	return points
}

// ReductionPercentage compares the actual count of the second to last period
// with the prediction of the last one. It is 0 with fewer than two points or
// a zero denominator.
func ReductionPercentage(points []models.TrendPoint) models.ReductionResponse {
	if len(points) == 0 {
		return models.ReductionResponse{}
	}

	last := points[len(points)-1]
	resp := models.ReductionResponse{Year: last.Year, Month: last.Month}
	if len(points) < 2 {
		return resp
	}

	prev := points[len(points)-2]
	if prev.Actual == 0 {
		return resp
	}
	resp.Percentage = stats.Round(float64(prev.Actual-last.Predicted)/float64(prev.Actual)*100, 2)
	return resp
}
