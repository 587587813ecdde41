package riskmodel

// Classifier predicts a binary risk label per input
type Classifier interface {
	Predict(inputs []Input) []int
}

// ProbabilisticClassifier also exposes the positive-class probability
type ProbabilisticClassifier interface {
	Classifier
	PredictProba(inputs []Input) []float64
}

// Score returns the label of in and its positive-class probability.
// The probability is 0 when c is not probabilistic.
func Score(c Classifier, in Input) (int, float64) {
	label := c.Predict([]Input{in})[0]
	if pc, ok := c.(ProbabilisticClassifier); ok {
		return label, pc.PredictProba([]Input{in})[0]
	}
	return label, 0
}

// Model is the fitted pipeline: encoder, imputing scaler and booster
type Model struct {
	Encoder OneHotEncoder
	Scaler  StandardScaler
	Booster Booster
}

// Fit trains a pipeline on inputs and 0/1 labels containing both classes
func Fit(inputs []Input, labels []int, params BoosterParams) *Model {
	m := &Model{
		Encoder: fitEncoder(inputs),
		Scaler:  fitScaler(inputs),
	}
	m.Booster = fitBooster(m.matrix(inputs), labels, params)
	return m
}

func (m *Model) vector(in Input) []float64 {
	k := len(m.Encoder.Categories)
	x := make([]float64, k+len(m.Scaler.Mean))
	m.Encoder.transform(in.Region, x[:k])
	m.Scaler.transform(in.numeric(), x[k:])
	return x
}

func (m *Model) matrix(inputs []Input) [][]float64 {
	X := make([][]float64, len(inputs))
	for i, in := range inputs {
		X[i] = m.vector(in)
	}
	return X
}

// PredictProba returns the positive-class probability of each input
func (m *Model) PredictProba(inputs []Input) []float64 {
	out := make([]float64, len(inputs))
	for i, in := range inputs {
		out[i] = sigmoid(m.Booster.decision(m.vector(in)))
	}
	return out
}

// Predict thresholds the probability at 0.5
func (m *Model) Predict(inputs []Input) []int {
	proba := m.PredictProba(inputs)
	out := make([]int, len(proba))
	for i, p := range proba {
		if p > 0.5 {
			out[i] = 1
		}
	}
	return out
}
