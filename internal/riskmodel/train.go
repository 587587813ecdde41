package riskmodel

import (
	"log/slog"

	"github.com/jengzang/riskdash-backend/internal/apperr"
	"github.com/jengzang/riskdash-backend/internal/models"
	"github.com/jengzang/riskdash-backend/internal/stats"
)

// Split is a temporal train/validation partition
type Split struct {
	Train      []models.FeatureRow
	Validation []models.FeatureRow
}

// TemporalSplit trains on all years before the last and validates on the
// last one. When the training part holds a single class, the boundary moves
// to the last month of the last year.
func TemporalSplit(rows []models.FeatureRow) Split {
	var last models.Period
	for _, r := range rows {
		if p := r.Period(); last.Before(p) {
			last = p
		}
	}

	var s Split
	for _, r := range rows {
		if r.Year < last.Year {
			s.Train = append(s.Train, r)
		} else {
			s.Validation = append(s.Validation, r)
		}
	}
	if classCount(s.Train) >= 2 {
		return s
	}

	s = Split{}
	for _, r := range rows {
		if r.Period() == last {
			s.Validation = append(s.Validation, r)
		} else {
			s.Train = append(s.Train, r)
		}
	}
	return s
}

func classCount(rows []models.FeatureRow) int {
	seen := [2]bool{}
	for _, r := range rows {
		if r.RiskLabel == 0 || r.RiskLabel == 1 {
			seen[r.RiskLabel] = true
		}
	}
	n := 0
	for _, ok := range seen {
		if ok {
			n++
		}
	}
	return n
}

func labelsOf(rows []models.FeatureRow) []int {
	out := make([]int, len(rows))
	for i, r := range rows {
		out[i] = r.RiskLabel
	}
	return out
}

// Train fits a pipeline on the temporal split of rows and evaluates it on
// the validation part
func Train(rows []models.FeatureRow, params BoosterParams) (*Model, Evaluation, error) {
	split := TemporalSplit(rows)
	if classCount(split.Train) < 2 {
		return nil, Evaluation{}, apperr.New(apperr.InvalidInput, "training data holds a single class")
	}

	slog.Info("Training risk model",
		"train_rows", len(split.Train),
		"validation_rows", len(split.Validation),
		"estimators", params.Estimators)

	m := Fit(InputsFromRows(split.Train), labelsOf(split.Train), params)
	return m, Evaluate(m, split.Validation), nil
}

// Evaluation is the validation report of a classifier
type Evaluation struct {
	ROCAUC float64
	PRAUC  float64
	Report map[string]interface{}
	Rows   int
}

// Evaluate scores rows with c. AUCs degrade to 0 when rows hold a single
// class or c is not probabilistic.
func Evaluate(c Classifier, rows []models.FeatureRow) Evaluation {
	inputs := InputsFromRows(rows)
	labels := labelsOf(rows)

	ev := Evaluation{Rows: len(rows)}
	if len(rows) == 0 {
		ev.Report = stats.ClassificationReport(nil, nil)
		return ev
	}

	ev.Report = stats.ClassificationReport(labels, c.Predict(inputs))
	if pc, ok := c.(ProbabilisticClassifier); ok {
		scores := pc.PredictProba(inputs)
		if auc, ok := stats.ROCAUC(labels, scores); ok {
			ev.ROCAUC = auc
		}
		if auc, ok := stats.PRAUC(labels, scores); ok {
			ev.PRAUC = auc
		}
	}
	return ev
}
