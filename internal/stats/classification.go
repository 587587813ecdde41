package stats

import (
	"math"
	"sort"
	"strconv"
)

// ROCAUC computes the area under the ROC curve from binary labels and scores
// using the rank-sum formulation (ties get average ranks). ok is false when
// only one class is present.
func ROCAUC(labels []int, scores []float64) (auc float64, ok bool) {
	if len(labels) != len(scores) || len(labels) == 0 {
		return 0, false
	}

	idx := make([]int, len(scores))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return scores[idx[a]] < scores[idx[b]] })

	ranks := make([]float64, len(scores))
	for i := 0; i < len(idx); {
		j := i
		for j+1 < len(idx) && scores[idx[j+1]] == scores[idx[i]] {
			j++
		}
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			ranks[idx[k]] = avg
		}
		i = j + 1
	}

	var nPos, nNeg float64
	var rankSum float64
	for i, y := range labels {
		if y == 1 {
			nPos++
			rankSum += ranks[i]
		} else {
			nNeg++
		}
	}
	if nPos == 0 || nNeg == 0 {
		return 0, false
	}

	return (rankSum - nPos*(nPos+1)/2) / (nPos * nNeg), true
}

// PRAUC computes the trapezoidal area under the precision-recall curve. The
// curve stops at the first threshold reaching full recall and is anchored at
// (recall 0, precision 1). ok is false when there are no positive labels.
func PRAUC(labels []int, scores []float64) (auc float64, ok bool) {
	if len(labels) != len(scores) || len(labels) == 0 {
		return 0, false
	}

	idx := make([]int, len(scores))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return scores[idx[a]] > scores[idx[b]] })

	var totalPos float64
	for _, y := range labels {
		if y == 1 {
			totalPos++
		}
	}
	if totalPos == 0 {
		return 0, false
	}

	recall := []float64{0}
	precision := []float64{1}
	var tp, fp float64
	for i := 0; i < len(idx); i++ {
		if labels[idx[i]] == 1 {
			tp++
		} else {
			fp++
		}
		// Emit a point only at the last row of each distinct score
		if i+1 < len(idx) && scores[idx[i+1]] == scores[idx[i]] {
			continue
		}
		recall = append(recall, tp/totalPos)
		precision = append(precision, tp/(tp+fp))
		if tp == totalPos {
			break
		}
	}

	for i := 1; i < len(recall); i++ {
		auc += math.Abs(recall[i]-recall[i-1]) * (precision[i] + precision[i-1]) / 2
	}
	return auc, true
}

// ClassificationReport returns per-class precision, recall, f1-score and
// support plus accuracy, macro and weighted averages. Undefined ratios are 0.
func ClassificationReport(yTrue, yPred []int) map[string]interface{} {
	classSet := make(map[int]struct{})
	for _, y := range yTrue {
		classSet[y] = struct{}{}
	}
	for _, y := range yPred {
		classSet[y] = struct{}{}
	}
	classes := make([]int, 0, len(classSet))
	for c := range classSet {
		classes = append(classes, c)
	}
	sort.Ints(classes)

	report := make(map[string]interface{}, len(classes)+3)
	var correct float64
	for i := range yTrue {
		if i < len(yPred) && yTrue[i] == yPred[i] {
			correct++
		}
	}

	var macroP, macroR, macroF, weightP, weightR, weightF, total float64
	for _, c := range classes {
		var tp, fp, fn float64
		for i := range yTrue {
			pred := -1
			if i < len(yPred) {
				pred = yPred[i]
			}
			switch {
			case yTrue[i] == c && pred == c:
				tp++
			case yTrue[i] != c && pred == c:
				fp++
			case yTrue[i] == c && pred != c:
				fn++
			}
		}
		p := ratio(tp, tp+fp)
		r := ratio(tp, tp+fn)
		f := ratio(2*p*r, p+r)
		support := tp + fn

		report[strconv.Itoa(c)] = map[string]float64{
			"precision": p,
			"recall":    r,
			"f1-score":  f,
			"support":   support,
		}
		macroP += p
		macroR += r
		macroF += f
		weightP += p * support
		weightR += r * support
		weightF += f * support
		total += support
	}

	n := float64(len(classes))
	report["accuracy"] = ratio(correct, float64(len(yTrue)))
	report["macro avg"] = map[string]float64{
		"precision": ratio(macroP, n),
		"recall":    ratio(macroR, n),
		"f1-score":  ratio(macroF, n),
		"support":   total,
	}
	report["weighted avg"] = map[string]float64{
		"precision": ratio(weightP, total),
		"recall":    ratio(weightR, total),
		"f1-score":  ratio(weightF, total),
		"support":   total,
	}
	return report
}

func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
