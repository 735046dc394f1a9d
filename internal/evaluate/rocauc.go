package evaluate

import "sort"

// rocAUCMacroOVR computes macro-averaged one-vs-rest ROC-AUC from per-class
// probability rows. Returns ok=false when the metric cannot be computed:
// fewer than two classes represented in the labels, a label outside the
// probability columns, or ragged rows.
func rocAUCMacroOVR(proba [][]float64, labels []int) (float64, bool) {
	if len(proba) == 0 || len(proba) != len(labels) {
		return 0, false
	}
	k := len(proba[0])
	for _, row := range proba {
		if len(row) != k {
			return 0, false
		}
	}
	represented := map[int]int{}
	for _, y := range labels {
		if y < 0 || y >= k {
			return 0, false
		}
		represented[y]++
	}
	if len(represented) < 2 {
		return 0, false
	}

	var sum float64
	var count int
	for c := range represented {
		pos := represented[c]
		neg := len(labels) - pos
		if pos == 0 || neg == 0 {
			continue
		}
		scores := make([]float64, len(labels))
		for i, row := range proba {
			scores[i] = row[c]
		}
		sum += binaryAUC(scores, labels, c)
		count++
	}
	if count == 0 {
		return 0, false
	}
	return sum / float64(count), true
}

// binaryAUC is the Mann-Whitney rank formulation: the probability that a
// random positive scores above a random negative, with ties counted half.
func binaryAUC(scores []float64, labels []int, positive int) float64 {
	type scored struct {
		score float64
		pos   bool
	}
	items := make([]scored, len(scores))
	nPos := 0
	for i, s := range scores {
		isPos := labels[i] == positive
		if isPos {
			nPos++
		}
		items[i] = scored{score: s, pos: isPos}
	}
	nNeg := len(scores) - nPos

	sort.Slice(items, func(i, j int) bool { return items[i].score < items[j].score })

	// Average ranks across ties, 1-based.
	rankSumPos := 0.0
	i := 0
	for i < len(items) {
		j := i
		for j < len(items) && items[j].score == items[i].score {
			j++
		}
		avgRank := float64(i+j+1) / 2.0 // mean of ranks i+1..j
		for t := i; t < j; t++ {
			if items[t].pos {
				rankSumPos += avgRank
			}
		}
		i = j
	}

	u := rankSumPos - float64(nPos)*float64(nPos+1)/2.0
	return u / (float64(nPos) * float64(nNeg))
}
