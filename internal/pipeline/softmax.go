package pipeline

import (
	"math"
	"sort"
)

// softmax converts raw scores to a probability distribution. The maximum
// logit is subtracted before exponentiating so large scores cannot
// overflow.
func softmax(logits []float32) []float64 {
	if len(logits) == 0 {
		return nil
	}
	maxLogit := float64(logits[0])
	for _, logit := range logits[1:] {
		if float64(logit) > maxLogit {
			maxLogit = float64(logit)
		}
	}

	probs := make([]float64, len(logits))
	var sum float64
	for i, logit := range logits {
		probs[i] = math.Exp(float64(logit) - maxLogit)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}

// rankIndices returns class indices ordered by probability, descending.
// Ties keep first-seen order, so the lowest class index wins.
func rankIndices(probs []float64) []int {
	ranked := make([]int, len(probs))
	for i := range ranked {
		ranked[i] = i
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return probs[ranked[i]] > probs[ranked[j]]
	})
	return ranked
}
