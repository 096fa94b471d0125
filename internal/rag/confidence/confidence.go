package confidence

import "github.com/nkodali/KBaseAPI/internal/config"

// rank weights for the top results, highest rank weighted most
var rankWeights = [config.ConfidenceMaxRank]float64{1.0, 0.8, 0.6, 0.4, 0.2}

// Score derives a scalar reliability estimate in [0,1] from rank-ordered
// similarity scores. It is a weighted average over the top five
// similarities, boosted by 1.15 when the top match is strong.
//
// This is a heuristic, not a calibrated probability. Downstream clients
// threshold on it, so the constants must not change without product
// sign-off.
func Score(similarities []float64) float64 {
	if len(similarities) == 0 {
		return 0
	}

	n := len(similarities)
	if n > config.ConfidenceMaxRank {
		n = config.ConfidenceMaxRank
	}

	var weightedSum, weightTotal float64
	for i := 0; i < n; i++ {
		weightedSum += similarities[i] * rankWeights[i]
		weightTotal += rankWeights[i]
	}
	score := weightedSum / weightTotal

	if similarities[0] > config.ConfidenceBoostCutoff {
		score *= config.ConfidenceBoostFactor
	}

	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
