package vector

import (
	"math"
	"sort"
)

// NormalizeSimilarity rescales a cosine value in [-1,1] to [0,1]. A
// temperature other than 1 applies a power-law adjustment: below 1 sharpens
// the distribution, above 1 flattens it.
func NormalizeSimilarity(raw, temperature float64) float64 {
	v := (raw + 1) / 2
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	if temperature > 0 && temperature != 1 {
		v = math.Pow(v, 1/temperature)
	}
	return v
}

// CombineSimilarities returns the weighted harmonic mean of scores.
// Non-positive scores are skipped to avoid division by zero; if none remain
// the result is 0. weights shorter than scores are treated as 1.
func CombineSimilarities(scores, weights []float64) float64 {
	var weightSum, invSum float64
	for i, s := range scores {
		if s <= 0 {
			continue
		}
		w := 1.0
		if i < len(weights) {
			w = weights[i]
		}
		if w <= 0 {
			continue
		}
		weightSum += w
		invSum += w / s
	}
	if invSum == 0 {
		return 0
	}
	return weightSum / invSum
}

// CalculateConfidence adjusts a similarity for reliability: sharply diverging
// vector norms penalize it, and a stable cluster boosts it, capped at 1.2x.
// The result is clamped to [0, 1].
func CalculateConfidence(similarity, queryNorm, candidateNorm, clusterStability float64) float64 {
	conf := similarity
	if queryNorm > 0 && candidateNorm > 0 {
		ratio := queryNorm / candidateNorm
		if ratio > 1 {
			ratio = 1 / ratio
		}
		// ratio is now in (0,1]; a large norm gap means the embeddings
		// came from texts of very different scales.
		if ratio < 0.5 {
			conf *= 0.5 + ratio
		}
	}
	if clusterStability > 0 {
		boost := 1 + 0.2*clusterStability
		if boost > 1.2 {
			boost = 1.2
		}
		conf *= boost
	}
	if conf < 0 {
		conf = 0
	} else if conf > 1 {
		conf = 1
	}
	return conf
}

// RankBySimilarity sorts candidates descending by similarity. With
// adaptiveCutoff, the list is truncated at the single largest consecutive
// similarity gap, provided that gap exceeds 10% of the best score; otherwise
// the full sorted list is returned.
func RankBySimilarity(candidates []SearchResult, adaptiveCutoff bool) []SearchResult {
	ranked := copyResults(candidates)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Similarity > ranked[j].Similarity })
	if !adaptiveCutoff || len(ranked) < 2 {
		return ranked
	}
	best := ranked[0].Similarity
	if best <= 0 {
		return ranked
	}
	cutAt, maxGap := -1, 0.0
	for i := 1; i < len(ranked); i++ {
		gap := ranked[i-1].Similarity - ranked[i].Similarity
		if gap > maxGap {
			maxGap = gap
			cutAt = i
		}
	}
	if cutAt > 0 && maxGap > 0.1*best {
		return ranked[:cutAt]
	}
	return ranked
}
