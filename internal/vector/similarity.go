package vector

import "math"

// Norm returns the L2 norm of v, accumulating in float64.
func Norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// CosineSimilarity returns the cosine similarity of a and b. Callers in hot
// loops pass precomputed norms (> 0) to skip recomputation; pass 0 to have
// them computed here. Returns 0 when either norm is 0. Assumes equal lengths;
// dimension validation happens upstream.
func CosineSimilarity(a, b []float32, normA, normB float64) float64 {
	if normA == 0 {
		normA = Norm(a)
	}
	if normB == 0 {
		normB = Norm(b)
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot / (normA * normB)
}

// SquaredL2 returns the squared Euclidean distance between a and b.
// Assumes equal lengths.
func SquaredL2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}

// dot returns the float64 dot product of a and b. Assumes equal lengths.
func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
