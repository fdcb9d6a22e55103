package retriever

import "math"

// Cosine computes the cosine similarity between two vectors, defined as 0
// when either vector has zero norm. Vectors of different lengths are compared
// over their common prefix.
func Cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	for i := n; i < len(a); i++ {
		normA += float64(a[i]) * float64(a[i])
	}
	for i := n; i < len(b); i++ {
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
