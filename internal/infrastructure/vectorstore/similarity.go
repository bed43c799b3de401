package vectorstore

import (
	"math"
	"sort"
)

// cosineSimilarity returns a value in [-1, 1]. Mismatched lengths and zero
// vectors score 0.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

type scored struct {
	index      int
	similarity float64
}

// topK ranks corpus by similarity to query and returns at most k indices.
// Ties keep corpus order.
func topK(query []float32, corpus [][]float32, k int) []scored {
	if k <= 0 {
		return nil
	}
	results := make([]scored, len(corpus))
	for i, vec := range corpus {
		results[i] = scored{index: i, similarity: cosineSimilarity(query, vec)}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].similarity > results[j].similarity
	})
	if len(results) > k {
		results = results[:k]
	}
	return results
}
