package style

import (
	"math"
	"sort"
)

// CosineSimilarity returns the cosine of the angle between a and b, or 0 when
// the vectors differ in length or either is all zeros.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Match is a candidate scored against a target embedding.
type Match struct {
	Index int
	Score float64
}

// Rank scores every candidate embedding against target, highest first.
// Each dimension is divided by its largest magnitude across target and
// candidates first, so character length does not drown out the ratios.
// Candidates without a full embedding are skipped.
func Rank(target []float64, candidates [][]float64) []Match {
	if len(target) != Dimensions {
		return nil
	}

	scale := make([]float64, Dimensions)
	widen := func(v []float64) {
		for i, x := range v {
			scale[i] = math.Max(scale[i], math.Abs(x))
		}
	}
	widen(target)
	for _, c := range candidates {
		if len(c) == Dimensions {
			widen(c)
		}
	}

	normalize := func(v []float64) []float64 {
		out := make([]float64, Dimensions)
		for i, x := range v {
			if scale[i] > 0 {
				out[i] = x / scale[i]
			}
		}
		return out
	}

	t := normalize(target)
	matches := make([]Match, 0, len(candidates))
	for i, c := range candidates {
		if len(c) != Dimensions {
			continue
		}
		matches = append(matches, Match{Index: i, Score: CosineSimilarity(t, normalize(c))})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches
}
