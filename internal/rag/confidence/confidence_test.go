package confidence

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-4
}

func TestScore_Scenarios(t *testing.T) {
	tests := []struct {
		name         string
		similarities []float64
		expected     float64
	}{
		{
			name:         "Empty_Yields_Zero",
			similarities: nil,
			expected:     0,
		},
		{
			// (0.9*1.0 + 0.5*0.8) / 1.8 = 0.7222, boosted by 1.15 = 0.8306
			name:         "Two_Results_With_Boost",
			similarities: []float64{0.9, 0.5},
			expected:     0.8306,
		},
		{
			// top similarity 0.6 stays under the boost cutoff
			name:         "No_Boost_Below_Cutoff",
			similarities: []float64{0.6, 0.6},
			expected:     0.6,
		},
		{
			name:         "Single_Weak_Result",
			similarities: []float64{0.3},
			expected:     0.3,
		},
		{
			// boosted value exceeding 1 is clamped
			name:         "Clamped_At_One",
			similarities: []float64{1.0, 1.0, 1.0, 1.0, 1.0},
			expected:     1.0,
		},
		{
			// only the first five ranks participate
			name:         "Sixth_Rank_Ignored",
			similarities: []float64{0.5, 0.5, 0.5, 0.5, 0.5, 99.0},
			expected:     0.5,
		},
		{
			// negative cosine similarities cannot push the score below 0
			name:         "Clamped_At_Zero",
			similarities: []float64{-0.8, -0.9},
			expected:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.similarities)
			if !almostEqual(got, tt.expected) {
				t.Errorf("Score(%v) = %v, want %v", tt.similarities, got, tt.expected)
			}
			if got < 0 || got > 1 {
				t.Errorf("Score(%v) = %v out of [0,1]", tt.similarities, got)
			}
		})
	}
}

func TestScore_Pure(t *testing.T) {
	sims := []float64{0.91, 0.72, 0.55, 0.31, 0.12}
	first := Score(sims)
	for i := 0; i < 10; i++ {
		if got := Score(sims); got != first {
			t.Fatalf("Score is not deterministic: %v vs %v", got, first)
		}
	}
}
