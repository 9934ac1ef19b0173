package utils

import (
	"math"
	"time"
)

// NormalizeL2 scales the vector in place to unit L2 norm so that inner
// product equals cosine similarity. A zero vector is left as is.
func NormalizeL2(x []float32) {
	var sum float32
	for _, v := range x {
		sum += v * v
	}
	if sum == 0 {
		return
	}
	inv := float32(1.0 / math.Sqrt(float64(sum)))
	for i := range x {
		x[i] *= inv
	}
}

// HalfLifeDecay returns exp2(-age/halfLife) clamped to [0,1]: 1.0 at age
// zero, 0.5 after one half-life, 0.25 after two. Negative ages score 1.0
// and a non-positive half-life scores 0.
func HalfLifeDecay(age, halfLife time.Duration) float64 {
	if halfLife <= 0 {
		return 0
	}
	if age < 0 {
		age = 0
	}
	return math.Exp2(-age.Hours() / halfLife.Hours())
}
