package services

import "math/rand/v2"

// DrawCondition assigns the experimental group: a uniform draw from
// {0, 1}. Called exactly once per participant at creation; the result
// is never recomputed.
func DrawCondition() int {
	return rand.IntN(2)
}
