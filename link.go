package gpc

import "math"

//////
// Logistic link.
//////

// Logistic maps an unconstrained latent value to a probability in (0, 1).
//
// Mathematical formula:
//
//	logistic(f) = 1 / (1 + exp(-f))
//
// Important notes:
// - Monotonically increasing
// - logistic(0) = 0.5
// - Evaluated via the positive branch to stay accurate for large |f|.
func Logistic(f float64) float64 {
	if f >= 0 {
		return 1 / (1 + math.Exp(-f))
	}

	// exp(f) / (1 + exp(f)) avoids overflow for very negative f.
	e := math.Exp(f)

	return e / (1 + e)
}

// softplus computes log(1 + exp(x)) without overflow.
func softplus(x float64) float64 {
	if x > 35 {
		// log1p(exp(x)) = x + exp(-x) to within double precision.
		return x
	}

	return math.Log1p(math.Exp(x))
}

// bernoulliLogProb evaluates the Bernoulli log likelihood of a binary outcome
// y under success probability logistic(f), computed directly on the latent
// scale so extreme latents do not round the probability to exactly 0 or 1.
func bernoulliLogProb(y, f float64) float64 {
	if y == 1 {
		return -softplus(-f)
	}

	return -softplus(f)
}
