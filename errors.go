package gpc

import "fmt"

//////
// Error kinds.
//////

// ConfigurationError reports a malformed or inconsistent configuration or
// data payload, detected before any sampling work starts.
//
// Typical causes:
// - Length mismatch between paired arrays (e.g. inputs and observations)
// - Non-positive kernel hyperparameters
// - Missing or wrongly-typed payload entries
// - Nonsensical sampling settings (zero chains, negative warmup)
//
// Configuration errors always fail fast and are never retried: they indicate
// a caller bug, not a transient condition.
type ConfigurationError struct {
	// Field names the offending configuration field or payload key.
	Field string

	// Reason describes what is wrong with it.
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("gpc: invalid configuration: %s: %s", e.Field, e.Reason)
}

// NumericalInstabilityError reports a failed covariance factorization: the
// matrix was not positive definite even after the diagonal jitter was added.
//
// The error identifies which matrix failed and in which stage, so the caller
// can tell a data-generation failure from a posterior-evaluation failure.
// It is never retried automatically; the caller may retry with a larger
// jitter once the model has been inspected.
type NumericalInstabilityError struct {
	// Stage names the workflow stage that built the matrix
	// (e.g. "generation", "posterior", "predictive").
	Stage string

	// Matrix names the matrix that failed to factorize
	// (e.g. "K(x,x)", "Sigma(x*,x*)").
	Matrix string

	// Size is the matrix order.
	Size int

	// Jitter is the relative diagonal jitter that was in effect.
	Jitter float64
}

func (e *NumericalInstabilityError) Error() string {
	return fmt.Sprintf(
		"gpc: %s: Cholesky factorization of %s (n=%d, jitter=%g) failed: matrix is not positive definite",
		e.Stage, e.Matrix, e.Size, e.Jitter,
	)
}

// SamplingFailure reports that a sampling run could not complete: a density
// evaluation errored mid-chain, no proposal was ever accepted, or the
// wall-clock cap was exceeded.
//
// Sampling failures are surfaced as-is for manual inspection and never
// retried automatically, since a blind retry could mask a genuine model
// misspecification.
type SamplingFailure struct {
	// Model names the density specification that was being sampled.
	Model string

	// Chain is the zero-based index of the chain that failed.
	Chain int

	// Reason describes the failure mode.
	Reason string

	// Err is the underlying cause, if any.
	Err error
}

func (e *SamplingFailure) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("gpc: sampling %q (chain %d) failed: %s: %v", e.Model, e.Chain, e.Reason, e.Err)
	}

	return fmt.Sprintf("gpc: sampling %q (chain %d) failed: %s", e.Model, e.Chain, e.Reason)
}

// Unwrap exposes the underlying cause to errors.Is and errors.As.
func (e *SamplingFailure) Unwrap() error { return e.Err }
