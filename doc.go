// Package gpc provides Gaussian Process binary classification as a
// sampling-based Bayesian workflow: synthetic data generation from a latent
// GP through a logistic link, joint posterior inference over the kernel
// hyperparameters and latent function by MCMC, and a predictive posterior at
// new input locations via GP conditioning.
//
// # Features
//
// The package includes the following key features:
//
//   - Squared-Exponential Kernel: Covariance construction with
//     configurable amplitude, length scale and diagonal jitter
//   - Black-box Sampling Interface: Models are opaque "density + data ->
//     draws" specifications; the built-in adaptive random-walk Metropolis
//     engine can be swapped without touching the workflow stages
//   - Parallel Chains: Independent chains run concurrently with no shared
//     mutable state and per-chain reproducible random streams
//   - Cholesky-based Conditioning: Predictive means and covariances through
//     triangular solves, never explicit matrix inversion
//   - Configurable Priors: Half-normal on the amplitude, inverse-gamma on
//     the length scale
//   - Predictive Strategies: Point-estimate plug-in (fast, reuses one fit)
//     or full marginalization over posterior draws (stricter)
//   - Convergence Diagnostics: Split potential scale reduction and
//     effective sample size, computed on demand, never gated on
//   - Progress Monitoring: Real-time stage and chain updates via channels
//
// # Workflow
//
// The four stages run strictly in order, each consuming the previous
// stage's output:
//
//	data, _ := gpc.Synthesize(gpc.DefaultSynthesisConfig())
//	train, _ := data.Subsample(100, 7)
//	post, _ := gpc.FitPosterior(train, gpc.DefaultPriorConfig(), gpc.DefaultSamplingConfig())
//	pred, _ := gpc.ExtendPredictive(post, train, data.Grid, gpc.DefaultPredictiveConfig())
//	summary, _ := gpc.SummarizeProbability(pred, "f_star", 0.9)
//
// RunWorkflow drives all of it from a single WorkflowConfig.
//
// # Prediction strategy
//
// By default the predictive posterior conditions on point estimates
// (posterior means) of the hyperparameters and latent values rather than
// marginalizing over the full posterior sample set. This trades some
// accuracy for the ability to reuse one posterior fit across many prediction
// calls; it is an explicit, documented approximation. Select
// StrategyFullMarginal for the stricter, more expensive alternative.
//
// # Error Handling
//
// All errors propagate to the caller and none are retried automatically:
//
//   - ConfigurationError: malformed payloads or settings, detected before
//     sampling starts
//   - NumericalInstabilityError: a covariance failed to factorize even with
//     jitter, identified by stage and matrix
//   - SamplingFailure: the sampling run itself failed; wraps its cause
//
// A blind retry could mask a genuine model misspecification, so retrying
// (e.g. with a larger jitter) is left to human judgment.
//
// # Thread Safety
//
// Within a sampling call, chains share no mutable state and synchronize only
// when their draws are collected. Matrices are built fresh per call and need
// no locking. Progress channel sends never block.
package gpc
