package gpc

import "fmt"

//////
// Exported functionalities.
//////

// WorkflowConfig bundles the configuration of every stage of the
// generate / infer / predict / summarize workflow.
//
// Fields explanation:
// - Synthesis: Grid, true hyperparameters, seed of the synthetic data
// - TrainSize: Size of the training subset drawn from the grid
// - SubsampleSeed: Seed of the subset draw
// - Priors: Hyperparameter priors for posterior inference
// - Sampling: MCMC settings for posterior inference
// - Predictive: Strategy and draw count of the predictive stage
// - IntervalProb: Credible-interval probability for the summaries
// - ProgressChan: Optional channel receiving stage and chain updates.
type WorkflowConfig struct {
	// Synthesis configures the synthetic dataset.
	Synthesis SynthesisConfig

	// TrainSize is the number of grid points subsampled for training.
	TrainSize int

	// SubsampleSeed fixes the training-subset draw.
	SubsampleSeed uint64

	// Priors configures the hyperparameter priors.
	Priors PriorConfig

	// Sampling configures posterior inference.
	Sampling SamplingConfig

	// Predictive configures the predictive-posterior stage.
	Predictive PredictiveConfig

	// IntervalProb is the two-sided credible-interval probability used in
	// the summaries, e.g. 0.9.
	IntervalProb float64

	// ProgressChan receives updates as stages and chains complete. Sends
	// never block. Nil disables them.
	ProgressChan chan<- ProgressUpdate
}

// DefaultWorkflowConfig returns the reference scenario: 1000 grid points on
// [-1, 1] with alpha = 5 and rho = 0.1, a training subset of 100, four
// chains of 2000 iterations (half warmup), point-estimate prediction over
// the full grid and 90% intervals.
func DefaultWorkflowConfig() WorkflowConfig {
	return WorkflowConfig{
		Synthesis:     DefaultSynthesisConfig(),
		TrainSize:     100,
		SubsampleSeed: DefaultSynthesisConfig().Seed + 1,
		Priors:        DefaultPriorConfig(),
		Sampling:      DefaultSamplingConfig(),
		Predictive:    DefaultPredictiveConfig(),
		IntervalProb:  0.9,
		ProgressChan:  nil, // Default to no progress updates.
	}
}

// WorkflowResult holds everything the workflow produced, stage by stage.
type WorkflowResult struct {
	// Data is the full synthetic dataset (grid, latent draw, labels).
	Data *SyntheticDataset

	// Train is the subsampled training set.
	Train *Dataset

	// Posterior holds the raw posterior draws of (alpha, rho, f).
	Posterior *SampleSet

	// Estimate holds the posterior means plugged into prediction.
	Estimate *PosteriorEstimate

	// Predictive holds the draws of f_star over the full grid.
	Predictive *SampleSet

	// Latent summarizes the predictive draws on the latent scale.
	Latent *Summary

	// Probability summarizes the predictive draws through the logistic
	// link: pointwise class probabilities with credible intervals.
	Probability *Summary
}

// RunWorkflow runs the whole Gaussian-process classification workflow:
//
//  1. Synthesize a binary-labeled dataset from a latent GP with known
//     hyperparameters.
//  2. Subsample a training subset.
//  3. Sample the joint posterior over (alpha, rho, f) on the subset.
//  4. Extend the fit to the full grid through GP conditioning.
//  5. Summarize the predictive draws on the latent and probability scales.
//
// Stages run strictly in this order; each consumes only its predecessor's
// output. Parallelism lives inside the posterior stage, where chains are
// independent.
//
// Important notes:
// - Any stage error aborts the workflow and is returned as-is; nothing is
//   auto-recovered, since every error kind here indicates a modeling or
//   numerical problem requiring human judgment
// - Convergence of the posterior draws is not checked; run
//   PotentialScaleReduction / EffectiveSampleSize on result.Posterior.
//
// Usage example:
//
//	cfg := gpc.DefaultWorkflowConfig()
//	cfg.Synthesis.Seed = 42
//	cfg.Sampling.Seed = 43
//
//	result, err := gpc.RunWorkflow(cfg)
//	if err != nil {
//	    return err
//	}
//
//	rhat, _ := gpc.PotentialScaleReduction(result.Posterior, "rho")
//	fmt.Println(result.Estimate.Rho, rhat)
func RunWorkflow(cfg WorkflowConfig) (*WorkflowResult, error) {
	if cfg.TrainSize > cfg.Synthesis.GridSize {
		return nil, &ConfigurationError{
			Field:  "TrainSize",
			Reason: fmt.Sprintf("training subset (%d) cannot exceed the grid (%d)", cfg.TrainSize, cfg.Synthesis.GridSize),
		}
	}

	if cfg.IntervalProb <= 0 || cfg.IntervalProb >= 1 {
		return nil, &ConfigurationError{
			Field:  "IntervalProb",
			Reason: fmt.Sprintf("must be in (0, 1), got %g", cfg.IntervalProb),
		}
	}

	stage := func(phase string, step, total int) {
		sendProgress(cfg.ProgressChan, ProgressUpdate{
			Phase:       phase,
			Chain:       -1,
			CurrentStep: step,
			TotalSteps:  total,
		})
	}

	result := &WorkflowResult{}

	// Stage 1: data synthesis.
	stage("Synthesis", 0, 1)

	data, err := Synthesize(cfg.Synthesis)
	if err != nil {
		return nil, err
	}

	result.Data = data
	stage("Synthesis", 1, 1)

	// Stage 2: training subset.
	train, err := data.Subsample(cfg.TrainSize, cfg.SubsampleSeed)
	if err != nil {
		return nil, err
	}

	result.Train = train
	stage("Subsample", 1, 1)

	// Stage 3: posterior inference. Chain-level progress flows through the
	// same channel.
	sampling := cfg.Sampling
	if sampling.ProgressChan == nil {
		sampling.ProgressChan = cfg.ProgressChan
	}

	stage("Posterior", 0, 1)

	post, err := FitPosterior(train, cfg.Priors, sampling)
	if err != nil {
		return nil, err
	}

	result.Posterior = post
	stage("Posterior", 1, 1)

	// Stage 4: predictive posterior over the full grid.
	est, err := EstimatePosterior(post)
	if err != nil {
		return nil, err
	}

	result.Estimate = est
	stage("Predictive", 0, 1)

	pred, err := ExtendPredictive(post, train, data.Grid, cfg.Predictive)
	if err != nil {
		return nil, err
	}

	result.Predictive = pred
	stage("Predictive", 1, 1)

	// Stage 5: summaries on both scales.
	latent, err := Summarize(pred, "f_star", cfg.IntervalProb)
	if err != nil {
		return nil, err
	}

	probability, err := SummarizeProbability(pred, "f_star", cfg.IntervalProb)
	if err != nil {
		return nil, err
	}

	result.Latent = latent
	result.Probability = probability
	stage("Summary", 1, 1)

	return result, nil
}
