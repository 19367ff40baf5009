// Package expeval evaluates the exponential attenuation kernels used by a
// method-of-characteristics transport sweep.
//
// For a segment of optical length τ the Evaluator returns
//
//	E(τ)  = 1 − e^{−τ}                  flat source (ComputeExponential)
//	F1(τ) = 1 − (1 − e^{−τ})/τ          linear source, flat weight
//	F2(τ) = 2(τ − 2·F1(τ))/τ            linear source, linear moment
//	H(τ)  = (1 − e^{−τ})/τ − e^{−τ}     net linear-source contribution
//	G2(τ) = 3(1 − R3(τ))                quadratic source moment
//
// where R3(τ) = 6(τ²/2 − τ + 1 − e^{−τ})/τ³. All kernels vanish at τ = 0
// and are evaluated from a power series for small τ to avoid cancellation.
//
// Kernels are computed either directly (intrinsic mode) or by linear
// interpolation in a table built by Initialize. The table spacing h is
// chosen from the interpolation error bound h²/8·max|f''| ≤ precision,
// and every kernel here has |f''| ≤ 1. Arguments at or above
// MaxOpticalLength saturate to the value at MaxOpticalLength in both modes.
//
// # Concurrency
//
// Configuration (the Set*, Use* and Initialize methods) is single-writer
// and must complete before the Evaluator is shared. After that, every
// Compute*, Retrieve*, Difference and geometry method only reads immutable
// state, so any number of goroutines may call them on one Evaluator without
// locking. DeepCopy gives a worker its own independent instance.
package expeval
