// Package quadrature provides polar quadrature sets for MOC ray tracing.
//
// A set covers one hemisphere: polar angles lie in (0, π/2) and the weights
// sum to one. The evaluator only needs sin θ per polar index, which every
// [Set] exposes through SinTheta.
//
// Supported kinds: Tabuchi–Yamamoto (1–3 angles), Gauss–Legendre,
// equal-weight, equal-angle, and custom user-supplied sets.
package quadrature
