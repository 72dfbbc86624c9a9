// Package analysis measures recorded orbital tracks.
//
//   - [PowerSpectrum]: windowed FFT magnitudes of a coordinate series
//   - [DominantPeriod]: period of the strongest oscillation in a series
//   - [AngularRate]: least-squares angular velocity from x/y samples
//
// Measured values can be checked against the closed forms in the orbit
// package:
//
//	p, _ := analysis.DominantPeriod(xs, dt)
//	want := orbit.Period(body.RelativeDistance, base)
package analysis
