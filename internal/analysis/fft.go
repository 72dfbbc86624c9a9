package analysis

import (
	"errors"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

var ErrTooShort = errors.New("analysis: series too short")

// PowerSpectrum returns the magnitude of the first n/2 frequency bins of a
// mean-removed, Hann-windowed copy of data. Bin k corresponds to a
// frequency of k/(n*dt).
func PowerSpectrum(data []float64) []float64 {
	n := len(data)
	if n < 2 {
		return []float64{}
	}

	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(n)

	x := make([]float64, n)
	for i, v := range data {
		x[i] = v - mean
	}
	window.Apply(x, window.Hann)

	spec := fft.FFTReal(x)
	ps := make([]float64, n/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spec[i])
	}
	return ps
}

// DominantPeriod estimates the period of the strongest oscillation in a
// series sampled every dt, refining the peak bin by parabolic interpolation
// on log magnitudes. The series must span at least two cycles.
func DominantPeriod(data []float64, dt float64) (float64, error) {
	if dt <= 0 {
		return 0, errors.New("analysis: sample interval must be positive")
	}
	ps := PowerSpectrum(data)
	if len(ps) < 4 {
		return 0, ErrTooShort
	}

	peak := 1
	for k := 2; k < len(ps); k++ {
		if ps[k] > ps[peak] {
			peak = k
		}
	}
	if peak < 2 {
		return 0, ErrTooShort
	}
	if ps[peak] == 0 {
		return 0, errors.New("analysis: series has no oscillation")
	}

	k := float64(peak)
	if peak+1 < len(ps) && ps[peak-1] > 0 && ps[peak+1] > 0 {
		a, b, c := math.Log(ps[peak-1]), math.Log(ps[peak]), math.Log(ps[peak+1])
		if d := a - 2*b + c; d != 0 {
			k += 0.5 * (a - c) / d
		}
	}
	return float64(len(data)) * dt / k, nil
}

// AngularRate fits a line through the unwrapped polar angle of (xs, ys)
// against times and returns its slope in radians per unit time.
func AngularRate(times, xs, ys []float64) (float64, error) {
	n := len(times)
	if n < 2 || len(xs) != n || len(ys) != n {
		return 0, ErrTooShort
	}

	angles := make([]float64, n)
	prev := math.Atan2(ys[0], xs[0])
	angles[0] = prev
	for i := 1; i < n; i++ {
		a := math.Atan2(ys[i], xs[i])
		d := a - prev
		for d > math.Pi {
			d -= 2 * math.Pi
		}
		for d < -math.Pi {
			d += 2 * math.Pi
		}
		angles[i] = angles[i-1] + d
		prev = a
	}

	var st, sa, stt, sta float64
	for i := range times {
		st += times[i]
		sa += angles[i]
		stt += times[i] * times[i]
		sta += times[i] * angles[i]
	}
	fn := float64(n)
	den := fn*stt - st*st
	if den == 0 {
		return 0, errors.New("analysis: times are all equal")
	}
	return (fn*sta - st*sa) / den, nil
}
