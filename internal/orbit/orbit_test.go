package orbit

import (
	"math"
	"testing"
)

func TestComputePositionDeterministic(t *testing.T) {
	inputs := []struct{ t, d, scale, base float64 }{
		{0, 1, 50, 0.05},
		{12.345, 0.39, 10, 0.1},
		{1e6, 30.07, 10, 0.1},
		{math.Pi * 7, 5.2, 3.5, 2},
	}

	for _, in := range inputs {
		a := ComputePosition(in.t, in.d, in.scale, in.base)
		b := ComputePosition(in.t, in.d, in.scale, in.base)
		if a != b {
			t.Errorf("ComputePosition(%v) not reproducible: %v vs %v", in, a, b)
		}
	}
}

func TestComputePositionScenario(t *testing.T) {
	p := ComputePosition(0, 1.0, 50, 0.05)
	if p.X() != 50 || p.Y() != 0 || p.Z() != 0 {
		t.Errorf("expected (50, 0, 0) at t=0, got %v", p.Point)
	}

	p = ComputePosition(20*math.Pi, 1.0, 50, 0.05)
	if math.Abs(p.X()+50) > 1e-9 || math.Abs(p.Y()) > 1e-9 || p.Z() != 0 {
		t.Errorf("expected (-50, 0, 0) at t=20π, got %v", p.Point)
	}
}

func TestComputePositionRotation(t *testing.T) {
	p := ComputePosition(3.5, 2, 10, 0.1)
	if p.Rotation != 3.5 {
		t.Errorf("expected rotation 3.5, got %f", p.Rotation)
	}

	c := Calculator{DistanceScale: 10, AngularRateBase: 0.1, SpinRate: 2}
	q := c.Position(3.5, 2)
	if q.Rotation != 7 {
		t.Errorf("expected rotation 7, got %f", q.Rotation)
	}
	if q.Point != p.Point {
		t.Errorf("spin rate changed orbital position: %v vs %v", q.Point, p.Point)
	}
}

func TestPositionStaysOnCircle(t *testing.T) {
	for _, tt := range []float64{0, 1, 17.3, 400, 9999.5} {
		p := ComputePosition(tt, 1.52, 10, 0.1)
		r := p.Point.Len()
		if math.Abs(r-15.2) > 1e-9 {
			t.Errorf("t=%v: radius %f, want 15.2", tt, r)
		}
	}
}

func TestInverseDistanceSpeed(t *testing.T) {
	distances := []float64{0.39, 0.72, 1.0, 1.52, 5.2, 9.58, 19.18, 30.07}
	const base = 0.1

	for _, tt := range []float64{0.5, 3, 100} {
		for i := 0; i < len(distances)-1; i++ {
			inner := Angle(tt, distances[i], base) / tt
			outer := Angle(tt, distances[i+1], base) / tt
			if inner <= outer {
				t.Errorf("t=%v: d=%v rate %v not faster than d=%v rate %v",
					tt, distances[i], inner, distances[i+1], outer)
			}
		}
	}
}

func TestPeriod(t *testing.T) {
	d, base := 2.0, 0.1
	period := Period(d, base)
	p := ComputePosition(period, d, 1, base)
	if math.Abs(p.X()-2) > 1e-9 || math.Abs(p.Y()) > 1e-9 {
		t.Errorf("after one period expected (2, 0), got %v", p.Point)
	}
	if math.Abs(AngularRate(d, base)*period-2*math.Pi) > 1e-12 {
		t.Error("rate * period != 2π")
	}
}

func TestPath(t *testing.T) {
	pts := Path(1.52, 10)

	if len(pts) != PathSamples {
		t.Fatalf("expected %d samples, got %d", PathSamples, len(pts))
	}

	for i, p := range pts {
		if math.Abs(p.Len()-15.2) > 1e-9 {
			t.Errorf("sample %d off circle: %v", i, p)
		}
		if p[2] != 0 {
			t.Errorf("sample %d leaves plane: %v", i, p)
		}
	}

	if math.Abs(pts[0][0]-15.2) > 1e-9 || pts[0][1] != 0 {
		t.Errorf("first sample should sit on +x axis, got %v", pts[0])
	}

	last := float64(PathSamples-1) * PathStep
	if last >= 2*math.Pi || last < 2*math.Pi-2*PathStep {
		t.Errorf("ring should span roughly 2π, ends at %f", last)
	}

	again := Path(1.52, 10)
	for i := range pts {
		if pts[i] != again[i] {
			t.Fatalf("path not reproducible at %d", i)
		}
	}
}
