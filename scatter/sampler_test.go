package scatter

import (
	"math"
	"testing"

	"github.com/auroralab/aurora/types"
)

func TestDirectionDeterminism(t *testing.T) {
	if got := Direction(0, 64); got != types.XYZ(0, 1, 0) {
		t.Fatalf("expected the first sample at the pole; got %v", got)
	}

	// The sequence is a pure function of (i, n): repeated calls must be
	// bit-stable.
	for _, n := range []int{16, 64} {
		for i := 0; i < n; i++ {
			if d1, d2 := Direction(i, n), Direction(i, n); d1 != d2 {
				t.Fatalf("expected Direction(%d, %d) to be bit-stable; got %v and %v", i, n, d1, d2)
			}
		}
	}
}

func TestDirectionUnitLength(t *testing.T) {
	const n = 64
	for i := 0; i < n; i++ {
		if l := Direction(i, n).Len(); math.Abs(float64(l-1)) > 1e-5 {
			t.Fatalf("sample %d: expected a unit direction; got length %v", i, l)
		}
	}
}

// The polar cosine walks 1 - 2i/n exactly, so equal cosine bands must hold
// equal sample counts: uniform sphere coverage by construction.
func TestDirectionPolarCoverage(t *testing.T) {
	const n = 64

	var bands [4]int
	for i := 0; i < n; i++ {
		d := Direction(i, n)
		if want := 1 - 2*float32(i)/n; d[1] != want {
			t.Fatalf("sample %d: expected polar cosine %v; got %v", i, want, d[1])
		}

		switch {
		case d[1] > 0.5:
			bands[0]++
		case d[1] > 0:
			bands[1]++
		case d[1] > -0.5:
			bands[2]++
		default:
			bands[3]++
		}
	}

	for b, count := range bands {
		if count != n/4 {
			t.Fatalf("band %d: expected %d samples; got %d", b, n/4, count)
		}
	}
}

func TestDirectionMeanVector(t *testing.T) {
	const n = 64

	var mean types.Vec3
	for i := 0; i < n; i++ {
		mean = mean.Add(Direction(i, n))
	}
	mean = mean.Mul(1.0 / n)

	// The polar cosines sum to exactly 1, everything else nearly cancels.
	if math.Abs(float64(mean[1]-1.0/n)) > 1e-6 {
		t.Fatalf("expected mean polar cosine 1/%d; got %v", n, mean[1])
	}
	if math.Abs(float64(mean[0])) > 0.05 || math.Abs(float64(mean[2])) > 0.05 {
		t.Fatalf("expected azimuthal components to cancel; got mean %v", mean)
	}
}
