package baker

import (
	"context"
	"math"
	"testing"

	"github.com/auroralab/aurora/atmosphere"
	"github.com/auroralab/aurora/compute"
	"github.com/auroralab/aurora/scatter"
	"github.com/auroralab/aurora/types"
)

func TestBackends(t *testing.T) {
	backends := Backends()
	if len(backends) != 2 {
		t.Fatalf("expected 2 compute backends; got %d", len(backends))
	}
	if backends[0].Id() == backends[1].Id() {
		t.Fatalf("expected backend ids to be unique; both report %q", backends[0].Id())
	}
}

func TestNewDefaultValidation(t *testing.T) {
	kernel := testKernel(t, earthTestSettings(), 8, 8, 8)
	shortKernel := testKernel(t, earthTestSettings(), 8, 1, 8)

	type spec struct {
		descr   string
		kernel  *scatter.Kernel
		options Options
		err     error
	}

	specs := []spec{
		{
			descr: "nil kernel",
			err:   ErrKernelNotDefined,
		},
		{
			descr:   "all backends black-listed",
			kernel:  kernel,
			options: Options{BlackListedBackends: []string{"cpu"}},
			err:     ErrNoBackends,
		},
		{
			descr:  "table shorter than backend count",
			kernel: shortKernel,
			err:    ErrTableTooSmall,
		},
	}

	for specIndex, spec := range specs {
		b, err := NewDefault(spec.kernel, compute.NaiveScheduler(), spec.options)
		if err != spec.err {
			t.Errorf("[spec %d] %s: expected error %v; got %v", specIndex, spec.descr, spec.err, err)
		}
		if err == nil {
			b.Close()
		}
	}

	if _, err := NewDefault(kernel, compute.NaiveScheduler(), Options{ForcePrimaryBackend: "opencl"}); err == nil {
		t.Fatal("expected an unmatched forced primary backend to be rejected")
	}
}

func TestBakeMatchesSerialEvaluation(t *testing.T) {
	kernel := testKernel(t, earthTestSettings(), 8, 6, 16)
	b, err := NewDefault(kernel, compute.NaiveScheduler(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	table, err := b.Bake(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if table.Width != 8 || table.Height != 6 {
		t.Fatalf("expected an 8x6 table; got %dx%d", table.Width, table.Height)
	}

	params := kernel.Params()
	for y := 0; y < table.Height; y++ {
		for x := 0; x < table.Width; x++ {
			cosZenith, radialDistance := params.Parameters(x, y)
			want := kernel.Evaluate(cosZenith, radialDistance)
			got := table.At(x, y)
			for c := 0; c < 3; c++ {
				if relError(got[c], want[c]) > 1e-4 {
					t.Fatalf("texel (%d, %d) channel %d: expected %g; got %g", x, y, c, want[c], got[c])
				}
			}
		}
	}
}

func TestBakeStats(t *testing.T) {
	kernel := testKernel(t, earthTestSettings(), 4, 4, 8)
	b, err := NewDefault(kernel, compute.NaiveScheduler(), Options{ForcePrimaryBackend: "tree"})
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	if _, err = b.Bake(context.Background()); err != nil {
		t.Fatal(err)
	}

	stats := b.Stats()
	if len(stats.Backends) != 2 {
		t.Fatalf("expected stats for 2 backends; got %d", len(stats.Backends))
	}
	if !stats.Backends[0].IsPrimary || stats.Backends[0].Id != "cpu-tree" {
		t.Fatalf("expected cpu-tree to be reported as the primary backend; got %+v", stats.Backends[0])
	}
	if stats.BakeTime <= 0 {
		t.Fatal("expected a non-zero total bake time")
	}

	var blockSum uint32
	var percentSum float32
	for _, backendStat := range stats.Backends {
		if backendStat.BakeTime <= 0 {
			t.Errorf("backend %s: expected a non-zero block bake time", backendStat.Id)
		}
		blockSum += backendStat.BlockH
		percentSum += backendStat.TablePercent
	}
	if blockSum != 4 {
		t.Fatalf("expected backend block heights to cover all 4 rows; got %d", blockSum)
	}
	if math.Abs(float64(percentSum)-100.0) > 0.1 {
		t.Fatalf("expected table percentages to sum to 100; got %f", percentSum)
	}
}

func TestBakeProgress(t *testing.T) {
	progressChan := make(chan Progress, 4)

	kernel := testKernel(t, vacuumTestSettings(), 4, 4, 8)
	b, err := NewDefault(kernel, compute.NaiveScheduler(), Options{Progress: progressChan})
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	if _, err = b.Bake(context.Background()); err != nil {
		t.Fatal(err)
	}

	if len(progressChan) != 4 {
		t.Fatalf("expected 4 progress events; got %d", len(progressChan))
	}

	var event Progress
	var lastRows uint32
	for len(progressChan) > 0 {
		event = <-progressChan
		if event.Total != 4 {
			t.Fatalf("expected progress events to report 4 total rows; got %d", event.Total)
		}
		if event.Rows < lastRows {
			t.Fatalf("expected baked row counts to be monotonically non-decreasing; got %d after %d", event.Rows, lastRows)
		}
		lastRows = event.Rows
	}
	if event.Rows != 4 {
		t.Fatalf("expected the final progress event to report 4 baked rows; got %d", event.Rows)
	}
}

func TestBakeInterrupted(t *testing.T) {
	kernel := testKernel(t, vacuumTestSettings(), 4, 4, 8)
	b, err := NewDefault(kernel, compute.NaiveScheduler(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err = b.Bake(ctx); err != ErrInterrupted {
		t.Fatalf("expected ErrInterrupted; got %v", err)
	}
}

func TestUpdateKernelRebake(t *testing.T) {
	vacuum := testKernel(t, vacuumTestSettings(), 4, 4, 8)
	earth := testKernel(t, earthTestSettings(), 4, 4, 8)

	b, err := NewDefault(vacuum, compute.FeedbackScheduler(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	first, err := b.Bake(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	for i, texel := range first.Texels {
		if texel != (types.Vec3{}) {
			t.Fatalf("texel %d: expected a vacuum bake to produce zero radiance; got %v", i, texel)
		}
	}

	b.UpdateKernel(earth)

	second, err := b.Bake(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if second == first {
		t.Fatal("expected the re-bake to produce a fresh table")
	}

	params := earth.Params()
	for y := 0; y < second.Height; y++ {
		for x := 0; x < second.Width; x++ {
			cosZenith, radialDistance := params.Parameters(x, y)
			want := earth.Evaluate(cosZenith, radialDistance)
			got := second.At(x, y)
			for c := 0; c < 3; c++ {
				if relError(got[c], want[c]) > 1e-4 {
					t.Fatalf("texel (%d, %d) channel %d: expected %g; got %g", x, y, c, want[c], got[c])
				}
			}
		}
	}
}

func relError(got, want float32) float64 {
	diff := math.Abs(float64(got) - float64(want))
	if want == 0 {
		return diff
	}
	return diff / math.Abs(float64(want))
}

func earthTestSettings() atmosphere.Settings {
	return atmosphere.Settings{
		PlanetRadius:       6360,
		Thickness:          100,
		GroundAlbedo:       types.XYZ(0.3, 0.3, 0.3),
		AirScattering:      types.XYZ(5.802e-3, 13.558e-3, 33.1e-3),
		AirExtinction:      types.XYZ(5.802e-3, 13.558e-3, 33.1e-3),
		AirScaleHeight:     8.5,
		AerosolScattering:  types.XYZ(3.996e-3, 3.996e-3, 3.996e-3),
		AerosolExtinction:  types.XYZ(4.44e-3, 4.44e-3, 4.44e-3),
		AerosolScaleHeight: 1.2,
		Anisotropy:         0.8,
		Lights: []atmosphere.Light{
			{Direction: types.XYZ(0, 1, 0), Color: types.XYZ(1, 1, 1)},
		},
	}
}

// An atmosphere that neither scatters nor absorbs, over a black surface.
// Every baked texel must come out exactly zero.
func vacuumTestSettings() atmosphere.Settings {
	s := earthTestSettings()
	s.GroundAlbedo = types.Vec3{}
	s.AirScattering = types.Vec3{}
	s.AirExtinction = types.Vec3{}
	s.AerosolScattering = types.Vec3{}
	s.AerosolExtinction = types.Vec3{}
	return s
}

func testKernel(t *testing.T, settings atmosphere.Settings, width, height, samples int) *scatter.Kernel {
	t.Helper()

	model, err := atmosphere.NewModel(settings)
	if err != nil {
		t.Fatal(err)
	}

	kernel, err := scatter.NewKernel(model, scatter.Params{
		Width:        width,
		Height:       height,
		PlanetRadius: settings.PlanetRadius,
		Thickness:    settings.Thickness,
	}, samples)
	if err != nil {
		t.Fatal(err)
	}
	return kernel
}
