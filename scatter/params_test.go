package scatter

import "testing"

func TestParamsRoundTrip(t *testing.T) {
	specs := []Params{
		{Width: 32, Height: 32, PlanetRadius: 6360, Thickness: 100},
		{Width: 7, Height: 5, PlanetRadius: 6360, Thickness: 100},
		{Width: 1, Height: 1, PlanetRadius: 1000, Thickness: 50},
	}

	for idx, p := range specs {
		for y := 0; y < p.Height; y++ {
			for x := 0; x < p.Width; x++ {
				cosZenith, radius := p.Parameters(x, y)
				gx, gy := p.Texel(cosZenith, radius)
				if gx != x || gy != y {
					t.Fatalf("[spec %d] texel (%d,%d) round-tripped to (%d,%d)", idx, x, y, gx, gy)
				}
			}
		}
	}
}

func TestParamsDomain(t *testing.T) {
	p := Params{Width: 32, Height: 32, PlanetRadius: 6360, Thickness: 100}

	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			cosZenith, radius := p.Parameters(x, y)
			if cosZenith <= -1 || cosZenith >= 1 {
				t.Fatalf("texel (%d,%d): zenith cosine %v outside (-1,1)", x, y, cosZenith)
			}
			if radius < p.PlanetRadius || radius >= p.PlanetRadius+p.Thickness {
				t.Fatalf("texel (%d,%d): radius %v outside the shell", x, y, radius)
			}
		}
	}

	// Texel centers concentrate near the horizon: the innermost columns
	// sit closer to zero than a linear mapping would place them.
	nearHorizon, _ := p.Parameters(p.Width/2, 0)
	if nearHorizon < -0.002 || nearHorizon > 0.002 {
		t.Fatalf("expected the center column to hug the horizon; got %v", nearHorizon)
	}
}

func TestParamsClamping(t *testing.T) {
	p := Params{Width: 32, Height: 32, PlanetRadius: 6360, Thickness: 100}

	if x, y := p.Texel(-2, 6100); x != 0 || y != 0 {
		t.Fatalf("expected out-of-domain parameters to clamp to (0,0); got (%d,%d)", x, y)
	}
	if x, y := p.Texel(2, 7000); x != p.Width-1 || y != p.Height-1 {
		t.Fatalf("expected out-of-domain parameters to clamp to the far corner; got (%d,%d)", x, y)
	}
}
