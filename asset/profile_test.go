package asset

import (
	"strings"
	"testing"
)

const testProfileDoc = `{
	"name": "test-planet",
	"planetRadiusKm": 1000,
	"atmosphereThicknessKm": 50,
	"groundAlbedo": [0.1, 0.2, 0.3],
	"air": {
		"scatteringPerKm": [0.01, 0.02, 0.04],
		"scaleHeightKm": 10
	},
	"aerosol": {
		"scatteringPerKm": [0.004, 0.004, 0.004],
		"extinctionPerKm": [0.005, 0.005, 0.005],
		"scaleHeightKm": 1.5
	},
	"aerosolAnisotropy": 0.7,
	"lights": [
		{"direction": [0, 1, 0], "color": [1, 0.9, 0.8]}
	]
}`

func TestLoadProfile(t *testing.T) {
	profile, err := LoadProfile(NewResourceFromStream("test.json", strings.NewReader(testProfileDoc)))
	if err != nil {
		t.Fatal(err)
	}

	if profile.Name != "test-planet" {
		t.Fatalf("expected profile name 'test-planet'; got %q", profile.Name)
	}
	if profile.PlanetRadiusKm != 1000 {
		t.Fatalf("expected planet radius 1000; got %f", profile.PlanetRadiusKm)
	}

	model, err := profile.Model()
	if err != nil {
		t.Fatal(err)
	}
	if model.TopRadius != 1050 {
		t.Fatalf("expected top radius 1050; got %f", model.TopRadius)
	}
	if len(model.Lights) != 1 {
		t.Fatalf("expected 1 light; got %d", len(model.Lights))
	}
}

func TestLoadProfileBadDocument(t *testing.T) {
	_, err := LoadProfile(NewResourceFromStream("bad.json", strings.NewReader("{nope")))
	if err == nil || !strings.Contains(err.Error(), "bad.json") {
		t.Fatalf("expected decode error naming the document; got %v", err)
	}
}

func TestLoadProfileInvalidPhysics(t *testing.T) {
	doc := strings.Replace(testProfileDoc, `"planetRadiusKm": 1000`, `"planetRadiusKm": 0`, 1)
	_, err := LoadProfile(NewResourceFromStream("bad.json", strings.NewReader(doc)))
	if err == nil || !strings.Contains(err.Error(), "planet radius") {
		t.Fatalf("expected planet radius validation error; got %v", err)
	}
}

func TestExtinctionDefaultsToScattering(t *testing.T) {
	profile := DefaultProfile()
	profile.Aerosol.ScatteringPerKm = [3]float32{}
	profile.Aerosol.ExtinctionPerKm = [3]float32{}

	model, err := profile.Model()
	if err != nil {
		t.Fatal(err)
	}

	// With the aerosol medium zeroed, sea-level extinction must equal the
	// air scattering coefficients (air extinction was omitted).
	ext := model.Extinction(0)
	want := vec3(profile.Air.ScatteringPerKm)
	if ext != want {
		t.Fatalf("expected extinction %v; got %v", want, ext)
	}
}

func TestDefaultProfile(t *testing.T) {
	model, err := DefaultProfile().Model()
	if err != nil {
		t.Fatal(err)
	}
	if model.PlanetRadius <= 0 || model.Thickness <= 0 {
		t.Fatal("expected positive default dimensions")
	}
}
