package lut

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/auroralab/aurora/types"
)

func TestNewTableValidation(t *testing.T) {
	type spec struct {
		width  int
		height int
		valid  bool
	}

	specs := []spec{
		{0, 4, false},
		{4, 0, false},
		{-1, -1, false},
		{1, 1, true},
		{32, 16, true},
	}

	for idx, s := range specs {
		_, err := NewTable(s.width, s.height)
		if s.valid && err != nil {
			t.Fatalf("[spec %d] expected %dx%d table to be valid; got %v", idx, s.width, s.height, err)
		}
		if !s.valid && err == nil {
			t.Fatalf("[spec %d] expected %dx%d table to be rejected", idx, s.width, s.height)
		}
	}
}

func TestTableAddressing(t *testing.T) {
	table, err := NewTable(4, 3)
	if err != nil {
		t.Fatal(err)
	}

	table.Set(2, 1, types.XYZ(1, 2, 3))
	if got := table.At(2, 1); got != types.XYZ(1, 2, 3) {
		t.Fatalf("expected texel (2,1) to read back; got %v", got)
	}

	// Row-major storage: (2, 1) must land at index 1*4+2.
	if got := table.Texels[6]; got != types.XYZ(1, 2, 3) {
		t.Fatalf("expected row-major texel at index 6; got %v", got)
	}

	row := table.Row(1)
	if len(row) != 4 || row[2] != types.XYZ(1, 2, 3) {
		t.Fatalf("expected row slice to alias texel storage; got %v", row)
	}
}

func TestTableClone(t *testing.T) {
	table, _ := NewTable(2, 2)
	table.Set(0, 0, types.XYZ(0.5, 0.5, 0.5))

	clone := table.Clone()
	clone.Set(0, 0, types.XYZ(9, 9, 9))

	if table.At(0, 0) != types.XYZ(0.5, 0.5, 0.5) {
		t.Fatal("expected clone writes to leave the source untouched")
	}
	if clone.Width != table.Width || clone.Height != table.Height {
		t.Fatal("expected clone to preserve dimensions")
	}
}

func TestEncodePNG(t *testing.T) {
	table, _ := NewTable(3, 2)
	for i := range table.Texels {
		table.Texels[i] = types.XYZ(0.05, 0.1, 0.2).Mul(float32(i))
	}

	type spec struct {
		scale     int
		expWidth  int
		expHeight int
	}

	specs := []spec{
		{1, 3, 2},
		{0, 3, 2},
		{4, 12, 8},
	}

	for idx, s := range specs {
		var buf bytes.Buffer
		if err := table.EncodePNG(&buf, 8, s.scale); err != nil {
			t.Fatalf("[spec %d] %v", idx, err)
		}

		img, err := png.Decode(&buf)
		if err != nil {
			t.Fatalf("[spec %d] %v", idx, err)
		}
		bounds := img.Bounds()
		if bounds.Dx() != s.expWidth || bounds.Dy() != s.expHeight {
			t.Fatalf("[spec %d] expected %dx%d image; got %dx%d", idx, s.expWidth, s.expHeight, bounds.Dx(), bounds.Dy())
		}
	}
}

func TestTonemapRange(t *testing.T) {
	if got := tonemap(0, 8); got != 0 {
		t.Fatalf("expected zero radiance to map to black; got %d", got)
	}
	if got := tonemap(-1, 8); got != 0 {
		t.Fatalf("expected negative radiance to clamp to black; got %d", got)
	}
	if got := tonemap(1e6, 8); got != 255 {
		t.Fatalf("expected saturated radiance to map to white; got %d", got)
	}

	// Higher exposure never darkens a texel.
	low, high := tonemap(0.02, 4), tonemap(0.02, 16)
	if high < low {
		t.Fatalf("expected exposure to brighten: %d < %d", high, low)
	}
}
