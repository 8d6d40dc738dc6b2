// Package lut holds the baked multiple-scattering lookup table, its
// compressed archive format and a false-color image export.
package lut

import (
	"errors"

	"github.com/auroralab/aurora/types"
)

// Table is a 2D grid of 3-channel radiance texels stored row-major. The x
// axis spans the sun zenith cosine parameterization and the y axis the
// radial distance parameterization, so row 0 sits at the planet surface.
type Table struct {
	Width  int
	Height int
	Texels []types.Vec3
}

// Create an empty table with the given dimensions.
func NewTable(width, height int) (*Table, error) {
	if width < 1 || height < 1 {
		return nil, errors.New("lut: table dimensions must be >= 1")
	}
	return &Table{
		Width:  width,
		Height: height,
		Texels: make([]types.Vec3, width*height),
	}, nil
}

// Texel value at (x, y).
func (t *Table) At(x, y int) types.Vec3 {
	return t.Texels[y*t.Width+x]
}

// Overwrite the texel at (x, y). Concurrent writers must target disjoint
// texels; the baker guarantees this by assigning disjoint row blocks.
func (t *Table) Set(x, y int, value types.Vec3) {
	t.Texels[y*t.Width+x] = value
}

// Row returns the texels of row y as a slice aliasing the table storage.
func (t *Table) Row(y int) []types.Vec3 {
	return t.Texels[y*t.Width : (y+1)*t.Width]
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	texels := make([]types.Vec3, len(t.Texels))
	copy(texels, t.Texels)
	return &Table{
		Width:  t.Width,
		Height: t.Height,
		Texels: texels,
	}
}
