package lut

import (
	"archive/zip"
	"encoding/gob"
	"fmt"
	"os"
	"time"

	"github.com/auroralab/aurora/log"
	"github.com/auroralab/aurora/types"
)

const (
	headerFile = "header.bin"
	texelFile  = "texels.bin"
)

var logger = log.New("lut")

// Header describes the provenance of an archived table.
type Header struct {
	// Table dims.
	Width  uint32
	Height uint32

	// Direction samples per texel used for the bake.
	Samples uint32

	// Name of the planet/atmosphere profile the table was baked from.
	Profile string

	// When the bake finished and how long it took.
	BakedAt  time.Time
	BakeTime time.Duration
}

// Write the table and its header to a compressed archive.
func Write(tableFile string, table *Table, header Header) error {
	logger.Noticef("writing compressed table to %s", tableFile)
	start := time.Now()

	header.Width = uint32(table.Width)
	header.Height = uint32(table.Height)

	zipFile, err := os.Create(tableFile)
	if err != nil {
		return err
	}
	defer zipFile.Close()

	zw := zip.NewWriter(zipFile)
	defer zw.Close()

	cw, err := zw.Create(headerFile)
	if err != nil {
		return err
	}
	if err = gob.NewEncoder(cw).Encode(header); err != nil {
		return err
	}

	cw, err = zw.Create(texelFile)
	if err != nil {
		return err
	}
	if err = gob.NewEncoder(cw).Encode(table.Texels); err != nil {
		return err
	}

	logger.Noticef("compressed table in %d ms", time.Since(start).Nanoseconds()/1000000)
	return nil
}

// Read a table archive produced by Write.
func Read(tableFile string) (*Table, *Header, error) {
	logger.Noticef("parsing compressed table from %s", tableFile)
	start := time.Now()

	zr, err := zip.OpenReader(tableFile)
	if err != nil {
		return nil, nil, err
	}
	defer zr.Close()

	header := &Header{}
	var texels []types.Vec3
	var target interface{}
	for _, f := range zr.File {
		switch f.Name {
		case headerFile:
			target = header
		case texelFile:
			target = &texels
		default:
			logger.Warningf("unknown file %s in table archive; skipping", f.Name)
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return nil, nil, err
		}
		err = gob.NewDecoder(rc).Decode(target)
		rc.Close()
		if err != nil {
			return nil, nil, fmt.Errorf("lut: failed to load %s: %s", f.Name, err)
		}
	}

	if header.Width < 1 || header.Height < 1 {
		return nil, nil, fmt.Errorf("lut: archive %s carries no table header", tableFile)
	}
	if len(texels) != int(header.Width*header.Height) {
		return nil, nil, fmt.Errorf("lut: archive %s holds %d texels; header promises %d", tableFile, len(texels), header.Width*header.Height)
	}

	logger.Noticef("loaded table in %d ms", time.Since(start).Nanoseconds()/1000000)
	return &Table{
		Width:  int(header.Width),
		Height: int(header.Height),
		Texels: texels,
	}, header, nil
}
