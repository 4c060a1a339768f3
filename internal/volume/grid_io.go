package volume

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
)

// compressedExt selects zstd framing for grid files.
const compressedExt = ".zst"

// EncodeRaw writes the grid as a little-endian int32 header (Nx, Ny, Nz)
// followed by Nx*Ny*Nz float32 densities.
func EncodeRaw(w io.Writer, g *Grid) error {
	if exp := g.Size[0] * g.Size[1] * g.Size[2]; len(g.Data) != exp {
		return errors.Wrapf(ErrInvalidGrid, "data length mismatch: got %d, expected %d", len(g.Data), exp)
	}
	hdr := [3]int32{int32(g.Size[0]), int32(g.Size[1]), int32(g.Size[2])}
	if err := binary.Write(w, binary.LittleEndian, hdr); err != nil {
		return errors.Wrap(err, "write header")
	}
	if err := binary.Write(w, binary.LittleEndian, g.Data); err != nil {
		return errors.Wrap(err, "write body")
	}
	return nil
}

// DecodeRaw reads a grid written by EncodeRaw.
func DecodeRaw(r io.Reader) (*Grid, error) {
	var hdr [3]int32
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, errors.Wrap(err, "read header")
	}
	size := [3]int{int(hdr[0]), int(hdr[1]), int(hdr[2])}
	if err := validateSize(size[0], size[1], size[2]); err != nil {
		return nil, err
	}
	data := make([]float32, size[0]*size[1]*size[2])
	if err := binary.Read(r, binary.LittleEndian, data); err != nil {
		return nil, errors.Wrapf(err, "read body of %v grid", size)
	}
	return newGrid(size, data), nil
}

// WriteRaw saves the grid to path, zstd-compressed when path ends in ".zst".
func WriteRaw(path string, g *Grid) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "create parent directory")
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create grid file")
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	var w io.Writer = bw
	var enc *zstd.Encoder
	if strings.HasSuffix(path, compressedExt) {
		if enc, err = zstd.NewWriter(bw); err != nil {
			return errors.Wrap(err, "init zstd encoder")
		}
		w = enc
	}
	if err := EncodeRaw(w, g); err != nil {
		return errors.Wrapf(err, "encode %s", path)
	}
	if enc != nil {
		if err := enc.Close(); err != nil {
			return errors.Wrap(err, "flush zstd stream")
		}
	}
	if err := bw.Flush(); err != nil {
		return errors.Wrap(err, "flush grid file")
	}
	logger.WithField("path", path).WithField("cells", len(g.Data)).Debug("grid written")
	return f.Sync()
}

// ReadRaw loads a grid saved by WriteRaw.
func ReadRaw(path string) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open grid file")
	}
	defer f.Close()

	var r io.Reader = bufio.NewReader(f)
	if strings.HasSuffix(path, compressedExt) {
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, errors.Wrap(err, "init zstd decoder")
		}
		defer dec.Close()
		r = dec
	}
	g, err := DecodeRaw(r)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}
	logger.WithField("path", path).WithField("size", g.Size).Debug("grid loaded")
	return g, nil
}
