package voxel

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	. "github.com/itohio/zernike3d/pkg/logger"
)

var (
	ErrFormat = errors.New("not a binvox stream")
	ErrDims   = errors.New("unequal grid dimensions")
)

// ReadBinvox reads a .binvox file into a grid in canonical order.
func ReadBinvox(path string) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	g, err := DecodeBinvox(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// DecodeBinvox parses a binvox stream: a text header starting with the
// #binvox magic and a version, keyword records until the data keyword,
// then run length encoded (value, count) byte pairs in the container's
// native x-major order. The decoded voxels are transposed into the
// canonical (z*D+y)*D+x order.
func DecodeBinvox(r io.Reader) (*Grid, error) {
	br := bufio.NewReader(r)

	magic, err := readToken(br)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if magic != "#binvox" {
		return nil, fmt.Errorf("%w: first token is %q", ErrFormat, magic)
	}
	version, err := readToken(br)
	if err != nil {
		return nil, fmt.Errorf("%w: missing version", ErrFormat)
	}
	Log.Debug().Str("version", version).Msg("reading binvox")

	dim := 0
	for {
		token, err := readToken(br)
		if err != nil {
			return nil, fmt.Errorf("%w: header ended before data", ErrFormat)
		}
		if token == "data" {
			break
		}
		if token == "dim" {
			d, err := readDims(br)
			if err != nil {
				return nil, err
			}
			dim = d
			continue
		}
		Log.Debug().Str("keyword", token).Msg("skipping binvox record")
		if _, err := br.ReadString('\n'); err != nil {
			return nil, fmt.Errorf("%w: header ended before data", ErrFormat)
		}
	}
	if dim == 0 {
		return nil, fmt.Errorf("%w: missing dimensions in header", ErrFormat)
	}

	g := New(dim)
	data := g.Values()
	size := dim * dim * dim

	// native order: x varies slowest, then z, then y
	idx := 0
	for idx < size {
		value, err := br.ReadByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		count, err := br.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("%w: dangling run length value", ErrFormat)
		}
		if idx+int(count) > size {
			return nil, fmt.Errorf("%w: run length data overflows the grid", ErrFormat)
		}
		if value > 0 {
			for j := 0; j < int(count); j++ {
				i := idx + j
				x := i / (dim * dim)
				z := (i / dim) % dim
				y := i % dim
				data[(z*dim+y)*dim+x] = float64(value)
			}
		}
		idx += int(count)
	}

	Log.Debug().Int("dim", dim).Int("voxels", idx).Msg("binvox decoded")
	return g, nil
}

// readToken skips leading whitespace and consumes one whitespace delimited
// token, including the single delimiter byte that follows it.
func readToken(br *bufio.Reader) (string, error) {
	var token []byte
	for {
		b, err := br.ReadByte()
		if err != nil {
			if len(token) > 0 {
				return string(token), nil
			}
			return "", err
		}
		if b == ' ' || b == '\t' || b == '\n' || b == '\r' {
			if len(token) > 0 {
				return string(token), nil
			}
			continue
		}
		token = append(token, b)
	}
}

func readDims(br *bufio.Reader) (int, error) {
	var dims [3]int
	for i := range dims {
		token, err := readToken(br)
		if err != nil {
			return 0, fmt.Errorf("%w: truncated dim record", ErrFormat)
		}
		d, err := strconv.Atoi(token)
		if err != nil {
			return 0, fmt.Errorf("%w: dim %q", ErrFormat, token)
		}
		dims[i] = d
	}
	if dims[0] != dims[1] || dims[0] != dims[2] {
		return 0, fmt.Errorf("%w: %dx%dx%d", ErrDims, dims[0], dims[1], dims[2])
	}
	return dims[0], nil
}
