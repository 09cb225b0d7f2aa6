package store

import (
	"bufio"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mr-tron/base58"
)

var ErrCorrupt = errors.New("corrupt invariant file")

// WriteInvariants persists a descriptor in the legacy single line format:
// the count followed by every value, each terminated by a space. The
// shortest round tripping decimal form is used so readers recover the
// exact float64 bits.
func WriteInvariants(path string, inv []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)

	w.WriteString(strconv.Itoa(len(inv)))
	w.WriteByte(' ')
	for _, v := range inv {
		w.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		w.WriteByte(' ')
	}

	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadInvariants parses a file written by WriteInvariants.
func ReadInvariants(path string) ([]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	fields := strings.Fields(string(data))
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrCorrupt, path)
	}
	count, err := strconv.Atoi(fields[0])
	if err != nil || count < 0 {
		return nil, fmt.Errorf("%w: %s has count %q", ErrCorrupt, path, fields[0])
	}
	if len(fields)-1 != count {
		return nil, fmt.Errorf("%w: %s declares %d values, has %d", ErrCorrupt, path, count, len(fields)-1)
	}

	inv := make([]float64, count)
	for i, field := range fields[1:] {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s value %q", ErrCorrupt, path, field)
		}
		inv[i] = v
	}
	return inv, nil
}

// Fingerprint returns the base58 encoded SHA-256 digest of a file.
func Fingerprint(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return base58.Encode(h.Sum(nil)), nil
}
