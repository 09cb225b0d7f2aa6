package batch

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	. "github.com/itohio/zernike3d/pkg/logger"
	"github.com/itohio/zernike3d/pkg/store"
	"github.com/itohio/zernike3d/pkg/voxel"
	"github.com/itohio/zernike3d/pkg/zernike"
)

const binvoxExt = ".binvox"

type task struct {
	path string // absolute path of the grid file
	rel  string // path relative to the input directory
	hash string
}

// Run scans inputDir recursively for .binvox grids and computes a Zernike
// descriptor of the given order for every grid not already recorded in the
// output index with a matching fingerprint. Per grid failures are logged
// and skipped; engine misuse aborts the run. Cancelling the context stops
// dispatch but never interrupts a computation in flight.
func Run(ctx context.Context, inputDir string, order int, opts ...Option) error {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if err := os.MkdirAll(o.OutputDir, 0o755); err != nil {
		return err
	}
	indexPath := filepath.Join(o.OutputDir, IndexName)
	ix, err := store.LoadIndex(indexPath)
	if err != nil {
		return err
	}

	// the basis tables depend on the order alone; share one instance
	basis := zernike.NewBasis(order)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	tasks := make(chan task, o.QueueSize)

	var (
		wg        sync.WaitGroup
		fatalOnce sync.Once
		fatalErr  error
	)
	fatal := func(err error) {
		fatalOnce.Do(func() {
			fatalErr = err
			cancel()
		})
	}

	for i := 0; i < o.Threads; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range tasks {
				if ctx.Err() != nil {
					continue
				}
				if err := compute(t, order, basis, o, ix); err != nil {
					if errors.Is(err, zernike.ErrInvalidIndex) || errors.Is(err, zernike.ErrUninitialised) {
						Log.Error().Err(err).Str("file", t.path).Msg("engine failure")
						fatal(err)
						continue
					}
					Log.Warn().Err(err).Str("file", t.path).Msg("skipping grid")
				}
			}
		}()
	}

	scanErr := scan(ctx, inputDir, order, ix, tasks)
	close(tasks)
	wg.Wait()

	// results computed before a failure stay persisted
	if err := ix.Save(indexPath); err != nil {
		Log.Error().Err(err).Str("file", indexPath).Msg("saving index")
		if fatalErr == nil {
			fatalErr = err
		}
	}

	if fatalErr != nil {
		return fatalErr
	}
	return scanErr
}

// scan feeds the bounded task queue from a recursive directory walk.
func scan(ctx context.Context, inputDir string, order int, ix *store.Index, tasks chan<- task) error {
	return filepath.WalkDir(inputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return fs.SkipAll
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), binvoxExt) {
			return nil
		}

		Log.Info().Str("file", path).Msg("found")

		hash, err := store.Fingerprint(path)
		if err != nil {
			Log.Warn().Err(err).Str("file", path).Msg("cannot fingerprint")
			return nil
		}
		rel, err := filepath.Rel(inputDir, path)
		if err != nil {
			return err
		}
		if ix.Seen(rel, hash, order) {
			Log.Debug().Str("file", path).Msg("descriptor up to date")
			return nil
		}

		select {
		case tasks <- task{path: path, rel: rel, hash: hash}:
		case <-ctx.Done():
			return fs.SkipAll
		}
		return nil
	})
}

// compute runs the descriptor pipeline for one grid and persists the
// result next to its relative location in the output directory.
func compute(t task, order int, basis *zernike.Basis, o Options, ix *store.Index) error {
	grid, err := voxel.ReadBinvox(t.path)
	if err != nil {
		return err
	}

	desc, err := zernike.Compute(grid, order, zernike.WithBasis(basis))
	if err != nil {
		return err
	}

	outRel := strings.TrimSuffix(t.rel, filepath.Ext(t.rel)) + ".inv"
	outPath := filepath.Join(o.OutputDir, outRel)
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}
	if err := store.WriteInvariants(outPath, desc.Invariants); err != nil {
		return err
	}

	ix.Put(store.Entry{
		Path:     t.rel,
		Hash:     t.hash,
		MaxOrder: order,
		Length:   len(desc.Invariants),
		File:     outRel,
	})

	Log.Info().Str("file", t.path).Int("invariants", len(desc.Invariants)).Msg("descriptor written")
	return nil
}
