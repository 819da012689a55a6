package zkproof

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/yarongvili1/latticezk/gaussian"
	"github.com/yarongvili1/latticezk/matrix"
	"github.com/yarongvili1/latticezk/rnd"
)

// fillMatrix writes one sampled value per cell in storage order.
func fillMatrix[E matrix.Elem](data []E, next func() int64) {
	for i := range data {
		data[i] = E(next())
	}
}

// checkMatrix replays the sampler and compares cell by cell. The data
// is public, so the early return leaks nothing.
func checkMatrix[E matrix.Elem](data []E, next func() int64) bool {
	for i := range data {
		if data[i] != E(next()) {
			return false
		}
	}
	return true
}

// uniformNext returns a full-width uniform source for the element type
// over prg; overflow into the signed element is wraparound.
func uniformNext[E matrix.Elem](prg *rnd.AESRandom) func() int64 {
	switch any(E(0)).(type) {
	case int32:
		s := rnd.NewUIntSampler[uint32](prg)
		return func() int64 { return int64(s.Next()) }
	default:
		s := rnd.NewUIntSampler[uint64](prg)
		return func() int64 { return int64(s.Next()) }
	}
}

// bitNext adapts a single-bit sampler to the fill signature.
func bitNext(s *rnd.BitSampler) func() int64 {
	return func() int64 { return int64(s.Next()) }
}

const (
	// Fills at or above this many cells fan out across workers.
	parallelSampleCells = 1 << 16
	// Fixed per-chunk cell count, so the chunk boundaries and the
	// per-chunk child seeds do not depend on the worker count.
	sampleChunkCells = 1 << 14
)

// fillGaussian samples data from D_{Z,sigma}. Small fills consume prg
// directly. Large fills derive one child PRG per fixed-size chunk
// through the seed expander, so no two workers share a stream and the
// result depends only on the parent PRG state.
func fillGaussian[E matrix.Elem](data []E, sigma uint32, prg *rnd.AESRandom, parallel bool) bool {
	if !parallel || len(data) < parallelSampleCells {
		g, err := gaussian.NewFacctSampler(sigma, rnd.NewBytesSampler(prg))
		if err != nil {
			return false
		}
		fillMatrix(data, g.Next)
		return true
	}
	exp := rnd.NewSeedExpander(prg)
	nchunks := (len(data) + sampleChunkCells - 1) / sampleChunkCells
	workers := runtime.GOMAXPROCS(0)
	if workers > nchunks {
		workers = nchunks
	}
	var failed atomic.Bool
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for c := w; c < nchunks; c += workers {
				child := exp.Child(uint64(c))
				g, err := gaussian.NewFacctSampler(sigma, rnd.NewBytesSampler(child))
				if err != nil {
					failed.Store(true)
					return
				}
				lo := c * sampleChunkCells
				hi := lo + sampleChunkCells
				if hi > len(data) {
					hi = len(data)
				}
				fillMatrix(data[lo:hi], g.Next)
			}
		}(w)
	}
	wg.Wait()
	return !failed.Load()
}
