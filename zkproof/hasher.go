// Package zkproof implements the non-interactive zero-knowledge
// argument for "A*S = T with S short": the Fiat-Shamir transcript
// hashing, the prover with its rejection-sampling loop, the verifier,
// and the protocol driver tying them together over a matrix backend.
//
// The protocol follows the sub-linear lattice argument of Baum et al.
// (ePrint 2018/560) rendered non-interactive by hashing the
// commitment into the challenge.
package zkproof

import (
	"crypto/sha256"
	"hash"

	"github.com/yarongvili1/latticezk/matrix"
	"github.com/yarongvili1/latticezk/rnd"
)

// MatrixHasher absorbs matrices into SHA-256 and folds the digest into
// a PRG seed. The challenge matrix is then drawn from the reseeded PRG,
// which is what binds it to the transcript.
type MatrixHasher struct {
	h   hash.Hash
	buf []byte
}

// NewMatrixHasher returns an empty hasher.
func NewMatrixHasher() *MatrixHasher {
	return &MatrixHasher{h: sha256.New()}
}

func (mh *MatrixHasher) update(p []byte) {
	mh.h.Write(p)
}

// UpdateRowMajor absorbs m's cells in storage order as little-endian
// elements.
func UpdateRowMajor[E matrix.Elem](mh *MatrixHasher, m *matrix.RowMajor[E]) {
	mh.buf = appendElems(mh.buf[:0], m.Data())
	mh.update(mh.buf)
}

// UpdateColumnMajor absorbs m's cells in storage order as little-endian
// elements.
func UpdateColumnMajor[E matrix.Elem](mh *MatrixHasher, m *matrix.ColumnMajor[E]) {
	mh.buf = appendElems(mh.buf[:0], m.Data())
	mh.update(mh.buf)
}

// Digest folds the 32-byte digest into a 16-byte seed, first half xor
// second half, and reseeds prg with it.
func (mh *MatrixHasher) Digest(prg *rnd.AESRandom) error {
	sum := mh.h.Sum(nil)
	seed := sum[:rnd.SeedSize]
	for i, b := range sum[rnd.SeedSize:] {
		seed[i] ^= b
	}
	return prg.Reseed(seed)
}
