package rnd

import (
	"encoding/binary"

	"golang.org/x/crypto/sha3"
)

// SeedExpander derives independent child seeds from a parent seed, so
// parallel workers can each hold their own AESRandom without sharing a
// stream. Children are indexed; the derivation is SHAKE-256 over a
// domain label, the parent seed and the index.
type SeedExpander struct {
	parent [SeedSize]byte
}

const seedExpanderLabel = "latticezk-seed-expander"

// NewSeedExpander draws one block from prg as the parent seed.
func NewSeedExpander(prg *AESRandom) *SeedExpander {
	e := &SeedExpander{}
	prg.RandomBytes(e.parent[:])
	return e
}

// NewSeedExpanderFromSeed uses the given 16 bytes as the parent seed.
func NewSeedExpanderFromSeed(seed [SeedSize]byte) *SeedExpander {
	return &SeedExpander{parent: seed}
}

// ChildSeed returns the 16-byte seed for the given child index.
func (e *SeedExpander) ChildSeed(index uint64) [SeedSize]byte {
	var idx [8]byte
	binary.LittleEndian.PutUint64(idx[:], index)
	h := sha3.NewShake256()
	h.Write([]byte(seedExpanderLabel))
	h.Write(e.parent[:])
	h.Write(idx[:])
	var out [SeedSize]byte
	h.Read(out[:])
	return out
}

// Child returns a fresh AESRandom reseeded with ChildSeed(index).
func (e *SeedExpander) Child(index uint64) *AESRandom {
	seed := e.ChildSeed(index)
	r := &AESRandom{}
	if err := r.Reseed(seed[:]); err != nil {
		panic(err) // 16-byte seeds cannot fail key expansion
	}
	return r
}
