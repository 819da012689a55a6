// Package rnd provides the deterministic randomness layer of the
// protocol: an AES-128 counter-mode generator plus typed uniform
// samplers reading from it. The generator is seekable and reproducible
// across platforms, which the Fiat-Shamir transform depends on.
package rnd

import (
	"crypto/aes"
	"crypto/cipher"
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
)

// BlockSize is the number of bytes emitted per counter increment.
const BlockSize = 16

// SeedSize is the number of seed bytes consumed by Reseed.
const SeedSize = 16

// AESRandom is a keyed AES-128 block cipher in counter mode. Each
// 16-byte request increments a 128-bit little-endian counter and emits
// Enc(key, counter). The zero value is unusable until reseeded.
type AESRandom struct {
	block cipher.Block
	ctr   [2]uint64 // low, high limbs of the 128-bit counter
	in    [BlockSize]byte
}

// NewAESRandom returns a generator reseeded with the given 16-byte seed.
func NewAESRandom(seed []byte) (*AESRandom, error) {
	r := &AESRandom{}
	if err := r.Reseed(seed); err != nil {
		return nil, err
	}
	return r, nil
}

// Reseed expands the round keys for the given 16-byte seed and resets
// the counter to zero. It may be called any number of times.
func (r *AESRandom) Reseed(seed []byte) error {
	if len(seed) != SeedSize {
		return fmt.Errorf("rnd: seed must be %d bytes, got %d", SeedSize, len(seed))
	}
	block, err := aes.NewCipher(seed)
	if err != nil {
		return err
	}
	r.block = block
	r.ctr[0] = 0
	r.ctr[1] = 0
	return nil
}

// ReseedFromOS reseeds from the host randomness facility.
func (r *AESRandom) ReseedFromOS() error {
	var seed [SeedSize]byte
	if _, err := crand.Read(seed[:]); err != nil {
		return err
	}
	return r.Reseed(seed[:])
}

// RandomBytes increments the counter and writes the next 16-byte block
// into out, which must hold at least BlockSize bytes.
func (r *AESRandom) RandomBytes(out []byte) {
	if r.block == nil {
		panic("rnd: AESRandom used before Reseed")
	}
	r.ctr[0]++
	if r.ctr[0] == 0 {
		r.ctr[1]++
	}
	binary.LittleEndian.PutUint64(r.in[0:8], r.ctr[0])
	binary.LittleEndian.PutUint64(r.in[8:16], r.ctr[1])
	r.block.Encrypt(out[:BlockSize], r.in[:])
}
