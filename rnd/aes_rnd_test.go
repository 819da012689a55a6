package rnd

import (
	"bytes"
	"encoding/hex"
	"testing"
)

// Stream of AES-128-CTR under the all-zero seed, counter starting at 1.
var zeroSeedBlocks = []string{
	"47711816e91d6ff059bbbf2bf58e0fd3",
	"bcf176a7eaad8085ebacea362462a281",
	"4ffc69772ed5a336f4615b4503c34814",
}

func newZeroSeeded(t *testing.T) *AESRandom {
	t.Helper()
	prg, err := NewAESRandom(make([]byte, SeedSize))
	if err != nil {
		t.Fatalf("NewAESRandom: %v", err)
	}
	return prg
}

func TestCounterModeStream(t *testing.T) {
	prg := newZeroSeeded(t)
	var block [BlockSize]byte
	for i, want := range zeroSeedBlocks {
		prg.RandomBytes(block[:])
		if got := hex.EncodeToString(block[:]); got != want {
			t.Fatalf("block %d: got %s, want %s", i+1, got, want)
		}
	}
}

func TestReseedResetsCounter(t *testing.T) {
	prg := newZeroSeeded(t)
	var first, again [BlockSize]byte
	prg.RandomBytes(first[:])
	prg.RandomBytes(again[:])
	if err := prg.Reseed(make([]byte, SeedSize)); err != nil {
		t.Fatalf("Reseed: %v", err)
	}
	var after [BlockSize]byte
	prg.RandomBytes(after[:])
	if !bytes.Equal(first[:], after[:]) {
		t.Fatalf("stream after reseed differs from initial stream")
	}
}

func TestReseedDeterminism(t *testing.T) {
	seed := []byte("0123456789abcdef")
	a, err := NewAESRandom(seed)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewAESRandom(seed)
	if err != nil {
		t.Fatal(err)
	}
	var ba, bb [BlockSize]byte
	for i := 0; i < 100; i++ {
		a.RandomBytes(ba[:])
		b.RandomBytes(bb[:])
		if !bytes.Equal(ba[:], bb[:]) {
			t.Fatalf("streams diverge at block %d", i+1)
		}
	}
}

func TestReseedFromOS(t *testing.T) {
	var prg AESRandom
	if err := prg.ReseedFromOS(); err != nil {
		t.Fatalf("ReseedFromOS: %v", err)
	}
	var b1, b2 [BlockSize]byte
	prg.RandomBytes(b1[:])
	if err := prg.ReseedFromOS(); err != nil {
		t.Fatalf("ReseedFromOS: %v", err)
	}
	prg.RandomBytes(b2[:])
	if bytes.Equal(b1[:], b2[:]) {
		t.Fatalf("two OS reseeds produced identical first blocks")
	}
}

func TestReseedRejectsBadLength(t *testing.T) {
	var prg AESRandom
	if err := prg.Reseed(make([]byte, 8)); err == nil {
		t.Fatalf("Reseed accepted an 8-byte seed")
	}
}
