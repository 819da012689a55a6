// Command latticezk runs the lattice-based NIZK protocol end to end:
// it samples a public matrix A and a short secret S, proves knowledge
// of S, and verifies the proof.
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/yarongvili1/latticezk/matrix"
	"github.com/yarongvili1/latticezk/prof"
	"github.com/yarongvili1/latticezk/rnd"
	"github.com/yarongvili1/latticezk/zkproof"
)

func main() {
	def := zkproof.DefaultParams()
	sbits := flag.Int("sbits", def.SBits, "bit width of secret entries")
	lambda := flag.Uint("lambda", uint(def.Lambda), "security parameter")
	n := flag.Int("n", int(def.N), "protocol parameter n")
	rho := flag.Float64("rho", def.Rho, "rejection parameter rho")
	r := flag.Int("r", int(def.R), "rows of A")
	v := flag.Int("v", int(def.V), "columns of A")
	l := flag.Int("l", int(def.L), "columns of S")
	sigma := flag.Uint("sigma", uint(def.Sigma), "Gaussian deviation")
	elem := flag.Int("elem", 64, "element width in bits: 32 or 64")
	seedHex := flag.String("seed", "", "32 hex chars seeding the PRG; empty seeds from the OS")
	maxDraws := flag.Uint64("maxdraws", 0, "cap on rejection draws; 0 means unlimited")
	timings := flag.Bool("timings", false, "print phase timings")
	flag.Parse()

	par := zkproof.Params{
		SBits:    *sbits,
		Lambda:   uint32(*lambda),
		N:        matrix.Dim(*n),
		Rho:      *rho,
		R:        matrix.Dim(*r),
		V:        matrix.Dim(*v),
		L:        matrix.Dim(*l),
		Sigma:    uint32(*sigma),
		MaxDraws: *maxDraws,
	}

	prg := &rnd.AESRandom{}
	if *seedHex == "" {
		if err := prg.ReseedFromOS(); err != nil {
			log.Fatalf("seeding PRG: %v", err)
		}
	} else {
		seed, err := hex.DecodeString(*seedHex)
		if err != nil {
			log.Fatalf("parsing seed: %v", err)
		}
		if err := prg.Reseed(seed); err != nil {
			log.Fatalf("seeding PRG: %v", err)
		}
	}

	var res zkproof.Result
	var err error
	switch *elem {
	case 32:
		res, err = zkproof.Run[int32](matrix.NewCPUOps[int32](), prg, par)
	case 64:
		res, err = zkproof.Run[int64](matrix.NewCPUOps[int64](), prg, par)
	default:
		log.Fatalf("unsupported element width %d", *elem)
	}
	if *timings {
		prof.Dump(os.Stderr, prof.SnapshotAndReset())
	}
	if err != nil {
		log.Fatalf("protocol: %v", err)
	}
	fmt.Printf("draws=%d verified=%v\n", res.Draws, res.Verified)
	if !res.Verified {
		os.Exit(1)
	}
}
