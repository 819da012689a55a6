// Command gsampler exercises the Gaussian and uniform samplers on
// their own: it draws a batch of samples, prints a histogram and basic
// statistics, and reports throughput.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/yarongvili1/latticezk/gaussian"
	"github.com/yarongvili1/latticezk/rnd"
)

func main() {
	sampler := flag.String("sampler", "plain215", "sampler: plain2|plain215|adjusted2|adjusted215|facct|u64")
	mu := flag.Float64("mu", 0, "center for the adjusted sampler")
	sigma := flag.Float64("sigma", 1.5, "deviation for the adjusted sampler, or integer deviation for facct")
	count := flag.Int("count", 1<<20, "number of samples")
	seed := flag.Uint64("seed", 1, "PRG seed; stored little-endian in the low seed bytes")
	flag.Parse()

	var seedBytes [rnd.SeedSize]byte
	for i := 0; i < 8; i++ {
		seedBytes[i] = byte(*seed >> (8 * i))
	}
	prg, err := rnd.NewAESRandom(seedBytes[:])
	if err != nil {
		log.Fatalf("seeding PRG: %v", err)
	}

	var next func() int64
	switch *sampler {
	case "plain2":
		g := gaussian.NewPlainGaussianS2(prg)
		next = func() int64 { return int64(g.Next()) }
	case "plain215":
		g := gaussian.NewPlainGaussianS215(prg)
		next = func() int64 { return int64(g.Next()) }
	case "adjusted2":
		a, err := gaussian.NewAdjustedSamplerS2(prg, *mu, *sigma)
		if err != nil {
			log.Fatal(err)
		}
		next = func() int64 { return int64(a.Next()) }
	case "adjusted215":
		a, err := gaussian.NewAdjustedSamplerS215(prg, *mu, *sigma)
		if err != nil {
			log.Fatal(err)
		}
		next = func() int64 { return int64(a.Next()) }
	case "facct":
		g, err := gaussian.NewFacctSampler(uint32(*sigma), rnd.NewBytesSampler(prg))
		if err != nil {
			log.Fatal(err)
		}
		next = g.Next
	case "u64":
		benchU64(prg, *count)
		return
	default:
		log.Fatalf("unknown sampler %q", *sampler)
	}

	hist := make(map[int64]uint64)
	var sum, sum2 float64
	start := time.Now()
	for i := 0; i < *count; i++ {
		v := next()
		hist[v]++
		f := float64(v)
		sum += f
		sum2 += f * f
	}
	elapsed := time.Since(start)

	mean := sum / float64(*count)
	variance := sum2/float64(*count) - mean*mean
	fmt.Printf("samples=%d elapsed=%v per-sample=%v\n", *count, elapsed, elapsed/time.Duration(*count))
	fmt.Printf("mean=%.4f std=%.4f\n", mean, math.Sqrt(variance))

	lo, hi := int64(0), int64(0)
	for v := range hist {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	for v := lo; v <= hi; v++ {
		if c := hist[v]; c > 0 {
			fmt.Printf(" %d : %d", v, c)
		}
	}
	fmt.Println()
}

// benchU64 measures raw uniform throughput, summing to keep the loop
// live.
func benchU64(prg *rnd.AESRandom, count int) {
	s := rnd.NewUIntSampler[uint64](prg)
	var sum uint64
	start := time.Now()
	for i := 0; i < count; i++ {
		sum += s.Next()
	}
	elapsed := time.Since(start)
	fmt.Printf("samples=%d elapsed=%v per-sample=%v sum=%d\n", count, elapsed, elapsed/time.Duration(count), sum)
}
