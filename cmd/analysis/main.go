//go:build analysis

// Command analysis renders sampler distribution reports: histograms
// and summary statistics for the FACCT, half-Gaussian and adjusted
// samplers, next to an independent reference series drawn with
// lattigo's Gaussian sampler at the same deviation.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/tuneinsight/lattigo/v4/ring"
	"github.com/tuneinsight/lattigo/v4/utils"

	"github.com/yarongvili1/latticezk/gaussian"
	"github.com/yarongvili1/latticezk/rnd"
)

type summaryStats struct {
	Count    int     `json:"count"`
	Mean     float64 `json:"mean"`
	Std      float64 `json:"std"`
	Min      float64 `json:"min"`
	Q1       float64 `json:"q1"`
	Median   float64 `json:"median"`
	Q3       float64 `json:"q3"`
	Max      float64 `json:"max"`
	IQR      float64 `json:"iqr"`
	Skewness float64 `json:"skewness"`
	Kurtosis float64 `json:"kurtosis_excess"`
}

// ------------------------------ stats utilities ------------------------------

func computeStats(x []float64) summaryStats {
	n := len(x)
	if n == 0 {
		return summaryStats{}
	}
	cp := append([]float64(nil), x...)
	sort.Float64s(cp)
	minv, maxv := cp[0], cp[n-1]
	median := quantileSorted(cp, 0.5)
	q1 := quantileSorted(cp, 0.25)
	q3 := quantileSorted(cp, 0.75)
	iqr := q3 - q1
	var m float64
	for _, v := range x {
		m += v
	}
	m /= float64(n)
	var m2, m3, m4 float64
	for _, v := range x {
		d := v - m
		d2 := d * d
		m2 += d2
		m3 += d2 * d
		m4 += d2 * d2
	}
	varVar := m2 / float64(n-1)
	std := math.Sqrt(varVar)
	var skew, kurtEx float64
	if std > 0 {
		m2n := m2 / float64(n)
		m3n := m3 / float64(n)
		m4n := m4 / float64(n)
		skew = m3n / math.Pow(m2n, 1.5)
		kurtEx = m4n/m2n/m2n - 3.0
	}
	return summaryStats{Count: n, Mean: m, Std: std, Min: minv, Q1: q1, Median: median, Q3: q3, Max: maxv, IQR: iqr, Skewness: skew, Kurtosis: kurtEx}
}

func quantileSorted(sorted []float64, p float64) float64 {
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := p * float64(len(sorted)-1)
	l := int(math.Floor(pos))
	r := int(math.Ceil(pos))
	if l == r {
		return sorted[l]
	}
	w := pos - float64(l)
	return sorted[l]*(1-w) + sorted[r]*w
}

func freedmanDiaconisBins(x []float64) int {
	n := len(x)
	if n < 2 {
		return 1
	}
	cp := append([]float64(nil), x...)
	sort.Float64s(cp)
	iqr := quantileSorted(cp, 0.75) - quantileSorted(cp, 0.25)
	if iqr == 0 {
		if n < 200 {
			return n
		}
		return 200
	}
	bw := 2 * iqr * math.Pow(float64(n), -1.0/3.0)
	if bw <= 0 {
		if n < 200 {
			return n
		}
		return 200
	}
	r := cp[n-1] - cp[0]
	k := int(math.Ceil(r / bw))
	if k < 50 {
		k = 50
	}
	if k > 2000 {
		k = 2000
	}
	return k
}

func computeHistogram(values []float64, nbins int) (edges []float64, counts []int) {
	if len(values) == 0 {
		return []float64{0, 1}, []int{0}
	}
	cp := append([]float64(nil), values...)
	sort.Float64s(cp)
	minv, maxv := cp[0], cp[len(cp)-1]
	if nbins < 1 {
		nbins = 1
	}
	width := (maxv - minv) / float64(nbins)
	if width <= 0 {
		width = 1
	}
	edges = make([]float64, nbins+1)
	for i := 0; i <= nbins; i++ {
		edges[i] = minv + float64(i)*width
	}
	counts = make([]int, nbins)
	for _, v := range values {
		idx := int(math.Floor((v - minv) / width))
		if idx < 0 {
			idx = 0
		}
		if idx >= nbins {
			idx = nbins - 1
		}
		counts[idx]++
	}
	return
}

// ------------------------------ sample collection ------------------------------

func newSeededPRG(seed uint64) *rnd.AESRandom {
	var seedBytes [rnd.SeedSize]byte
	for i := 0; i < 8; i++ {
		seedBytes[i] = byte(seed >> (8 * i))
	}
	prg, err := rnd.NewAESRandom(seedBytes[:])
	if err != nil {
		log.Fatalf("seeding PRG: %v", err)
	}
	return prg
}

func collectFacct(sigma uint32, seed uint64, count int) []float64 {
	prg := newSeededPRG(seed)
	g, err := gaussian.NewFacctSampler(sigma, rnd.NewBytesSampler(prg))
	if err != nil {
		log.Fatalf("facct sampler: %v", err)
	}
	out := make([]float64, count)
	for i := range out {
		out[i] = float64(g.Next())
	}
	return out
}

func collectHalf(sigma int, seed uint64, count int) []float64 {
	prg := newSeededPRG(seed)
	var next func() int
	switch sigma {
	case 2:
		h := gaussian.NewHalfGaussianS2(prg)
		next = h.Next
	case 215:
		h := gaussian.NewHalfGaussianS215(prg)
		next = h.Next
	default:
		log.Fatalf("no half-Gaussian circuit for sigma=%d", sigma)
		return nil
	}
	out := make([]float64, count)
	for i := range out {
		out[i] = float64(next())
	}
	return out
}

func collectAdjusted(mu, sigma float64, seed uint64, count int) []float64 {
	prg := newSeededPRG(seed)
	a, err := gaussian.NewAdjustedSamplerS215(prg, mu, sigma)
	if err != nil {
		log.Fatalf("adjusted sampler: %v", err)
	}
	out := make([]float64, count)
	for i := range out {
		out[i] = float64(a.Next())
	}
	return out
}

// collectLattigoReference draws the same deviation from lattigo's
// Gaussian sampler, as an implementation-independent baseline for the
// histograms.
func collectLattigoReference(sigma float64, seed uint64, count int) []float64 {
	const (
		logN = 10
		q    = uint64(0x1fffffffffe00001)
	)
	ringQ, err := ring.NewRing(1<<logN, []uint64{q})
	if err != nil {
		log.Fatalf("ring.NewRing: %v", err)
	}
	var seedBytes [32]byte
	for i := 0; i < 8; i++ {
		seedBytes[i] = byte(seed >> (8 * i))
	}
	prng, err := utils.NewKeyedPRNG(seedBytes[:])
	if err != nil {
		log.Fatalf("utils.NewKeyedPRNG: %v", err)
	}
	gs := ring.NewGaussianSampler(prng, ringQ, sigma, int(10*sigma))
	out := make([]float64, 0, count)
	for len(out) < count {
		pol := gs.ReadNew()
		for _, c := range pol.Coeffs[0] {
			v := int64(c)
			if c > q/2 {
				v = int64(c) - int64(q)
			}
			out = append(out, float64(v))
			if len(out) == count {
				break
			}
		}
	}
	return out
}

// ------------------------- plotting: go-echarts HTML -------------------------

func toBarItems(vals []int) []opts.BarData {
	out := make([]opts.BarData, len(vals))
	for i, v := range vals {
		out[i] = opts.BarData{Value: v}
	}
	return out
}

func newHistogramChart(title string, values []float64, stats summaryStats) *charts.Bar {
	nbins := freedmanDiaconisBins(values)
	edges, counts := computeHistogram(values, nbins)
	xLabels := make([]string, nbins)
	for i := 0; i < nbins; i++ {
		center := 0.5 * (edges[i] + edges[i+1])
		xLabels[i] = fmt.Sprintf("%.2f", center)
	}
	bar := charts.NewBar()
	subtitle := fmt.Sprintf("n=%d, mean=%.3f, std=%.3f, median=%.3f, IQR=%.3f", stats.Count, stats.Mean, stats.Std, stats.Median, stats.IQR)
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "1200px", Height: "600px"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "inside"}, opts.DataZoom{Type: "slider"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(xLabels).
		AddSeries("count", toBarItems(counts)).
		SetSeriesOptions(charts.WithLabelOpts(opts.Label{Show: opts.Bool(false)}))
	return bar
}

func saveJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// ------------------------------- main routine -------------------------------

func main() {
	count := flag.Int("samples", 1<<18, "samples per series")
	seed := flag.Uint64("seed", 1, "base PRG seed")
	mu := flag.Float64("mu", 0.5, "center for the adjusted series")
	adjSigma := flag.Float64("adjsigma", 120, "deviation for the adjusted series")
	outDir := flag.String("out", "Measure_Reports", "output directory for reports")
	flag.Parse()

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("mkdir: %v", err)
	}

	series := []struct {
		name string
		vals []float64
	}{
		{"facct sigma=215", collectFacct(215, *seed, *count)},
		{"lattigo reference sigma=215", collectLattigoReference(215, *seed, *count)},
		{"half-Gaussian sigma=2", collectHalf(2, *seed+1, *count)},
		{"half-Gaussian sigma=215", collectHalf(215, *seed+2, *count)},
		{fmt.Sprintf("adjusted mu=%.2f sigma=%.0f", *mu, *adjSigma), collectAdjusted(*mu, *adjSigma, *seed+3, *count)},
	}

	outStats := map[string]summaryStats{}
	page := components.NewPage()
	for _, s := range series {
		st := computeStats(s.vals)
		outStats[s.name] = st
		page.AddCharts(newHistogramChart(s.name, s.vals, st))
	}

	ts := time.Now().Format("20060102_150405")
	jsonPath := filepath.Join(*outDir, fmt.Sprintf("sampler_stats_%s.json", ts))
	if err := saveJSON(jsonPath, outStats); err != nil {
		log.Printf("warn: save stats: %v", err)
	}

	htmlPath := filepath.Join(*outDir, fmt.Sprintf("sampler_histograms_%s.html", ts))
	f, err := os.Create(htmlPath)
	if err != nil {
		log.Fatalf("create html: %v", err)
	}
	defer f.Close()
	if err := page.Render(f); err != nil {
		log.Fatalf("render html: %v", err)
	}
	fmt.Println("Histogram page:", htmlPath)
	fmt.Println("Stats JSON:", jsonPath)
}
