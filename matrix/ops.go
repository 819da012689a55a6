package matrix

import (
	"math"
	"runtime"
	"sync"
)

// Parallelization thresholds. Operations under the threshold run
// sequentially; above it they fan out across goroutines over the outer
// index. Results never depend on the worker count: the partitioning is
// fixed and floating-point accumulation is combined in index order.
const (
	matDotIncrement  = 1 << 10
	matDotThreshold  = 1 << 14
	matMulThreshold1 = 1 << 5
	matMulThreshold2 = 1 << 10
)

// parallelRange runs body over [0,n) split into worker slices when
// parallel is set, and inline otherwise. body must be independent
// across indices.
func parallelRange(n int, parallel bool, body func(lo, hi int)) {
	workers := runtime.GOMAXPROCS(0)
	if !parallel || workers < 2 || n < 2 {
		body(0, n)
		return
	}
	if workers > n {
		workers = n
	}
	var wg sync.WaitGroup
	chunk := (n + workers - 1) / workers
	for lo := 0; lo < n; lo += chunk {
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			body(lo, hi)
		}(lo, hi)
	}
	wg.Wait()
}

// ToRowMajor transposes-copies a into t. Reports false on mismatched
// dimensions.
func ToRowMajor[E Elem](a *ColumnMajor[E], t *RowMajor[E]) bool {
	if a.rows != t.rows || a.cols != t.cols {
		return false
	}
	rows, cols := int(a.rows), int(a.cols)
	parallelRange(cols, rows*cols > matDotThreshold, func(lo, hi int) {
		for j := lo; j < hi; j++ {
			col := a.data[j*rows : (j+1)*rows]
			for i, v := range col {
				t.data[i*cols+j] = v
			}
		}
	})
	return true
}

// ToColumnMajor transposes-copies a into t. Reports false on mismatched
// dimensions.
func ToColumnMajor[E Elem](a *RowMajor[E], t *ColumnMajor[E]) bool {
	if a.rows != t.rows || a.cols != t.cols {
		return false
	}
	rows, cols := int(a.rows), int(a.cols)
	parallelRange(rows, rows*cols > matDotThreshold, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			row := a.data[i*cols : (i+1)*cols]
			for j, v := range row {
				t.data[j*rows+i] = v
			}
		}
	})
	return true
}

// Multiply computes c = a*b with wraparound in the element type. The
// (row-major, column-major) -> column-major shape makes every inner
// loop a contiguous dot product. Reports false on mismatched
// dimensions, leaving c untouched.
func Multiply[E Elem](a *RowMajor[E], b *ColumnMajor[E], c *ColumnMajor[E]) bool {
	if a.rows != c.rows || b.cols != c.cols || a.cols != b.rows {
		return false
	}
	c.Zero()
	iend, jend, kend := int(c.rows), int(c.cols), int(a.cols)
	parallel := iend > matMulThreshold1 && iend*jend > matMulThreshold2
	parallelRange(jend, parallel, func(lo, hi int) {
		for j := lo; j < hi; j++ {
			bcol := b.data[j*kend : (j+1)*kend]
			ccol := c.data[j*iend : (j+1)*iend]
			for i := 0; i < iend; i++ {
				arow := a.data[i*kend : (i+1)*kend]
				var s E
				for k, v := range arow {
					s += v * bcol[k]
				}
				ccol[i] += s
			}
		}
	})
	return true
}

// MultiplyRowMajor computes c = a*b for all-row-major operands by
// reordering b and c through the core multiply shape.
func MultiplyRowMajor[E Elem](a, b, c *RowMajor[E]) bool {
	b1 := NewColumnMajor[E](b.rows, b.cols)
	c1 := NewColumnMajor[E](c.rows, c.cols)
	return ToColumnMajor(b, b1) && Multiply(a, b1, c1) && ToRowMajor(c1, c)
}

// MultiplyColumnMajor computes c = a*b for all-column-major operands by
// reordering a through the core multiply shape.
func MultiplyColumnMajor[E Elem](a, b, c *ColumnMajor[E]) bool {
	a1 := NewRowMajor[E](a.rows, a.cols)
	return ToRowMajor(a, a1) && Multiply(a1, b, c)
}

// Add computes c = a+b element-wise for row-major operands. Reports
// false on mismatched dimensions.
func (c *RowMajor[E]) Add(a, b *RowMajor[E]) bool {
	if a.rows != b.rows || a.rows != c.rows || a.cols != b.cols || a.cols != c.cols {
		return false
	}
	addData(a.data, b.data, c.data)
	return true
}

// Add computes c = a+b element-wise for column-major operands. Reports
// false on mismatched dimensions.
func (c *ColumnMajor[E]) Add(a, b *ColumnMajor[E]) bool {
	if a.rows != b.rows || a.rows != c.rows || a.cols != b.cols || a.cols != c.cols {
		return false
	}
	addData(a.data, b.data, c.data)
	return true
}

func addData[E Elem](a, b, c []E) {
	for i := range c {
		c[i] = a[i] + b[i]
	}
}

// FrobeniusInnerProduct returns sum_{i,j} a(i,j)*b(i,j) accumulated in
// float64 to avoid overflow. Reports false on mismatched dimensions.
func (a *RowMajor[E]) FrobeniusInnerProduct(b *RowMajor[E]) (float64, bool) {
	if a.rows != b.rows || a.cols != b.cols {
		return 0, false
	}
	return frobeniusData(a.data, b.data), true
}

// FrobeniusInnerProduct returns sum_{i,j} a(i,j)*b(i,j) accumulated in
// float64 to avoid overflow. Reports false on mismatched dimensions.
func (a *ColumnMajor[E]) FrobeniusInnerProduct(b *ColumnMajor[E]) (float64, bool) {
	if a.rows != b.rows || a.cols != b.cols {
		return 0, false
	}
	return frobeniusData(a.data, b.data), true
}

// frobeniusData accumulates fixed-size partial sums so the result is
// identical whether or not the partials are computed in parallel.
func frobeniusData[E Elem](a, b []E) float64 {
	n := len(a)
	nparts := (n + matDotIncrement - 1) / matDotIncrement
	if nparts <= 1 {
		var r float64
		for i := range a {
			r += float64(a[i]) * float64(b[i])
		}
		return r
	}
	parts := make([]float64, nparts)
	parallelRange(nparts, n > matDotThreshold, func(lo, hi int) {
		for p := lo; p < hi; p++ {
			start := p * matDotIncrement
			end := start + matDotIncrement
			if end > n {
				end = n
			}
			var s float64
			for i := start; i < end; i++ {
				s += float64(a[i]) * float64(b[i])
			}
			parts[p] = s
		}
	})
	var r float64
	for _, s := range parts {
		r += s
	}
	return r
}

// FrobeniusNorm returns sqrt of the Frobenius inner product of a with
// itself.
func (a *RowMajor[E]) FrobeniusNorm() float64 {
	return math.Sqrt(frobeniusData(a.data, a.data))
}

// FrobeniusNorm returns sqrt of the Frobenius inner product of a with
// itself.
func (a *ColumnMajor[E]) FrobeniusNorm() float64 {
	return math.Sqrt(frobeniusData(a.data, a.data))
}
