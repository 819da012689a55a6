// Package matrix implements the dense integer matrix algebra used by
// the protocol: row-major and column-major matrices over 32- or 64-bit
// machine integers with wrap-around arithmetic, a multiply primitive of
// shape (row-major, column-major) -> column-major, and the Frobenius
// and operator-norm helpers the rejection test and the verifier need.
//
// The two storage orders are distinct types so that multiplication
// signatures are checked at compile time; an accidental silent
// transpose does not type-check. BLAS-style libraries were not an
// option here because the arithmetic is modular over machine integers.
package matrix

// Dim indexes rows and columns.
type Dim = int32

// Elem is the set of supported element types. Arithmetic wraps
// silently mod 2^32 or 2^64.
type Elem interface {
	int32 | int64
}

// RowMajor is a dense matrix laid out row by row: (i,j) lives at
// offset i*cols+j. Dimensions and order are fixed at creation.
type RowMajor[E Elem] struct {
	rows, cols Dim
	data       []E
}

// ColumnMajor is a dense matrix laid out column by column: (i,j) lives
// at offset j*rows+i. Dimensions and order are fixed at creation.
type ColumnMajor[E Elem] struct {
	rows, cols Dim
	data       []E
}

// NewRowMajor allocates a zeroed rows x cols row-major matrix backed by
// a single contiguous buffer.
func NewRowMajor[E Elem](rows, cols Dim) *RowMajor[E] {
	if rows < 0 || cols < 0 {
		panic("matrix: negative dimension")
	}
	return &RowMajor[E]{rows: rows, cols: cols, data: make([]E, int(rows)*int(cols))}
}

// NewColumnMajor allocates a zeroed rows x cols column-major matrix
// backed by a single contiguous buffer.
func NewColumnMajor[E Elem](rows, cols Dim) *ColumnMajor[E] {
	if rows < 0 || cols < 0 {
		panic("matrix: negative dimension")
	}
	return &ColumnMajor[E]{rows: rows, cols: cols, data: make([]E, int(rows)*int(cols))}
}

func (m *RowMajor[E]) NumRows() Dim  { return m.rows }
func (m *RowMajor[E]) NumCols() Dim  { return m.cols }
func (m *RowMajor[E]) NumCells() int { return len(m.data) }

// Data exposes the backing buffer in storage order, for bulk operations
// and serialization.
func (m *RowMajor[E]) Data() []E { return m.data }

// At returns the (i,j) element.
func (m *RowMajor[E]) At(i, j Dim) E { return m.data[int(i)*int(m.cols)+int(j)] }

// Set stores v at (i,j).
func (m *RowMajor[E]) Set(i, j Dim, v E) { m.data[int(i)*int(m.cols)+int(j)] = v }

// Zero clears all cells.
func (m *RowMajor[E]) Zero() { clear(m.data) }

func (m *ColumnMajor[E]) NumRows() Dim  { return m.rows }
func (m *ColumnMajor[E]) NumCols() Dim  { return m.cols }
func (m *ColumnMajor[E]) NumCells() int { return len(m.data) }

// Data exposes the backing buffer in storage order, for bulk operations
// and serialization.
func (m *ColumnMajor[E]) Data() []E { return m.data }

// At returns the (i,j) element.
func (m *ColumnMajor[E]) At(i, j Dim) E { return m.data[int(j)*int(m.rows)+int(i)] }

// Set stores v at (i,j).
func (m *ColumnMajor[E]) Set(i, j Dim, v E) { m.data[int(j)*int(m.rows)+int(i)] = v }

// Zero clears all cells.
func (m *ColumnMajor[E]) Zero() { clear(m.data) }

// Equal reports byte-wise identity given matching dimensions.
func (m *RowMajor[E]) Equal(o *RowMajor[E]) bool {
	return m.rows == o.rows && m.cols == o.cols && equalData(m.data, o.data)
}

// Equal reports byte-wise identity given matching dimensions.
func (m *ColumnMajor[E]) Equal(o *ColumnMajor[E]) bool {
	return m.rows == o.rows && m.cols == o.cols && equalData(m.data, o.data)
}

func equalData[E Elem](a, b []E) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// UpperBoundOnOperatorNorm returns the maximum over rows of the row's
// l1 norm. This is the l-infinity induced norm and upper-bounds the
// spectral norm; the prover uses it as a cheap precondition check.
func (m *RowMajor[E]) UpperBoundOnOperatorNorm() float64 {
	var r float64
	for i := Dim(0); i < m.rows; i++ {
		row := m.data[int(i)*int(m.cols) : (int(i)+1)*int(m.cols)]
		var s float64
		for _, v := range row {
			f := float64(v)
			if f < 0 {
				f = -f
			}
			s += f
		}
		if r < s {
			r = s
		}
	}
	return r
}

// UpperBoundOnOperatorNorm returns the maximum over rows of the row's
// l1 norm.
func (m *ColumnMajor[E]) UpperBoundOnOperatorNorm() float64 {
	sums := make([]float64, m.rows)
	for j := Dim(0); j < m.cols; j++ {
		col := m.data[int(j)*int(m.rows) : (int(j)+1)*int(m.rows)]
		for i, v := range col {
			f := float64(v)
			if f < 0 {
				f = -f
			}
			sums[i] += f
		}
	}
	var r float64
	for _, s := range sums {
		if r < s {
			r = s
		}
	}
	return r
}
