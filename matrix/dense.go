// SPDX-License-Identifier: MIT

package matrix

import (
	"fmt"
	"strings"
)

// denseErrorf wraps an underlying error with Dense method context.
func denseErrorf(method string, row, col int, err error) error {
	return fmt.Errorf("Dense.%s(%d,%d): %w", method, row, col, err)
}

// Dense is a row-major matrix of float64 values.
// r is rows, c is columns, and data holds r*c elements in row-major order.
type Dense struct {
	r, c int       // number of rows and columns
	data []float64 // flat backing storage, length == r*c
}

// NewDense creates an r×c Dense matrix initialized to zeros.
// Returns ErrInvalidDimensions when rows or cols is not positive.
// Complexity: O(r*c) time and memory.
func NewDense(rows, cols int) (*Dense, error) {
	if rows <= 0 || cols <= 0 {
		return nil, ErrInvalidDimensions
	}

	return &Dense{r: rows, c: cols, data: make([]float64, rows*cols)}, nil
}

// NewDenseFrom copies a rectangular [][]float64 into a new Dense.
// Ragged input yields ErrDimensionMismatch.
func NewDenseFrom(rows [][]float64) (*Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrInvalidDimensions
	}
	m, err := NewDense(len(rows), len(rows[0]))
	if err != nil {
		return nil, err
	}
	for i, row := range rows {
		if len(row) != m.c {
			return nil, fmt.Errorf("NewDenseFrom: row %d has %d cols, want %d: %w", i, len(row), m.c, ErrDimensionMismatch)
		}
		copy(m.data[i*m.c:(i+1)*m.c], row)
	}

	return m, nil
}

// Rows returns the number of rows in the matrix.
func (m *Dense) Rows() int { return m.r }

// Cols returns the number of columns in the matrix.
func (m *Dense) Cols() int { return m.c }

// indexOf computes the flat index for (row, col) or returns ErrIndexOutOfBounds.
func (m *Dense) indexOf(method string, row, col int) (int, error) {
	if row < 0 || row >= m.r || col < 0 || col >= m.c {
		return 0, denseErrorf(method, row, col, ErrIndexOutOfBounds)
	}

	return row*m.c + col, nil
}

// At retrieves the element at (row, col).
func (m *Dense) At(row, col int) (float64, error) {
	idx, err := m.indexOf("At", row, col)
	if err != nil {
		return 0, err
	}

	return m.data[idx], nil
}

// Set assigns value v at (row, col).
func (m *Dense) Set(row, col int, v float64) error {
	idx, err := m.indexOf("Set", row, col)
	if err != nil {
		return err
	}
	m.data[idx] = v

	return nil
}

// Row returns a copy of row i.
func (m *Dense) Row(i int) ([]float64, error) {
	if i < 0 || i >= m.r {
		return nil, denseErrorf("Row", i, 0, ErrIndexOutOfBounds)
	}
	out := make([]float64, m.c)
	copy(out, m.data[i*m.c:(i+1)*m.c])

	return out, nil
}

// Clone returns a deep copy of the Dense matrix.
// Complexity: O(r*c).
func (m *Dense) Clone() *Dense {
	cp := make([]float64, len(m.data))
	copy(cp, m.data)

	return &Dense{r: m.r, c: m.c, data: cp}
}

// Gram returns the c×c product AᵀA.
// Stage 1 (Prepare): allocate the symmetric output.
// Stage 2 (Execute): accumulate the upper triangle row by row (cache friendly).
// Stage 3 (Finalize): mirror into the lower triangle.
// Complexity: O(r·c²).
func (m *Dense) Gram() *Dense {
	out := &Dense{r: m.c, c: m.c, data: make([]float64, m.c*m.c)}
	var i, j, k int
	for k = 0; k < m.r; k++ { // one observation row at a time
		row := m.data[k*m.c : (k+1)*m.c]
		for i = 0; i < m.c; i++ {
			for j = i; j < m.c; j++ {
				out.data[i*m.c+j] += row[i] * row[j]
			}
		}
	}
	for i = 0; i < m.c; i++ {
		for j = 0; j < i; j++ {
			out.data[i*m.c+j] = out.data[j*m.c+i]
		}
	}

	return out
}

// MulTVec returns Aᵀv, where len(v) must equal Rows().
// Complexity: O(r·c).
func (m *Dense) MulTVec(v []float64) ([]float64, error) {
	if len(v) != m.r {
		return nil, fmt.Errorf("MulTVec: len(v)=%d, rows=%d: %w", len(v), m.r, ErrDimensionMismatch)
	}
	out := make([]float64, m.c)
	for k := 0; k < m.r; k++ {
		if v[k] == 0 {
			continue
		}
		row := m.data[k*m.c : (k+1)*m.c]
		for j := range out {
			out[j] += row[j] * v[k]
		}
	}

	return out, nil
}

// Diagonal returns a copy of the main diagonal of a square matrix.
func (m *Dense) Diagonal() ([]float64, error) {
	if m.r != m.c {
		return nil, fmt.Errorf("Diagonal: %dx%d: %w", m.r, m.c, ErrNonSquare)
	}
	out := make([]float64, m.r)
	for i := range out {
		out[i] = m.data[i*m.c+i]
	}

	return out, nil
}

// AddDiagonal returns a copy of m with d[i] added to element (i,i).
func (m *Dense) AddDiagonal(d []float64) (*Dense, error) {
	if m.r != m.c {
		return nil, fmt.Errorf("AddDiagonal: %dx%d: %w", m.r, m.c, ErrNonSquare)
	}
	if len(d) != m.r {
		return nil, fmt.Errorf("AddDiagonal: len(d)=%d, n=%d: %w", len(d), m.r, ErrDimensionMismatch)
	}
	out := m.Clone()
	for i, v := range d {
		out.data[i*m.c+i] += v
	}

	return out, nil
}

// String implements fmt.Stringer for easy debugging.
func (m *Dense) String() string {
	var sb strings.Builder
	for i := 0; i < m.r; i++ {
		sb.WriteByte('[')
		for j := 0; j < m.c; j++ {
			if j > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "%g", m.data[i*m.c+j])
		}
		sb.WriteString("]\n")
	}

	return sb.String()
}
