// Package logits stores per-line character probability matrices.
//
// A recognition model emits one row of log probabilities per alignment
// frame, with one column per alphabet symbol. Most entries are pruned to
// zero before storage, so the matrix is kept sparse; a structural zero
// means "not stored", not "probability one", and dense decoding replaces
// it with a large negative substitute value.
package logits

import "math"

// DefaultMissingLogit is substituted for structurally-zero entries when a
// sparse matrix is decoded densely. True zero probability never arises in
// a log-probability matrix, so zero can safely mean "no evidence".
const DefaultMissingLogit = -80

// Sparse is a compressed sparse row matrix of float32 logits with shape
// (frames × alphabet size).
type Sparse struct {
	Rows   int       // Number of alignment frames
	Cols   int       // Alphabet size
	RowPtr []int     // len Rows+1, row i spans Col[RowPtr[i]:RowPtr[i+1]]
	Col    []int     // Column index per stored value
	Val    []float32 // Stored values
}

// FromDense builds a sparse matrix from a dense one, dropping zeros.
func FromDense(dense [][]float32) *Sparse {
	rows := len(dense)
	cols := 0
	if rows > 0 {
		cols = len(dense[0])
	}
	s := &Sparse{
		Rows:   rows,
		Cols:   cols,
		RowPtr: make([]int, rows+1),
	}
	for r, row := range dense {
		for c, v := range row {
			if v != 0 {
				s.Col = append(s.Col, c)
				s.Val = append(s.Val, v)
			}
		}
		s.RowPtr[r+1] = len(s.Col)
	}
	return s
}

// At returns the stored value at (row, col), 0 when not stored.
func (s *Sparse) At(row, col int) float32 {
	for i := s.RowPtr[row]; i < s.RowPtr[row+1]; i++ {
		if s.Col[i] == col {
			return s.Val[i]
		}
	}
	return 0
}

// Dense decodes the matrix into a dense (frames × alphabet size) form.
// Structurally-zero entries are replaced by missing.
func (s *Sparse) Dense(missing float32) [][]float32 {
	dense := make([][]float32, s.Rows)
	for r := range dense {
		row := make([]float32, s.Cols)
		for c := range row {
			row[c] = missing
		}
		for i := s.RowPtr[r]; i < s.RowPtr[r+1]; i++ {
			row[s.Col[i]] = s.Val[i]
		}
		dense[r] = row
	}
	return dense
}

// LogProbs decodes the matrix densely and normalizes each row by
// subtracting its log-sum-exp, so rows sum to probability one in the
// probability domain. Accumulation runs in float64 for stability.
func LogProbs(s *Sparse, missing float32) [][]float32 {
	dense := s.Dense(missing)
	for _, row := range dense {
		lse := logSumExp(row)
		for c := range row {
			row[c] = float32(float64(row[c]) - lse)
		}
	}
	return dense
}

// Softmax decodes the matrix densely and turns each row into a
// probability distribution.
func Softmax(s *Sparse, missing float32) [][]float32 {
	dense := s.Dense(missing)
	for _, row := range dense {
		lse := logSumExp(row)
		for c := range row {
			row[c] = float32(math.Exp(float64(row[c]) - lse))
		}
	}
	return dense
}

// logSumExp computes log(sum(exp(row))) shifted by the row maximum.
func logSumExp(row []float32) float64 {
	if len(row) == 0 {
		return math.Inf(-1)
	}
	max := float64(row[0])
	for _, v := range row[1:] {
		if float64(v) > max {
			max = float64(v)
		}
	}
	var sum float64
	for _, v := range row {
		sum += math.Exp(float64(v) - max)
	}
	return max + math.Log(sum)
}
