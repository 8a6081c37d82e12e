// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package similarity

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/tomtom215/cinematch/internal/recommend"
)

// MatrixOptions controls parallel matrix construction.
type MatrixOptions struct {
	// Workers is the number of goroutines; zero means runtime.NumCPU().
	Workers int

	// BlockSize is the number of rows per unit of work; zero means 64.
	BlockSize int
}

// Cosine returns the cosine similarity of two sparse vectors, or 0 when
// either has zero norm. The result is clamped to [0, 1].
func Cosine(a, b *SparseVector) float64 {
	if a.norm == 0 || b.norm == 0 {
		return 0
	}
	s := dot(a, b) / (a.norm * b.norm)
	if s > 1 {
		return 1
	}
	if s < 0 {
		return 0
	}
	return s
}

// BuildMatrix computes all pairwise cosine similarities.
//
// Rows are split into blocks handed to a worker pool. A worker fills row i
// from the diagonal rightwards and mirrors each value to column i, so no
// cell is written by two workers. The diagonal is exactly 1 for non-zero
// vectors and 0 for all-zero vectors.
func BuildMatrix(ctx context.Context, vectors []SparseVector, opts MatrixOptions) (*recommend.SimilarityMatrix, error) {
	n := len(vectors)
	m := recommend.NewSimilarityMatrix(n)
	if n == 0 {
		return m, nil
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	blockSize := opts.BlockSize
	if blockSize <= 0 {
		blockSize = 64
	}

	blocks := make(chan [2]int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for b := range blocks {
				for i := b[0]; i < b[1]; i++ {
					fillRow(m, vectors, i)
				}
			}
		}()
	}

	var err error
dispatch:
	for start := 0; start < n; start += blockSize {
		end := min(start+blockSize, n)
		select {
		case <-ctx.Done():
			err = ctx.Err()
			break dispatch
		case blocks <- [2]int{start, end}:
		}
	}
	close(blocks)
	wg.Wait()

	if err != nil {
		return nil, fmt.Errorf("build similarity matrix: %w", err)
	}
	return m, nil
}

// fillRow writes row i for columns j >= i and their mirrors.
func fillRow(m *recommend.SimilarityMatrix, vectors []SparseVector, i int) {
	vi := &vectors[i]
	if vi.norm == 0 {
		return // row and column stay zero, diagonal included
	}
	m.SetSymmetric(i, i, 1)
	for j := i + 1; j < len(vectors); j++ {
		if s := Cosine(vi, &vectors[j]); s != 0 {
			m.SetSymmetric(i, j, s)
		}
	}
}

// BuildMatrixDense is BuildMatrix over dense count vectors.
func BuildMatrixDense(ctx context.Context, vectors [][]int, opts MatrixOptions) (*recommend.SimilarityMatrix, error) {
	sparse := make([]SparseVector, len(vectors))
	for i, v := range vectors {
		sparse[i] = NewSparseVector(v)
	}
	return BuildMatrix(ctx, sparse, opts)
}
