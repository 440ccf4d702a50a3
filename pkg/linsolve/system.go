// Package linsolve implements the per-sample KCL linear system: the
// stamping primitives every component writes through, ground-row
// pinning, and the solve step the transient driver calls once per
// Newton iteration.
//
// The matrix is backed by github.com/edp1096/sparse rather than an
// in-repo dense solver; IncrementLHS/IncrementRHS and ground pinning
// behave identically regardless of which factorization backs Solve.
package linsolve

import (
	"fmt"
	"math"

	"github.com/edp1096/sparse"
)

// System holds the matrix A, RHS vector B and solution x for one
// sample's KCL system, plus the ground row that must never be
// disturbed by stamping.
type System struct {
	N       int
	Ground  int // index of the pinned ground unknown
	matrix  *sparse.Matrix
	rhs     []float64 // 1-based: rhs[0] unused
	x       []float64 // 1-based: x[0] unused
	config  *sparse.Configuration
	lastErr error // last solve failure, for diagnostics only
}

// New allocates a System of size N with unknown groundIndex pinned to
// zero. A[ground,ground] = 1 immediately after construction.
func New(n, groundIndex int) (*System, error) {
	if n <= 0 {
		return nil, fmt.Errorf("linsolve: non-positive system size %d", n)
	}
	if groundIndex < 0 || groundIndex >= n {
		return nil, fmt.Errorf("linsolve: ground index %d out of range [0,%d)", groundIndex, n)
	}

	config := &sparse.Configuration{
		Real:           true,
		Expandable:     true,
		ModifiedNodal:  true,
		TiesMultiplier: 5,
		PrinterWidth:   140,
	}

	mat, err := sparse.Create(int64(n), config)
	if err != nil {
		return nil, fmt.Errorf("linsolve: creating sparse matrix: %w", err)
	}

	sys := &System{
		N:      n,
		Ground: groundIndex,
		matrix: mat,
		rhs:    make([]float64, n+1),
		x:      make([]float64, n+1),
		config: config,
	}
	sys.pinGround()
	return sys, nil
}

func (s *System) row(i int) int64 { return int64(i + 1) }

func (s *System) pinGround() {
	s.matrix.GetElement(s.row(s.Ground), s.row(s.Ground)).Real = 1.0
	s.rhs[s.Ground+1] = 0
}

// Clear zeroes A, B and x, then re-pins the ground row.
func (s *System) Clear() {
	s.matrix.Clear()
	for i := range s.rhs {
		s.rhs[i] = 0
	}
	for i := range s.x {
		s.x[i] = 0
	}
	s.pinGround()
}

// IncrementLHS adds delta to A[r,c]. A no-op when r is the ground row -
// stamping must never disturb the V(ground) = 0 equation.
func (s *System) IncrementLHS(r, c int, delta float64) {
	if r == s.Ground {
		return
	}
	s.matrix.GetElement(s.row(r), s.row(c)).Real += delta
}

// IncrementRHS adds delta to B[r]. A no-op when r is the ground row.
func (s *System) IncrementRHS(r int, delta float64) {
	if r == s.Ground {
		return
	}
	s.rhs[r+1] += delta
}

// LoadGmin adds a minimum conductance to every existing non-ground
// diagonal entry. Solve calls it once as its regularization fallback
// after a failed factorization or solve.
func (s *System) LoadGmin(gmin float64) {
	for i := 0; i < s.N; i++ {
		if i == s.Ground {
			continue
		}
		if diag := s.matrix.Diags[s.row(i)]; diag != nil {
			diag.Real += gmin
		}
	}
}

// Solve computes x = A^-1 B via sparse LU factorization and returns the
// solution slice indexed [0, N). It never reports an error: on
// factorization/solve failure it retries once with a small diagonal
// regularization and, failing that, returns the stored solution vector
// unchanged (the last successful solve since the most recent Clear, or
// all zeros right after Clear) so the sample loop can keep running.
func (s *System) Solve() []float64 {
	x, err := s.factorAndSolve()
	if err != nil {
		s.lastErr = err
		s.LoadGmin(1e-9)
		x, err = s.factorAndSolve()
		if err != nil {
			s.lastErr = err
			return s.result()
		}
	}
	s.lastErr = nil
	copy(s.x, x)
	return s.result()
}

func (s *System) factorAndSolve() ([]float64, error) {
	if err := s.matrix.Factor(); err != nil {
		return nil, fmt.Errorf("factorization failed: %w", err)
	}
	sol, err := s.matrix.Solve(s.rhs)
	if err != nil {
		return nil, fmt.Errorf("solve failed: %w", err)
	}
	for _, v := range sol {
		if math.IsInf(v, 0) {
			return nil, fmt.Errorf("solve produced an infinite value")
		}
	}
	return sol, nil
}

// result returns a freshly sliced, 0-based copy of the solution.
func (s *System) result() []float64 {
	out := make([]float64, s.N)
	for i := 0; i < s.N; i++ {
		out[i] = s.x[i+1]
	}
	return out
}

// LastError reports the most recent solve failure, if any. The solver
// never propagates this as a returned error (see Solve); callers that
// want to log divergence inspect it explicitly.
func (s *System) LastError() error { return s.lastErr }

// Destroy releases the underlying sparse matrix's native resources.
func (s *System) Destroy() {
	if s.matrix != nil {
		s.matrix.Destroy()
	}
}
