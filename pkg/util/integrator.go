package util

// BackwardDifferentialFormula holds the coefficients of one order of
// the backward-differentiation family. Only order 1 (backward Euler)
// is exercised by this engine's fixed-step reactive companion models,
// but the table is kept in its original shape rather than collapsed
// to a single constant, matching how the source expressed it.
type BackwardDifferentialFormula struct {
	coefficients []float64
	beta         float64
}

var BdfCoefficients = [6]BackwardDifferentialFormula{
	{[]float64{1.0}, 1.0},
	{[]float64{4.0 / 3.0, -1.0 / 3.0}, 2.0 / 3.0},
	{[]float64{18.0 / 11.0, -9.0 / 11.0, 2.0 / 11.0}, 6.0 / 11.0},
	{[]float64{48.0 / 25.0, -36.0 / 25.0, 16.0 / 25.0, -3.0 / 25.0}, 12.0 / 25.0},
	{[]float64{300.0 / 137.0, -300.0 / 137.0, 200.0 / 137.0, -75.0 / 137.0, 12.0 / 137.0}, 60.0 / 137.0},
	{[]float64{360.0 / 147.0, -450.0 / 147.0, 400.0 / 147.0, -225.0 / 147.0, 72.0 / 147.0, -10.0 / 147.0}, 60.0 / 147.0},
}

// GetBDFcoeffs returns the companion-model coefficients for the given
// BDF order and step size: coeffs[0] scales the current unknown,
// coeffs[1:] scale the history terms. order=1 reduces to backward
// Euler, coeffs[0] = 1/dt, which is what every reactive stamp in this
// engine uses.
func GetBDFcoeffs(order int, dt float64) []float64 {
	if order < 1 || order > 6 {
		order = 1
	}

	bdf := BdfCoefficients[order-1]
	coeffs := make([]float64, order+1)
	scale := 1.0 / (bdf.beta * dt)
	coeffs[0] = scale

	for i := 1; i <= order; i++ {
		coeffs[i] = -bdf.coefficients[i-1] * scale
	}

	return coeffs
}
