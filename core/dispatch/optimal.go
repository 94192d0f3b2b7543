package dispatch

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/kilianp07/gridsched/core/model"
)

const lpTolerance = 1e-9

// ErrInfeasible indicates the LP had no feasible solution for the target.
var ErrInfeasible = errors.New("lp infeasible")

// solveLP minimises cost·y subject to 0 <= y_i <= span_i and Σy = target.
// The problem is posed in standard form with one slack per upper bound:
// y_i + s_i = span_i. It returns the optimal objective value.
func solveLP(cost, span []float64, target float64) (float64, error) {
	n := len(cost)
	c := make([]float64, 2*n)
	copy(c, cost)
	a := mat.NewDense(n+1, 2*n, nil)
	b := make([]float64, n+1)
	for i, s := range span {
		a.Set(i, i, 1)
		a.Set(i, n+i, 1)
		b[i] = s
		a.Set(n, i, 1)
	}
	b[n] = target
	opt, _, err := lp.Simplex(c, a, b, 1e-10, nil)
	if errors.Is(err, lp.ErrInfeasible) {
		return 0, ErrInfeasible
	}
	return opt, err
}

// lpSolve points to the function used to solve the LP. It can be overridden in
// tests to simulate solver failures.
var lpSolve = solveLP

// OptimalDispatchCost returns the cheapest possible cost for one block given
// the committed (ON) units in snapshot, each held within
// [min gen, effective capacity]. Demand outside the feasible band is clamped
// to it, so the bound is comparable with what the engine actually dispatched.
func OptimalDispatchCost(units []model.UnitSnapshot, demandMW, blockHours float64) (float64, error) {
	var (
		base, lo, hi float64
		cost, span   []float64
	)
	for _, u := range units {
		if u.Status != model.StatusOn || u.EffectiveMW < u.MinGenMW {
			continue
		}
		base += u.MinGenMW * u.CostRate
		lo += u.MinGenMW
		hi += u.EffectiveMW
		if r := u.EffectiveMW - u.MinGenMW; r > lpTolerance {
			cost = append(cost, u.CostRate)
			span = append(span, r)
		}
	}
	residual := math.Min(math.Max(demandMW, lo), hi) - lo
	if residual <= lpTolerance || len(cost) == 0 {
		return base * blockHours, nil
	}
	opt, err := lpSolve(cost, span, residual)
	if err != nil {
		return 0, err
	}
	return (base + opt) * blockHours, nil
}
