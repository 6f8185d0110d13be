package opt

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"routeengine/internal/geo"
	"routeengine/internal/model"
)

// Problem is the integer-scaled single-vehicle instance handed to a Solver.
// Matrix index 0 is the depot; stop i maps to matrix index i+1.
type Problem struct {
	DistM      [][]int // meters
	TravelSec  [][]int // seconds
	DemandKg   []int   // per stop
	CapacityKg int
	ServiceSec int
	HorizonSec int // plan horizon; arrivals past it are penalized
	// Windows holds optional soft time windows in seconds from departure;
	// nil entries mean unconstrained.
	Windows       []*Window
	ReturnToDepot bool
	// NoImproveLimit terminates search after this many consecutive
	// iterations without a better solution.
	NoImproveLimit int
	Seed           int64
}

// Window is a soft visiting window in seconds from route departure.
type Window struct {
	StartSec int
	EndSec   int // <= 0 means open-ended
}

// Solution is a complete visiting order over the problem's stops.
type Solution struct {
	Order   []int // stop indices, 0-based
	CostSec int
}

// Solver is the optional vehicle-routing capability. Whether one is available
// is decided once at startup and injected into the Optimizer; a nil Solver
// means the capability is absent and the heuristic path is used directly.
type Solver interface {
	Solve(ctx context.Context, p Problem) (Solution, error)
}

// Solver wall-clock and search bounds.
const (
	DefaultSolverBudget   = 5 * time.Second
	DefaultHorizonSec     = 24 * 60 * 60
	DefaultNoImproveLimit = 100
)

// trySolver attempts the injected solver under a hard timeout. It returns the
// visiting order and true on success. Every failure mode — error, panic,
// timeout, empty or malformed solution — yields (nil, false); failures are
// logged but never surfaced to the caller as errors.
func (o *Optimizer) trySolver(ctx context.Context, depot model.GeoPoint, stops []model.StopIn, v model.VehicleConstraints, returnToDepot bool) ([]int, bool) {
	budget := o.Budget
	if budget <= 0 {
		budget = DefaultSolverBudget
	}
	ctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	p := o.buildProblem(depot, stops, v, returnToDepot)

	type outcome struct {
		sol Solution
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("solver panic: %v", r)}
			}
		}()
		sol, err := o.Solver.Solve(ctx, p)
		done <- outcome{sol: sol, err: err}
	}()

	select {
	case <-ctx.Done():
		log.Printf("opt: solver exceeded %s budget, falling back", budget)
		return nil, false
	case out := <-done:
		if out.err != nil {
			log.Printf("opt: solver failed: %v", out.err)
			return nil, false
		}
		if !isPermutation(out.sol.Order, len(stops)) {
			log.Printf("opt: solver returned empty or malformed order (%d of %d stops)", len(out.sol.Order), len(stops))
			return nil, false
		}
		return out.sol.Order, true
	}
}

func (o *Optimizer) buildProblem(depot model.GeoPoint, stops []model.StopIn, v model.VehicleConstraints, returnToDepot bool) Problem {
	m := geo.BuildMatrix(depot, stops, v.AvgSpeedKph)
	demands := make([]int, len(stops))
	windows := make([]*Window, len(stops))
	for i, s := range stops {
		demands[i] = int(math.Ceil(s.DemandKg))
		if tw := s.TimeWindow; tw != nil {
			windows[i] = &Window{StartSec: int(tw.StartMinutes * 60), EndSec: int(tw.EndMinutes * 60)}
		}
	}
	return Problem{
		DistM:          m.DistM,
		TravelSec:      m.TravelSec,
		DemandKg:       demands,
		CapacityKg:     int(math.Floor(v.CapacityKg)),
		ServiceSec:     int(v.ServiceMinutes * 60),
		HorizonSec:     DefaultHorizonSec,
		Windows:        windows,
		ReturnToDepot:  returnToDepot,
		NoImproveLimit: DefaultNoImproveLimit,
		Seed:           o.Seed,
	}
}

// isPermutation reports whether order visits each of n stops exactly once.
func isPermutation(order []int, n int) bool {
	if len(order) != n || n == 0 {
		return false
	}
	seen := make([]bool, n)
	for _, idx := range order {
		if idx < 0 || idx >= n || seen[idx] {
			return false
		}
		seen[idx] = true
	}
	return true
}
