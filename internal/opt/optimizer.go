// Package opt implements the delivery route optimizer: constraint filtering,
// an optional combinatorial solver with a guaranteed nearest-neighbor
// fallback, and assembly of the final timed route.
package opt

import (
	"context"
	"fmt"
	"time"

	"routeengine/internal/geo"
	"routeengine/internal/model"
)

// Optimizer runs the optimization pipeline. It is an explicitly constructed
// service object: the caller owns it, injects the solver capability once at
// startup, and may share one instance across goroutines — each Optimize call
// is a pure computation over its inputs.
type Optimizer struct {
	Solver Solver        // nil when no solver capability is available
	Budget time.Duration // solver wall-clock budget; DefaultSolverBudget when zero
	Seed   int64         // fixed solver seed for reproducible runs; 0 = time-based
}

// New builds an Optimizer with the given solver capability (nil for none).
func New(solver Solver) *Optimizer {
	return &Optimizer{Solver: solver, Budget: DefaultSolverBudget}
}

// UsageError marks a caller contract violation (missing vehicle constraints
// or depot). It is the only error Optimize returns; all data-quality issues
// degrade into warnings on the result instead.
type UsageError struct {
	Field  string
	Reason string
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("optimize: %s %s", e.Field, e.Reason)
}

// Vehicle and timing defaults applied when the request omits them.
const (
	DefaultSpeedKph       = 25.0
	DefaultServiceMinutes = 10.0
)

// Optimize produces a best-effort visiting order for the request. The result
// always carries the warnings and skipped-stop ids accumulated along the way;
// the only error return is a *UsageError.
func (o *Optimizer) Optimize(ctx context.Context, req model.OptimizeRequest) (model.OptimizedRoute, error) {
	if err := checkUsage(req); err != nil {
		return model.OptimizedRoute{}, err
	}
	v := *req.Vehicle
	if v.AvgSpeedKph <= 0 {
		v.AvgSpeedKph = DefaultSpeedKph
	}
	if v.ServiceMinutes <= 0 {
		v.ServiceMinutes = DefaultServiceMinutes
	}
	returnToDepot := true
	if req.ReturnToDepot != nil {
		returnToDepot = *req.ReturnToDepot
	}
	depot := *req.Depot

	stops := req.Stops
	if req.SynthesizeMissingCoords {
		stops = synthesizeMissingCoords(depot, stops)
	}
	f := filterStops(stops, v)

	if len(f.Stops) == 0 {
		f.Warnings = append(f.Warnings, "No stops provided")
		return assemble(depot, nil, nil, v, returnToDepot, model.MethodAsProvided, f.Warnings, f.Skipped), nil
	}
	if len(f.Stops) <= 2 {
		// Optimization cannot improve a route of one or two stops.
		order := identityOrder(len(f.Stops))
		return assemble(depot, f.Stops, order, v, returnToDepot, model.MethodAsProvided, f.Warnings, f.Skipped), nil
	}

	if o.Solver != nil {
		if order, ok := o.trySolver(ctx, depot, f.Stops, v, returnToDepot); ok {
			return assemble(depot, f.Stops, order, v, returnToDepot, model.MethodSolver, f.Warnings, f.Skipped), nil
		}
		f.Warnings = append(f.Warnings, "Route solver failed; falling back to nearest-neighbor heuristic")
	} else {
		f.Warnings = append(f.Warnings, "Route solver unavailable; falling back to nearest-neighbor heuristic")
	}

	order := nearestNeighborOrder(depot, f.Stops)
	return assemble(depot, f.Stops, order, v, returnToDepot, model.MethodHeuristic, f.Warnings, f.Skipped), nil
}

// synthesizeMissingCoords assigns jittered positions near the depot to stops
// that arrived without coordinates, instead of dropping them. The positions
// are placeholders until a geocoding integration lands, so the stops are
// downgraded to approximate quality.
func synthesizeMissingCoords(depot model.GeoPoint, stops []model.StopIn) []model.StopIn {
	out := append([]model.StopIn(nil), stops...)
	for i := range out {
		if out[i].Location != nil {
			continue
		}
		p := geo.SyntheticPoint(depot, geo.DefaultJitterRadiusKm)
		out[i].Location = &p
		out[i].LocationQuality = model.QualityApproximate
	}
	return out
}

func checkUsage(req model.OptimizeRequest) error {
	if req.Depot == nil {
		return &UsageError{Field: "depot", Reason: "is required"}
	}
	if !geo.ValidPoint(*req.Depot) {
		return &UsageError{Field: "depot", Reason: "coordinates are out of range"}
	}
	if req.Vehicle == nil {
		return &UsageError{Field: "vehicle", Reason: "constraints are required"}
	}
	if req.Vehicle.CapacityKg <= 0 {
		return &UsageError{Field: "vehicle.capacityKg", Reason: "must be > 0"}
	}
	if req.Vehicle.MaxStops <= 0 {
		return &UsageError{Field: "vehicle.maxStops", Reason: "must be > 0"}
	}
	if req.Vehicle.AvgSpeedKph < 0 {
		return &UsageError{Field: "vehicle.avgSpeedKph", Reason: "must be >= 0"}
	}
	if req.Vehicle.ServiceMinutes < 0 {
		return &UsageError{Field: "vehicle.serviceMinutes", Reason: "must be >= 0"}
	}
	return nil
}
