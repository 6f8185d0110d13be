package opt

import (
	"fmt"
	"sort"

	"routeengine/internal/geo"
	"routeengine/internal/model"
)

// filterResult is the outcome of constraint filtering: the stops that remain
// eligible plus the warnings and skipped ids accumulated on the way.
type filterResult struct {
	Stops    []model.StopIn
	Warnings []string
	Skipped  []string
}

// filterStops trims the raw stop list to what the vehicle can serve.
// Order of operations matters and is part of the contract:
//  1. drop stops with unusable coordinates,
//  2. truncate to MaxStops keeping the highest priorities (stable on ties),
//  3. greedy capacity pass in the current order,
//  4. flag approximate coordinates (informational only).
func filterStops(stops []model.StopIn, v model.VehicleConstraints) filterResult {
	res := filterResult{Warnings: []string{}, Skipped: []string{}}

	valid := make([]model.StopIn, 0, len(stops))
	for _, s := range stops {
		if s.Location == nil || !geo.ValidPoint(*s.Location) {
			res.Warnings = append(res.Warnings, fmt.Sprintf("Stop %s skipped: invalid coordinates", s.ID))
			res.Skipped = append(res.Skipped, s.ID)
			continue
		}
		valid = append(valid, s)
	}

	if len(valid) > v.MaxStops {
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"Stop count %d exceeds vehicle limit of %d; keeping the %d highest-priority stops",
			len(valid), v.MaxStops, v.MaxStops))
		// Stable sort keeps input order among equal priorities.
		sort.SliceStable(valid, func(i, j int) bool {
			return effectivePriority(valid[i]) > effectivePriority(valid[j])
		})
		for _, s := range valid[v.MaxStops:] {
			res.Skipped = append(res.Skipped, s.ID)
		}
		valid = valid[:v.MaxStops]
	}

	// Greedy, order-dependent capacity pass. Deliberately not an optimal
	// subset selection; the running order decides who fits.
	kept := make([]model.StopIn, 0, len(valid))
	loadKg := 0.0
	for _, s := range valid {
		if s.DemandKg > 0 && loadKg+s.DemandKg > v.CapacityKg {
			res.Warnings = append(res.Warnings, fmt.Sprintf(
				"Stop %s skipped: demand %.1fkg exceeds remaining vehicle capacity", s.ID, s.DemandKg))
			res.Skipped = append(res.Skipped, s.ID)
			continue
		}
		if s.DemandKg > 0 {
			loadKg += s.DemandKg
		}
		kept = append(kept, s)
	}

	approx := 0
	for _, s := range kept {
		if s.LocationQuality == model.QualityApproximate {
			approx++
		}
	}
	if approx > 0 {
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"%d stop(s) have approximate coordinates; distances and ETAs are best-effort", approx))
	}

	res.Stops = kept
	return res
}

// effectivePriority applies the 1-10 scale with default 5; out-of-range
// values are clamped rather than rejected.
func effectivePriority(s model.StopIn) int {
	p := s.Priority
	if p == 0 {
		return model.PriorityDefault
	}
	if p < model.PriorityMin {
		return model.PriorityMin
	}
	if p > model.PriorityMax {
		return model.PriorityMax
	}
	return p
}
