package opt

import (
	"routeengine/internal/geo"
	"routeengine/internal/model"
)

// nearestNeighborOrder builds a visiting order greedily: starting at the
// depot, always travel to the closest unvisited stop next. Exact ties go to
// the earliest stop in input order (strict < comparison), which makes the
// result reproducible for identical input.
func nearestNeighborOrder(depot model.GeoPoint, stops []model.StopIn) []int {
	order := make([]int, 0, len(stops))
	visited := make([]bool, len(stops))
	cur := depot
	for len(order) < len(stops) {
		best := -1
		bestKm := 0.0
		for i, s := range stops {
			if visited[i] {
				continue
			}
			d := geo.DistanceKm(cur, *s.Location)
			if best == -1 || d < bestKm {
				best = i
				bestKm = d
			}
		}
		visited[best] = true
		order = append(order, best)
		cur = *stops[best].Location
	}
	return order
}

// identityOrder is the pass-through ordering used when optimization cannot
// improve anything (0-2 stops).
func identityOrder(n int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	return order
}
