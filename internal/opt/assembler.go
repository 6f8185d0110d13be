package opt

import (
	"math"

	"routeengine/internal/geo"
	"routeengine/internal/model"
)

// assemble turns a visiting order into the final timed, distance-annotated
// route. Warnings and skipped ids arriving from upstream stages are carried
// through and only ever appended to.
func assemble(depot model.GeoPoint, stops []model.StopIn, order []int, v model.VehicleConstraints, returnToDepot bool, method string, warnings, skipped []string) model.OptimizedRoute {
	route := model.OptimizedRoute{
		OrderedStops: make([]model.OptimizedStop, 0, len(order)),
		Warnings:     warnings,
		StopsSkipped: skipped,
		Method:       method,
	}
	if route.Warnings == nil {
		route.Warnings = []string{}
	}
	if route.StopsSkipped == nil {
		route.StopsSkipped = []string{}
	}

	cur := depot
	totalKm := 0.0
	elapsedMin := 0.0
	for seq, idx := range order {
		s := stops[idx]
		legKm := geo.DistanceKm(cur, *s.Location)
		totalKm += legKm
		elapsedMin += legKm / v.AvgSpeedKph * 60
		route.OrderedStops = append(route.OrderedStops, model.OptimizedStop{
			ID:                      s.ID,
			Name:                    s.Name,
			Sequence:                seq,
			Location:                *s.Location,
			DistanceFromPreviousKm:  round2(legKm),
			EstimatedArrivalMinutes: int(math.Round(elapsedMin)),
			DemandKg:                s.DemandKg,
			LocationQuality:         s.LocationQuality,
		})
		elapsedMin += v.ServiceMinutes
		cur = *s.Location
	}
	if returnToDepot && len(order) > 0 {
		backKm := geo.DistanceKm(cur, depot)
		totalKm += backKm
		elapsedMin += backKm / v.AvgSpeedKph * 60
	}

	route.TotalDistanceKm = round2(totalKm)
	route.EstimatedDurationMinutes = int(math.Round(elapsedMin))
	return route
}

func round2(km float64) float64 {
	return math.Round(km*100) / 100
}
