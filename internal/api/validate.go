package api

import (
	"fmt"

	"routeengine/internal/model"
)

// maxStopsPerRequest bounds request size before any optimization work starts.
const maxStopsPerRequest = 1000

// validateOptimizeRequest rejects requests that are malformed at the wire
// level. Semantic validation (depot coordinates, vehicle limits) happens in
// the optimizer, which reports violations as usage errors.
func validateOptimizeRequest(req *model.OptimizeRequest) error {
	if len(req.Stops) > maxStopsPerRequest {
		return fmt.Errorf("too many stops: %d (max %d)", len(req.Stops), maxStopsPerRequest)
	}
	seen := make(map[string]struct{}, len(req.Stops))
	for i, s := range req.Stops {
		if s.ID == "" {
			return fmt.Errorf("stops[%d]: id is required", i)
		}
		if _, dup := seen[s.ID]; dup {
			return fmt.Errorf("stops[%d]: duplicate id %q", i, s.ID)
		}
		seen[s.ID] = struct{}{}
		if s.DemandKg < 0 {
			return fmt.Errorf("stops[%d]: demandKg must be >= 0", i)
		}
	}
	return nil
}
