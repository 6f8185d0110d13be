package model

// Core wire types for the route engine.

// GeoPoint is a WGS84 coordinate pair in decimal degrees.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// TimeWindow bounds a stop visit. Start/End are minutes from route
// departure; End <= 0 means open-ended.
type TimeWindow struct {
	StartMinutes float64 `json:"startMinutes,omitempty"`
	EndMinutes   float64 `json:"endMinutes,omitempty"`
}

// Location quality tiers. Coordinates are operator-supplied and often
// imprecise; the tier records how much to trust them.
const (
	QualityPrecise     = "PRECISE"
	QualityApproximate = "APPROXIMATE"
	QualityLandmark    = "LANDMARK"
)

// Methods reported on an OptimizedRoute.
const (
	MethodSolver     = "SOLVER"
	MethodHeuristic  = "HEURISTIC"
	MethodAsProvided = "AS_PROVIDED"
)

// Priority bounds for stops; zero means unset and defaults to PriorityDefault.
const (
	PriorityMin     = 1
	PriorityMax     = 10
	PriorityDefault = 5
)

// StopIn is a delivery stop as submitted by the caller. Immutable once passed in.
type StopIn struct {
	ID              string      `json:"id"`
	Name            string      `json:"name,omitempty"`
	Location        *GeoPoint   `json:"location"`
	DemandKg        float64     `json:"demandKg,omitempty"`
	TimeWindow      *TimeWindow `json:"timeWindow,omitempty"`
	Priority        int         `json:"priority,omitempty"`
	LocationQuality string      `json:"locationQuality,omitempty"`
}

// VehicleConstraints describes the single vehicle serving the route.
type VehicleConstraints struct {
	CapacityKg     float64 `json:"capacityKg"`
	MaxStops       int     `json:"maxStops"`
	AvgSpeedKph    float64 `json:"avgSpeedKph,omitempty"`    // default 25
	ServiceMinutes float64 `json:"serviceMinutes,omitempty"` // default 10
}

// OptimizeRequest is the input to POST /v1/routes/optimize.
type OptimizeRequest struct {
	TenantID string              `json:"tenantId,omitempty"`
	Depot    *GeoPoint           `json:"depot"`
	Stops    []StopIn            `json:"stops"`
	Vehicle  *VehicleConstraints `json:"vehicle"`
	// ReturnToDepot defaults to true when omitted.
	ReturnToDepot *bool `json:"returnToDepot,omitempty"`
	// SynthesizeMissingCoords opts in to the v1 geocoding stand-in: stops
	// without coordinates get random jittered positions around the depot.
	SynthesizeMissingCoords bool `json:"synthesizeMissingCoords,omitempty"`
}

// OptimizedStop is one visit in the suggested order.
type OptimizedStop struct {
	ID                      string   `json:"id"`
	Name                    string   `json:"name,omitempty"`
	Sequence                int      `json:"sequence"`
	Location                GeoPoint `json:"location"`
	DistanceFromPreviousKm  float64  `json:"distanceFromPreviousKm"`
	EstimatedArrivalMinutes int      `json:"estimatedArrivalMinutes"`
	DemandKg                float64  `json:"demandKg,omitempty"`
	LocationQuality         string   `json:"locationQuality,omitempty"`
}

// OptimizedRoute is the advisory result of one optimization call. The caller
// is free to ignore or reorder it.
type OptimizedRoute struct {
	OrderedStops             []OptimizedStop `json:"orderedStops"`
	TotalDistanceKm          float64         `json:"totalDistanceKm"`
	EstimatedDurationMinutes int             `json:"estimatedDurationMinutes"`
	Warnings                 []string        `json:"warnings"`
	StopsSkipped             []string        `json:"stopsSkipped"`
	Method                   string          `json:"method"`
}

// Plan is a persisted optimization result.
type Plan struct {
	ID        string         `json:"id"`
	TenantID  string         `json:"tenantId"`
	CreatedAt string         `json:"createdAt"`
	StopCount int            `json:"stopCount"`
	Route     OptimizedRoute `json:"route"`
}

// SubscriptionRequest registers a webhook endpoint for plan events.
type SubscriptionRequest struct {
	TenantID string   `json:"tenantId"`
	URL      string   `json:"url"`
	Events   []string `json:"events"`
	Secret   string   `json:"secret"`
}

type Subscription struct {
	ID       string   `json:"id"`
	TenantID string   `json:"tenantId"`
	URL      string   `json:"url"`
	Events   []string `json:"events"`
	Secret   string   `json:"secret,omitempty"`
}
