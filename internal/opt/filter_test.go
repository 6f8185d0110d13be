package opt

import (
	"math"
	"strings"
	"testing"

	"routeengine/internal/model"
)

func pt(lat, lng float64) *model.GeoPoint { return &model.GeoPoint{Lat: lat, Lng: lng} }

func TestFilterInvalidCoordinates(t *testing.T) {
	stops := []model.StopIn{
		{ID: "ok", Location: pt(6.5, 3.4)},
		{ID: "nan", Location: pt(math.NaN(), 3.4)},
		{ID: "range", Location: pt(95, 3.4)},
		{ID: "nil"},
	}
	res := filterStops(stops, model.VehicleConstraints{CapacityKg: 100, MaxStops: 10})
	if len(res.Stops) != 1 || res.Stops[0].ID != "ok" {
		t.Fatalf("kept %v, want [ok]", res.Stops)
	}
	if len(res.Skipped) != 3 {
		t.Fatalf("skipped = %v, want 3 ids", res.Skipped)
	}
	want := "Stop nan skipped: invalid coordinates"
	found := false
	for _, w := range res.Warnings {
		if w == want {
			found = true
		}
	}
	if !found {
		t.Fatalf("warnings %v missing %q", res.Warnings, want)
	}
}

func TestFilterTruncatesByPriority(t *testing.T) {
	stops := []model.StopIn{
		{ID: "a", Priority: 3, Location: pt(6.50, 3.40)},
		{ID: "b", Priority: 9, Location: pt(6.51, 3.41)},
		{ID: "c", Location: pt(6.52, 3.42)}, // defaults to 5
		{ID: "d", Priority: 9, Location: pt(6.53, 3.43)},
		{ID: "e", Priority: 1, Location: pt(6.54, 3.44)},
	}
	res := filterStops(stops, model.VehicleConstraints{CapacityKg: 100, MaxStops: 3})
	if len(res.Stops) != 3 {
		t.Fatalf("kept %d stops, want 3", len(res.Stops))
	}
	// b and d (9) outrank c (default 5); b precedes d by input order.
	wantOrder := []string{"b", "d", "c"}
	for i, id := range wantOrder {
		if res.Stops[i].ID != id {
			t.Fatalf("kept[%d] = %s, want %s", i, res.Stops[i].ID, id)
		}
	}
	if len(res.Skipped) != 2 {
		t.Fatalf("skipped = %v, want [a e]", res.Skipped)
	}
	summary := false
	for _, w := range res.Warnings {
		if strings.Contains(w, "exceeds vehicle limit") {
			summary = true
		}
	}
	if !summary {
		t.Fatalf("warnings %v missing truncation summary", res.Warnings)
	}
}

func TestFilterGreedyCapacityIsOrderDependent(t *testing.T) {
	// 12 + 20 fills 32 of 35; the 10 in between is what blocks the 20 in
	// reversed order. The pass must stay greedy and order-dependent.
	stops := []model.StopIn{
		{ID: "a", DemandKg: 12, Location: pt(6.50, 3.40)},
		{ID: "b", DemandKg: 20, Location: pt(6.51, 3.41)},
		{ID: "c", DemandKg: 10, Location: pt(6.52, 3.42)},
	}
	res := filterStops(stops, model.VehicleConstraints{CapacityKg: 35, MaxStops: 10})
	if got := ids(res.Stops); !equalIDs(got, []string{"a", "b"}) {
		t.Fatalf("kept %v, want [a b]", got)
	}

	reversed := []model.StopIn{stops[2], stops[1], stops[0]}
	res = filterStops(reversed, model.VehicleConstraints{CapacityKg: 35, MaxStops: 10})
	if got := ids(res.Stops); !equalIDs(got, []string{"c", "b"}) {
		t.Fatalf("reversed kept %v, want [c b]", got)
	}
}

func TestFilterCapacityWarningsPerStop(t *testing.T) {
	stops := []model.StopIn{
		{ID: "s1", DemandKg: 10, Location: pt(6.50, 3.40)},
		{ID: "s2", DemandKg: 10, Location: pt(6.51, 3.41)},
		{ID: "s3", DemandKg: 10, Location: pt(6.52, 3.42)},
		{ID: "s4", DemandKg: 10, Location: pt(6.53, 3.43)},
		{ID: "s5", DemandKg: 10, Location: pt(6.54, 3.44)},
	}
	res := filterStops(stops, model.VehicleConstraints{CapacityKg: 30, MaxStops: 10})
	if len(res.Stops) != 3 {
		t.Fatalf("kept %d, want 3", len(res.Stops))
	}
	capWarnings := 0
	for _, w := range res.Warnings {
		if strings.Contains(w, "capacity") {
			capWarnings++
		}
	}
	if capWarnings != 2 {
		t.Fatalf("capacity warnings = %d, want 2 (%v)", capWarnings, res.Warnings)
	}
	total := 0.0
	for _, s := range res.Stops {
		total += s.DemandKg
	}
	if total != 30 {
		t.Fatalf("kept demand = %.1f, want 30", total)
	}
}

func TestFilterApproximateQualityWarning(t *testing.T) {
	stops := []model.StopIn{
		{ID: "p", Location: pt(6.50, 3.40), LocationQuality: model.QualityPrecise},
		{ID: "q", Location: pt(6.51, 3.41), LocationQuality: model.QualityApproximate},
	}
	res := filterStops(stops, model.VehicleConstraints{CapacityKg: 100, MaxStops: 10})
	if len(res.Stops) != 2 {
		t.Fatalf("quality flag must not exclude stops, kept %d", len(res.Stops))
	}
	found := false
	for _, w := range res.Warnings {
		if strings.Contains(w, "approximate coordinates") {
			found = true
		}
	}
	if !found {
		t.Fatalf("warnings %v missing approximate-quality note", res.Warnings)
	}
}

func ids(stops []model.StopIn) []string {
	out := make([]string, len(stops))
	for i, s := range stops {
		out[i] = s.ID
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
