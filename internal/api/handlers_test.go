package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"routeengine/internal/config"
	"routeengine/internal/model"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Config{AuthMode: "dev", Solver: config.SolverConfig{Budget: 2 * time.Second, Seed: 1}}
	s, err := NewServer(cfg)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return s
}

func optimizeBody() []byte {
	req := map[string]any{
		"depot": map[string]float64{"lat": 6.45, "lng": 3.40},
		"stops": []map[string]any{
			{"id": "a", "location": map[string]float64{"lat": 6.50, "lng": 3.40}, "demandKg": 5},
			{"id": "b", "location": map[string]float64{"lat": 6.45, "lng": 3.50}, "demandKg": 5},
			{"id": "c", "location": map[string]float64{"lat": 6.40, "lng": 3.40}, "demandKg": 5},
		},
		"vehicle": map[string]any{"capacityKg": 100, "maxStops": 10},
	}
	b, _ := json.Marshal(req)
	return b
}

func TestHealthReady(t *testing.T) {
	s := newTestServer(t)
	rr := httptest.NewRecorder()
	s.HealthHandler(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != 200 {
		t.Fatalf("health: got %d", rr.Code)
	}
	rr = httptest.NewRecorder()
	s.ReadyHandler(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rr.Code != 200 {
		t.Fatalf("ready: got %d", rr.Code)
	}
}

func TestOptimizeCreatesPlan(t *testing.T) {
	s := newTestServer(t)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/routes/optimize", bytes.NewReader(optimizeBody()))
	req.Header.Set("Content-Type", "application/json")
	s.OptimizeHandler(rr, req)
	if rr.Code != 200 {
		t.Fatalf("optimize: %d (%s)", rr.Code, rr.Body.String())
	}
	var plan model.Plan
	if err := json.Unmarshal(rr.Body.Bytes(), &plan); err != nil {
		t.Fatalf("decode plan: %v", err)
	}
	if plan.ID == "" || plan.StopCount != 3 {
		t.Fatalf("plan = %+v", plan)
	}
	if len(plan.Route.OrderedStops) != 3 {
		t.Fatalf("route stops = %d, want 3", len(plan.Route.OrderedStops))
	}

	// The plan must be readable back under the same tenant.
	rr = httptest.NewRecorder()
	s.PlanByIDHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/plans/"+plan.ID, nil))
	if rr.Code != 200 {
		t.Fatalf("get plan: %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	s.PlansHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/plans", nil))
	if rr.Code != 200 {
		t.Fatalf("list plans: %d", rr.Code)
	}
}

func TestOptimizeRejectsUsageErrors(t *testing.T) {
	s := newTestServer(t)
	body := []byte(`{"depot":{"lat":6.45,"lng":3.40},"stops":[],"vehicle":{"capacityKg":0,"maxStops":0}}`)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/routes/optimize", bytes.NewReader(body))
	s.OptimizeHandler(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("zero capacity: got %d, want 400", rr.Code)
	}
	var prob Problem
	if err := json.Unmarshal(rr.Body.Bytes(), &prob); err != nil || prob.Status != 400 {
		t.Fatalf("problem body = %s", rr.Body.String())
	}
}

func TestOptimizeRejectsDuplicateStopIDs(t *testing.T) {
	s := newTestServer(t)
	body := []byte(`{"depot":{"lat":6.45,"lng":3.40},"stops":[{"id":"a","location":{"lat":6.5,"lng":3.4}},{"id":"a","location":{"lat":6.6,"lng":3.4}}],"vehicle":{"capacityKg":10,"maxStops":10}}`)
	rr := httptest.NewRecorder()
	s.OptimizeHandler(rr, httptest.NewRequest(http.MethodPost, "/v1/routes/optimize", bytes.NewReader(body)))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("duplicate ids: got %d, want 400", rr.Code)
	}
}

func TestOptimizeForbiddenForNonDispatcher(t *testing.T) {
	s := newTestServer(t)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/routes/optimize", bytes.NewReader(optimizeBody()))
	req.Header.Set("X-Role", "driver")
	s.OptimizeHandler(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("driver role: got %d, want 403", rr.Code)
	}
}

func TestPlanTenantIsolation(t *testing.T) {
	s := newTestServer(t)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/routes/optimize", bytes.NewReader(optimizeBody()))
	req.Header.Set("X-Tenant-Id", "tenant-a")
	s.OptimizeHandler(rr, req)
	if rr.Code != 200 {
		t.Fatalf("optimize: %d", rr.Code)
	}
	var plan model.Plan
	_ = json.Unmarshal(rr.Body.Bytes(), &plan)

	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/v1/plans/"+plan.ID, nil)
	req.Header.Set("X-Tenant-Id", "tenant-b")
	s.PlanByIDHandler(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("cross-tenant get: got %d, want 404", rr.Code)
	}
}

func TestSubscriptionsCRUD(t *testing.T) {
	s := newTestServer(t)
	body := []byte(`{"url":"https://example.com/hook","events":["plan.created"],"secret":"shh"}`)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/subscriptions", bytes.NewReader(body))
	s.SubscriptionsHandler(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: %d (%s)", rr.Code, rr.Body.String())
	}
	var sub model.Subscription
	if err := json.Unmarshal(rr.Body.Bytes(), &sub); err != nil || sub.ID == "" {
		t.Fatalf("decode: %v / %s", err, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	s.SubscriptionsHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/subscriptions", nil))
	if rr.Code != 200 {
		t.Fatalf("list: %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	s.SubscriptionByIDHandler(rr, httptest.NewRequest(http.MethodDelete, "/v1/subscriptions/"+sub.ID, nil))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete: %d", rr.Code)
	}
}

func TestOptimizeEnqueuesWebhook(t *testing.T) {
	s := newTestServer(t)
	body := []byte(`{"url":"https://example.com/hook","events":["plan.created"],"secret":"shh"}`)
	rr := httptest.NewRecorder()
	s.SubscriptionsHandler(rr, httptest.NewRequest(http.MethodPost, "/v1/subscriptions", bytes.NewReader(body)))
	if rr.Code != http.StatusCreated {
		t.Fatalf("subscribe: %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	s.OptimizeHandler(rr, httptest.NewRequest(http.MethodPost, "/v1/routes/optimize", bytes.NewReader(optimizeBody())))
	if rr.Code != 200 {
		t.Fatalf("optimize: %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	s.WebhookDeliveriesHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/admin/webhook-deliveries", nil))
	if rr.Code != 200 {
		t.Fatalf("deliveries: %d", rr.Code)
	}
	var resp struct {
		Items []map[string]any `json:"items"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil || len(resp.Items) != 1 {
		t.Fatalf("deliveries = %s", rr.Body.String())
	}
	if resp.Items[0]["eventType"] != "plan.created" {
		t.Fatalf("delivery = %+v", resp.Items[0])
	}
}

func TestOptimizePublishesPlanEvent(t *testing.T) {
	s := newTestServer(t)
	ch := s.Broker.Subscribe(TopicAll)

	rr := httptest.NewRecorder()
	s.OptimizeHandler(rr, httptest.NewRequest(http.MethodPost, "/v1/routes/optimize", bytes.NewReader(optimizeBody())))
	if rr.Code != 200 {
		t.Fatalf("optimize: %d", rr.Code)
	}

	select {
	case evt := <-ch:
		if evt.Type != "plan.created" {
			t.Fatalf("event type = %s", evt.Type)
		}
		if evt.Data["planId"] == "" {
			t.Fatalf("event data = %+v", evt.Data)
		}
	case <-time.After(time.Second):
		t.Fatal("no plan event published")
	}
}
