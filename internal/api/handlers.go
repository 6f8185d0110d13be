package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"routeengine/internal/buildinfo"
	"routeengine/internal/metrics"
	"routeengine/internal/model"
	"routeengine/internal/opt"
	"routeengine/internal/store"
	"routeengine/internal/webhooks"
)

// OptimizeHandler handles POST /v1/routes/optimize. It runs the optimizer,
// persists the result as a Plan, and notifies brokers and webhooks.
func (s *Server) OptimizeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	p := s.getPrincipal(r)
	if !isDispatcher(p) {
		writeProblem(w, http.StatusForbidden, "Forbidden", "dispatcher or admin required", r.URL.Path)
		return
	}
	var req model.OptimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
		return
	}
	if err := validateOptimizeRequest(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid optimize request", err.Error(), r.URL.Path)
		return
	}
	if req.TenantID == "" {
		req.TenantID = p.Tenant
	}

	start := time.Now()
	route, err := s.Opt.Optimize(r.Context(), req)
	metrics.OptimizeDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		var ue *opt.UsageError
		if errors.As(err, &ue) {
			writeProblem(w, http.StatusBadRequest, "Invalid optimize request", ue.Error(), r.URL.Path)
			return
		}
		writeProblem(w, http.StatusInternalServerError, "Optimize failed", err.Error(), r.URL.Path)
		return
	}
	metrics.OptimizeRequests.WithLabelValues(route.Method).Inc()
	if s.Opt.Solver != nil && route.Method == model.MethodHeuristic {
		metrics.SolverFallbacks.Inc()
	}

	plan := model.Plan{
		ID:        uuid.New().String(),
		TenantID:  req.TenantID,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		StopCount: len(route.OrderedStops),
		Route:     route,
	}
	if err := s.Store.CreatePlan(r.Context(), plan); err != nil {
		writeProblem(w, http.StatusInternalServerError, "Persist plan failed", err.Error(), r.URL.Path)
		return
	}

	evt := PlanEvent{Type: webhooks.EventPlanCreated, Data: map[string]any{
		"planId":          plan.ID,
		"tenantId":        plan.TenantID,
		"stopCount":       plan.StopCount,
		"method":          route.Method,
		"totalDistanceKm": route.TotalDistanceKm,
	}}
	s.Broker.Publish(TopicAll, evt)
	s.Broker.Publish(plan.ID, evt)
	s.Pub.Emit(r.Context(), plan.TenantID, webhooks.EventPlanCreated, evt.Data)

	writeJSON(w, http.StatusOK, plan)
}

// PlansHandler handles GET /v1/plans.
func (s *Server) PlansHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	p := s.getPrincipal(r)
	cursor := r.URL.Query().Get("cursor")
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	items, next, err := s.Store.ListPlans(r.Context(), p.Tenant, cursor, limit)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "List plans failed", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "nextCursor": next})
}

// PlanByIDHandler handles GET /v1/plans/{id}.
func (s *Server) PlanByIDHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/v1/plans/")
	if id == "" || strings.Contains(id, "/") {
		writeProblem(w, http.StatusNotFound, "Not Found", "", r.URL.Path)
		return
	}
	p := s.getPrincipal(r)
	plan, err := s.Store.GetPlan(r.Context(), p.Tenant, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "Plan not found", "", r.URL.Path)
			return
		}
		writeProblem(w, http.StatusInternalServerError, "Get plan failed", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

// SubscriptionsHandler handles POST/GET /v1/subscriptions.
func (s *Server) SubscriptionsHandler(w http.ResponseWriter, r *http.Request) {
	p := s.getPrincipal(r)
	switch r.Method {
	case http.MethodPost:
		var req model.SubscriptionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
			return
		}
		if req.URL == "" || len(req.Events) == 0 {
			writeProblem(w, http.StatusBadRequest, "Invalid subscription", "url and events are required", r.URL.Path)
			return
		}
		if req.TenantID == "" {
			req.TenantID = p.Tenant
		}
		sub, err := s.Store.CreateSubscription(r.Context(), req)
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "Create subscription failed", err.Error(), r.URL.Path)
			return
		}
		writeJSON(w, http.StatusCreated, sub)
	case http.MethodGet:
		cursor := r.URL.Query().Get("cursor")
		limit := 100
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				limit = n
			}
		}
		items, next, err := s.Store.ListSubscriptions(r.Context(), p.Tenant, cursor, limit)
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "List subscriptions failed", err.Error(), r.URL.Path)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items, "nextCursor": next})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// SubscriptionByIDHandler handles DELETE /v1/subscriptions/{id}.
func (s *Server) SubscriptionByIDHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/v1/subscriptions/")
	p := s.getPrincipal(r)
	if err := s.Store.DeleteSubscription(r.Context(), p.Tenant, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "Subscription not found", "", r.URL.Path)
			return
		}
		writeProblem(w, http.StatusInternalServerError, "Delete subscription failed", err.Error(), r.URL.Path)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// WebhookDeliveriesHandler handles GET /v1/admin/webhook-deliveries.
func (s *Server) WebhookDeliveriesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	p := s.getPrincipal(r)
	if !isAdmin(p) {
		writeProblem(w, http.StatusForbidden, "Forbidden", "admin required", r.URL.Path)
		return
	}
	status := r.URL.Query().Get("status")
	cursor := r.URL.Query().Get("cursor")
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	items, next, err := s.Store.ListWebhookDeliveries(r.Context(), p.Tenant, status, cursor, limit)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "List deliveries failed", err.Error(), r.URL.Path)
		return
	}
	out := make([]map[string]any, 0, len(items))
	for _, d := range items {
		item := map[string]any{
			"id": d.ID, "eventType": d.EventType, "status": d.Status,
			"attempts": d.Attempts, "url": d.URL,
		}
		if !d.NextAttemptAt.IsZero() {
			item["nextAttemptAt"] = d.NextAttemptAt
		}
		if d.LastError != "" {
			item["lastError"] = d.LastError
		}
		out = append(out, item)
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out, "nextCursor": next})
}

// WebhookDeliveryRetryHandler handles POST /v1/admin/webhook-deliveries/{id}/retry.
func (s *Server) WebhookDeliveryRetryHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost || !strings.HasSuffix(r.URL.Path, "/retry") {
		writeProblem(w, http.StatusNotFound, "Not Found", "", r.URL.Path)
		return
	}
	p := s.getPrincipal(r)
	if !isAdmin(p) {
		writeProblem(w, http.StatusForbidden, "Forbidden", "admin required", r.URL.Path)
		return
	}
	id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/v1/admin/webhook-deliveries/"), "/retry")
	if err := s.Store.RetryWebhookDelivery(r.Context(), p.Tenant, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "Delivery not found", "", r.URL.Path)
			return
		}
		writeProblem(w, http.StatusInternalServerError, "Retry failed", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "status": "pending"})
}

// HealthHandler handles GET /healthz.
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "build": buildinfo.Info()})
}

// ReadyHandler handles GET /readyz; it fails when the store is unreachable.
func (s *Server) ReadyHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.Store.Ping(r.Context()); err != nil {
		writeProblem(w, http.StatusServiceUnavailable, "Not ready", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}
