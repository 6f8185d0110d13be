package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"routeengine/internal/model"
)

// Memory is the in-memory store used when no DATABASE_URL is set.
type Memory struct {
	mu         sync.Mutex
	plans      map[string]model.Plan           // id -> plan
	plansByTen map[string][]string             // tenant -> plan ids, insertion order
	subs       map[string][]model.Subscription // tenant -> subscriptions
	deliveries map[string]*WebhookDelivery     // id -> delivery state
	delivByTen map[string][]string             // tenant -> delivery ids
}

func NewMemory() *Memory {
	return &Memory{
		plans:      map[string]model.Plan{},
		plansByTen: map[string][]string{},
		subs:       map[string][]model.Subscription{},
		deliveries: map[string]*WebhookDelivery{},
		delivByTen: map[string][]string{},
	}
}

func (m *Memory) Ping(ctx context.Context) error { return nil }

func (m *Memory) CreatePlan(ctx context.Context, plan model.Plan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plans[plan.ID] = plan
	m.plansByTen[plan.TenantID] = append(m.plansByTen[plan.TenantID], plan.ID)
	return nil
}

func (m *Memory) GetPlan(ctx context.Context, tenantID, id string) (model.Plan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.plans[id]
	if !ok || p.TenantID != tenantID {
		return model.Plan{}, ErrNotFound
	}
	return p, nil
}

func (m *Memory) ListPlans(ctx context.Context, tenantID, cursor string, limit int) ([]model.Plan, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := m.plansByTen[tenantID]
	start := 0
	if cursor != "" {
		for i, id := range ids {
			if id == cursor {
				start = i + 1
				break
			}
		}
	}
	if limit <= 0 {
		limit = 100
	}
	out := []model.Plan{}
	var last string
	for i := start; i < len(ids) && len(out) < limit; i++ {
		out = append(out, m.plans[ids[i]])
		last = ids[i]
	}
	next := ""
	if len(out) == limit && start+len(out) < len(ids) {
		next = last
	}
	return out, next, nil
}

func (m *Memory) CreateSubscription(ctx context.Context, req model.SubscriptionRequest) (model.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := model.Subscription{ID: uuid.New().String(), TenantID: req.TenantID, URL: req.URL, Events: req.Events, Secret: req.Secret}
	m.subs[req.TenantID] = append(m.subs[req.TenantID], s)
	return s, nil
}

func (m *Memory) GetSubscriptionsForEvent(ctx context.Context, tenantID, eventType string) ([]model.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Subscription
	for _, s := range m.subs[tenantID] {
		for _, e := range s.Events {
			if e == eventType {
				out = append(out, s)
				break
			}
		}
	}
	return out, nil
}

func (m *Memory) ListSubscriptions(ctx context.Context, tenantID, cursor string, limit int) ([]model.Subscription, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.subs[tenantID]
	start := 0
	if cursor != "" {
		for i := range list {
			if list[i].ID == cursor {
				start = i + 1
				break
			}
		}
	}
	if limit <= 0 {
		limit = 100
	}
	end := start + limit
	if end > len(list) {
		end = len(list)
	}
	items := append([]model.Subscription(nil), list[start:end]...)
	next := ""
	if end < len(list) && end > start {
		next = list[end-1].ID
	}
	return items, next, nil
}

func (m *Memory) DeleteSubscription(ctx context.Context, tenantID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	arr := m.subs[tenantID]
	out := make([]model.Subscription, 0, len(arr))
	found := false
	for _, s := range arr {
		if s.ID == id {
			found = true
			continue
		}
		out = append(out, s)
	}
	if !found {
		return ErrNotFound
	}
	m.subs[tenantID] = out
	return nil
}

func (m *Memory) EnqueueWebhook(ctx context.Context, tenantID, subscriptionID, eventType, url, secret string, payload []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New().String()
	m.deliveries[id] = &WebhookDelivery{
		ID: id, TenantID: tenantID, SubscriptionID: subscriptionID,
		EventType: eventType, URL: url, Secret: secret, Payload: payload,
		Status: "pending", NextAttemptAt: time.Now(),
	}
	m.delivByTen[tenantID] = append(m.delivByTen[tenantID], id)
	return id, nil
}

func (m *Memory) FetchDueWebhookDeliveries(ctx context.Context, limit int) ([]WebhookDelivery, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	out := []WebhookDelivery{}
	for _, ids := range m.delivByTen {
		for _, id := range ids {
			d := m.deliveries[id]
			if d == nil {
				continue
			}
			if (d.Status == "pending" || d.Status == "retry") && !d.NextAttemptAt.After(now) {
				out = append(out, *d)
				if limit > 0 && len(out) >= limit {
					return out, nil
				}
			}
		}
	}
	return out, nil
}

func (m *Memory) MarkWebhookDelivery(ctx context.Context, id string, success bool, nextAttemptAt *time.Time, lastError string, responseCode int, latencyMs int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d := m.deliveries[id]
	if d == nil {
		return ErrNotFound
	}
	d.Attempts++
	d.ResponseCode = responseCode
	d.LatencyMs = latencyMs
	if success {
		d.Status = "delivered"
		d.LastError = ""
		return nil
	}
	d.Status = "retry"
	d.LastError = lastError
	if nextAttemptAt != nil {
		d.NextAttemptAt = *nextAttemptAt
	} else {
		d.NextAttemptAt = time.Now().Add(time.Minute)
	}
	return nil
}

func (m *Memory) FailWebhookDelivery(ctx context.Context, id string, lastError string, responseCode int, latencyMs int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d := m.deliveries[id]
	if d == nil {
		return ErrNotFound
	}
	d.Attempts++
	d.Status = "failed"
	d.LastError = lastError
	d.ResponseCode = responseCode
	d.LatencyMs = latencyMs
	return nil
}

func (m *Memory) ListWebhookDeliveries(ctx context.Context, tenantID, status, cursor string, limit int) ([]WebhookDelivery, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit <= 0 {
		limit = 100
	}
	ids := m.delivByTen[tenantID]
	start := 0
	if cursor != "" {
		for i, id := range ids {
			if id == cursor {
				start = i + 1
				break
			}
		}
	}
	out := []WebhookDelivery{}
	var last string
	for i := start; i < len(ids) && len(out) < limit; i++ {
		d := m.deliveries[ids[i]]
		if d == nil {
			continue
		}
		if status != "" && d.Status != status {
			continue
		}
		out = append(out, *d)
		last = ids[i]
	}
	next := ""
	if len(out) == limit && start+len(out) < len(ids) {
		next = last
	}
	return out, next, nil
}

func (m *Memory) RetryWebhookDelivery(ctx context.Context, tenantID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d := m.deliveries[id]
	if d == nil || d.TenantID != tenantID {
		return ErrNotFound
	}
	d.Status = "pending"
	d.NextAttemptAt = time.Now()
	return nil
}
