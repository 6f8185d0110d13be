// Package webhooks queues and delivers signed event callbacks to tenant
// subscriptions.
package webhooks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"routeengine/internal/store"
)

// Event types emitted by the API.
const (
	EventPlanCreated = "plan.created"
)

type Publisher struct {
	Store store.Store
}

func NewPublisher(s store.Store) *Publisher {
	return &Publisher{Store: s}
}

// Emit enqueues one delivery per subscription matching the tenant and event
// type. Failures here are deliberately silent; webhook delivery is best-effort
// and never blocks the request that triggered it.
func (p *Publisher) Emit(ctx context.Context, tenantID, eventType string, data any) {
	subs, err := p.Store.GetSubscriptionsForEvent(ctx, tenantID, eventType)
	if err != nil || len(subs) == 0 {
		return
	}
	payload := map[string]any{
		"id":       fmt.Sprintf("evt_%d", time.Now().UnixNano()),
		"type":     eventType,
		"tenantId": tenantID,
		"ts":       time.Now().UTC().Format(time.RFC3339),
		"data":     data,
	}
	body, _ := json.Marshal(payload)
	for _, s := range subs {
		_, _ = p.Store.EnqueueWebhook(ctx, tenantID, s.ID, eventType, s.URL, s.Secret, body)
	}
}
