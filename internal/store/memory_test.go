package store

import (
	"context"
	"testing"
	"time"

	"routeengine/internal/model"
)

func TestMemoryPlanLifecycle(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	for i, id := range []string{"p1", "p2", "p3"} {
		err := m.CreatePlan(ctx, model.Plan{ID: id, TenantID: "t1", StopCount: i + 1})
		if err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}

	got, err := m.GetPlan(ctx, "t1", "p2")
	if err != nil || got.StopCount != 2 {
		t.Fatalf("get p2 = %+v, %v", got, err)
	}
	if _, err := m.GetPlan(ctx, "other", "p2"); err != ErrNotFound {
		t.Fatalf("cross-tenant get must return ErrNotFound, got %v", err)
	}

	page, next, err := m.ListPlans(ctx, "t1", "", 2)
	if err != nil || len(page) != 2 || next == "" {
		t.Fatalf("first page = %d items, next %q, err %v", len(page), next, err)
	}
	rest, next, err := m.ListPlans(ctx, "t1", next, 2)
	if err != nil || len(rest) != 1 || next != "" {
		t.Fatalf("second page = %d items, next %q, err %v", len(rest), next, err)
	}
}

func TestMemorySubscriptions(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	s, err := m.CreateSubscription(ctx, model.SubscriptionRequest{
		TenantID: "t1", URL: "https://example.com/hook", Events: []string{"plan.created"}, Secret: "shh",
	})
	if err != nil || s.ID == "" {
		t.Fatalf("create: %+v, %v", s, err)
	}

	subs, err := m.GetSubscriptionsForEvent(ctx, "t1", "plan.created")
	if err != nil || len(subs) != 1 {
		t.Fatalf("event match = %d, %v", len(subs), err)
	}
	subs, err = m.GetSubscriptionsForEvent(ctx, "t1", "plan.deleted")
	if err != nil || len(subs) != 0 {
		t.Fatalf("non-matching event = %d, %v", len(subs), err)
	}

	if err := m.DeleteSubscription(ctx, "t1", s.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := m.DeleteSubscription(ctx, "t1", s.ID); err != ErrNotFound {
		t.Fatalf("second delete = %v, want ErrNotFound", err)
	}
}

func TestMemoryWebhookQueue(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	id, err := m.EnqueueWebhook(ctx, "t1", "sub1", "plan.created", "https://example.com/hook", "shh", []byte(`{}`))
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	due, err := m.FetchDueWebhookDeliveries(ctx, 10)
	if err != nil || len(due) != 1 || due[0].ID != id {
		t.Fatalf("due = %v, %v", due, err)
	}

	// First attempt fails and is rescheduled into the future.
	next := time.Now().Add(time.Hour)
	if err := m.MarkWebhookDelivery(ctx, id, false, &next, "503", 503, 12); err != nil {
		t.Fatalf("mark retry: %v", err)
	}
	due, _ = m.FetchDueWebhookDeliveries(ctx, 10)
	if len(due) != 0 {
		t.Fatalf("rescheduled delivery must not be due, got %v", due)
	}

	// Admin retry brings it back immediately.
	if err := m.RetryWebhookDelivery(ctx, "t1", id); err != nil {
		t.Fatalf("retry: %v", err)
	}
	due, _ = m.FetchDueWebhookDeliveries(ctx, 10)
	if len(due) != 1 {
		t.Fatalf("retried delivery must be due, got %v", due)
	}

	if err := m.MarkWebhookDelivery(ctx, id, true, nil, "", 200, 8); err != nil {
		t.Fatalf("mark delivered: %v", err)
	}
	items, _, err := m.ListWebhookDeliveries(ctx, "t1", "delivered", "", 10)
	if err != nil || len(items) != 1 || items[0].Attempts != 2 {
		t.Fatalf("delivered list = %+v, %v", items, err)
	}
}
