package store

import (
	"context"
	"errors"
	"time"

	"routeengine/internal/model"
)

// Store is the persistence interface used by the API server. Two
// implementations exist: Memory for development and tests, Postgres when
// DATABASE_URL is set.
type Store interface {
	// Plans
	CreatePlan(ctx context.Context, plan model.Plan) error
	GetPlan(ctx context.Context, tenantID, id string) (model.Plan, error)
	ListPlans(ctx context.Context, tenantID, cursor string, limit int) ([]model.Plan, string, error)

	// Subscriptions
	CreateSubscription(ctx context.Context, req model.SubscriptionRequest) (model.Subscription, error)
	GetSubscriptionsForEvent(ctx context.Context, tenantID, eventType string) ([]model.Subscription, error)
	ListSubscriptions(ctx context.Context, tenantID, cursor string, limit int) ([]model.Subscription, string, error)
	DeleteSubscription(ctx context.Context, tenantID, id string) error

	// Webhook deliveries
	EnqueueWebhook(ctx context.Context, tenantID, subscriptionID, eventType, url, secret string, payload []byte) (string, error)
	FetchDueWebhookDeliveries(ctx context.Context, limit int) ([]WebhookDelivery, error)
	MarkWebhookDelivery(ctx context.Context, id string, success bool, nextAttemptAt *time.Time, lastError string, responseCode int, latencyMs int) error
	FailWebhookDelivery(ctx context.Context, id string, lastError string, responseCode int, latencyMs int) error
	ListWebhookDeliveries(ctx context.Context, tenantID, status, cursor string, limit int) ([]WebhookDelivery, string, error)
	RetryWebhookDelivery(ctx context.Context, tenantID, id string) error

	// Ping reports backend health for readiness checks.
	Ping(ctx context.Context) error
}

var ErrNotFound = errors.New("not found")
