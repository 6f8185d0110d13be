package store

import "time"

// WebhookDelivery is one queued webhook attempt and its retry state.
type WebhookDelivery struct {
	ID             string
	TenantID       string
	SubscriptionID string
	EventType      string
	URL            string
	Secret         string
	Payload        []byte
	Status         string // pending, retry, delivered, failed
	Attempts       int
	NextAttemptAt  time.Time
	LastError      string
	ResponseCode   int
	LatencyMs      int
}
