package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"routeengine/internal/model"
)

// Postgres backs the store with a plans/subscriptions/webhook_deliveries
// schema. Plan routes are stored as JSONB; they are written once and read
// whole, so there is nothing to gain from normalizing the stop rows.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &Postgres{db: db}, nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

func (p *Postgres) CreatePlan(ctx context.Context, plan model.Plan) error {
	route, err := json.Marshal(plan.Route)
	if err != nil {
		return err
	}
	_, err = p.db.ExecContext(ctx,
		`INSERT INTO plans (id, tenant_id, created_at, stop_count, route) VALUES ($1,$2,$3,$4,$5)`,
		plan.ID, plan.TenantID, plan.CreatedAt, plan.StopCount, route)
	return err
}

func (p *Postgres) GetPlan(ctx context.Context, tenantID, id string) (model.Plan, error) {
	var plan model.Plan
	var route []byte
	var createdAt time.Time
	row := p.db.QueryRowContext(ctx,
		`SELECT id::text, tenant_id, created_at, stop_count, route FROM plans WHERE tenant_id=$1 AND id=$2`,
		tenantID, id)
	if err := row.Scan(&plan.ID, &plan.TenantID, &createdAt, &plan.StopCount, &route); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Plan{}, ErrNotFound
		}
		return model.Plan{}, err
	}
	plan.CreatedAt = createdAt.UTC().Format(time.RFC3339)
	if err := json.Unmarshal(route, &plan.Route); err != nil {
		return model.Plan{}, err
	}
	return plan, nil
}

func (p *Postgres) ListPlans(ctx context.Context, tenantID, cursor string, limit int) ([]model.Plan, string, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var rows *sql.Rows
	var err error
	if cursor != "" {
		rows, err = p.db.QueryContext(ctx,
			`SELECT id::text, tenant_id, created_at, stop_count, route FROM plans WHERE tenant_id=$1 AND id::text > $2 ORDER BY id LIMIT $3`,
			tenantID, cursor, limit)
	} else {
		rows, err = p.db.QueryContext(ctx,
			`SELECT id::text, tenant_id, created_at, stop_count, route FROM plans WHERE tenant_id=$1 ORDER BY id LIMIT $2`,
			tenantID, limit)
	}
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()
	out := []model.Plan{}
	var last string
	for rows.Next() {
		var plan model.Plan
		var route []byte
		var createdAt time.Time
		if err := rows.Scan(&plan.ID, &plan.TenantID, &createdAt, &plan.StopCount, &route); err != nil {
			return nil, "", err
		}
		plan.CreatedAt = createdAt.UTC().Format(time.RFC3339)
		if err := json.Unmarshal(route, &plan.Route); err != nil {
			return nil, "", err
		}
		out = append(out, plan)
		last = plan.ID
	}
	next := ""
	if len(out) == limit {
		next = last
	}
	return out, next, rows.Err()
}

func (p *Postgres) CreateSubscription(ctx context.Context, req model.SubscriptionRequest) (model.Subscription, error) {
	id := uuid.New().String()
	events, err := json.Marshal(req.Events)
	if err != nil {
		return model.Subscription{}, err
	}
	_, err = p.db.ExecContext(ctx,
		`INSERT INTO subscriptions (id, tenant_id, url, events, secret) VALUES ($1,$2,$3,$4,$5)`,
		id, req.TenantID, req.URL, events, req.Secret)
	if err != nil {
		return model.Subscription{}, err
	}
	return model.Subscription{ID: id, TenantID: req.TenantID, URL: req.URL, Events: req.Events, Secret: req.Secret}, nil
}

func (p *Postgres) GetSubscriptionsForEvent(ctx context.Context, tenantID, eventType string) ([]model.Subscription, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT id::text, url, events, secret FROM subscriptions WHERE tenant_id=$1 AND events @> to_jsonb(ARRAY[$2::text])`,
		tenantID, eventType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Subscription
	for rows.Next() {
		s := model.Subscription{TenantID: tenantID}
		var events []byte
		if err := rows.Scan(&s.ID, &s.URL, &events, &s.Secret); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(events, &s.Events); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (p *Postgres) ListSubscriptions(ctx context.Context, tenantID, cursor string, limit int) ([]model.Subscription, string, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var rows *sql.Rows
	var err error
	if cursor != "" {
		rows, err = p.db.QueryContext(ctx,
			`SELECT id::text, url, events, secret FROM subscriptions WHERE tenant_id=$1 AND id::text > $2 ORDER BY id LIMIT $3`,
			tenantID, cursor, limit)
	} else {
		rows, err = p.db.QueryContext(ctx,
			`SELECT id::text, url, events, secret FROM subscriptions WHERE tenant_id=$1 ORDER BY id LIMIT $2`,
			tenantID, limit)
	}
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()
	out := []model.Subscription{}
	var last string
	for rows.Next() {
		s := model.Subscription{TenantID: tenantID}
		var events []byte
		if err := rows.Scan(&s.ID, &s.URL, &events, &s.Secret); err != nil {
			return nil, "", err
		}
		if err := json.Unmarshal(events, &s.Events); err != nil {
			return nil, "", err
		}
		out = append(out, s)
		last = s.ID
	}
	next := ""
	if len(out) == limit {
		next = last
	}
	return out, next, rows.Err()
}

func (p *Postgres) DeleteSubscription(ctx context.Context, tenantID, id string) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM subscriptions WHERE tenant_id=$1 AND id=$2`, tenantID, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) EnqueueWebhook(ctx context.Context, tenantID, subscriptionID, eventType, url, secret string, payload []byte) (string, error) {
	id := uuid.New().String()
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO webhook_deliveries (id, tenant_id, subscription_id, event_type, url, secret, payload, status, attempts, next_attempt_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,'pending',0,now())`,
		id, tenantID, subscriptionID, eventType, url, secret, payload)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (p *Postgres) FetchDueWebhookDeliveries(ctx context.Context, limit int) ([]WebhookDelivery, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := p.db.QueryContext(ctx,
		`SELECT id::text, tenant_id, subscription_id::text, event_type, url, secret, payload, status, attempts
		 FROM webhook_deliveries
		 WHERE status IN ('pending','retry') AND next_attempt_at <= now()
		 ORDER BY next_attempt_at LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []WebhookDelivery
	for rows.Next() {
		var d WebhookDelivery
		if err := rows.Scan(&d.ID, &d.TenantID, &d.SubscriptionID, &d.EventType, &d.URL, &d.Secret, &d.Payload, &d.Status, &d.Attempts); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (p *Postgres) MarkWebhookDelivery(ctx context.Context, id string, success bool, nextAttemptAt *time.Time, lastError string, responseCode int, latencyMs int) error {
	if success {
		_, err := p.db.ExecContext(ctx,
			`UPDATE webhook_deliveries SET status='delivered', attempts=attempts+1, last_error='', response_code=$2, latency_ms=$3, delivered_at=now() WHERE id=$1`,
			id, responseCode, latencyMs)
		return err
	}
	next := time.Now().Add(time.Minute)
	if nextAttemptAt != nil {
		next = *nextAttemptAt
	}
	_, err := p.db.ExecContext(ctx,
		`UPDATE webhook_deliveries SET status='retry', attempts=attempts+1, next_attempt_at=$2, last_error=$3, response_code=$4, latency_ms=$5 WHERE id=$1`,
		id, next, lastError, responseCode, latencyMs)
	return err
}

func (p *Postgres) FailWebhookDelivery(ctx context.Context, id string, lastError string, responseCode int, latencyMs int) error {
	_, err := p.db.ExecContext(ctx,
		`UPDATE webhook_deliveries SET status='failed', attempts=attempts+1, last_error=$2, response_code=$3, latency_ms=$4 WHERE id=$1`,
		id, lastError, responseCode, latencyMs)
	return err
}

func (p *Postgres) ListWebhookDeliveries(ctx context.Context, tenantID, status, cursor string, limit int) ([]WebhookDelivery, string, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	q := `SELECT id::text, tenant_id, subscription_id::text, event_type, url, status, attempts, next_attempt_at, last_error, response_code, latency_ms
	      FROM webhook_deliveries WHERE tenant_id=$1`
	args := []any{tenantID}
	if status != "" {
		args = append(args, status)
		q += ` AND status=$2`
	}
	if cursor != "" {
		args = append(args, cursor)
		q += ` AND id::text > $` + strconv.Itoa(len(args))
	}
	args = append(args, limit)
	q += ` ORDER BY id LIMIT $` + strconv.Itoa(len(args))
	rows, err := p.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()
	out := []WebhookDelivery{}
	var last string
	for rows.Next() {
		var d WebhookDelivery
		var lastErr sql.NullString
		var nextAt sql.NullTime
		if err := rows.Scan(&d.ID, &d.TenantID, &d.SubscriptionID, &d.EventType, &d.URL, &d.Status, &d.Attempts, &nextAt, &lastErr, &d.ResponseCode, &d.LatencyMs); err != nil {
			return nil, "", err
		}
		d.LastError = lastErr.String
		if nextAt.Valid {
			d.NextAttemptAt = nextAt.Time
		}
		out = append(out, d)
		last = d.ID
	}
	next := ""
	if len(out) == limit {
		next = last
	}
	return out, next, rows.Err()
}

func (p *Postgres) RetryWebhookDelivery(ctx context.Context, tenantID, id string) error {
	res, err := p.db.ExecContext(ctx,
		`UPDATE webhook_deliveries SET status='pending', next_attempt_at=now() WHERE tenant_id=$1 AND id=$2`,
		tenantID, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
