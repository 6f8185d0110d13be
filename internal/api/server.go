// Package api implements the HTTP surface of the route engine service.
package api

import (
	"net/http"

	"routeengine/internal/auth"
	"routeengine/internal/config"
	"routeengine/internal/opt"
	"routeengine/internal/store"
	"routeengine/internal/webhooks"
)

type Server struct {
	Cfg    config.Config
	Store  store.Store
	Pub    *webhooks.Publisher
	Auth   *auth.Verifier
	Broker EventBroker
	Opt    *opt.Optimizer
}

// NewServer wires the service from config. Without DATABASE_URL the store is
// in-memory; without REDIS_URL the event broker is in-process.
func NewServer(cfg config.Config) (*Server, error) {
	var s store.Store
	if cfg.DatabaseURL == "" {
		s = store.NewMemory()
	} else {
		sp, err := store.NewPostgres(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		s = sp
	}

	var broker EventBroker
	if cfg.RedisURL != "" {
		rb, err := NewRedisBroker(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		broker = rb
	} else {
		broker = NewBroker()
	}

	var solver opt.Solver
	if !cfg.Solver.Disabled {
		solver = opt.NewAnnealer()
	}
	optimizer := opt.New(solver)
	optimizer.Budget = cfg.Solver.Budget
	optimizer.Seed = cfg.Solver.Seed

	return &Server{
		Cfg:    cfg,
		Store:  s,
		Pub:    webhooks.NewPublisher(s),
		Auth:   auth.NewVerifier(cfg.AuthMode, cfg.AuthSecret),
		Broker: broker,
		Opt:    optimizer,
	}, nil
}

// NewWebhookWorker creates the background delivery worker.
func (s *Server) NewWebhookWorker() *webhooks.Worker {
	return webhooks.NewWorker(s.Store, s.Cfg.Webhook.MaxAttempts)
}

// Routes registers every handler on mux.
func (s *Server) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/routes/optimize", s.OptimizeHandler)
	mux.HandleFunc("/v1/plans", s.PlansHandler)
	mux.HandleFunc("/v1/plans/", s.PlanByIDHandler)
	mux.HandleFunc("/v1/plans/events/stream", s.PlanEventsSSEHandler)
	mux.HandleFunc("/v1/plans/events/ws", s.PlanEventsWSHandler)
	mux.HandleFunc("/v1/subscriptions", s.SubscriptionsHandler)
	mux.HandleFunc("/v1/subscriptions/", s.SubscriptionByIDHandler)
	mux.HandleFunc("/v1/admin/webhook-deliveries", s.WebhookDeliveriesHandler)
	mux.HandleFunc("/v1/admin/webhook-deliveries/", s.WebhookDeliveryRetryHandler)
	mux.HandleFunc("/healthz", s.HealthHandler)
	mux.HandleFunc("/readyz", s.ReadyHandler)
}
