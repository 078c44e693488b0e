package checkout

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/muhammadiwa/youtube-automation-sub003/pkg/checkout"
)

// Service manages checkout sessions, one orchestrator per session. It is the
// server-side registry the HTTP handlers operate on.
type Service struct {
	cfg       checkout.Config
	plans     checkout.PlanSource
	gateways  checkout.GatewaySource
	converter checkout.Converter
	validator checkout.DiscountValidator
	payments  checkout.SessionCreator
	log       *slog.Logger

	mu       sync.RWMutex
	sessions map[uuid.UUID]*checkout.Orchestrator
}

// ServiceOption configures the service.
type ServiceOption func(*Service)

// WithLogger sets the logger passed through to each orchestrator.
func WithLogger(log *slog.Logger) ServiceOption {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// NewService creates the session registry. Nil dependency panics surface
// from the orchestrator constructor on first session creation; the registry
// itself holds no state worth validating earlier.
func NewService(cfg checkout.Config, plans checkout.PlanSource, gateways checkout.GatewaySource, converter checkout.Converter, validator checkout.DiscountValidator, payments checkout.SessionCreator, opts ...ServiceOption) *Service {
	s := &Service{
		cfg:       cfg,
		plans:     plans,
		gateways:  gateways,
		converter: converter,
		validator: validator,
		payments:  payments,
		log:       slog.New(slog.DiscardHandler),
		sessions:  make(map[uuid.UUID]*checkout.Orchestrator),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateSession starts a checkout for the given plan and cycle and registers
// it under a fresh session id. The orchestrator is registered even when
// loading fails so the client can render the load error state.
func (s *Service) CreateSession(ctx context.Context, planSlug string, cycle checkout.BillingCycle) (uuid.UUID, *checkout.Orchestrator, error) {
	orch := checkout.New(s.cfg, s.plans, s.gateways, s.converter, s.validator, s.payments,
		checkout.WithLogger(s.log))

	id := uuid.New()

	err := orch.Enter(ctx, planSlug, cycle)

	s.mu.Lock()
	s.sessions[id] = orch
	s.mu.Unlock()

	return id, orch, err
}

// Session returns the orchestrator registered under id.
func (s *Service) Session(id uuid.UUID) (*checkout.Orchestrator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	orch, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return orch, nil
}

// DropSession removes a finished session from the registry.
func (s *Service) DropSession(id uuid.UUID) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}
