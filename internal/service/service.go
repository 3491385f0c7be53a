package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"shipledger/backend/internal/domain"
	"shipledger/backend/internal/logger"
	"shipledger/backend/internal/metrics"
	"shipledger/backend/internal/pricing"
	"shipledger/backend/internal/store"
	"shipledger/backend/internal/xid"
)

var (
	ErrInvalidExchangeRate  = fmt.Errorf("%w: exchange rate must be greater than 1", store.ErrInvalidTransaction)
	ErrUnknownPaymentMethod = fmt.Errorf("%w: unknown payment method", store.ErrInvalidTransaction)
	ErrInsufficientFunds    = fmt.Errorf("%w: insufficient balance", store.ErrInvalidTransaction)
	ErrConfirmationRequired = fmt.Errorf("%w: confirmation required", store.ErrInvalidTransaction)
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

// Service is the ledger core. Every public mutation runs inside one
// Repository.InTx, so a failure at any step leaves no partial writes.
type Service struct {
	repo    store.Repository
	pricing *pricing.Provider
	metrics *metrics.Ledger
	log     zerolog.Logger
	now     func() time.Time
}

func New(repo store.Repository, provider *pricing.Provider, ledgerMetrics *metrics.Ledger) *Service {
	if provider == nil {
		provider = pricing.NewProvider(repo, nil, 0)
	}

	return &Service{
		repo:    repo,
		pricing: provider,
		metrics: ledgerMetrics,
		log:     logger.WithComponent("service"),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Pricing returns the PricingContext callers pass into rate-sensitive
// operations.
func (s *Service) Pricing(ctx context.Context) (domain.PricingContext, error) {
	return s.pricing.Current(ctx)
}

func (s *Service) run(ctx context.Context, operation string, fn func(tx store.Tx) error) error {
	startedAt := time.Now()
	err := s.repo.InTx(ctx, fn)
	s.metrics.Observe(operation, startedAt, err)
	if err != nil && metrics.Classify(err) == metrics.ResultError {
		s.log.Error().Err(err).Str("operation", operation).Msg("ledger operation failed")
	}
	return err
}

func (s *Service) ListAuditLogs(ctx context.Context, limit int) ([]domain.AuditLog, error) {
	if limit < 1 || limit > 500 {
		limit = 100
	}
	return s.repo.ListAuditLogs(ctx, limit)
}

func (s *Service) logAudit(ctx context.Context, action string, entityType string, entityID string, detail string) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		actor = domain.Actor{Username: "system", Role: "system"}
	}

	if err := s.repo.CreateAuditLog(ctx, domain.AuditLog{
		ID:            xid.New("audit"),
		ActorUsername: actor.Username,
		ActorRole:     actor.Role,
		Action:        action,
		EntityType:    entityType,
		EntityID:      entityID,
		Detail:        detail,
		CreatedAt:     s.now(),
	}); err != nil {
		s.log.Warn().Err(err).
			Str("action", action).
			Str("entity", entityType+"/"+entityID).
			Msg("failed to write audit log")
	}
}

// managerID picks the explicit manager, then the calling actor, then system.
func managerID(ctx context.Context, explicit string) string {
	if explicit = strings.TrimSpace(explicit); explicit != "" {
		return explicit
	}
	if actor, ok := ActorFromContext(ctx); ok && actor.Username != "" {
		return actor.Username
	}
	return "system"
}

func ignoreNotFound(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	return err
}
