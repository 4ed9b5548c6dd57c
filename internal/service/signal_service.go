package service

import (
	"context"
	"fmt"
	"time"

	"tradewatch/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const recentSignalLimit = 20

type SignalStore interface {
	ListSignals(ctx context.Context, filter domain.SignalFilter) ([]domain.Signal, error)
}

type SignalService struct {
	tracer trace.Tracer
	store  SignalStore
}

func NewSignalService(tracer trace.Tracer, store SignalStore) *SignalService {
	return &SignalService{tracer: tracer, store: store}
}

func (s *SignalService) List(ctx context.Context, filter domain.SignalFilter) ([]domain.Signal, error) {
	_, span := s.tracer.Start(ctx, "signal-service.list")
	defer span.End()

	if s.store == nil {
		return nil, fmt.Errorf("signal service is not fully initialized")
	}
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	return s.store.ListSignals(ctx, filter)
}

// Recent returns today's signals, newest first. The day boundary is UTC
// midnight.
func (s *SignalService) Recent(ctx context.Context) ([]domain.Signal, error) {
	_, span := s.tracer.Start(ctx, "signal-service.recent")
	defer span.End()

	if s.store == nil {
		return nil, fmt.Errorf("signal service is not fully initialized")
	}
	return s.store.ListSignals(ctx, domain.SignalFilter{
		Since: time.Now().UTC().Truncate(24 * time.Hour),
		Limit: recentSignalLimit,
	})
}
