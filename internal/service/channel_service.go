package service

import (
	"context"
	"errors"
	"fmt"

	"tradewatch/internal/domain"
	"tradewatch/internal/monitor"

	"go.opentelemetry.io/otel/trace"
)

var (
	ErrChannelExists   = errors.New("channel already registered")
	ErrChannelNotFound = errors.New("channel not found")
	ErrChannelRunning  = errors.New("channel monitor already running")
)

type ChannelStore interface {
	InsertChannel(ctx context.Context, ch *domain.Channel) error
	GetChannel(ctx context.Context, id int64) (*domain.Channel, error)
	GetChannelByUsername(ctx context.Context, username string) (*domain.Channel, error)
	ListChannels(ctx context.Context) ([]domain.Channel, error)
	DeleteChannel(ctx context.Context, id int64) error
	Stats(ctx context.Context) (domain.Stats, error)
}

type MonitorSupervisor interface {
	StartChannel(channelID int64, username, name string)
	StopChannel(channelID int64)
	IsRunning(channelID int64) bool
}

type ChannelService struct {
	tracer     trace.Tracer
	store      ChannelStore
	supervisor MonitorSupervisor
}

func NewChannelService(tracer trace.Tracer, store ChannelStore, supervisor MonitorSupervisor) *ChannelService {
	return &ChannelService{tracer: tracer, store: store, supervisor: supervisor}
}

// Register adds a channel in the stopped state. Monitoring starts only on an
// explicit Start call.
func (s *ChannelService) Register(ctx context.Context, name, username string) (*domain.Channel, error) {
	_, span := s.tracer.Start(ctx, "channel-service.register")
	defer span.End()

	username = monitor.NormalizeHandle(username)
	if username == "" {
		return nil, fmt.Errorf("channel username is required")
	}
	if name == "" {
		name = username
	}

	existing, err := s.store.GetChannelByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("look up channel %s: %w", username, err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%s: %w", username, ErrChannelExists)
	}

	ch := &domain.Channel{
		Name:     name,
		Username: username,
		Status:   domain.ChannelStopped,
	}
	if err := s.store.InsertChannel(ctx, ch); err != nil {
		return nil, fmt.Errorf("insert channel %s: %w", username, err)
	}
	return ch, nil
}

func (s *ChannelService) List(ctx context.Context) ([]domain.Channel, error) {
	_, span := s.tracer.Start(ctx, "channel-service.list")
	defer span.End()

	return s.store.ListChannels(ctx)
}

// Start spins up a monitor for the channel. Starting an already-running
// channel is an error so the caller can distinguish it from a fresh start.
func (s *ChannelService) Start(ctx context.Context, id int64) error {
	_, span := s.tracer.Start(ctx, "channel-service.start")
	defer span.End()

	ch, err := s.store.GetChannel(ctx, id)
	if err != nil {
		return fmt.Errorf("look up channel %d: %w", id, err)
	}
	if ch == nil {
		return fmt.Errorf("channel %d: %w", id, ErrChannelNotFound)
	}
	if s.supervisor.IsRunning(id) {
		return fmt.Errorf("channel %d: %w", id, ErrChannelRunning)
	}

	s.supervisor.StartChannel(ch.ID, ch.Username, ch.Name)
	return nil
}

// Stop halts the channel's monitor. Stopping a channel that is not running is
// a no-op, not an error.
func (s *ChannelService) Stop(ctx context.Context, id int64) error {
	_, span := s.tracer.Start(ctx, "channel-service.stop")
	defer span.End()

	ch, err := s.store.GetChannel(ctx, id)
	if err != nil {
		return fmt.Errorf("look up channel %d: %w", id, err)
	}
	if ch == nil {
		return fmt.Errorf("channel %d: %w", id, ErrChannelNotFound)
	}

	s.supervisor.StopChannel(id)
	return nil
}

// Remove stops any running monitor for the channel and deletes it along with
// its signals.
func (s *ChannelService) Remove(ctx context.Context, id int64) error {
	_, span := s.tracer.Start(ctx, "channel-service.remove")
	defer span.End()

	ch, err := s.store.GetChannel(ctx, id)
	if err != nil {
		return fmt.Errorf("look up channel %d: %w", id, err)
	}
	if ch == nil {
		return fmt.Errorf("channel %d: %w", id, ErrChannelNotFound)
	}

	s.supervisor.StopChannel(id)
	if err := s.store.DeleteChannel(ctx, id); err != nil {
		return fmt.Errorf("delete channel %d: %w", id, err)
	}
	return nil
}

func (s *ChannelService) Stats(ctx context.Context) (domain.Stats, error) {
	_, span := s.tracer.Start(ctx, "channel-service.stats")
	defer span.End()

	return s.store.Stats(ctx)
}
