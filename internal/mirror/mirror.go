// Package mirror keeps a secondary, best-effort copy of captured signals in
// Redis so dashboards can read recent activity without touching Postgres.
package mirror

import (
	"context"
	"encoding/json"
	"fmt"

	"tradewatch/internal/domain"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
)

const (
	recentKey       = "signals:recent"
	recentCap       = 500
	channelCountKey = "signals:count:channel:%d"
)

type Mirror struct {
	client *redis.Client
	tracer trace.Tracer
}

func NewMirror(client *redis.Client, tracer trace.Tracer) *Mirror {
	return &Mirror{client: client, tracer: tracer}
}

// MirrorSignal pushes the signal onto the recent list and bumps the
// per-channel counter. The list is trimmed so it never grows past the cap.
func (m *Mirror) MirrorSignal(ctx context.Context, sig domain.Signal) error {
	if m == nil || m.client == nil {
		return nil
	}

	_, span := m.tracer.Start(ctx, "mirror.mirror-signal")
	defer span.End()

	payload, err := json.Marshal(sig)
	if err != nil {
		return fmt.Errorf("marshal signal %d: %w", sig.ID, err)
	}

	pipe := m.client.TxPipeline()
	pipe.LPush(ctx, recentKey, payload)
	pipe.LTrim(ctx, recentKey, 0, recentCap-1)
	pipe.Incr(ctx, fmt.Sprintf(channelCountKey, sig.ChannelID))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("mirror signal %d: %w", sig.ID, err)
	}
	return nil
}

// Recent returns up to limit of the most recently mirrored signals,
// newest first.
func (m *Mirror) Recent(ctx context.Context, limit int) ([]domain.Signal, error) {
	if m == nil || m.client == nil {
		return nil, nil
	}
	if limit <= 0 || limit > recentCap {
		limit = recentCap
	}

	_, span := m.tracer.Start(ctx, "mirror.recent")
	defer span.End()

	raw, err := m.client.LRange(ctx, recentKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	signals := make([]domain.Signal, 0, len(raw))
	for _, item := range raw {
		var sig domain.Signal
		if err := json.Unmarshal([]byte(item), &sig); err != nil {
			continue
		}
		signals = append(signals, sig)
	}
	return signals, nil
}

// ChannelCount reads the mirrored per-channel signal counter.
func (m *Mirror) ChannelCount(ctx context.Context, channelID int64) (int64, error) {
	if m == nil || m.client == nil {
		return 0, nil
	}
	n, err := m.client.Get(ctx, fmt.Sprintf(channelCountKey, channelID)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return n, err
}
