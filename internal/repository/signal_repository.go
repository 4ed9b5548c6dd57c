package repository

import (
	"context"
	"fmt"
	"strings"

	"tradewatch/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

type SignalRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewSignalRepository(pool PgxPool, tracer trace.Tracer) *SignalRepository {
	return &SignalRepository{pool: pool, tracer: tracer}
}

func (r *SignalRepository) RunMigrations(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS signals (
			id BIGSERIAL PRIMARY KEY,
			channel_id BIGINT NOT NULL REFERENCES channels(id) ON DELETE CASCADE,
			channel_name TEXT NOT NULL,
			action TEXT NOT NULL,
			instrument TEXT NOT NULL,
			entry_price DOUBLE PRECISION,
			stop_loss DOUBLE PRECISION,
			take_profits DOUBLE PRECISION[] NOT NULL DEFAULT '{}',
			origin TEXT NOT NULL,
			raw_text TEXT NOT NULL DEFAULT '',
			message_id BIGINT NOT NULL DEFAULT 0,
			message_date TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_signals_channel_created ON signals (channel_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_signals_created ON signals (created_at DESC)`,
	}
	for _, stmt := range stmts {
		if _, err := r.pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertSignal writes the signal and bumps the owning channel's counter in a
// single statement, so the two can never drift apart.
func (r *SignalRepository) InsertSignal(ctx context.Context, sig *domain.Signal) (int64, error) {
	_, span := r.tracer.Start(ctx, "signal-repo.insert-signal")
	defer span.End()

	takeProfits := sig.TakeProfits
	if takeProfits == nil {
		takeProfits = []float64{}
	}

	var id int64
	err := r.pool.QueryRow(ctx,
		`WITH bump AS (
		    UPDATE channels
		       SET total_signals = total_signals + 1,
		           last_checked = NOW()
		     WHERE id = $1
		 )
		 INSERT INTO signals (channel_id, channel_name, action, instrument, entry_price,
		                      stop_loss, take_profits, origin, raw_text, message_id, message_date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING id`,
		sig.ChannelID,
		sig.ChannelName,
		string(sig.Action),
		sig.Instrument,
		sig.EntryPrice,
		sig.StopLoss,
		takeProfits,
		string(sig.Origin),
		sig.RawText,
		sig.MessageID,
		sig.MessageDate.UTC(),
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *SignalRepository) ListSignals(ctx context.Context, filter domain.SignalFilter) ([]domain.Signal, error) {
	_, span := r.tracer.Start(ctx, "signal-repo.list-signals")
	defer span.End()

	args := make([]any, 0, 3)
	var sb strings.Builder
	sb.WriteString(`SELECT id, channel_id, channel_name, action, instrument, entry_price,
	       stop_loss, take_profits, origin, raw_text, message_id, created_at
	FROM signals
	WHERE 1=1`)

	if filter.ChannelID > 0 {
		args = append(args, filter.ChannelID)
		sb.WriteString(fmt.Sprintf(" AND channel_id = $%d", len(args)))
	}
	if !filter.Since.IsZero() {
		args = append(args, filter.Since.UTC())
		sb.WriteString(fmt.Sprintf(" AND created_at >= $%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	args = append(args, limit)
	sb.WriteString(fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args)))

	rows, err := r.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	signals := make([]domain.Signal, 0, limit)
	for rows.Next() {
		var s domain.Signal
		var action string
		var origin string

		if err := rows.Scan(
			&s.ID,
			&s.ChannelID,
			&s.ChannelName,
			&action,
			&s.Instrument,
			&s.EntryPrice,
			&s.StopLoss,
			&s.TakeProfits,
			&origin,
			&s.RawText,
			&s.MessageID,
			&s.CreatedAt,
		); err != nil {
			return nil, err
		}
		s.Action = domain.SignalAction(action)
		s.Origin = domain.SignalOrigin(origin)
		s.CreatedAt = s.CreatedAt.UTC()
		signals = append(signals, s)
	}

	return signals, rows.Err()
}
