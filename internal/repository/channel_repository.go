package repository

import (
	"context"
	"errors"
	"time"

	"tradewatch/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/trace"
)

type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type ChannelRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewChannelRepository(pool PgxPool, tracer trace.Tracer) *ChannelRepository {
	return &ChannelRepository{pool: pool, tracer: tracer}
}

func (r *ChannelRepository) RunMigrations(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS channels (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			username TEXT NOT NULL UNIQUE,
			is_active BOOLEAN NOT NULL DEFAULT FALSE,
			added_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			last_checked TIMESTAMPTZ,
			total_signals BIGINT NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'stopped',
			error_message TEXT NOT NULL DEFAULT ''
		)`)
	return err
}

func (r *ChannelRepository) InsertChannel(ctx context.Context, ch *domain.Channel) error {
	_, span := r.tracer.Start(ctx, "channel-repo.insert-channel")
	defer span.End()

	return r.pool.QueryRow(ctx,
		`INSERT INTO channels (name, username, is_active, status)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, added_at`,
		ch.Name, ch.Username, ch.IsActive, string(ch.Status),
	).Scan(&ch.ID, &ch.AddedAt)
}

// GetChannel returns (nil, nil) when no channel with the given id exists.
func (r *ChannelRepository) GetChannel(ctx context.Context, id int64) (*domain.Channel, error) {
	_, span := r.tracer.Start(ctx, "channel-repo.get-channel")
	defer span.End()

	row := r.pool.QueryRow(ctx, selectChannelColumns+` WHERE id = $1`, id)
	return scanChannel(row)
}

func (r *ChannelRepository) GetChannelByUsername(ctx context.Context, username string) (*domain.Channel, error) {
	_, span := r.tracer.Start(ctx, "channel-repo.get-channel-by-username")
	defer span.End()

	row := r.pool.QueryRow(ctx, selectChannelColumns+` WHERE username = $1`, username)
	return scanChannel(row)
}

func (r *ChannelRepository) ListChannels(ctx context.Context) ([]domain.Channel, error) {
	_, span := r.tracer.Start(ctx, "channel-repo.list-channels")
	defer span.End()

	rows, err := r.pool.Query(ctx, selectChannelColumns+` ORDER BY added_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	channels := make([]domain.Channel, 0, 8)
	for rows.Next() {
		ch, err := scanChannelRow(rows)
		if err != nil {
			return nil, err
		}
		channels = append(channels, ch)
	}
	return channels, rows.Err()
}

func (r *ChannelRepository) DeleteChannel(ctx context.Context, id int64) error {
	_, span := r.tracer.Start(ctx, "channel-repo.delete-channel")
	defer span.End()

	_, err := r.pool.Exec(ctx, `DELETE FROM channels WHERE id = $1`, id)
	return err
}

func (r *ChannelRepository) UpdateChannelStatus(ctx context.Context, id int64, state domain.ChannelState, errText string) error {
	_, span := r.tracer.Start(ctx, "channel-repo.update-channel-status")
	defer span.End()

	_, err := r.pool.Exec(ctx,
		`UPDATE channels
		    SET status = $2,
		        is_active = $3,
		        error_message = $4,
		        last_checked = NOW()
		  WHERE id = $1`,
		id, string(state), state == domain.ChannelRunning, errText)
	return err
}

func (r *ChannelRepository) Stats(ctx context.Context) (domain.Stats, error) {
	_, span := r.tracer.Start(ctx, "channel-repo.stats")
	defer span.End()

	midnight := time.Now().UTC().Truncate(24 * time.Hour)

	var stats domain.Stats
	err := r.pool.QueryRow(ctx,
		`SELECT
		    (SELECT COUNT(*) FROM channels),
		    (SELECT COUNT(*) FROM channels WHERE is_active),
		    (SELECT COUNT(*) FROM signals),
		    (SELECT COUNT(*) FROM signals WHERE created_at >= $1)`,
		midnight,
	).Scan(&stats.TotalChannels, &stats.ActiveChannels, &stats.TotalSignals, &stats.SignalsToday)
	return stats, err
}

const selectChannelColumns = `SELECT id, name, username, is_active, added_at, last_checked, total_signals, status, error_message
	FROM channels`

func scanChannel(row pgx.Row) (*domain.Channel, error) {
	var ch domain.Channel
	var status string
	if err := row.Scan(
		&ch.ID,
		&ch.Name,
		&ch.Username,
		&ch.IsActive,
		&ch.AddedAt,
		&ch.LastChecked,
		&ch.TotalSignals,
		&status,
		&ch.ErrorMessage,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	ch.Status = domain.ChannelState(status)
	ch.AddedAt = ch.AddedAt.UTC()
	return &ch, nil
}

func scanChannelRow(rows pgx.Rows) (domain.Channel, error) {
	var ch domain.Channel
	var status string
	if err := rows.Scan(
		&ch.ID,
		&ch.Name,
		&ch.Username,
		&ch.IsActive,
		&ch.AddedAt,
		&ch.LastChecked,
		&ch.TotalSignals,
		&status,
		&ch.ErrorMessage,
	); err != nil {
		return domain.Channel{}, err
	}
	ch.Status = domain.ChannelState(status)
	ch.AddedAt = ch.AddedAt.UTC()
	return ch, nil
}
