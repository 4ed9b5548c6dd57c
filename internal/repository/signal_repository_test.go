package repository

import (
	"context"
	"strings"
	"testing"
	"time"

	"tradewatch/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/trace"
)

func TestSignalRunMigrationsExecutesSchema(t *testing.T) {
	pool := &signalStubPool{}
	repo := NewSignalRepository(pool, trace.NewNoopTracerProvider().Tracer("test"))

	if err := repo.RunMigrations(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pool.execSQL) != 3 {
		t.Fatalf("expected table plus two indexes, got %d statements", len(pool.execSQL))
	}
	if !strings.Contains(pool.execSQL[0], "CREATE TABLE IF NOT EXISTS signals") {
		t.Fatalf("unexpected migration statement: %s", pool.execSQL[0])
	}
}

func TestSignalInsertSignalBumpsChannelCounterAtomically(t *testing.T) {
	pool := &signalStubPool{rowVals: []any{int64(9)}}
	repo := NewSignalRepository(pool, trace.NewNoopTracerProvider().Tracer("test"))

	entry := 1.1
	id, err := repo.InsertSignal(context.Background(), &domain.Signal{
		ChannelID:   7,
		ChannelName: "FX Leaks",
		Action:      domain.ActionBuy,
		Instrument:  "EURUSD",
		EntryPrice:  &entry,
		Origin:      domain.OriginText,
		MessageID:   42,
		MessageDate: time.Unix(1700000000, 0),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 9 {
		t.Fatalf("expected id 9, got %d", id)
	}
	if !strings.Contains(pool.queryRowSQL, "total_signals + 1") {
		t.Error("insert must bump the channel counter in the same statement")
	}
	if !strings.Contains(pool.queryRowSQL, "INSERT INTO signals") {
		t.Errorf("unexpected insert statement: %s", pool.queryRowSQL)
	}
	// nil take-profit slices are stored as empty arrays, never NULL.
	if tp, ok := pool.queryRowArgs[6].([]float64); !ok || tp == nil {
		t.Errorf("expected empty take_profits array, got %#v", pool.queryRowArgs[6])
	}
}

func TestSignalListSignalsAppliesFilters(t *testing.T) {
	pool := &signalStubPool{}
	repo := NewSignalRepository(pool, trace.NewNoopTracerProvider().Tracer("test"))

	since := time.Now().UTC().Add(-time.Hour)
	if _, err := repo.ListSignals(context.Background(), domain.SignalFilter{
		ChannelID: 3,
		Since:     since,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(pool.querySQL, "channel_id = $1") {
		t.Errorf("expected channel filter in query: %s", pool.querySQL)
	}
	if !strings.Contains(pool.querySQL, "created_at >= $2") {
		t.Errorf("expected since filter in query: %s", pool.querySQL)
	}
	if got := pool.queryArgs[2].(int); got != 50 {
		t.Errorf("expected default limit 50, got %d", got)
	}
}

func TestSignalListSignalsCapsLimit(t *testing.T) {
	pool := &signalStubPool{}
	repo := NewSignalRepository(pool, trace.NewNoopTracerProvider().Tracer("test"))

	if _, err := repo.ListSignals(context.Background(), domain.SignalFilter{Limit: 1000}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := pool.queryArgs[0].(int); got != 200 {
		t.Errorf("expected limit capped at 200, got %d", got)
	}
}

func TestSignalListSignalsScansRows(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	entry := 1.1
	pool := &signalStubPool{rowsData: [][]any{
		{int64(9), int64(7), "FX Leaks", "BUY", "EURUSD", &entry, (*float64)(nil), []float64{1.105, 1.11}, "image", "raw reply", int64(42), now},
	}}
	repo := NewSignalRepository(pool, trace.NewNoopTracerProvider().Tracer("test"))

	signals, err := repo.ListSignals(context.Background(), domain.SignalFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(signals) != 1 {
		t.Fatalf("expected 1 signal, got %d", len(signals))
	}
	s := signals[0]
	if s.ID != 9 || s.Action != domain.ActionBuy || s.Instrument != "EURUSD" {
		t.Fatalf("unexpected signal payload: %+v", s)
	}
	if s.Origin != domain.OriginImage {
		t.Errorf("expected image origin, got %s", s.Origin)
	}
	if s.EntryPrice == nil || *s.EntryPrice != 1.1 || s.StopLoss != nil {
		t.Errorf("unexpected prices: %+v", s)
	}
	if len(s.TakeProfits) != 2 {
		t.Errorf("expected 2 take profits, got %v", s.TakeProfits)
	}
}

type signalStubPool struct {
	execSQL      []string
	queryRowSQL  string
	queryRowArgs []any
	rowVals      []any
	rowErr       error
	querySQL     string
	queryArgs    []any
	rowsData     [][]any
}

func (s *signalStubPool) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	s.execSQL = append(s.execSQL, sql)
	return pgconn.CommandTag{}, nil
}

func (s *signalStubPool) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	return nil
}

func (s *signalStubPool) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	s.querySQL = sql
	s.queryArgs = args
	return &channelStubRows{data: s.rowsData}, nil
}

func (s *signalStubPool) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	s.queryRowSQL = sql
	s.queryRowArgs = args
	return &channelStubRow{vals: s.rowVals, err: s.rowErr}
}
