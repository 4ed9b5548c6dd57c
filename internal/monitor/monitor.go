// Package monitor owns the per-channel signal-harvesting pipeline: one
// monitor per Telegram channel, supervised as independent goroutines.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"tradewatch/internal/domain"
	"tradewatch/internal/parser"
)

const statusWriteTimeout = 5 * time.Second

// Message is a transport-agnostic view of one inbound channel message.
// Ref carries the transport-specific handle needed to download media.
type Message struct {
	ID       int64
	Text     string
	HasMedia bool
	Date     time.Time
	Ref      any
}

// Entity is a resolved, addressable channel on the chat platform.
type Entity struct {
	ID    int64
	Title string
	Raw   any
}

// Session is a live chat-platform connection scoped to one monitor.
type Session interface {
	// Resolve turns a normalized channel handle into a concrete entity.
	Resolve(ctx context.Context, handle string) (Entity, error)
	// Recent returns up to limit historical messages, newest first.
	Recent(ctx context.Context, entity Entity, limit int) ([]Message, error)
	// Stream delivers live messages until ctx is cancelled or the
	// transport disconnects, then closes the channel.
	Stream(ctx context.Context, entity Entity) (<-chan Message, error)
	// Download fetches the media payload attached to a message.
	Download(ctx context.Context, msg Message) ([]byte, error)
	Close() error
}

// Transport opens sessions against the chat platform.
type Transport interface {
	Connect(ctx context.Context) (Session, error)
}

// SignalStore is the authoritative store. InsertSignal persists the signal
// and bumps the owning channel's counters atomically; its failure drops the
// signal.
type SignalStore interface {
	InsertSignal(ctx context.Context, sig *domain.Signal) (int64, error)
	UpdateChannelStatus(ctx context.Context, channelID int64, state domain.ChannelState, errText string) error
}

// SignalMirror is the best-effort secondary store.
type SignalMirror interface {
	MirrorSignal(ctx context.Context, sig domain.Signal) error
}

// ImageResolver extracts a validated signal from a media payload, or nil.
type ImageResolver interface {
	Resolve(ctx context.Context, image []byte) *domain.Signal
}

// Notifier is told about every successfully persisted signal.
type Notifier interface {
	SignalCaptured(sig domain.Signal)
}

// Deps are the collaborators shared by all monitors of one supervisor.
// Mirror, Images and Notifier are optional.
type Deps struct {
	Transport Transport
	Store     SignalStore
	Mirror    SignalMirror
	Images    ImageResolver
	Notifier  Notifier
	Backfill  int
}

// Monitor watches a single channel. State machine:
// Stopped -> Connecting -> Running -> {Stopped, Error}. Error is terminal for
// the current run; the supervisor may start a fresh run later.
type Monitor struct {
	channelID int64
	username  string
	name      string
	deps      Deps

	mu    sync.Mutex
	state domain.ChannelState
}

func NewMonitor(channelID int64, username, name string, deps Deps) *Monitor {
	return &Monitor{
		channelID: channelID,
		username:  username,
		name:      name,
		deps:      deps,
		state:     domain.ChannelStopped,
	}
}

func (m *Monitor) State() domain.ChannelState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Monitor) setState(s domain.ChannelState) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
}

// Run connects, backfills, then streams live messages until ctx is cancelled
// or the transport fails. It never panics the caller: all failures end in a
// persisted Error status for this channel only.
func (m *Monitor) Run(ctx context.Context) {
	m.setState(domain.ChannelConnecting)

	err := m.run(ctx)
	if err != nil && ctx.Err() == nil {
		log.Printf("[%s] monitor error: %v", m.name, err)
		m.setState(domain.ChannelError)
		m.persistStatus(domain.ChannelError, err.Error())
		return
	}

	m.setState(domain.ChannelStopped)
	m.persistStatus(domain.ChannelStopped, "")
	log.Printf("[%s] stopped monitoring", m.name)
}

func (m *Monitor) run(ctx context.Context) error {
	if m.deps.Transport == nil {
		return errors.New("chat transport not configured")
	}

	sess, err := m.deps.Transport.Connect(ctx)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer sess.Close()

	entity, err := sess.Resolve(ctx, NormalizeHandle(m.username))
	if err != nil {
		return fmt.Errorf("resolve %s: %w", m.username, err)
	}
	log.Printf("[%s] connected to %s", m.name, entity.Title)

	m.setState(domain.ChannelRunning)
	if err := m.deps.Store.UpdateChannelStatus(ctx, m.channelID, domain.ChannelRunning, ""); err != nil {
		return fmt.Errorf("persist running status: %w", err)
	}

	// Subscribe before backfilling so no live message is missed in between.
	msgs, err := sess.Stream(ctx, entity)
	if err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}

	if err := m.backfill(ctx, sess, entity); err != nil {
		return fmt.Errorf("backfill: %w", err)
	}

	log.Printf("[%s] now monitoring for new signals", m.name)
	for msg := range msgs {
		m.handleMessage(ctx, sess, msg)
	}

	if ctx.Err() == nil {
		return errors.New("disconnected from transport")
	}
	return nil
}

// backfill replays the most recent messages oldest-first through the same
// pipeline as live messages. Best-effort catch-up, not a delivery guarantee.
func (m *Monitor) backfill(ctx context.Context, sess Session, entity Entity) error {
	if m.deps.Backfill <= 0 {
		return nil
	}
	recent, err := sess.Recent(ctx, entity, m.deps.Backfill)
	if err != nil {
		return err
	}
	if len(recent) == 0 {
		return nil
	}
	log.Printf("[%s] replaying %d recent messages", m.name, len(recent))
	for i := len(recent) - 1; i >= 0; i-- {
		m.handleMessage(ctx, sess, recent[i])
	}
	return nil
}

// handleMessage routes one message through the extraction pipeline. Media is
// tried first; text is only parsed when no image-derived signal validated.
// Errors are logged and never abort the run loop.
func (m *Monitor) handleMessage(ctx context.Context, sess Session, msg Message) {
	var sig *domain.Signal

	if msg.HasMedia {
		data, err := sess.Download(ctx, msg)
		if err != nil {
			log.Printf("[%s] media download failed for message %d: %v", m.name, msg.ID, err)
		} else if len(data) > 0 && m.deps.Images != nil {
			sig = m.deps.Images.Resolve(ctx, data)
		}
	}

	if sig == nil && msg.Text != "" {
		if s := parser.Extract(msg.Text); parser.Validate(s) {
			sig = s
		}
	}

	if !parser.Validate(sig) {
		return
	}

	sig.ChannelID = m.channelID
	sig.ChannelName = m.name
	sig.MessageID = msg.ID
	sig.MessageDate = msg.Date.UTC()

	m.persistSignal(ctx, sig)
}

// persistSignal writes to the primary store first; that write is the atomic
// unit and its failure drops the signal. The mirror write afterwards is
// best-effort only.
func (m *Monitor) persistSignal(ctx context.Context, sig *domain.Signal) {
	id, err := m.deps.Store.InsertSignal(ctx, sig)
	if err != nil {
		log.Printf("[%s] dropping signal %s %s: primary store insert failed: %v",
			m.name, sig.Action, sig.Instrument, err)
		return
	}
	sig.ID = id
	log.Printf("[%s] captured signal: %s %s", m.name, sig.Action, sig.Instrument)

	if m.deps.Mirror != nil {
		if err := m.deps.Mirror.MirrorSignal(ctx, *sig); err != nil {
			log.Printf("[%s] mirror write failed for signal %d: %v", m.name, id, err)
		}
	}
	if m.deps.Notifier != nil {
		m.deps.Notifier.SignalCaptured(*sig)
	}
}

// persistStatus runs on a fresh context: the monitor's own context is
// usually already cancelled when the final status is written.
func (m *Monitor) persistStatus(state domain.ChannelState, errText string) {
	ctx, cancel := context.WithTimeout(context.Background(), statusWriteTimeout)
	defer cancel()
	if err := m.deps.Store.UpdateChannelStatus(ctx, m.channelID, state, errText); err != nil {
		log.Printf("[%s] status update failed: %v", m.name, err)
	}
}

// NormalizeHandle strips the @ prefix or t.me link wrapper from a channel
// username.
func NormalizeHandle(username string) string {
	username = strings.TrimSpace(username)
	if strings.Contains(username, "t.me/") {
		parts := strings.Split(username, "/")
		return parts[len(parts)-1]
	}
	return strings.TrimPrefix(username, "@")
}
