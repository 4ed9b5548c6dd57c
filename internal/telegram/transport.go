// Package telegram adapts a telebot bot into the chat transport the channel
// monitors consume. One bot serves every monitor: channel posts arrive through
// a single update stream and are fanned out per chat.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"

	"tradewatch/internal/monitor"

	tele "gopkg.in/telebot.v3"
)

const streamBuffer = 64

type Transport struct {
	bot  *tele.Bot
	once sync.Once

	mu   sync.Mutex
	subs map[int64]map[*subscription]struct{}
}

type subscription struct {
	ch chan monitor.Message
}

func NewTransport(bot *tele.Bot) *Transport {
	return &Transport{
		bot:  bot,
		subs: make(map[int64]map[*subscription]struct{}),
	}
}

func (t *Transport) Connect(ctx context.Context) (monitor.Session, error) {
	if t.bot == nil {
		return nil, errors.New("telegram bot not configured")
	}
	t.once.Do(func() {
		t.bot.Handle(tele.OnChannelPost, func(c tele.Context) error {
			t.dispatch(c.Message())
			return nil
		})
	})
	return &session{transport: t}, nil
}

func (t *Transport) dispatch(m *tele.Message) {
	if m == nil || m.Chat == nil {
		return
	}
	msg := convertMessage(m)

	t.mu.Lock()
	defer t.mu.Unlock()
	for sub := range t.subs[m.Chat.ID] {
		select {
		case sub.ch <- msg:
		default:
			log.Printf("dropping message %d for chat %d: stream buffer full", msg.ID, m.Chat.ID)
		}
	}
}

func (t *Transport) addSub(chatID int64, sub *subscription) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.subs[chatID] == nil {
		t.subs[chatID] = make(map[*subscription]struct{})
	}
	t.subs[chatID][sub] = struct{}{}
}

// removeSub detaches and closes the subscription. Safe to call twice.
func (t *Transport) removeSub(chatID int64, sub *subscription) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if set, ok := t.subs[chatID]; ok {
		if _, live := set[sub]; live {
			delete(set, sub)
			close(sub.ch)
		}
		if len(set) == 0 {
			delete(t.subs, chatID)
		}
	}
}

// session is one monitor's view of the shared bot. Closing it detaches only
// that monitor's streams.
type session struct {
	transport *Transport

	mu      sync.Mutex
	streams map[*subscription]int64
}

func (s *session) Resolve(ctx context.Context, handle string) (monitor.Entity, error) {
	chat, err := s.transport.bot.ChatByUsername("@" + handle)
	if err != nil {
		return monitor.Entity{}, fmt.Errorf("resolve @%s: %w", handle, err)
	}
	title := chat.Title
	if title == "" {
		title = handle
	}
	return monitor.Entity{ID: chat.ID, Title: title, Raw: chat}, nil
}

// Recent always returns nothing: the Bot API exposes no channel history, so
// backfill is a no-op on this transport.
func (s *session) Recent(ctx context.Context, entity monitor.Entity, limit int) ([]monitor.Message, error) {
	return nil, nil
}

func (s *session) Stream(ctx context.Context, entity monitor.Entity) (<-chan monitor.Message, error) {
	sub := &subscription{ch: make(chan monitor.Message, streamBuffer)}
	s.transport.addSub(entity.ID, sub)

	s.mu.Lock()
	if s.streams == nil {
		s.streams = make(map[*subscription]int64)
	}
	s.streams[sub] = entity.ID
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.transport.removeSub(entity.ID, sub)
	}()

	return sub.ch, nil
}

func (s *session) Download(ctx context.Context, msg monitor.Message) ([]byte, error) {
	m, ok := msg.Ref.(*tele.Message)
	if !ok || m == nil {
		return nil, errors.New("message has no telegram payload")
	}

	file := mediaFile(m)
	if file == nil {
		return nil, nil
	}

	rc, err := s.transport.bot.File(file)
	if err != nil {
		return nil, fmt.Errorf("download file %s: %w", file.FileID, err)
	}
	defer rc.Close()

	return io.ReadAll(rc)
}

func (s *session) Close() error {
	s.mu.Lock()
	streams := s.streams
	s.streams = nil
	s.mu.Unlock()

	for sub, chatID := range streams {
		s.transport.removeSub(chatID, sub)
	}
	return nil
}

func convertMessage(m *tele.Message) monitor.Message {
	text := m.Text
	if text == "" {
		text = m.Caption
	}
	return monitor.Message{
		ID:       int64(m.ID),
		Text:     text,
		HasMedia: mediaFile(m) != nil,
		Date:     m.Time(),
		Ref:      m,
	}
}

// mediaFile picks the downloadable image attachment, if any. Photos arrive
// pre-sized by Telegram; documents count only when they carry an image mime.
func mediaFile(m *tele.Message) *tele.File {
	if m.Photo != nil {
		return &m.Photo.File
	}
	if m.Document != nil && strings.HasPrefix(m.Document.MIME, "image/") {
		return &m.Document.File
	}
	return nil
}
