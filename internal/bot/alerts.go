package bot

import (
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"tradewatch/internal/domain"

	tele "gopkg.in/telebot.v3"
)

type messageSender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// AlertDispatcher broadcasts freshly captured signals to subscribed chats.
// A nil dispatcher is safe to use and drops everything.
type AlertDispatcher struct {
	sender messageSender

	mu          sync.RWMutex
	subscribers map[int64]struct{}
}

func NewAlertDispatcher(sender messageSender) *AlertDispatcher {
	return &AlertDispatcher{
		sender:      sender,
		subscribers: make(map[int64]struct{}),
	}
}

func (d *AlertDispatcher) Subscribe(chatID int64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.subscribers[chatID]; exists {
		return false
	}
	d.subscribers[chatID] = struct{}{}
	return true
}

func (d *AlertDispatcher) Unsubscribe(chatID int64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.subscribers[chatID]; !exists {
		return false
	}
	delete(d.subscribers, chatID)
	return true
}

func (d *AlertDispatcher) IsSubscribed(chatID int64) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	_, exists := d.subscribers[chatID]
	return exists
}

func (d *AlertDispatcher) SubscriberCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.subscribers)
}

// SignalCaptured pushes one alert per subscribed chat. Send failures are
// logged and never propagate back into the capture pipeline.
func (d *AlertDispatcher) SignalCaptured(sig domain.Signal) {
	if d == nil || d.sender == nil {
		return
	}

	chatIDs := d.snapshotSubscribers()
	if len(chatIDs) == 0 {
		return
	}

	msg := formatSignalAlert(sig)
	for _, chatID := range chatIDs {
		if _, err := d.sender.Send(&tele.Chat{ID: chatID}, msg); err != nil {
			log.Printf("alert send failed for chat %d: %v", chatID, err)
		}
	}
}

func (d *AlertDispatcher) snapshotSubscribers() []int64 {
	d.mu.RLock()
	defer d.mu.RUnlock()

	chatIDs := make([]int64, 0, len(d.subscribers))
	for chatID := range d.subscribers {
		chatIDs = append(chatIDs, chatID)
	}
	sort.Slice(chatIDs, func(i, j int) bool { return chatIDs[i] < chatIDs[j] })
	return chatIDs
}

func parseAlertMode(args []string) (string, error) {
	if len(args) == 0 {
		return "status", nil
	}

	switch strings.ToLower(strings.TrimSpace(args[0])) {
	case "on":
		return "on", nil
	case "off":
		return "off", nil
	case "status":
		return "status", nil
	default:
		return "", fmt.Errorf("invalid mode")
	}
}

func formatSignalAlert(sig domain.Signal) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "New signal from %s\n%s %s", sig.ChannelName, sig.Action, sig.Instrument)
	if sig.EntryPrice != nil {
		fmt.Fprintf(&sb, "\nEntry: %s", formatPrice(*sig.EntryPrice))
	}
	if sig.StopLoss != nil {
		fmt.Fprintf(&sb, "\nSL: %s", formatPrice(*sig.StopLoss))
	}
	if len(sig.TakeProfits) > 0 {
		targets := make([]string, len(sig.TakeProfits))
		for i, tp := range sig.TakeProfits {
			targets[i] = formatPrice(tp)
		}
		fmt.Fprintf(&sb, "\nTP: %s", strings.Join(targets, ", "))
	}
	if sig.Origin == domain.OriginImage {
		sb.WriteString("\n(extracted from chart image)")
	}
	return sb.String()
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatSignalLine(s domain.Signal) string {
	line := fmt.Sprintf("#%d %s %s from %s", s.ID, s.Action, s.Instrument, s.ChannelName)
	if !s.CreatedAt.IsZero() {
		line += " at " + s.CreatedAt.UTC().Format(time.RFC822)
	}
	return line
}
