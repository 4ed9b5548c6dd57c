package domain

import "time"

// SignalAction is the normalized trade direction of a captured signal.
type SignalAction string

const (
	ActionBuy  SignalAction = "BUY"
	ActionSell SignalAction = "SELL"
)

// SignalOrigin records which pipeline branch produced a signal.
type SignalOrigin string

const (
	OriginText  SignalOrigin = "text"
	OriginImage SignalOrigin = "image"
)

// ChannelState is the lifecycle state of a channel's monitor.
type ChannelState string

const (
	ChannelStopped    ChannelState = "stopped"
	ChannelConnecting ChannelState = "connecting"
	ChannelRunning    ChannelState = "running"
	ChannelError      ChannelState = "error"
)

func (s ChannelState) IsValid() bool {
	switch s {
	case ChannelStopped, ChannelConnecting, ChannelRunning, ChannelError:
		return true
	}
	return false
}

// Channel is a Telegram channel registered for signal monitoring. Lifecycle
// fields (status, error, counters) are only mutated by the channel's own
// monitor, or by the supervisor while stopping it.
type Channel struct {
	ID           int64        `json:"id"`
	Name         string       `json:"name"`
	Username     string       `json:"username"`
	IsActive     bool         `json:"is_active"`
	AddedAt      time.Time    `json:"added_at"`
	LastChecked  *time.Time   `json:"last_checked,omitempty"`
	TotalSignals int64        `json:"total_signals"`
	Status       ChannelState `json:"status"`
	ErrorMessage string       `json:"error_message,omitempty"`
}

// Signal is a structured trade setup extracted from a channel message.
// Immutable once persisted. Action and Instrument are required; all price
// fields are optional.
type Signal struct {
	ID          int64        `json:"id"`
	ChannelID   int64        `json:"channel_id"`
	ChannelName string       `json:"channel_name"`
	Action      SignalAction `json:"action"`
	Instrument  string       `json:"instrument"`
	EntryPrice  *float64     `json:"entry_price,omitempty"`
	StopLoss    *float64     `json:"stop_loss,omitempty"`
	TakeProfits []float64    `json:"take_profits"`
	Origin      SignalOrigin `json:"signal_type"`
	RawText     string       `json:"raw_text,omitempty"`
	MessageID   int64        `json:"message_id,omitempty"`
	MessageDate time.Time    `json:"message_date"`
	CreatedAt   time.Time    `json:"created_at"`
}

type SignalFilter struct {
	ChannelID int64
	Since     time.Time
	Limit     int
}

// Stats is the dashboard aggregate view.
type Stats struct {
	TotalChannels  int64 `json:"total_channels"`
	ActiveChannels int64 `json:"active_channels"`
	TotalSignals   int64 `json:"total_signals"`
	SignalsToday   int64 `json:"signals_today"`
}
