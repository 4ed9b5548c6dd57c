package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"tradewatch/internal/domain"

	tele "gopkg.in/telebot.v3"
)

type ChannelManager interface {
	List(ctx context.Context) ([]domain.Channel, error)
	Start(ctx context.Context, id int64) error
	Stop(ctx context.Context, id int64) error
	Stats(ctx context.Context) (domain.Stats, error)
}

type SignalLister interface {
	List(ctx context.Context, filter domain.SignalFilter) ([]domain.Signal, error)
}

// Register wires the operator commands onto an existing bot. The caller owns
// the bot's lifecycle; the same bot also serves as the channel-post transport.
func Register(b *tele.Bot, channelService ChannelManager, signalService SignalLister) *AlertDispatcher {
	if b == nil {
		return nil
	}
	alerts := NewAlertDispatcher(b)

	b.Handle("/ping", func(c tele.Context) error {
		return c.Send("pong")
	})

	b.Handle("/channels", func(c tele.Context) error {
		if channelService == nil {
			return c.Send("Channel service unavailable")
		}
		channels, err := channelService.List(context.Background())
		if err != nil {
			return c.Send(fmt.Sprintf("Error listing channels: %v", err))
		}
		if len(channels) == 0 {
			return c.Send("No channels registered.")
		}
		lines := make([]string, 0, len(channels)+1)
		lines = append(lines, "Monitored channels:")
		for _, ch := range channels {
			line := fmt.Sprintf("#%d @%s [%s] %d signals", ch.ID, ch.Username, ch.Status, ch.TotalSignals)
			if ch.ErrorMessage != "" {
				line += " (" + ch.ErrorMessage + ")"
			}
			lines = append(lines, line)
		}
		return c.Send(strings.Join(lines, "\n"))
	})

	b.Handle("/start_channel", func(c tele.Context) error {
		return handleChannelCommand(c, channelService, "start")
	})

	b.Handle("/stop_channel", func(c tele.Context) error {
		return handleChannelCommand(c, channelService, "stop")
	})

	b.Handle("/signals", func(c tele.Context) error {
		if signalService == nil {
			return c.Send("Signal service unavailable")
		}

		filter, err := parseSignalArgs(c.Args())
		if err != nil {
			return c.Send("Usage: /signals | /signals <channel id> | /signals <channel id> <limit>")
		}

		signals, err := signalService.List(context.Background(), filter)
		if err != nil {
			return c.Send(fmt.Sprintf("Error fetching signals: %v", err))
		}
		if len(signals) == 0 {
			return c.Send("No matching signals right now.")
		}

		lines := make([]string, 0, len(signals)+1)
		lines = append(lines, "Latest signals:")
		for _, s := range signals {
			lines = append(lines, formatSignalLine(s))
		}
		return c.Send(strings.Join(lines, "\n"))
	})

	b.Handle("/stats", func(c tele.Context) error {
		if channelService == nil {
			return c.Send("Channel service unavailable")
		}
		stats, err := channelService.Stats(context.Background())
		if err != nil {
			return c.Send(fmt.Sprintf("Error fetching stats: %v", err))
		}
		return c.Send(fmt.Sprintf(
			"Channels: %d (%d active)\nSignals: %d total, %d today",
			stats.TotalChannels, stats.ActiveChannels, stats.TotalSignals, stats.SignalsToday,
		))
	})

	b.Handle("/alerts", func(c tele.Context) error {
		chat := c.Chat()
		if chat == nil {
			return c.Send("Unable to detect chat")
		}

		mode, err := parseAlertMode(c.Args())
		if err != nil {
			return c.Send("Usage: /alerts on | /alerts off | /alerts status")
		}

		switch mode {
		case "on":
			if alerts.Subscribe(chat.ID) {
				return c.Send("Signal alerts enabled for this chat.")
			}
			return c.Send("Signal alerts are already enabled for this chat.")
		case "off":
			if alerts.Unsubscribe(chat.ID) {
				return c.Send("Signal alerts disabled for this chat.")
			}
			return c.Send("Signal alerts are already disabled for this chat.")
		default:
			if alerts.IsSubscribed(chat.ID) {
				return c.Send("Alerts status: ON")
			}
			return c.Send("Alerts status: OFF")
		}
	})

	return alerts
}

func handleChannelCommand(c tele.Context, channelService ChannelManager, action string) error {
	if channelService == nil {
		return c.Send("Channel service unavailable")
	}
	args := c.Args()
	if len(args) == 0 {
		return c.Send(fmt.Sprintf("Usage: /%s_channel <channel id>", action))
	}
	id, err := strconv.ParseInt(strings.TrimSpace(args[0]), 10, 64)
	if err != nil || id <= 0 {
		return c.Send("Channel id must be a positive integer")
	}

	var done string
	if action == "start" {
		err = channelService.Start(context.Background(), id)
		done = "started"
	} else {
		err = channelService.Stop(context.Background(), id)
		done = "stopped"
	}
	if err != nil {
		return c.Send(fmt.Sprintf("Error: %v", err))
	}
	return c.Send(fmt.Sprintf("Channel %d %s", id, done))
}

func parseSignalArgs(args []string) (domain.SignalFilter, error) {
	filter := domain.SignalFilter{Limit: 5}

	if len(args) > 2 {
		return domain.SignalFilter{}, fmt.Errorf("too many arguments")
	}
	if len(args) >= 1 {
		id, err := strconv.ParseInt(strings.TrimSpace(args[0]), 10, 64)
		if err != nil || id <= 0 {
			return domain.SignalFilter{}, fmt.Errorf("invalid channel id")
		}
		filter.ChannelID = id
	}
	if len(args) == 2 {
		limit, err := strconv.Atoi(strings.TrimSpace(args[1]))
		if err != nil || limit <= 0 || limit > 50 {
			return domain.SignalFilter{}, fmt.Errorf("invalid limit")
		}
		filter.Limit = limit
	}
	return filter, nil
}
