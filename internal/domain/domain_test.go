package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func TestChannelStateIsValid(t *testing.T) {
	for _, s := range []ChannelState{ChannelStopped, ChannelConnecting, ChannelRunning, ChannelError} {
		if !s.IsValid() {
			t.Errorf("expected %q to be valid", s)
		}
	}
	if ChannelState("paused").IsValid() {
		t.Error("expected unknown state to be invalid")
	}
}

func TestSignalFields(t *testing.T) {
	entry := 1.1000
	ts := time.Unix(1234567890, 0).UTC()
	s := Signal{
		ChannelID:   7,
		ChannelName: "fx-signals",
		Action:      ActionBuy,
		Instrument:  "EURUSD",
		EntryPrice:  &entry,
		TakeProfits: []float64{1.1050, 1.1100},
		Origin:      OriginText,
		MessageDate: ts,
	}
	if s.Action != ActionBuy || s.Instrument != "EURUSD" || *s.EntryPrice != 1.1000 {
		t.Errorf("Signal fields not set correctly: %+v", s)
	}
	if s.StopLoss != nil {
		t.Errorf("expected absent stop loss, got %v", *s.StopLoss)
	}
	if len(s.TakeProfits) != 2 || !s.MessageDate.Equal(ts) {
		t.Errorf("Signal fields not set correctly: %+v", s)
	}
}

func TestSignalJSONOmitsAbsentPrices(t *testing.T) {
	raw, err := json.Marshal(Signal{Action: ActionSell, Instrument: "XAUUSD", Origin: OriginImage})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if _, ok := decoded["entry_price"]; ok {
		t.Error("expected entry_price to be omitted when absent")
	}
	if decoded["signal_type"] != "image" {
		t.Errorf("expected signal_type image, got %v", decoded["signal_type"])
	}
}

func TestChannelFields(t *testing.T) {
	c := Channel{ID: 1, Name: "FX Leaks", Username: "@fxleaks", Status: ChannelStopped}
	if c.Name != "FX Leaks" || c.Username != "@fxleaks" || c.Status != ChannelStopped {
		t.Errorf("Channel fields not set correctly: %+v", c)
	}
}
