package parser

import (
	"reflect"
	"testing"

	"tradewatch/internal/domain"
)

func TestExtractFullSignal(t *testing.T) {
	sig := Extract("BUY EURUSD ENTRY: 1.1000 SL: 1.0950 TP: 1.1050, TP: 1.1100")
	if sig == nil {
		t.Fatal("expected a signal")
	}
	if sig.Action != domain.ActionBuy {
		t.Errorf("expected BUY, got %s", sig.Action)
	}
	if sig.Instrument != "EURUSD" {
		t.Errorf("expected EURUSD, got %q", sig.Instrument)
	}
	if sig.EntryPrice == nil || *sig.EntryPrice != 1.1000 {
		t.Errorf("unexpected entry price: %v", sig.EntryPrice)
	}
	if sig.StopLoss == nil || *sig.StopLoss != 1.0950 {
		t.Errorf("unexpected stop loss: %v", sig.StopLoss)
	}
	if !reflect.DeepEqual(sig.TakeProfits, []float64{1.1050, 1.1100}) {
		t.Errorf("unexpected take profits: %v", sig.TakeProfits)
	}
	if sig.Origin != domain.OriginText {
		t.Errorf("expected text origin, got %s", sig.Origin)
	}
	if !Validate(sig) {
		t.Error("expected signal to validate")
	}
}

func TestExtractNoActionKeyword(t *testing.T) {
	for _, text := range []string{
		"",
		"Market update: EURUSD trending",
		"great results today, closed all positions",
	} {
		if sig := Extract(text); sig != nil {
			t.Errorf("expected nil for %q, got %+v", text, sig)
		}
	}
}

func TestExtractNormalizesLongShort(t *testing.T) {
	cases := []struct {
		text string
		want domain.SignalAction
	}{
		{"LONG GBPUSD now", domain.ActionBuy},
		{"short btcusdt at market", domain.ActionSell},
		{"going long on XAUUSD", domain.ActionBuy},
	}
	for _, tc := range cases {
		sig := Extract(tc.text)
		if sig == nil {
			t.Fatalf("expected signal for %q", tc.text)
		}
		if sig.Action != tc.want {
			t.Errorf("%q: expected %s, got %s", tc.text, tc.want, sig.Action)
		}
	}
}

func TestExtractSkipsKeywordsForInstrument(t *testing.T) {
	sig := Extract("SELL XAUUSD TARGET 2350")
	if sig == nil || sig.Instrument != "XAUUSD" {
		t.Fatalf("expected XAUUSD instrument, got %+v", sig)
	}

	// Only keywords present: instrument stays absent and validation fails.
	sig = Extract("BUY AT 5, TP 6")
	if sig == nil {
		t.Fatal("expected a partial signal")
	}
	if sig.Instrument != "" {
		t.Errorf("expected empty instrument, got %q", sig.Instrument)
	}
	if Validate(sig) {
		t.Error("expected validation to fail without instrument")
	}
}

func TestExtractCaseInsensitiveKeepsRawText(t *testing.T) {
	raw := "buy eurusd entry: 1.2345"
	sig := Extract(raw)
	if sig == nil {
		t.Fatal("expected a signal")
	}
	if sig.RawText != raw {
		t.Errorf("expected original raw text, got %q", sig.RawText)
	}
	if sig.EntryPrice == nil || *sig.EntryPrice != 1.2345 {
		t.Errorf("unexpected entry: %v", sig.EntryPrice)
	}
}

func TestExtractGenericPriceFallback(t *testing.T) {
	sig := Extract("BUY GBPJPY @ 185.50")
	if sig == nil {
		t.Fatal("expected a signal")
	}
	if sig.EntryPrice == nil || *sig.EntryPrice != 185.50 {
		t.Errorf("expected fallback price 185.50, got %v", sig.EntryPrice)
	}

	// Labeled entry wins over the generic price label.
	sig = Extract("SELL USDJPY ENTRY: 150.10 PRICE: 149.00")
	if sig.EntryPrice == nil || *sig.EntryPrice != 150.10 {
		t.Errorf("expected labeled entry 150.10, got %v", sig.EntryPrice)
	}
}

func TestExtractTakeProfitOrderNotDeduplicated(t *testing.T) {
	sig := Extract("LONG ETHUSDT TP 1.10 TP 1.10 TP 1.20")
	if sig == nil {
		t.Fatal("expected a signal")
	}
	if !reflect.DeepEqual(sig.TakeProfits, []float64{1.10, 1.10, 1.20}) {
		t.Errorf("unexpected take profits: %v", sig.TakeProfits)
	}
}

func TestExtractCommaJoinedTakeProfits(t *testing.T) {
	sig := Extract("SELL EURUSD SL: 1.1200 TP: 1.1050, 1.1000, 1.0950")
	if sig == nil {
		t.Fatal("expected a signal")
	}
	if !reflect.DeepEqual(sig.TakeProfits, []float64{1.1050, 1.1000, 1.0950}) {
		t.Errorf("unexpected take profits: %v", sig.TakeProfits)
	}
}

func TestExtractIndexedTakeProfitLabels(t *testing.T) {
	sig := Extract("LONG BTCUSDT TP1: 65000 TP2: 66000")
	if sig == nil {
		t.Fatal("expected a signal")
	}
	if !reflect.DeepEqual(sig.TakeProfits, []float64{65000, 66000}) {
		t.Errorf("unexpected take profits: %v", sig.TakeProfits)
	}
}

func TestExtractMissingPricesStillValidates(t *testing.T) {
	sig := Extract("BUY EURUSD")
	if sig == nil {
		t.Fatal("expected a signal")
	}
	if sig.EntryPrice != nil || sig.StopLoss != nil || len(sig.TakeProfits) != 0 {
		t.Errorf("expected no prices, got %+v", sig)
	}
	if !Validate(sig) {
		t.Error("expected action+instrument to be sufficient")
	}
}

func TestValidateNil(t *testing.T) {
	if Validate(nil) {
		t.Error("expected nil signal to be invalid")
	}
	if Validate(&domain.Signal{Action: domain.ActionBuy}) {
		t.Error("expected missing instrument to be invalid")
	}
	if Validate(&domain.Signal{Instrument: "EURUSD"}) {
		t.Error("expected missing action to be invalid")
	}
}
