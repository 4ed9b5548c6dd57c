// Package parser implements the trading-signal grammar: a stateless,
// case-insensitive extraction of structured signals from free-form text.
package parser

import (
	"regexp"
	"strconv"
	"strings"

	"tradewatch/internal/domain"
)

var (
	actionPattern     = regexp.MustCompile(`\b(BUY|SELL|LONG|SHORT)\b`)
	instrumentPattern = regexp.MustCompile(`\b([A-Z]{3,6}(?:USD|USDT|BTC|ETH)?)\b`)
	entryPattern      = regexp.MustCompile(`(?:ENTRY|ENTER|BUY AT|SELL AT)[:\s]+([0-9]+\.?[0-9]*)`)
	pricePattern      = regexp.MustCompile(`(?:PRICE|@)[:\s]+([0-9]+\.?[0-9]*)`)
	stopLossPattern   = regexp.MustCompile(`(?:SL|STOP LOSS|STOPLOSS)[:\s]+([0-9]+\.?[0-9]*)`)
	takeProfitPattern = regexp.MustCompile(`(?:TP\d*|TAKE PROFIT|TARGET)[:\s]*((?:[0-9]+\.?[0-9]*[,\s/]*)+)`)
	numberPattern     = regexp.MustCompile(`[0-9]+\.?[0-9]*`)
)

// Grammar keywords that also happen to look like a 3-6 letter symbol. They
// are skipped when scanning for the instrument so that "BUY EURUSD" yields
// EURUSD and a labeled vision reply ("ACTION: BUY ...") never yields ACTION.
var instrumentStopwords = map[string]struct{}{
	"BUY":    {},
	"SELL":   {},
	"LONG":   {},
	"SHORT":  {},
	"ENTRY":  {},
	"ENTER":  {},
	"PRICE":  {},
	"STOP":   {},
	"LOSS":   {},
	"TAKE":   {},
	"PROFIT": {},
	"TARGET": {},
	"SIGNAL": {},
	"TYPE":   {},
	"ACTION": {},
	"TRADE":  {},
	"RESULT": {},
}

// Extract parses text and returns the structured signal it describes, or nil
// when the text contains no action keyword. The returned signal may still be
// incomplete; callers decide with Validate. A text describing a past trade is
// not distinguished from a forward-looking setup here; only the image
// pipeline classifies that.
func Extract(text string) *domain.Signal {
	if text == "" {
		return nil
	}
	upper := strings.ToUpper(text)

	m := actionPattern.FindStringSubmatch(upper)
	if m == nil {
		return nil
	}

	sig := &domain.Signal{
		Action:     normalizeAction(m[1]),
		Instrument: findInstrument(upper),
		Origin:     domain.OriginText,
		RawText:    text,
	}

	if v, ok := firstPrice(entryPattern, upper); ok {
		sig.EntryPrice = &v
	} else if v, ok := firstPrice(pricePattern, upper); ok {
		sig.EntryPrice = &v
	}
	if v, ok := firstPrice(stopLossPattern, upper); ok {
		sig.StopLoss = &v
	}
	for _, tp := range takeProfitPattern.FindAllStringSubmatch(upper, -1) {
		for _, raw := range numberPattern.FindAllString(tp[1], -1) {
			if v, err := strconv.ParseFloat(raw, 64); err == nil {
				sig.TakeProfits = append(sig.TakeProfits, v)
			}
		}
	}

	return sig
}

// Validate reports whether a signal carries the minimum required fields.
// Prices are never required.
func Validate(sig *domain.Signal) bool {
	return sig != nil && sig.Action != "" && sig.Instrument != ""
}

func normalizeAction(raw string) domain.SignalAction {
	switch raw {
	case "LONG":
		return domain.ActionBuy
	case "SHORT":
		return domain.ActionSell
	default:
		return domain.SignalAction(raw)
	}
}

func findInstrument(upper string) string {
	for _, m := range instrumentPattern.FindAllStringSubmatch(upper, -1) {
		if _, skip := instrumentStopwords[m[1]]; skip {
			continue
		}
		return m[1]
	}
	return ""
}

func firstPrice(pattern *regexp.Regexp, upper string) (float64, bool) {
	m := pattern.FindStringSubmatch(upper)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
