package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tradewatch/internal/domain"
)

func TestGetSignalsSuccess(t *testing.T) {
	entry := 1.1
	signals := &handlerSignalStoreStub{
		signals: []domain.Signal{{
			ID:          1,
			ChannelID:   7,
			ChannelName: "FX Leaks",
			Action:      domain.ActionBuy,
			Instrument:  "EURUSD",
			EntryPrice:  &entry,
			Origin:      domain.OriginText,
			CreatedAt:   time.Unix(0, 0).UTC(),
		}},
	}
	h := newTestHandler(&handlerChannelStoreStub{}, &handlerSupervisorStub{}, signals)
	router := newTestRouter(h)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/signals?channel_id=7&limit=5", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if signals.lastFilter.ChannelID != 7 {
		t.Fatalf("expected channel filter 7, got %d", signals.lastFilter.ChannelID)
	}
	if signals.lastFilter.Limit != 5 {
		t.Fatalf("expected limit 5, got %d", signals.lastFilter.Limit)
	}

	var resp struct {
		Signals []domain.Signal `json:"signals"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(resp.Signals) != 1 || resp.Signals[0].Instrument != "EURUSD" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	if resp.Signals[0].Origin != domain.OriginText {
		t.Fatalf("expected signal_type in payload, got %+v", resp.Signals[0])
	}
}

func TestGetSignalsInvalidChannelID(t *testing.T) {
	h := newTestHandler(&handlerChannelStoreStub{}, &handlerSupervisorStub{}, &handlerSignalStoreStub{})
	router := newTestRouter(h)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/signals?channel_id=abc", nil))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestGetSignalsInvalidLimit(t *testing.T) {
	h := newTestHandler(&handlerChannelStoreStub{}, &handlerSupervisorStub{}, &handlerSignalStoreStub{})
	router := newTestRouter(h)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/signals?limit=9999", nil))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestGetRecentSignalsFiltersToday(t *testing.T) {
	signals := &handlerSignalStoreStub{}
	h := newTestHandler(&handlerChannelStoreStub{}, &handlerSupervisorStub{}, signals)
	router := newTestRouter(h)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/signals/recent", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if signals.lastFilter.Since.IsZero() {
		t.Fatal("expected a since filter for recent signals")
	}
	if signals.lastFilter.Limit != 20 {
		t.Fatalf("expected limit 20, got %d", signals.lastFilter.Limit)
	}
}
