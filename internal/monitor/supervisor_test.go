package monitor

import (
	"context"
	"sync"
	"testing"

	"tradewatch/internal/domain"
)

func TestSupervisorStartChannelIsIdempotent(t *testing.T) {
	sess := newFakeSession()
	transport := &fakeTransport{sess: sess}
	sup := NewSupervisor(Deps{Transport: transport, Store: &fakeStore{}})
	defer sup.StopAll()

	sup.StartChannel(1, "@c", "C")
	sup.StartChannel(1, "@c", "C")

	eventually(t, func() bool {
		st, ok := sup.MonitorState(1)
		return ok && st == domain.ChannelRunning
	})
	if got := transport.connectCount(); got != 1 {
		t.Errorf("duplicate start must not spawn a second monitor, got %d connects", got)
	}
}

func TestSupervisorStopChannelJoinsTheMonitor(t *testing.T) {
	sess := newFakeSession()
	store := &fakeStore{}
	sup := NewSupervisor(Deps{Transport: transport(sess), Store: store})

	sup.StartChannel(1, "@c", "C")
	eventually(t, func() bool { return sup.IsRunning(1) && store.hasStatus(domain.ChannelRunning) })

	sup.StopChannel(1)

	// StopChannel returns only after the run loop has fully exited.
	if !sess.isClosed() {
		t.Error("session must be closed before StopChannel returns")
	}
	if sup.IsRunning(1) {
		t.Error("channel still registered after stop")
	}
	if store.lastStatus().state != domain.ChannelStopped {
		t.Errorf("expected stopped status persisted, got %+v", store.lastStatus())
	}
}

func TestSupervisorStopUnknownChannelIsANoOp(t *testing.T) {
	sup := NewSupervisor(Deps{Transport: transport(newFakeSession()), Store: &fakeStore{}})
	sup.StopChannel(99)
}

func TestSupervisorStopAll(t *testing.T) {
	sessions := []*fakeSession{newFakeSession(), newFakeSession(), newFakeSession()}
	store := &fakeStore{}
	sup := NewSupervisor(Deps{Transport: &roundRobinTransport{sessions: sessions}, Store: store})

	sup.StartChannel(1, "@a", "A")
	sup.StartChannel(2, "@b", "B")
	sup.StartChannel(3, "@c", "C")
	eventually(t, func() bool {
		return sup.IsRunning(1) && sup.IsRunning(2) && sup.IsRunning(3)
	})

	sup.StopAll()

	for id := int64(1); id <= 3; id++ {
		if sup.IsRunning(id) {
			t.Errorf("channel %d still running after StopAll", id)
		}
	}
	for i, s := range sessions {
		if !s.isClosed() {
			t.Errorf("session %d not closed after StopAll", i)
		}
	}
}

func TestSupervisorMonitorStateForUnknownChannel(t *testing.T) {
	sup := NewSupervisor(Deps{Transport: transport(newFakeSession()), Store: &fakeStore{}})
	st, ok := sup.MonitorState(42)
	if ok {
		t.Error("unknown channel should not report a registered monitor")
	}
	if st != domain.ChannelStopped {
		t.Errorf("unknown channel should report stopped, got %s", st)
	}
}

func transport(sess *fakeSession) *fakeTransport {
	return &fakeTransport{sess: sess}
}

// roundRobinTransport hands out a distinct session per Connect call so each
// monitor in a multi-channel test gets its own.
type roundRobinTransport struct {
	mu       sync.Mutex
	sessions []*fakeSession
	next     int
}

func (t *roundRobinTransport) Connect(ctx context.Context) (Session, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	sess := t.sessions[t.next%len(t.sessions)]
	t.next++
	return sess, nil
}
