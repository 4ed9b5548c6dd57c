package monitor

import (
	"context"
	"log"
	"sync"

	"tradewatch/internal/domain"
)

// Supervisor is the registry of active monitors, one per channel id. It is
// safe for concurrent use; a channel id never maps to more than one running
// monitor.
type Supervisor struct {
	deps Deps

	mu      sync.Mutex
	entries map[int64]*entry
}

type entry struct {
	monitor *Monitor
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewSupervisor(deps Deps) *Supervisor {
	return &Supervisor{
		deps:    deps,
		entries: make(map[int64]*entry),
	}
}

// SetNotifier installs the alert notifier for monitors started afterwards.
// Breaks the construction cycle: the notifier is built from services that in
// turn depend on the supervisor.
func (s *Supervisor) SetNotifier(n Notifier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deps.Notifier = n
}

// StartChannel launches a monitor goroutine for the channel. A channel that
// is already being monitored is a warning no-op: a second subscription to
// the same channel is never created.
func (s *Supervisor) StartChannel(channelID int64, username, name string) {
	s.mu.Lock()
	if _, exists := s.entries[channelID]; exists {
		s.mu.Unlock()
		log.Printf("channel %s is already being monitored", name)
		return
	}

	// Monitor lifetime is bound to the supervisor, not to any request.
	ctx, cancel := context.WithCancel(context.Background())
	e := &entry{
		monitor: NewMonitor(channelID, username, name, s.deps),
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	s.entries[channelID] = e
	s.mu.Unlock()

	go func() {
		defer close(e.done)
		e.monitor.Run(ctx)
	}()
	log.Printf("started monitoring channel %s", name)
}

// StopChannel cancels the channel's monitor and joins its goroutine before
// removing it from the registry, so the underlying session is confirmed
// closed and no task handle leaks. Stopping an unknown channel is a warning
// no-op.
func (s *Supervisor) StopChannel(channelID int64) {
	s.mu.Lock()
	e, ok := s.entries[channelID]
	s.mu.Unlock()
	if !ok {
		log.Printf("channel %d is not being monitored", channelID)
		return
	}

	e.cancel()
	<-e.done

	s.mu.Lock()
	delete(s.entries, channelID)
	s.mu.Unlock()
	log.Printf("stopped monitoring channel %d", channelID)
}

// StopAll stops every registered channel. Order across channels is
// unspecified; each individual stop is fully sequenced.
func (s *Supervisor) StopAll() {
	for _, id := range s.registeredIDs() {
		s.StopChannel(id)
	}
}

// IsRunning reports whether the channel currently has a registered monitor.
func (s *Supervisor) IsRunning(channelID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[channelID]
	return ok
}

// MonitorState returns the lifecycle state of the channel's monitor.
func (s *Supervisor) MonitorState(channelID int64) (domain.ChannelState, bool) {
	s.mu.Lock()
	e, ok := s.entries[channelID]
	s.mu.Unlock()
	if !ok {
		return domain.ChannelStopped, false
	}
	return e.monitor.State(), true
}

func (s *Supervisor) registeredIDs() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int64, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	return ids
}
