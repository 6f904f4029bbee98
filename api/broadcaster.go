package api

import (
	"sync"
)

// EventType categorizes a broadcast event. Unchanged in shape from the
// teacher's api/broadcaster.go; only the meaning of each case moved from
// VM execution events to analysis-job lifecycle events.
type EventType string

const (
	// EventTypeJobState reports a job lifecycle transition (running/done/failed).
	EventTypeJobState EventType = "job_state"
	// EventTypeLog reports a progress/log line emitted while a job runs.
	EventTypeLog EventType = "log"
)

// BroadcastEvent is sent to every matching WebSocket subscriber.
type BroadcastEvent struct {
	Type  EventType              `json:"type"`
	JobID string                 `json:"jobId"`
	Data  map[string]interface{} `json:"data"`
}

// Subscription is one client's filtered view of the broadcast stream.
type Subscription struct {
	JobID      string
	EventTypes map[EventType]bool
	Channel    chan BroadcastEvent
}

// Broadcaster fans out analysis-job events to any number of subscribed
// WebSocket clients. Grounded on the teacher's api/broadcaster.go — same
// register/unregister/broadcast channel loop, unchanged.
type Broadcaster struct {
	mu            sync.RWMutex
	subscriptions map[*Subscription]bool
	broadcast     chan BroadcastEvent
	register      chan *Subscription
	unregister    chan *Subscription
	done          chan struct{}
}

// NewBroadcaster creates and starts a new event broadcaster.
func NewBroadcaster() *Broadcaster {
	b := &Broadcaster{
		subscriptions: make(map[*Subscription]bool),
		broadcast:     make(chan BroadcastEvent, 256),
		register:      make(chan *Subscription),
		unregister:    make(chan *Subscription),
		done:          make(chan struct{}),
	}

	go b.run()
	return b
}

func (b *Broadcaster) run() {
	for {
		select {
		case sub := <-b.register:
			b.mu.Lock()
			b.subscriptions[sub] = true
			b.mu.Unlock()

		case sub := <-b.unregister:
			b.mu.Lock()
			if b.subscriptions[sub] {
				delete(b.subscriptions, sub)
				close(sub.Channel)
			}
			b.mu.Unlock()

		case event := <-b.broadcast:
			b.mu.RLock()
			for sub := range b.subscriptions {
				if sub.JobID != "" && sub.JobID != event.JobID {
					continue
				}
				if len(sub.EventTypes) > 0 && !sub.EventTypes[event.Type] {
					continue
				}
				select {
				case sub.Channel <- event:
				default:
					// slow client, drop this event rather than block the broadcaster
				}
			}
			b.mu.RUnlock()

		case <-b.done:
			b.mu.Lock()
			for sub := range b.subscriptions {
				close(sub.Channel)
			}
			b.subscriptions = make(map[*Subscription]bool)
			b.mu.Unlock()
			return
		}
	}
}

// Subscribe creates a new subscription. jobID filters to one job (empty =
// all jobs); eventTypes filters by type (empty = all types).
func (b *Broadcaster) Subscribe(jobID string, eventTypes []EventType) *Subscription {
	eventTypeMap := make(map[EventType]bool)
	for _, et := range eventTypes {
		eventTypeMap[et] = true
	}

	sub := &Subscription{
		JobID:      jobID,
		EventTypes: eventTypeMap,
		Channel:    make(chan BroadcastEvent, 64),
	}

	b.register <- sub
	return sub
}

// Unsubscribe removes a subscription and closes its channel.
func (b *Broadcaster) Unsubscribe(sub *Subscription) {
	b.unregister <- sub
}

// Broadcast sends an event to every matching subscription, dropping it if
// the broadcaster's internal channel is full rather than blocking the caller.
func (b *Broadcaster) Broadcast(event BroadcastEvent) {
	select {
	case b.broadcast <- event:
	default:
	}
}

// BroadcastJobState sends a job lifecycle transition.
func (b *Broadcaster) BroadcastJobState(jobID string, state string) {
	b.Broadcast(BroadcastEvent{
		Type:  EventTypeJobState,
		JobID: jobID,
		Data:  map[string]interface{}{"state": state},
	})
}

// BroadcastLog sends one progress/log line for a job.
func (b *Broadcaster) BroadcastLog(jobID string, line string) {
	b.Broadcast(BroadcastEvent{
		Type:  EventTypeLog,
		JobID: jobID,
		Data:  map[string]interface{}{"line": line},
	})
}

// Close shuts down the broadcaster and closes every subscription.
func (b *Broadcaster) Close() {
	close(b.done)
}

// SubscriptionCount returns the number of active subscriptions.
func (b *Broadcaster) SubscriptionCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscriptions)
}
