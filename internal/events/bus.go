package events

import (
	"sync"
	"time"

	"futures-capital-allocator/internal/allocation"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventAllocationPass EventType = "ALLOCATION_PASS"
	EventSignalRejected EventType = "SIGNAL_REJECTED"
	EventMarginLock     EventType = "MARGIN_LOCK"
	EventError          EventType = "ERROR"
)

// Event represents a system event
type Event struct {
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
}

// Subscriber is a function that handles events
type Subscriber func(Event)

// EventBus manages event publishing and subscriptions
type EventBus struct {
	mu          sync.RWMutex
	subscribers map[EventType][]Subscriber
	allSubs     []Subscriber // Subscribers to all events
}

// NewEventBus creates a new event bus
func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make(map[EventType][]Subscriber),
		allSubs:     make([]Subscriber, 0),
	}
}

// Subscribe registers a subscriber for a specific event type
func (eb *EventBus) Subscribe(eventType EventType, subscriber Subscriber) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.subscribers[eventType] = append(eb.subscribers[eventType], subscriber)
}

// SubscribeAll registers a subscriber for all events
func (eb *EventBus) SubscribeAll(subscriber Subscriber) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.allSubs = append(eb.allSubs, subscriber)
}

// Publish sends an event to all subscribers
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	// Set timestamp if not provided
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	// Notify specific subscribers
	if subs, ok := eb.subscribers[event.Type]; ok {
		for _, sub := range subs {
			go sub(event) // Run in goroutine to avoid blocking
		}
	}

	// Notify all-event subscribers
	for _, sub := range eb.allSubs {
		go sub(event)
	}
}

// PublishAllocationPass publishes the outcome of one allocation pass
func (eb *EventBus) PublishAllocationPass(result *allocation.AllocationResult) {
	eb.Publish(Event{
		Type: EventAllocationPass,
		Data: map[string]interface{}{
			"pass_id":          result.Summary.PassID,
			"margin_status":    string(result.Summary.MarginStatus),
			"funded_count":     result.Summary.FundedCount,
			"rejected_count":   result.Summary.RejectedCount,
			"spent_budget":     result.Summary.SpentBudget,
			"remaining_budget": result.Summary.RemainingBudget,
			"abort_reason":     string(result.Summary.AbortReason),
			"allocations":      result.Allocations,
		},
	})
}

// PublishSignalRejections publishes one event per rejected candidate
func (eb *EventBus) PublishSignalRejections(passID string, rejections []allocation.RejectedSignal) {
	for _, rej := range rejections {
		eb.Publish(Event{
			Type: EventSignalRejected,
			Data: map[string]interface{}{
				"pass_id":       passID,
				"symbol":        rej.Symbol,
				"reason":        string(rej.Reason),
				"detail":        rej.Detail,
				"quality_score": rej.QualityScore,
			},
		})
	}
}

// PublishMarginLock publishes a margin lock event when a pass is blocked
func (eb *EventBus) PublishMarginLock(passID string, health allocation.MarginHealthStatus) {
	eb.Publish(Event{
		Type: EventMarginLock,
		Data: map[string]interface{}{
			"pass_id":        passID,
			"usage_ratio":    health.UsageRatio,
			"current_margin": health.CurrentMargin,
			"max_margin":     health.MaxMargin,
			"message":        health.Message,
		},
	})
}

// PublishError publishes an error event
func (eb *EventBus) PublishError(source, message string, err error) {
	data := map[string]interface{}{
		"source":  source,
		"message": message,
	}
	if err != nil {
		data["error"] = err.Error()
	}
	eb.Publish(Event{
		Type: EventError,
		Data: data,
	})
}
