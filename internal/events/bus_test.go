package events

import (
	"sync"
	"testing"
	"time"

	"futures-capital-allocator/internal/allocation"
)

// collector gathers events from asynchronous subscriber goroutines.
type collector struct {
	mu     sync.Mutex
	events []Event
	wg     sync.WaitGroup
}

func (c *collector) expect(n int) { c.wg.Add(n) }

func (c *collector) subscriber(e Event) {
	c.mu.Lock()
	c.events = append(c.events, e)
	c.mu.Unlock()
	c.wg.Done()
}

func (c *collector) wait(t *testing.T) []Event {
	t.Helper()
	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for events")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.events
}

func TestSubscribeReceivesMatchingType(t *testing.T) {
	bus := NewEventBus()
	c := &collector{}
	c.expect(1)
	bus.Subscribe(EventAllocationPass, c.subscriber)

	bus.Publish(Event{Type: EventAllocationPass, Data: map[string]interface{}{"pass_id": "p1"}})
	bus.Publish(Event{Type: EventError, Data: map[string]interface{}{"source": "other"}})

	got := c.wait(t)
	if len(got) != 1 {
		t.Fatalf("expected 1 event, got %d", len(got))
	}
	if got[0].Type != EventAllocationPass {
		t.Errorf("expected %s, got %s", EventAllocationPass, got[0].Type)
	}
	if got[0].Timestamp.IsZero() {
		t.Error("expected bus to stamp the event time")
	}
}

func TestSubscribeAllReceivesEverything(t *testing.T) {
	bus := NewEventBus()
	c := &collector{}
	c.expect(2)
	bus.SubscribeAll(c.subscriber)

	bus.Publish(Event{Type: EventAllocationPass})
	bus.Publish(Event{Type: EventMarginLock})

	if got := c.wait(t); len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
}

func TestPublishAllocationPassPayload(t *testing.T) {
	bus := NewEventBus()
	c := &collector{}
	c.expect(1)
	bus.Subscribe(EventAllocationPass, c.subscriber)

	result := &allocation.AllocationResult{
		Allocations: []allocation.AllocatedSignal{},
		Summary: allocation.AllocationSummary{
			PassID:        "pass-42",
			MarginStatus:  allocation.MarginHealthy,
			FundedCount:   3,
			RejectedCount: 1,
			SpentBudget:   900,
		},
	}
	bus.PublishAllocationPass(result)

	got := c.wait(t)
	data := got[0].Data
	if data["pass_id"] != "pass-42" {
		t.Errorf("expected pass_id pass-42, got %v", data["pass_id"])
	}
	if data["funded_count"] != 3 {
		t.Errorf("expected funded_count 3, got %v", data["funded_count"])
	}
	if data["margin_status"] != "HEALTHY" {
		t.Errorf("expected margin_status HEALTHY, got %v", data["margin_status"])
	}
}

func TestPublishSignalRejectionsOnePerCandidate(t *testing.T) {
	bus := NewEventBus()
	c := &collector{}
	c.expect(2)
	bus.Subscribe(EventSignalRejected, c.subscriber)

	bus.PublishSignalRejections("pass-43", []allocation.RejectedSignal{
		{Symbol: "DOGEUSDT", Reason: allocation.RejectBelowThreshold, QualityScore: 0.42},
		{Symbol: "SHIBUSDT", Reason: allocation.RejectInvalidLeverage, Detail: "NaN"},
	})

	got := c.wait(t)
	if len(got) != 2 {
		t.Fatalf("expected 2 rejection events, got %d", len(got))
	}
	symbols := map[interface{}]bool{}
	for _, e := range got {
		symbols[e.Data["symbol"]] = true
	}
	if !symbols["DOGEUSDT"] || !symbols["SHIBUSDT"] {
		t.Errorf("expected both symbols in events, got %v", symbols)
	}
}
