package syncer

import "time"

// Status is the engine's in-memory sync state. It is never persisted: the
// process starts idle and the engine alone mutates it. Consumers subscribe
// to EventSyncStatus rather than polling.
type Status struct {
	IsSyncing bool

	// LastSync is the end of the most recent pass that pushed every
	// pending item successfully. Zero when no such pass has happened.
	LastSync time.Time

	// PendingItems counts items still awaiting backend acknowledgement;
	// TotalItems is the pending count at the start of the current pass.
	PendingItems int
	TotalItems   int

	// Progress runs 0–100 across the current pass.
	Progress int

	// Errors holds the failure messages recorded during the current pass,
	// one per failed item.
	Errors []string

	// DeadLettered counts items parked after exhausting their retry budget.
	DeadLettered int
}

// clone returns a copy safe to hand to subscribers.
func (s Status) clone() Status {
	out := s
	out.Errors = append([]string(nil), s.Errors...)
	return out
}

// Status returns a copy of the current sync status.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status.clone()
}

// setStatus applies fn to the status under lock and notifies subscribers.
func (e *Engine) setStatus(fn func(*Status)) {
	e.mu.Lock()
	fn(&e.status)
	snapshot := e.status.clone()
	e.mu.Unlock()

	e.bus.publish(Event{Type: EventSyncStatus, Status: snapshot})
}
