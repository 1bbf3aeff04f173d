package watcher

// EventType defines the type of event being broadcast.
type EventType string

const (
	EventRatesUpdated   EventType = "rates_updated"
	EventBalancesLoaded EventType = "balances_loaded"
	EventSyncResult     EventType = "sync_result"
)

// Event represents a monitoring event.
type Event struct {
	Type EventType
	Data interface{}
}

// Subscriber is a channel that receives events.
type Subscriber chan Event
