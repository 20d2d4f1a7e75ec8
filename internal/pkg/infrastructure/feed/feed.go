// Package feed implements the client side of the backend's change feed. Each
// subscription holds a single dedicated connection to one (resource, event)
// topic and delivers change records in server commit order for that topic.
// No ordering exists across topics, and a dropped connection is never retried
// here; the delivery loop simply exits and reports on Err.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
)

type Resource string

const (
	Sensors    Resource = "sensors"
	Detections Resource = "ice_detections"
)

type EventKind string

const (
	EventInsert EventKind = "insert"
	EventUpdate EventKind = "update"
)

// ChangeRecord is the payload the backend publishes for every committed
// insert or update. Revision is the backend's commit counter and is strictly
// increasing per record change.
type ChangeRecord struct {
	Resource Resource        `json:"resource"`
	Event    EventKind       `json:"event"`
	Revision int64           `json:"revision"`
	Record   json.RawMessage `json:"record"`
}

func DecodeChangeRecord(payload []byte) (ChangeRecord, error) {
	var change ChangeRecord
	err := json.Unmarshal(payload, &change)
	if err != nil {
		return ChangeRecord{}, fmt.Errorf("could not decode change record: %w", err)
	}
	return change, nil
}

// Channel returns the notification channel name for a topic.
func Channel(resource Resource, event EventKind) string {
	return fmt.Sprintf("%s_%s", resource, event)
}

type ChangeHandler func(ctx context.Context, change ChangeRecord)

//go:generate moq -rm -out client_mock.go . Client
type Client interface {
	Subscribe(ctx context.Context, resource Resource, event EventKind, handler ChangeHandler) (Subscription, error)
}

// Subscription is one live topic connection. Unsubscribe tears the connection
// down and no further callback invocations happen after it returns, apart
// from deliveries already in flight (the transport has no synchronous
// barrier).
//
//go:generate moq -rm -out subscription_mock.go . Subscription
type Subscription interface {
	Err() <-chan error
	Unsubscribe(ctx context.Context) error
}
