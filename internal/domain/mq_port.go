package domain

import "context"

type Message struct {
	Key   []byte
	Value []byte
}

type EventPublisher interface {
	Publish(msg Message) error
}

// EventSubscriber delivers messages until ctx is cancelled; the channel
// closes when the consumer stops.
type EventSubscriber interface {
	Subscribe(ctx context.Context, topic, groupID string) (<-chan Message, error)
}
