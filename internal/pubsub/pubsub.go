package pubsub

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
)

// TopicAuthSession carries sign in and sign out notifications
const TopicAuthSession = "auth.session"

// Publisher publishes messages on a topic
type Publisher interface {
	Publish(ctx context.Context, topic string, msg *message.Message) error
	Close() error
}

// Subscriber consumes messages of a topic until ctx is done
type Subscriber interface {
	Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error)
	Close() error
}

// PubSub combines both Publisher and Subscriber interfaces
type PubSub interface {
	Publisher
	Subscriber
}
