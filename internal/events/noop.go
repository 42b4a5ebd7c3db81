package events

import "context"

// NoopPublisher is a Publisher that does nothing (used when NATS is not configured).
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, any) error { return nil }

func (NoopPublisher) Close() error { return nil }

// Open returns a NATS publisher for url, or a NoopPublisher when url is empty.
func Open(url, prefix string) (Publisher, error) {
	if url == "" {
		return NoopPublisher{}, nil
	}
	p, err := NewNATSPublisher(url, prefix)
	if err != nil {
		return nil, err
	}
	return p, nil
}
