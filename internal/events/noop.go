package events

import "context"

// NoopPublisher discards all events. Used when no NATS URL is configured.
type NoopPublisher struct{}

func NewNoopPublisher() *NoopPublisher { return &NoopPublisher{} }

func (*NoopPublisher) Publish(ctx context.Context, topic string, event any) error { return nil }

func (*NoopPublisher) Close() error { return nil }
