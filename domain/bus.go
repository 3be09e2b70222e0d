package domain

import "context"

// IntentProducer publishes delta intents to the message bus. Intents
// for the same post must land on the same partition so their applies
// are never reordered across retries.
type IntentProducer interface {
	Publish(ctx context.Context, intent DeltaIntent) error
}

// DeadLetterSink durably records messages that could not be processed,
// for offline inspection or replay. Send failures are logged by the
// implementation, never retried indefinitely.
type DeadLetterSink interface {
	Send(ctx context.Context, payload []byte, cause error) error
}

// IntentProcessor handles one raw message from the bus to completion,
// retries included. It owns routing to the dead-letter sink; an error
// return means no terminal outcome was reached and the message should
// be redelivered.
type IntentProcessor interface {
	Process(ctx context.Context, payload []byte) error
}
