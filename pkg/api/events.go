package api

// StreamEventType identifies the type of a streaming event emitted on the
// Responses wire.
type StreamEventType string

// Lifecycle events. Every stream the bridge produces begins with exactly one
// response.created and ends with exactly one response.completed or
// response.failed.
const (
	EventResponseCreated   StreamEventType = "response.created"
	EventResponseCompleted StreamEventType = "response.completed"
	EventResponseFailed    StreamEventType = "response.failed"
)

// Content events emitted between the lifecycle envelope.
const (
	EventOutputItemAdded StreamEventType = "response.output_item.added"
	EventOutputTextDelta StreamEventType = "response.output_text.delta"
	EventOutputItemDone  StreamEventType = "response.output_item.done"
)
