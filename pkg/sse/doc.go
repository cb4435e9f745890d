// Package sse implements the server-sent-events plumbing used on both
// sides of the bridge: an incremental parser that turns arbitrarily
// chunked upstream bytes into completed event payloads, and a writer
// that frames outgoing events and flushes them to the caller immediately.
package sse
