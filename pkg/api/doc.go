// Package api defines the wire-level vocabulary shared by the bridge:
// the two supported wire protocols, the streaming event names of the
// Responses API, the structured error carried in failure payloads, and
// the identifier scheme for bridge-generated responses and tool calls.
package api
