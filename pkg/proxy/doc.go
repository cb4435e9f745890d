// Package proxy implements the bridge dispatcher: two POST endpoints (one
// per incoming wire schema), per-request mode selection, upstream dispatch
// with credential and header forwarding, and response framing in whichever
// mode the caller expects. Responses-schema callers always receive named SSE
// events when streaming; chat-schema streams from the upstream are translated
// on the fly.
package proxy
