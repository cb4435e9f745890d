package api

import "fmt"

// WireAPI identifies one of the two LLM wire protocols the bridge speaks.
// It is used both for the schema of an incoming request (determined by the
// endpoint the caller hit) and for the schema of the configured upstream.
type WireAPI string

const (
	// WireChat is the OpenAI-style Chat Completions protocol: chat messages
	// with roles, streamed as incremental JSON deltas plus a [DONE] sentinel.
	WireChat WireAPI = "chat"

	// WireResponses is the Responses protocol: typed input items, streamed
	// as named server-sent events.
	WireResponses WireAPI = "responses"
)

// ParseWireAPI validates a wire API name from configuration or flags.
func ParseWireAPI(s string) (WireAPI, error) {
	switch WireAPI(s) {
	case WireChat, WireResponses:
		return WireAPI(s), nil
	default:
		return "", fmt.Errorf("unknown wire API %q (want %q or %q)", s, WireChat, WireResponses)
	}
}

// StreamDefault returns the streaming mode assumed when a request body on
// this schema carries no explicit `stream` flag. Responses callers default
// to streaming, Chat callers to unary; the caller's expected framing (SSE
// vs JSON) depends on this, so the asymmetry must be preserved.
func (w WireAPI) StreamDefault() bool {
	return w == WireResponses
}

// ForwardedHeaders lists the caller headers echoed verbatim to the upstream.
var ForwardedHeaders = []string{
	"openai-organization",
	"openai-project",
	"x-openai-subagent",
	"x-codex-turn-state",
	"x-codex-turn-metadata",
}
