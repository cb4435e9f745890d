package proxy

import (
	"log/slog"
	"net/http"

	"github.com/rhuss/codex-chat-bridge/pkg/api"
)

// logUpstreamRequest records what is about to leave the bridge: the
// conversational part of the payload, the headers with the credential
// redacted, and the full payload. Verbose mode only.
func (p *Proxy) logUpstreamRequest(caller api.WireAPI, payload map[string]any, incoming http.Header) {
	direction := slog.String("direction", string(caller)+"->"+string(p.upstreamWire))

	if messages := upstreamMessagesForLogging(p.upstreamWire, payload); messages != nil {
		p.logger.Info("upstream messages", direction, slog.Any("messages", messages))
	}
	p.logger.Info("upstream headers", direction,
		slog.Any("headers", upstreamHeadersForLogging(incoming, p.apiKey)))
	p.logger.Info("upstream payload", direction, slog.Any("payload", payload))
}

// upstreamMessagesForLogging extracts the message-like portion of an
// upstream payload. For the responses wire only typed message items are
// interesting; tool plumbing is covered by the full payload line.
func upstreamMessagesForLogging(wire api.WireAPI, payload map[string]any) any {
	if wire == api.WireChat {
		return payload["messages"]
	}
	input, ok := payload["input"].([]any)
	if !ok {
		return nil
	}
	messages := make([]any, 0, len(input))
	for _, item := range input {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if t, _ := obj["type"].(string); t == "message" {
			messages = append(messages, item)
		}
	}
	return messages
}

// upstreamHeadersForLogging reconstructs the header set sent upstream with
// the bearer token replaced by a redaction marker.
func upstreamHeadersForLogging(incoming http.Header, apiKey string) map[string]string {
	out := map[string]string{
		"authorization": "Bearer " + redactSecret(apiKey),
		"content-type":  "application/json",
	}
	for _, name := range api.ForwardedHeaders {
		if v := incoming.Get(name); v != "" {
			out[name] = v
		}
	}
	return out
}

func redactSecret(secret string) string {
	if secret == "" {
		return "<empty>"
	}
	return "<redacted>"
}
