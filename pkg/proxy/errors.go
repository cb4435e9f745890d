package proxy

import (
	"errors"
	"net/http"

	"github.com/rhuss/codex-chat-bridge/pkg/api"
	"github.com/rhuss/codex-chat-bridge/pkg/sse"
)

// writeError frames err in the mode the caller expects. Streaming callers
// get a minimal SSE stream (response.created followed by response.failed);
// unary callers get a JSON error document. Both carry HTTP 200 because the
// failure is expressed inside the body, not the transport.
func (p *Proxy) writeError(w http.ResponseWriter, stream bool, err error) {
	bridgeErr := asBridgeError(err)
	if stream {
		p.writeStreamError(w, bridgeErr)
		return
	}
	writeJSON(w, map[string]any{
		"error": map[string]any{
			"type":    bridgeErr.Code,
			"message": bridgeErr.Message,
		},
	})
}

func (p *Proxy) writeStreamError(w http.ResponseWriter, bridgeErr *api.BridgeError) {
	writeStreamHeaders(w)
	w.WriteHeader(http.StatusOK)
	sw := sse.NewWriter(w)

	responseID := api.NewResponseID()
	if err := sw.WriteEvent(string(api.EventResponseCreated), map[string]any{
		"type":     api.EventResponseCreated,
		"response": map[string]any{"id": responseID},
	}); err != nil {
		return
	}
	sw.WriteEvent(string(api.EventResponseFailed), map[string]any{
		"type": api.EventResponseFailed,
		"response": map[string]any{
			"id": responseID,
			"error": map[string]any{
				"code":    bridgeErr.Code,
				"message": bridgeErr.Message,
			},
		},
	})
}

// asBridgeError normalizes arbitrary errors into the invalid_request bucket
// unless they already carry a bridge code.
func asBridgeError(err error) *api.BridgeError {
	var bridgeErr *api.BridgeError
	if errors.As(err, &bridgeErr) {
		return bridgeErr
	}
	return api.NewInvalidRequestError(err.Error())
}
