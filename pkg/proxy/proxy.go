package proxy

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/rhuss/codex-chat-bridge/pkg/api"
	"github.com/rhuss/codex-chat-bridge/pkg/translate"
)

// osExit is swapped out in tests so the shutdown endpoint can be exercised
// without terminating the test binary.
var osExit = os.Exit

// Config holds everything the dispatcher needs to talk to one upstream.
type Config struct {
	UpstreamURL   string
	UpstreamWire  api.WireAPI
	APIKey        string
	HTTPShutdown  bool
	Verbose       bool
	DropToolTypes map[string]bool

	// Client is optional. The default client carries no timeout because
	// translated streams stay open for the lifetime of the generation.
	Client *http.Client

	Logger *slog.Logger
}

// Proxy accepts requests on both wire schemas, transcodes them toward the
// configured upstream, and frames the upstream's answer in the mode the
// caller expects.
type Proxy struct {
	client        *http.Client
	upstreamURL   string
	upstreamWire  api.WireAPI
	apiKey        string
	httpShutdown  bool
	verbose       bool
	dropToolTypes map[string]bool
	logger        *slog.Logger
}

// New creates a Proxy from the given config.
func New(cfg Config) *Proxy {
	client := cfg.Client
	if client == nil {
		client = &http.Client{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	drop := cfg.DropToolTypes
	if drop == nil {
		drop = map[string]bool{}
	}
	return &Proxy{
		client:        client,
		upstreamURL:   cfg.UpstreamURL,
		upstreamWire:  cfg.UpstreamWire,
		apiKey:        cfg.APIKey,
		httpShutdown:  cfg.HTTPShutdown,
		verbose:       cfg.Verbose,
		dropToolTypes: drop,
		logger:        logger,
	}
}

// Handler returns the HTTP mux exposing both ingest endpoints plus the
// health and optional shutdown endpoints.
func (p *Proxy) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/responses", func(w http.ResponseWriter, r *http.Request) {
		p.handleIncoming(w, r, api.WireResponses)
	})
	mux.HandleFunc("POST /v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		p.handleIncoming(w, r, api.WireChat)
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "ok")
	})
	mux.HandleFunc("GET /shutdown", p.handleShutdown)
	return mux
}

func (p *Proxy) handleShutdown(w http.ResponseWriter, _ *http.Request) {
	if !p.httpShutdown {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	p.logger.Info("shutdown requested via http endpoint")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "shutting down")
	go func() {
		// Give the response a moment to reach the caller.
		time.Sleep(50 * time.Millisecond)
		osExit(0)
	}()
}

func (p *Proxy) handleIncoming(w http.ResponseWriter, r *http.Request, caller api.WireAPI) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		p.writeError(w, caller.StreamDefault(),
			api.NewInvalidRequestError(fmt.Sprintf("failed to read request body: %v", err)))
		return
	}
	if p.verbose {
		p.logger.Info("incoming request body",
			slog.String("api", string(caller)),
			slog.String("body", string(body)))
	}

	var req map[string]any
	if err := json.Unmarshal(body, &req); err != nil {
		p.writeError(w, caller.StreamDefault(),
			api.NewInvalidRequestError(fmt.Sprintf("failed to parse request JSON: %v", err)))
		return
	}

	stream := streamFlag(req, caller)
	translate.FilterTools(req, p.dropToolTypes)

	responseID := api.NewResponseID()
	payload, err := p.buildUpstreamPayload(req, caller, stream)
	if err != nil {
		p.writeError(w, stream, err)
		return
	}

	if p.verbose {
		p.logUpstreamRequest(caller, payload, r.Header)
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		p.writeError(w, stream,
			api.NewInvalidRequestError(fmt.Sprintf("failed to encode upstream payload: %v", err)))
		return
	}

	upReq, err := http.NewRequestWithContext(r.Context(), http.MethodPost, p.upstreamURL, bytes.NewReader(encoded))
	if err != nil {
		p.writeError(w, stream,
			api.NewUpstreamTransportError(fmt.Sprintf("failed to build upstream request: %v", err)))
		return
	}
	upReq.Header.Set("Content-Type", "application/json")
	upReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	for _, name := range api.ForwardedHeaders {
		if v := r.Header.Get(name); v != "" {
			upReq.Header.Set(name, v)
		}
	}

	resp, err := p.client.Do(upReq)
	if err != nil {
		p.writeError(w, stream,
			api.NewUpstreamTransportError(fmt.Sprintf("failed to call upstream endpoint: %v", err)))
		return
	}
	defer resp.Body.Close()

	if p.verbose {
		p.logger.Info("upstream response status", slog.String("status", resp.Status))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errBody, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			errBody = []byte("<failed to read error body>")
		}
		if p.verbose {
			p.logger.Info("upstream error body", slog.String("body", string(errBody)))
		}
		message := fmt.Sprintf("upstream returned %d %s: %s",
			resp.StatusCode, http.StatusText(resp.StatusCode), errBody)
		p.writeError(w, stream, api.NewUpstreamError(message))
		return
	}

	if stream {
		if p.upstreamWire == api.WireChat {
			p.translateChatStream(r.Context(), w, resp.Body, responseID)
		} else {
			p.passthroughResponsesStream(r.Context(), w, resp.Body)
		}
		return
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		p.writeError(w, false,
			api.NewUpstreamDecodeError(fmt.Sprintf("failed to read upstream body: %v", err)))
		return
	}

	// Same-schema callers get the upstream document verbatim.
	if caller == p.upstreamWire {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(raw)
		return
	}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		p.writeError(w, false,
			api.NewUpstreamDecodeError(fmt.Sprintf("failed to decode upstream JSON: %v", err)))
		return
	}

	var out map[string]any
	if p.upstreamWire == api.WireChat {
		out = translate.ChatResponseToResponses(doc, responseID)
	} else {
		// Responses documents pass through to chat callers unchanged.
		out = doc
	}
	writeJSON(w, out)
}

// streamFlag reads the request's explicit stream field, falling back to the
// schema default when absent or non-boolean.
func streamFlag(req map[string]any, caller api.WireAPI) bool {
	if v, ok := req["stream"].(bool); ok {
		return v
	}
	return caller.StreamDefault()
}

func (p *Proxy) buildUpstreamPayload(req map[string]any, caller api.WireAPI, stream bool) (map[string]any, error) {
	switch {
	case caller == p.upstreamWire:
		translate.SetStreamFlag(req, stream)
		return req, nil
	case p.upstreamWire == api.WireChat:
		return translate.ResponsesToChat(req, stream)
	default:
		return translate.ChatToResponses(req, stream)
	}
}

func writeJSON(w http.ResponseWriter, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "internal serialization error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
