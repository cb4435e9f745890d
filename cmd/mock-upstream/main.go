// Command mock-upstream runs a deterministic Chat Completions server for
// exercising the bridge without a real provider. Responses are derived from
// the request content:
//
//   - a prompt containing "fail" returns HTTP 500 with body "boom"
//   - a request carrying tools answers with one fragmented tool call
//   - anything else answers with a short text completion
//
// Configuration:
//
//	MOCK_UPSTREAM_PORT - Listen port (default: 9090)
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
)

func main() {
	port := os.Getenv("MOCK_UPSTREAM_PORT")
	if port == "" {
		port = "9090"
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/chat/completions", handleChatCompletions)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})

	srv := &http.Server{Addr: ":" + port, Handler: mux}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("mock upstream starting", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("mock upstream failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("mock upstream shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv.Shutdown(shutdownCtx)
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Tools    []any         `json:"tools,omitempty"`
	Stream   bool          `json:"stream"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

func handleChatCompletions(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":{"message":"invalid request","type":"invalid_request_error"}}`, http.StatusBadRequest)
		return
	}

	if strings.Contains(strings.ToLower(lastUserMessage(&req)), "fail") {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("boom"))
		return
	}

	if req.Stream {
		handleStreaming(w, &req)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(unaryResponse(&req))
}

func unaryResponse(req *chatRequest) map[string]any {
	message := map[string]any{"role": "assistant"}
	finish := "stop"
	if len(req.Tools) > 0 {
		message["content"] = nil
		message["tool_calls"] = []any{
			map[string]any{
				"id":   "call_mock_1",
				"type": "function",
				"function": map[string]any{
					"name":      "get_weather",
					"arguments": `{"location":"Berlin","unit":"celsius"}`,
				},
			},
		}
		finish = "tool_calls"
	} else {
		message["content"] = replyText(req)
	}

	return map[string]any{
		"id":     "chatcmpl-mock",
		"object": "chat.completion",
		"model":  modelName(req),
		"choices": []any{
			map[string]any{"index": 0, "message": message, "finish_reason": finish},
		},
		"usage": map[string]any{
			"prompt_tokens":     10,
			"completion_tokens": 5,
			"total_tokens":      15,
		},
	}
}

func handleStreaming(w http.ResponseWriter, req *chatRequest) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")

	model := modelName(req)

	if len(req.Tools) > 0 {
		// Ship the tool call in fragments, the way real providers do.
		writeChunk(w, flusher, model, map[string]any{
			"tool_calls": []any{map[string]any{
				"index": 0,
				"id":    "call_mock_1",
				"function": map[string]any{
					"name":      "get_weather",
					"arguments": `{"location":`,
				},
			}},
		})
		writeChunk(w, flusher, model, map[string]any{
			"tool_calls": []any{map[string]any{
				"index":    0,
				"function": map[string]any{"arguments": `"Berlin"}`},
			}},
		})
	} else {
		writeChunk(w, flusher, model, map[string]any{"role": "assistant"})
		for _, token := range tokenize(replyText(req)) {
			writeChunk(w, flusher, model, map[string]any{"content": token})
		}
	}

	writeFinishChunk(w, flusher, model)
	fmt.Fprint(w, "data: [DONE]\n\n")
	flusher.Flush()
}

func writeChunk(w http.ResponseWriter, flusher http.Flusher, model string, delta map[string]any) {
	chunk := map[string]any{
		"id":     "chatcmpl-mock-stream",
		"object": "chat.completion.chunk",
		"model":  model,
		"choices": []any{
			map[string]any{"index": 0, "delta": delta, "finish_reason": nil},
		},
	}
	data, _ := json.Marshal(chunk)
	fmt.Fprintf(w, "data: %s\n\n", data)
	flusher.Flush()
}

func writeFinishChunk(w http.ResponseWriter, flusher http.Flusher, model string) {
	chunk := map[string]any{
		"id":     "chatcmpl-mock-stream",
		"object": "chat.completion.chunk",
		"model":  model,
		"choices": []any{
			map[string]any{"index": 0, "delta": map[string]any{}, "finish_reason": "stop"},
		},
		"usage": map[string]any{
			"prompt_tokens":     10,
			"completion_tokens": 5,
			"total_tokens":      15,
		},
	}
	data, _ := json.Marshal(chunk)
	fmt.Fprintf(w, "data: %s\n\n", data)
	flusher.Flush()
}

func replyText(req *chatRequest) string {
	last := strings.ToLower(lastUserMessage(req))
	if strings.Contains(last, "count from 1 to 5") {
		return "1, 2, 3, 4, 5"
	}
	return "Hello from the mock upstream."
}

func tokenize(text string) []string {
	words := strings.SplitAfter(text, " ")
	out := make([]string, 0, len(words))
	for _, w := range words {
		if w != "" {
			out = append(out, w)
		}
	}
	return out
}

func modelName(req *chatRequest) string {
	if req.Model != "" {
		return req.Model
	}
	return "mock-model"
}

func lastUserMessage(req *chatRequest) string {
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role != "user" {
			continue
		}
		switch v := req.Messages[i].Content.(type) {
		case string:
			return v
		case []any:
			for _, part := range v {
				if m, ok := part.(map[string]any); ok {
					if text, ok := m["text"].(string); ok {
						return text
					}
				}
			}
		}
	}
	return ""
}
