package proxy

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"github.com/rhuss/codex-chat-bridge/pkg/api"
	"github.com/rhuss/codex-chat-bridge/pkg/sse"
)

// streamReadSize is the upstream read chunk size. Chunk boundaries carry no
// meaning; the SSE parser reassembles events across them.
const streamReadSize = 32 * 1024

// chatChunk is the decoded shape of one Chat Completions stream chunk.
// Pointer fields distinguish absent from empty.
type chatChunk struct {
	Choices []chatChoice `json:"choices"`
	Usage   *chatUsage   `json:"usage"`
}

type chatChoice struct {
	Delta *chatDelta `json:"delta"`
}

type chatDelta struct {
	Content   *string             `json:"content"`
	ToolCalls []chatToolCallDelta `json:"tool_calls"`
}

type chatToolCallDelta struct {
	Index    *int               `json:"index"`
	ID       *string            `json:"id"`
	Function *chatFunctionDelta `json:"function"`
}

type chatFunctionDelta struct {
	Name      *string `json:"name"`
	Arguments *string `json:"arguments"`
}

type chatUsage struct {
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
	TotalTokens      int64 `json:"total_tokens"`
}

// toolCallState accumulates one tool call across its argument fragments.
type toolCallState struct {
	id        string
	name      string
	arguments strings.Builder
}

// streamAccumulator gathers everything that must be replayed as terminal
// items once the upstream stream ends.
type streamAccumulator struct {
	assistantText strings.Builder
	toolCalls     map[int]*toolCallState
	usage         *chatUsage
}

func newStreamAccumulator() *streamAccumulator {
	return &streamAccumulator{toolCalls: map[int]*toolCallState{}}
}

func (a *streamAccumulator) toolCall(index int) *toolCallState {
	if state, ok := a.toolCalls[index]; ok {
		return state
	}
	state := &toolCallState{}
	a.toolCalls[index] = state
	return state
}

// translateChatStream consumes a Chat Completions SSE stream and emits the
// equivalent Responses event stream. Text deltas are forwarded as they
// arrive; tool calls and the final message item are emitted only once the
// upstream finishes, because fragments carry no completion marker of their
// own.
func (p *Proxy) translateChatStream(ctx context.Context, w http.ResponseWriter, body io.Reader, responseID string) {
	writeStreamHeaders(w)
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	sw := sse.NewWriter(w)

	if err := sw.WriteEvent(string(api.EventResponseCreated), map[string]any{
		"type":     api.EventResponseCreated,
		"response": map[string]any{"id": responseID},
	}); err != nil {
		return
	}

	parser := &sse.Parser{}
	acc := newStreamAccumulator()
	itemAdded := false

	buf := make([]byte, streamReadSize)
	for {
		if ctx.Err() != nil {
			return
		}
		n, err := body.Read(buf)
		if n > 0 {
			for _, data := range parser.Feed(string(buf[:n])) {
				if data == "[DONE]" {
					continue
				}
				if !p.applyChatData(sw, acc, data, &itemAdded) {
					return
				}
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			sw.WriteEvent(string(api.EventResponseFailed), map[string]any{
				"type": api.EventResponseFailed,
				"response": map[string]any{
					"id": responseID,
					"error": map[string]any{
						"code":    api.ErrorCodeUpstreamStream,
						"message": err.Error(),
					},
				},
			})
			return
		}
	}

	if data, ok := parser.Finish(); ok && data != "[DONE]" {
		p.logger.Warn("trailing sse payload without terminator", slog.String("data", data))
	}

	p.emitTerminalEvents(sw, acc, responseID)
}

// applyChatData decodes one upstream data payload and forwards its deltas.
// It reports false when the caller connection is gone.
func (p *Proxy) applyChatData(sw *sse.Writer, acc *streamAccumulator, data string, itemAdded *bool) bool {
	var chunk chatChunk
	if err := json.Unmarshal([]byte(data), &chunk); err != nil {
		p.logger.Warn("failed to decode upstream chat chunk", slog.String("error", err.Error()))
		return true
	}

	if chunk.Usage != nil {
		acc.usage = chunk.Usage
	}

	for _, choice := range chunk.Choices {
		if choice.Delta == nil {
			continue
		}

		if choice.Delta.Content != nil && *choice.Delta.Content != "" {
			if !*itemAdded {
				if err := sw.WriteEvent(string(api.EventOutputItemAdded), map[string]any{
					"type": api.EventOutputItemAdded,
					"item": map[string]any{
						"type":    "message",
						"role":    "assistant",
						"content": []any{map[string]any{"type": "output_text", "text": ""}},
					},
				}); err != nil {
					return false
				}
				*itemAdded = true
			}
			acc.assistantText.WriteString(*choice.Delta.Content)
			if err := sw.WriteEvent(string(api.EventOutputTextDelta), map[string]any{
				"type":  api.EventOutputTextDelta,
				"delta": *choice.Delta.Content,
			}); err != nil {
				return false
			}
		}

		for _, call := range choice.Delta.ToolCalls {
			index := len(acc.toolCalls)
			if call.Index != nil {
				index = *call.Index
			}
			state := acc.toolCall(index)
			if call.ID != nil {
				state.id = *call.ID
			}
			if call.Function != nil {
				if call.Function.Name != nil {
					state.name = *call.Function.Name
				}
				if call.Function.Arguments != nil {
					state.arguments.WriteString(*call.Function.Arguments)
				}
			}
		}
	}
	return true
}

// emitTerminalEvents replays the accumulated message and tool calls as done
// items, then closes the envelope with response.completed.
func (p *Proxy) emitTerminalEvents(sw *sse.Writer, acc *streamAccumulator, responseID string) {
	if acc.assistantText.Len() > 0 {
		if err := sw.WriteEvent(string(api.EventOutputItemDone), map[string]any{
			"type": api.EventOutputItemDone,
			"item": map[string]any{
				"type": "message",
				"role": "assistant",
				"content": []any{
					map[string]any{"type": "output_text", "text": acc.assistantText.String()},
				},
			},
		}); err != nil {
			return
		}
	}

	indexes := make([]int, 0, len(acc.toolCalls))
	for index := range acc.toolCalls {
		indexes = append(indexes, index)
	}
	sort.Ints(indexes)

	for _, index := range indexes {
		state := acc.toolCalls[index]
		callID := state.id
		if callID == "" {
			callID = api.NewIndexedCallID(index)
		}
		name := state.name
		if name == "" {
			name = "unknown_function"
		}
		if err := sw.WriteEvent(string(api.EventOutputItemDone), map[string]any{
			"type": api.EventOutputItemDone,
			"item": map[string]any{
				"type":      "function_call",
				"name":      name,
				"arguments": state.arguments.String(),
				"call_id":   callID,
			},
		}); err != nil {
			return
		}
	}

	var usage any
	if acc.usage != nil {
		usage = map[string]any{
			"input_tokens":          acc.usage.PromptTokens,
			"input_tokens_details":  nil,
			"output_tokens":         acc.usage.CompletionTokens,
			"output_tokens_details": nil,
			"total_tokens":          acc.usage.TotalTokens,
		}
	}

	sw.WriteEvent(string(api.EventResponseCompleted), map[string]any{
		"type": api.EventResponseCompleted,
		"response": map[string]any{
			"id":    responseID,
			"usage": usage,
		},
	})
}

// passthroughResponsesStream copies an upstream Responses SSE stream to the
// caller byte for byte. A mid-stream read failure is surfaced as a synthetic
// response.failed event so the caller still sees a terminal event.
func (p *Proxy) passthroughResponsesStream(ctx context.Context, w http.ResponseWriter, body io.Reader) {
	writeStreamHeaders(w)
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	sw := sse.NewWriter(w)

	buf := make([]byte, streamReadSize)
	for {
		if ctx.Err() != nil {
			return
		}
		n, err := body.Read(buf)
		if n > 0 {
			if werr := sw.WriteRaw(buf[:n]); werr != nil {
				return
			}
		}
		if err == io.EOF {
			return
		}
		if err != nil {
			sw.WriteEvent(string(api.EventResponseFailed), map[string]any{
				"type": api.EventResponseFailed,
				"response": map[string]any{
					"error": map[string]any{
						"code":    api.ErrorCodeUpstreamStream,
						"message": err.Error(),
					},
				},
			})
			return
		}
	}
}

func writeStreamHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
}
