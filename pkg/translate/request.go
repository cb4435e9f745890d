package translate

import (
	"log/slog"
	"strings"

	"github.com/rhuss/codex-chat-bridge/pkg/api"
)

// ResponsesToChat maps a Responses-API request body onto the Chat
// Completions shape. The stream argument is the mode chosen by the
// dispatcher; it decides whether stream_options is attached.
//
// Input items translate as follows: message items flatten their text parts
// into a single chat message, function_call items become assistant messages
// carrying one tool call, and the three tool-output item variants become
// tool-role messages. Unknown item types are skipped with a warning.
func ResponsesToChat(req map[string]any, stream bool) (map[string]any, error) {
	model, ok := req["model"].(string)
	if !ok {
		return nil, api.NewInvalidRequestError("missing `model`")
	}
	input, ok := req["input"].([]any)
	if !ok {
		return nil, api.NewInvalidRequestError("missing `input` array")
	}

	messages := []any{}
	if instructions, _ := req["instructions"].(string); strings.TrimSpace(instructions) != "" {
		messages = append(messages, map[string]any{
			"role":    "system",
			"content": instructions,
		})
	}

	for _, raw := range input {
		item, _ := raw.(map[string]any)
		itemType, _ := item["type"].(string)

		switch itemType {
		case "message":
			role, _ := item["role"].(string)
			if role == "" {
				role = "user"
			}
			content := ""
			if parts, ok := item["content"].([]any); ok {
				content = flattenContentParts(parts)
			}
			if strings.TrimSpace(content) == "" {
				continue
			}
			messages = append(messages, map[string]any{
				"role":    role,
				"content": content,
			})

		case "function_call":
			name, _ := item["name"].(string)
			if name == "" {
				slog.Warn("ignoring function_call item with empty name")
				continue
			}
			callID, _ := item["call_id"].(string)
			if strings.TrimSpace(callID) == "" {
				callID = api.NewCallID()
			}
			arguments := "{}"
			if v := item["arguments"]; v != nil {
				arguments = functionArgumentsToText(v)
			}
			messages = append(messages, map[string]any{
				"role":    "assistant",
				"content": "",
				"tool_calls": []any{map[string]any{
					"id":   callID,
					"type": "function",
					"function": map[string]any{
						"name":      name,
						"arguments": arguments,
					},
				}},
			})

		case "function_call_output":
			callID, _ := item["call_id"].(string)
			output := ""
			if v := item["output"]; v != nil {
				output = functionOutputToText(v)
			}
			messages = append(messages, toolMessage(callID, output))

		case "custom_tool_call_output":
			callID, _ := item["call_id"].(string)
			output, _ := item["output"].(string)
			messages = append(messages, toolMessage(callID, output))

		case "mcp_tool_call_output":
			callID, _ := item["call_id"].(string)
			output := ""
			if v := item["result"]; v != nil {
				output = jsonString(v)
			}
			messages = append(messages, toolMessage(callID, output))

		default:
			slog.Warn("ignoring unsupported input item type", "type", itemType)
		}
	}

	var chatTools []any
	if tools, ok := req["tools"].([]any); ok {
		chatTools = normalizeChatTools(tools)
	}
	toolChoice := any("auto")
	if tc, ok := req["tool_choice"]; ok {
		toolChoice = normalizeChatToolChoice(tc)
	}

	out := map[string]any{
		"model":               model,
		"messages":            messages,
		"stream":              stream,
		"parallel_tool_calls": boolOrDefault(req["parallel_tool_calls"], true),
	}
	if stream {
		out["stream_options"] = map[string]any{"include_usage": true}
	}
	if len(chatTools) > 0 {
		out["tools"] = chatTools
		out["tool_choice"] = toolChoice
	}
	return out, nil
}

// ChatToResponses maps a Chat Completions request body onto the Responses
// shape. Tool-role messages become function_call_output items; every other
// role with non-empty content becomes a message item with input-text parts.
func ChatToResponses(req map[string]any, stream bool) (map[string]any, error) {
	model, ok := req["model"].(string)
	if !ok {
		return nil, api.NewInvalidRequestError("missing `model`")
	}
	chatMessages, ok := req["messages"].([]any)
	if !ok {
		return nil, api.NewInvalidRequestError("missing `messages` array")
	}

	input := []any{}
	for _, raw := range chatMessages {
		msg, _ := raw.(map[string]any)
		role, _ := msg["role"].(string)
		if role == "" {
			role = "user"
		}

		if role == "tool" {
			callID, _ := msg["tool_call_id"].(string)
			output := ""
			if v := msg["content"]; v != nil {
				output = functionOutputToText(v)
			}
			input = append(input, map[string]any{
				"type":    "function_call_output",
				"call_id": callID,
				"output":  output,
			})
			continue
		}

		parts := chatContentToInputParts(msg["content"])
		if len(parts) == 0 {
			continue
		}
		input = append(input, map[string]any{
			"type":    "message",
			"role":    role,
			"content": parts,
		})
	}

	var respTools []any
	if tools, ok := req["tools"].([]any); ok {
		respTools = normalizeResponsesTools(tools)
	}
	toolChoice := any("auto")
	if tc, ok := req["tool_choice"]; ok {
		toolChoice = normalizeResponsesToolChoice(tc)
	}

	out := map[string]any{
		"model":               model,
		"input":               input,
		"stream":              stream,
		"parallel_tool_calls": boolOrDefault(req["parallel_tool_calls"], true),
	}
	if len(respTools) > 0 {
		out["tools"] = respTools
		out["tool_choice"] = toolChoice
	}
	return out, nil
}

// SetStreamFlag forces the stream field to the dispatcher-chosen mode,
// regardless of what the incoming body carried.
func SetStreamFlag(req map[string]any, stream bool) {
	req["stream"] = stream
}

func toolMessage(callID, content string) map[string]any {
	return map[string]any{
		"role":         "tool",
		"tool_call_id": callID,
		"content":      content,
	}
}

func boolOrDefault(v any, def bool) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return def
}
