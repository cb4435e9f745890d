package translate

// FilterTools removes tool entries whose `type` is in the drop set, mutating
// the request in place. When the tools list ends up empty, both `tools` and
// `tool_choice` are removed so the upstream never sees a dangling choice.
func FilterTools(req map[string]any, drop map[string]bool) {
	tools, ok := req["tools"].([]any)
	if !ok {
		return
	}

	kept := make([]any, 0, len(tools))
	for _, raw := range tools {
		if tool, ok := raw.(map[string]any); ok {
			if typ, _ := tool["type"].(string); drop[typ] {
				continue
			}
		}
		kept = append(kept, raw)
	}

	if len(kept) == 0 {
		delete(req, "tools")
		delete(req, "tool_choice")
		return
	}
	req["tools"] = kept
}

// normalizeChatTools converts tool definitions to the Chat wrapped form
// {type:"function", function:{name, description, parameters}}. Non-function
// tools and already-wrapped entries pass through verbatim; bare function
// tools without a name are dropped.
func normalizeChatTools(tools []any) []any {
	out := make([]any, 0, len(tools))
	for _, raw := range tools {
		tool, ok := raw.(map[string]any)
		if !ok {
			out = append(out, raw)
			continue
		}
		if typ, _ := tool["type"].(string); typ != "function" {
			out = append(out, raw)
			continue
		}
		if _, wrapped := tool["function"]; wrapped {
			out = append(out, raw)
			continue
		}

		name, ok := tool["name"].(string)
		if !ok {
			continue
		}
		description, _ := tool["description"].(string)
		parameters := tool["parameters"]
		if parameters == nil {
			parameters = defaultParameters()
		}
		out = append(out, map[string]any{
			"type": "function",
			"function": map[string]any{
				"name":        name,
				"description": description,
				"parameters":  parameters,
			},
		})
	}
	return out
}

// normalizeResponsesTools converts tool definitions to the flat Responses
// form {type:"function", name, description, parameters} by unwrapping the
// Chat shape. Non-function tools pass through verbatim.
func normalizeResponsesTools(tools []any) []any {
	out := make([]any, 0, len(tools))
	for _, raw := range tools {
		tool, ok := raw.(map[string]any)
		if !ok {
			out = append(out, raw)
			continue
		}
		if typ, _ := tool["type"].(string); typ != "function" {
			out = append(out, raw)
			continue
		}
		fn, ok := tool["function"].(map[string]any)
		if !ok {
			out = append(out, raw)
			continue
		}

		name, ok := fn["name"].(string)
		if !ok {
			continue
		}
		description, _ := fn["description"].(string)
		parameters := fn["parameters"]
		if parameters == nil {
			parameters = defaultParameters()
		}
		out = append(out, map[string]any{
			"type":        "function",
			"name":        name,
			"description": description,
			"parameters":  parameters,
		})
	}
	return out
}

// normalizeChatToolChoice maps a Responses tool_choice onto the Chat shape.
// Strings pass through; an object already carrying `function` passes
// through; the flat {type:"function", name} form is rewrapped; anything
// else defaults to "auto".
func normalizeChatToolChoice(choice any) any {
	if s, ok := choice.(string); ok {
		return s
	}
	obj, ok := choice.(map[string]any)
	if !ok {
		return "auto"
	}
	if _, ok := obj["function"]; ok {
		return choice
	}
	if typ, _ := obj["type"].(string); typ == "function" {
		if name, ok := obj["name"].(string); ok {
			return map[string]any{
				"type":     "function",
				"function": map[string]any{"name": name},
			}
		}
	}
	return "auto"
}

// normalizeResponsesToolChoice maps a Chat tool_choice onto the Responses
// shape: {type:"function", function:{name}} flattens to
// {type:"function", name}; everything else passes through verbatim.
func normalizeResponsesToolChoice(choice any) any {
	obj, ok := choice.(map[string]any)
	if !ok {
		return choice
	}
	if typ, _ := obj["type"].(string); typ != "function" {
		return choice
	}
	fn, ok := obj["function"].(map[string]any)
	if !ok {
		return choice
	}
	if name, ok := fn["name"].(string); ok {
		return map[string]any{"type": "function", "name": name}
	}
	return choice
}

func defaultParameters() map[string]any {
	return map[string]any{"type": "object", "properties": map[string]any{}}
}
