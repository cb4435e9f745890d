package proxy

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rhuss/codex-chat-bridge/pkg/api"
)

// failingReader yields its payload and then fails with err.
type failingReader struct {
	payload io.Reader
	err     error
}

func (r *failingReader) Read(p []byte) (int, error) {
	n, err := r.payload.Read(p)
	if err == io.EOF {
		return n, r.err
	}
	return n, err
}

func translateStream(t *testing.T, body io.Reader) []sseEvent {
	t.Helper()
	p := New(Config{UpstreamWire: api.WireChat, Logger: discardLogger()})
	rec := httptest.NewRecorder()
	p.translateChatStream(context.Background(), rec, body, "resp_bridge_test")
	return parseSSE(t, rec.Body.String())
}

func TestTranslateChatStream_ToolCallAccumulation(t *testing.T) {
	// Arguments arrive fragmented across chunks and out of index order.
	body := strings.NewReader(
		"data: {\"choices\":[{\"delta\":{\"tool_calls\":[{\"index\":1,\"id\":\"call_b\",\"function\":{\"name\":\"second\",\"arguments\":\"{\\\"y\\\":\"}}]}}]}\n\n" +
			"data: {\"choices\":[{\"delta\":{\"tool_calls\":[{\"index\":0,\"id\":\"call_a\",\"function\":{\"name\":\"first\",\"arguments\":\"{}\"}}]}}]}\n\n" +
			"data: {\"choices\":[{\"delta\":{\"tool_calls\":[{\"index\":1,\"function\":{\"arguments\":\"2}\"}}]}}]}\n\n" +
			"data: [DONE]\n\n")

	events := translateStream(t, body)
	if len(events) != 4 {
		t.Fatalf("got %d events: %+v", len(events), events)
	}
	if events[0].name != "response.created" || events[3].name != "response.completed" {
		t.Fatalf("envelope events = %q, %q", events[0].name, events[3].name)
	}

	// Terminal items come out in ascending stream index order.
	first := events[1].data["item"].(map[string]any)
	second := events[2].data["item"].(map[string]any)
	if first["call_id"] != "call_a" || first["name"] != "first" || first["arguments"] != "{}" {
		t.Errorf("index 0 item = %v", first)
	}
	if second["call_id"] != "call_b" || second["name"] != "second" || second["arguments"] != "{\"y\":2}" {
		t.Errorf("index 1 item = %v", second)
	}
}

func TestTranslateChatStream_ToolCallFallbacks(t *testing.T) {
	body := strings.NewReader(
		"data: {\"choices\":[{\"delta\":{\"tool_calls\":[{\"index\":0,\"function\":{\"arguments\":\"{}\"}}]}}]}\n\n" +
			"data: [DONE]\n\n")

	events := translateStream(t, body)
	if len(events) != 3 {
		t.Fatalf("got %d events: %+v", len(events), events)
	}
	item := events[1].data["item"].(map[string]any)
	if item["name"] != "unknown_function" {
		t.Errorf("name = %v, want unknown_function", item["name"])
	}
	callID, _ := item["call_id"].(string)
	if !strings.HasPrefix(callID, "call_") || !strings.HasSuffix(callID, "_0") {
		t.Errorf("call_id = %q, want generated call_<uuid>_0", callID)
	}
}

func TestTranslateChatStream_SplitAcrossReads(t *testing.T) {
	// A 1-byte reader forces every SSE event to span many reads.
	body := oneByteReader{strings.NewReader(
		"data: {\"choices\":[{\"delta\":{\"content\":\"ab\"}}]}\n\n" +
			"data: [DONE]\n\n")}

	events := translateStream(t, body)
	var deltas []string
	for _, ev := range events {
		if ev.name == "response.output_text.delta" {
			deltas = append(deltas, ev.data["delta"].(string))
		}
	}
	if len(deltas) != 1 || deltas[0] != "ab" {
		t.Errorf("deltas = %v", deltas)
	}
}

type oneByteReader struct{ r io.Reader }

func (o oneByteReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	return o.r.Read(p[:1])
}

func TestTranslateChatStream_MalformedChunkSkipped(t *testing.T) {
	body := strings.NewReader(
		"data: this is not json\n\n" +
			"data: {\"choices\":[{\"delta\":{\"content\":\"ok\"}}]}\n\n" +
			"data: [DONE]\n\n")

	events := translateStream(t, body)
	last := events[len(events)-1]
	if last.name != "response.completed" {
		t.Fatalf("stream did not complete after malformed chunk: %+v", events)
	}
	item := events[len(events)-2].data["item"].(map[string]any)
	text := item["content"].([]any)[0].(map[string]any)["text"]
	if text != "ok" {
		t.Errorf("message text = %v", text)
	}
}

func TestTranslateChatStream_MidStreamFailure(t *testing.T) {
	body := &failingReader{
		payload: strings.NewReader("data: {\"choices\":[{\"delta\":{\"content\":\"par\"}}]}\n\n"),
		err:     errors.New("connection reset"),
	}

	events := translateStream(t, body)
	last := events[len(events)-1]
	if last.name != "response.failed" {
		t.Fatalf("last event = %q, want response.failed", last.name)
	}
	if dig(t, last.data, "response", "error", "code") != "upstream_stream_error" {
		t.Errorf("code = %v", dig(t, last.data, "response", "error", "code"))
	}
	if dig(t, last.data, "response", "error", "message") != "connection reset" {
		t.Errorf("message = %v", dig(t, last.data, "response", "error", "message"))
	}
	for _, ev := range events {
		if ev.name == "response.completed" {
			t.Error("failed stream must not also complete")
		}
	}
}

func TestTranslateChatStream_UsageOmittedIsNull(t *testing.T) {
	body := strings.NewReader(
		"data: {\"choices\":[{\"delta\":{\"content\":\"x\"}}]}\n\n" +
			"data: [DONE]\n\n")

	events := translateStream(t, body)
	completed := events[len(events)-1]
	usage, present := completed.data["response"].(map[string]any)["usage"]
	if !present {
		t.Fatal("usage key missing from response.completed")
	}
	if usage != nil {
		t.Errorf("usage = %v, want null", usage)
	}
}

func TestPassthroughResponsesStream_MidStreamFailure(t *testing.T) {
	p := New(Config{UpstreamWire: api.WireResponses, Logger: discardLogger()})
	rec := httptest.NewRecorder()
	body := &failingReader{
		payload: strings.NewReader("event: response.created\ndata: {\"type\":\"response.created\"}\n\n"),
		err:     errors.New("connection reset"),
	}
	p.passthroughResponsesStream(context.Background(), rec, body)

	out := rec.Body.String()
	if !strings.HasPrefix(out, "event: response.created\n") {
		t.Fatalf("upstream bytes were not forwarded: %q", out)
	}
	events := parseSSE(t, out)
	last := events[len(events)-1]
	if last.name != "response.failed" {
		t.Fatalf("last event = %q, want synthetic response.failed", last.name)
	}
	if dig(t, last.data, "response", "error", "code") != "upstream_stream_error" {
		t.Errorf("code = %v", dig(t, last.data, "response", "error", "code"))
	}
}

func TestTranslateChatStream_CancelledContextStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := New(Config{UpstreamWire: api.WireChat, Logger: discardLogger()})
	rec := httptest.NewRecorder()
	p.translateChatStream(ctx, rec, strings.NewReader("data: [DONE]\n\n"), "resp_bridge_test")

	events := parseSSE(t, rec.Body.String())
	for _, ev := range events {
		if ev.name == "response.completed" {
			t.Error("cancelled stream must not complete")
		}
	}
}
