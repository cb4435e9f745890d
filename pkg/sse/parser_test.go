package sse

import (
	"reflect"
	"testing"
)

func TestParser_CollectsDataEvents(t *testing.T) {
	var p Parser
	events := p.Feed("event: message\ndata: {\"a\":1}\n\n")
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d: %v", len(events), events)
	}
	if events[0] != `{"a":1}` {
		t.Errorf("event = %q, want %q", events[0], `{"a":1}`)
	}
}

func TestParser_HandlesSplitChunks(t *testing.T) {
	var p Parser
	if events := p.Feed("data: {\"a\":"); len(events) != 0 {
		t.Fatalf("expected no events from partial chunk, got %v", events)
	}
	events := p.Feed("1}\n\n")
	if want := []string{`{"a":1}`}; !reflect.DeepEqual(events, want) {
		t.Errorf("events = %v, want %v", events, want)
	}
}

func TestParser_IgnoresNonDataLines(t *testing.T) {
	var p Parser
	events := p.Feed(": ping\nevent: hello\nid: 1\nretry: 100\ndata: {\"z\":1}\n\n")
	if want := []string{`{"z":1}`}; !reflect.DeepEqual(events, want) {
		t.Errorf("events = %v, want %v", events, want)
	}
}

func TestParser_JoinsMultipleDataLines(t *testing.T) {
	var p Parser
	events := p.Feed("data: line1\ndata: line2\n\n")
	if want := []string{"line1\nline2"}; !reflect.DeepEqual(events, want) {
		t.Errorf("events = %v, want %v", events, want)
	}
}

func TestParser_StripsCarriageReturn(t *testing.T) {
	var p Parser
	events := p.Feed("data: hello\r\n\r\n")
	if want := []string{"hello"}; !reflect.DeepEqual(events, want) {
		t.Errorf("events = %v, want %v", events, want)
	}
}

func TestParser_StripsOneLeadingSpaceOnly(t *testing.T) {
	var p Parser
	events := p.Feed("data:  two spaces\ndata:none\n\n")
	if want := []string{" two spaces\nnone"}; !reflect.DeepEqual(events, want) {
		t.Errorf("events = %v, want %v", events, want)
	}
}

func TestParser_EmptyLineWithoutDataEmitsNothing(t *testing.T) {
	var p Parser
	if events := p.Feed("\n\n\nevent: x\n\n"); len(events) != 0 {
		t.Errorf("expected no events, got %v", events)
	}
}

func TestParser_FinishReturnsPending(t *testing.T) {
	var p Parser
	p.Feed("data: [DONE]\n")
	payload, ok := p.Finish()
	if !ok {
		t.Fatal("expected pending payload")
	}
	if payload != "[DONE]" {
		t.Errorf("payload = %q, want [DONE]", payload)
	}
	if _, ok := p.Finish(); ok {
		t.Error("second Finish should report nothing pending")
	}
}

func TestParser_FinishEmptyWhenFlushed(t *testing.T) {
	var p Parser
	p.Feed("data: x\n\n")
	if _, ok := p.Finish(); ok {
		t.Error("Finish after a flushed event should report nothing pending")
	}
}

// Concatenativity: any chunking of the input yields the same event sequence
// as feeding it whole, including splits inside multi-byte UTF-8 sequences.
func TestParser_Concatenative(t *testing.T) {
	input := "event: m\ndata: {\"text\":\"héllo \U0001F30D\"}\r\ndata: more\n\ndata: tail\n\n"

	var whole Parser
	want := whole.Feed(input)

	for size := 1; size <= 7; size++ {
		var p Parser
		var got []string
		for i := 0; i < len(input); i += size {
			end := min(i+size, len(input))
			got = append(got, p.Feed(input[i:end])...)
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("chunk size %d: events = %v, want %v", size, got, want)
		}
	}
}
