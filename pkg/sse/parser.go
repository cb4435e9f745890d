package sse

import "strings"

// Parser is a stateful, line-oriented SSE parser. Feed accepts input in
// arbitrary chunks and returns the payloads of all events completed so far;
// splitting the input at any byte boundary yields the same event sequence
// as feeding it whole.
//
// Only `data:` lines contribute to payloads. An empty line flushes the
// pending data lines as one event (joined by newline). Event names,
// comments, id and retry lines are ignored. The parser never fails;
// malformed input simply yields no events.
type Parser struct {
	buffer    string
	dataLines []string
}

// Feed appends chunk to the internal buffer and returns the payloads of the
// events it completed.
func (p *Parser) Feed(chunk string) []string {
	p.buffer += chunk

	var events []string
	for {
		idx := strings.IndexByte(p.buffer, '\n')
		if idx < 0 {
			break
		}
		line := strings.TrimSuffix(p.buffer[:idx], "\r")
		p.buffer = p.buffer[idx+1:]

		if line == "" {
			if len(p.dataLines) > 0 {
				events = append(events, strings.Join(p.dataLines, "\n"))
				p.dataLines = p.dataLines[:0]
			}
			continue
		}

		if rest, ok := strings.CutPrefix(line, "data:"); ok {
			p.dataLines = append(p.dataLines, strings.TrimPrefix(rest, " "))
		}
	}
	return events
}

// Finish returns the payload of data lines still pending at end of input,
// if any. A stream that ends without a trailing blank line leaves its last
// event unflushed; Finish recovers it.
func (p *Parser) Finish() (string, bool) {
	if len(p.dataLines) == 0 {
		return "", false
	}
	payload := strings.Join(p.dataLines, "\n")
	p.dataLines = nil
	return payload, true
}
