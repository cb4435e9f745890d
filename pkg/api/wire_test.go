package api

import "testing"

func TestParseWireAPI(t *testing.T) {
	tests := []struct {
		in      string
		want    WireAPI
		wantErr bool
	}{
		{"chat", WireChat, false},
		{"responses", WireResponses, false},
		{"", "", true},
		{"Chat", "", true},
		{"completions", "", true},
	}

	for _, tt := range tests {
		got, err := ParseWireAPI(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseWireAPI(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseWireAPI(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStreamDefault(t *testing.T) {
	if !WireResponses.StreamDefault() {
		t.Error("Responses requests must default to streaming")
	}
	if WireChat.StreamDefault() {
		t.Error("Chat requests must default to unary")
	}
}
