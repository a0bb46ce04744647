package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/labstack/gommon/log"
)

func TestNewWritesJSONWithDetails(t *testing.T) {
	var buf bytes.Buffer
	l := New("todo", "info", &buf)

	l.Debug("hidden")
	l.Infoj(log.JSON{"message": "todo created", "todo_id": 5})

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("output %q is not a single JSON object: %v", buf.String(), err)
	}
	if entry["level"] != "INFO" || entry["prefix"] != "todo" || entry["message"] != "todo created" {
		t.Errorf("entry = %v", entry)
	}
	if entry["todo_id"] != float64(5) {
		t.Errorf("todo_id = %v", entry["todo_id"])
	}
	if _, ok := entry["time"]; !ok {
		t.Error("missing time field")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]log.Lvl{
		"debug": log.DEBUG, "INFO": log.INFO, "warn": log.WARN,
		"error": log.ERROR, "off": log.OFF, "bogus": log.INFO,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
