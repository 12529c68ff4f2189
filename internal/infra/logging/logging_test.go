package logging

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, false)
	log.Debug().Msg("hidden")
	log.Info().Str("slug", "test-event").Msg("polling venue")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 1 {
		t.Fatalf("expected only the info line, got %q", buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal(lines[0], &entry); err != nil {
		t.Fatalf("not JSON: %v", err)
	}
	for _, k := range []string{"time", "caller", "level", "message", "slug"} {
		if _, ok := entry[k]; !ok {
			t.Errorf("missing %q in %v", k, entry)
		}
	}
}

func TestNewDebug(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, true).Debug().Msg("shown")
	if !bytes.Contains(buf.Bytes(), []byte(`"message":"shown"`)) {
		t.Errorf("debug line missing: %q", buf.String())
	}
}
