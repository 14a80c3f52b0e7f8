package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestConfigError(t *testing.T) {
	err := NewConfigError("server.listen_address", "must not be empty")
	if !strings.Contains(err.Error(), "server.listen_address") {
		t.Errorf("message = %q", err.Error())
	}

	bare := NewConfigError("", "file unreadable")
	if strings.Contains(bare.Error(), "in :") {
		t.Errorf("fieldless message = %q", bare.Error())
	}
}

func TestCommandError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := NewCommandError("run", cause)
	if !errors.Is(err, cause) {
		t.Error("wrapped cause not reachable via errors.Is")
	}
	if !strings.Contains(err.Error(), "run") {
		t.Errorf("message = %q", err.Error())
	}
}

func TestFormatters(t *testing.T) {
	data := map[string]string{"name": "Test Agent"}

	var buf bytes.Buffer
	if err := NewFormatter(FormatJSON).FormatTo(&buf, data); err != nil {
		t.Fatalf("json format: %v", err)
	}
	var decoded map[string]string
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output not JSON: %v", err)
	}
	if decoded["name"] != "Test Agent" {
		t.Errorf("decoded = %v", decoded)
	}

	buf.Reset()
	if err := NewFormatter(FormatText).FormatTo(&buf, "plain"); err != nil {
		t.Fatalf("text format: %v", err)
	}
	if buf.String() != "plain\n" {
		t.Errorf("text output = %q", buf.String())
	}

	if _, ok := NewFormatter("bogus").(*TextFormatter); !ok {
		t.Error("unknown format did not fall back to text")
	}
}
