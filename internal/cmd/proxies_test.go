package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func sampleProxyResults() []ProxyCheckResult {
	return []ProxyCheckResult{
		{Proxy: "http://p1:8080", Outcome: "ok", LatencyMS: 120},
		{Proxy: "http://p2:8080", Outcome: "rate_limited", LatencyMS: 340, Error: "status 429"},
	}
}

func TestWriteProxyResultsJSON(t *testing.T) {
	var buf bytes.Buffer
	ctx := &Context{Out: &buf, JSONOutput: true}

	if err := writeProxyResults(ctx, sampleProxyResults()); err != nil {
		t.Fatalf("write: %v", err)
	}

	var decoded []ProxyCheckResult
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid json: %v", err)
	}
	if len(decoded) != 2 || decoded[1].Outcome != "rate_limited" {
		t.Fatalf("unexpected round trip: %+v", decoded)
	}
}

func TestWriteProxyResultsPlain(t *testing.T) {
	var buf bytes.Buffer
	ctx := &Context{Out: &buf, PlainText: true}

	if err := writeProxyResults(ctx, sampleProxyResults()); err != nil {
		t.Fatalf("write: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(lines))
	}
	if !strings.HasPrefix(lines[1], "http://p2:8080\trate_limited\t340") {
		t.Fatalf("unexpected row: %q", lines[1])
	}
}

func TestWriteProxyResultsTable(t *testing.T) {
	var buf bytes.Buffer
	ctx := &Context{Out: &buf}

	if err := writeProxyResults(ctx, sampleProxyResults()); err != nil {
		t.Fatalf("write: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "outcome") || !strings.Contains(out, "rate_limited") {
		t.Fatalf("unexpected table:\n%s", out)
	}
}
