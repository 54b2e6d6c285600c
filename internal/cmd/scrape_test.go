package cmd

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/AlvinSugijanto/job-scraper/internal/export"
	"github.com/AlvinSugijanto/job-scraper/internal/models"
)

func TestResolveFormatRespectsGlobalFlags(t *testing.T) {
	ctx := &Context{Out: io.Discard, JSONOutput: true}
	got, err := resolveFormat(ctx, "", "jobs.json")
	if err != nil {
		t.Fatalf("resolveFormat() error = %v", err)
	}
	if got != export.FormatJSON {
		t.Fatalf("resolveFormat() = %q, want %q", got, export.FormatJSON)
	}

	ctx = &Context{Out: io.Discard, PlainText: true}
	got, err = resolveFormat(ctx, "", "")
	if err != nil {
		t.Fatalf("resolveFormat() error = %v", err)
	}
	if got != export.FormatTSV {
		t.Fatalf("resolveFormat() = %q, want %q", got, export.FormatTSV)
	}
}

func TestResolveFormatDefaultsToCSVForFiles(t *testing.T) {
	ctx := &Context{Out: io.Discard}
	got, err := resolveFormat(ctx, "", "jobs.out")
	if err != nil {
		t.Fatalf("resolveFormat() error = %v", err)
	}
	if got != export.FormatCSV {
		t.Fatalf("resolveFormat() = %q, want %q", got, export.FormatCSV)
	}
}

func TestParseFormat(t *testing.T) {
	cases := []struct {
		in      string
		want    export.Format
		wantErr bool
	}{
		{"csv", export.FormatCSV, false},
		{"JSON", export.FormatJSON, false},
		{"markdown", export.FormatMarkdown, false},
		{"table", export.FormatTable, false},
		{"", export.FormatTable, false},
		{"xml", "", true},
	}
	for _, tc := range cases {
		got, err := parseFormat(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("parseFormat(%q) should fail", tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("parseFormat(%q) error = %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("parseFormat(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestWriteResultsJSON(t *testing.T) {
	var buf bytes.Buffer
	ctx := &Context{Out: &buf, JSONOutput: true}

	jobs := []models.Job{{ID: "1", Title: "Go Developer"}}
	if err := writeResults(ctx, jobs, "", "full", ""); err != nil {
		t.Fatalf("writeResults() error = %v", err)
	}
	if !strings.Contains(buf.String(), `"Go Developer"`) {
		t.Fatalf("unexpected output:\n%s", buf.String())
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := firstNonEmpty("", "  ", "Jakarta"); got != "Jakarta" {
		t.Fatalf("firstNonEmpty = %q", got)
	}
	if got := firstNonEmpty("", " "); got != "" {
		t.Fatalf("firstNonEmpty should fall through to empty, got %q", got)
	}
}

func TestDefaultInt(t *testing.T) {
	if got := defaultInt(0, 25); got != 25 {
		t.Fatalf("defaultInt(0, 25) = %d", got)
	}
	if got := defaultInt(10, 25); got != 10 {
		t.Fatalf("defaultInt(10, 25) = %d", got)
	}
}
