package models

import (
	"strings"
	"testing"
)

func TestValidateDefaults(t *testing.T) {
	req := SearchRequest{Keywords: "  python developer "}
	if err := req.Validate(); err != nil {
		t.Fatalf("expected valid request: %v", err)
	}
	if req.Keywords != "python developer" {
		t.Fatalf("keywords not trimmed: %q", req.Keywords)
	}
	if req.ResultsWanted != DefaultResultsWanted {
		t.Fatalf("expected default results_wanted %d, got %d", DefaultResultsWanted, req.ResultsWanted)
	}
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name string
		req  SearchRequest
		want string
	}{
		{"empty keywords", SearchRequest{Keywords: "   "}, "keywords"},
		{"results too high", SearchRequest{Keywords: "go", ResultsWanted: 101}, "results_wanted"},
		{"results negative", SearchRequest{Keywords: "go", ResultsWanted: -1}, "results_wanted"},
		{"negative hours", SearchRequest{Keywords: "go", HoursOld: -5}, "hours_old"},
		{"negative distance", SearchRequest{Keywords: "go", Distance: -10}, "distance"},
		{"bad job type", SearchRequest{Keywords: "go", JobType: "gig"}, "job_type"},
	}

	for _, tc := range cases {
		err := tc.req.Validate()
		if err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
		if !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%s: error %q does not mention %q", tc.name, err, tc.want)
		}
	}
}

func TestJobTypeCodes(t *testing.T) {
	cases := map[JobType]string{
		JobTypeFullTime:   "F",
		JobTypePartTime:   "P",
		JobTypeInternship: "I",
		JobTypeContract:   "C",
		JobTypeTemporary:  "T",
	}
	for jt, want := range cases {
		if got := jt.Code(); got != want {
			t.Fatalf("Code(%s) = %q, want %q", jt, got, want)
		}
		if !jt.Valid() {
			t.Fatalf("expected %s to be valid", jt)
		}
	}
	if JobType("freelance").Valid() {
		t.Fatalf("freelance should not be a valid job type")
	}
}
