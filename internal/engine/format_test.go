package engine

import (
	"strings"
	"testing"
)

func TestFormatFindingsEmpty(t *testing.T) {
	if got := FormatFindings(Findings{}, 5); got != "No comprehensive data available." {
		t.Errorf("got %q", got)
	}
}

func TestFormatFindings(t *testing.T) {
	f := Findings{
		DirectAnswer: "Short answer.",
		Items: []RankedItem{
			{CandidateItem: CandidateItem{SourceID: "https://a", Title: "First", Body: "alpha", Published: "2026-10-01", Relevance: 0.9, Recency: 0.86}},
			{CandidateItem: CandidateItem{SourceID: "https://b", Title: "Second", Body: "beta", Relevance: 0.5, Recency: 0.5}},
			{CandidateItem: CandidateItem{SourceID: "https://c", Title: "Third"}},
		},
	}
	got := FormatFindings(f, 2)

	for _, want := range []string{
		"EXECUTIVE SUMMARY\nShort answer.",
		"[1] First\nPublished: 2026-10-01 | Relevance: 0.90 | Recency: 0.86",
		"[2] Second\nPublished: N/A",
		"Source: https://b",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}
	if strings.Contains(got, "Third") {
		t.Error("limit not applied")
	}
	if strings.Index(got, "EXECUTIVE") > strings.Index(got, "RESEARCH FINDINGS") {
		t.Error("summary must precede findings")
	}
}
