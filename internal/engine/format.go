package engine

import (
	"fmt"
	"strings"
)

// snippetChars caps each finding's body in the synthesizer context.
const snippetChars = 800

// FormatFindings renders ranked findings as synthesizer context: the best
// direct answer first, then the top limit items with scores and sources.
func FormatFindings(f Findings, limit int) string {
	if len(f.Items) == 0 {
		return "No comprehensive data available."
	}
	if limit <= 0 || limit > len(f.Items) {
		limit = len(f.Items)
	}

	var sb strings.Builder
	if f.DirectAnswer != "" {
		fmt.Fprintf(&sb, "EXECUTIVE SUMMARY\n%s\n\n", f.DirectAnswer)
	}
	sb.WriteString("RESEARCH FINDINGS\n")
	for i, it := range f.Items[:limit] {
		published := it.Published
		if published == "" {
			published = "N/A"
		}
		fmt.Fprintf(&sb, "\n[%d] %s\nPublished: %s | Relevance: %.2f | Recency: %.2f\n%s\nSource: %s\n",
			i+1, it.Title, published, it.Relevance, it.Recency,
			TruncateAtWord(it.Body, snippetChars), it.SourceID)
	}
	return sb.String()
}
