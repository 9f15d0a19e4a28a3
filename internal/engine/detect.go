package engine

import "strings"

// TopicHint tells the provider which index to favour for a query.
type TopicHint string

const (
	TopicGeneral    TopicHint = "general"
	TopicNews       TopicHint = "news"
	TopicBusiness   TopicHint = "business"
	TopicTechnology TopicHint = "technology"
	TopicHealth     TopicHint = "health"
	TopicPolitics   TopicHint = "politics"
	TopicAcademic   TopicHint = "academic"
)

// ParseTopicHint maps a free-form topic string to a known hint.
// Unknown or empty values become TopicGeneral.
func ParseTopicHint(s string) TopicHint {
	switch h := TopicHint(strings.ToLower(strings.TrimSpace(s))); h {
	case TopicNews, TopicBusiness, TopicTechnology, TopicHealth, TopicPolitics, TopicAcademic:
		return h
	}
	return TopicGeneral
}

// TopicRule maps any of its keywords to a hint.
type TopicRule struct {
	Keywords []string
	Hint     TopicHint
}

// DefaultTopicRules is evaluated in order; the first matching rule wins.
var DefaultTopicRules = []TopicRule{
	{Keywords: []string{"news", "breaking", "latest", "current"}, Hint: TopicNews},
	{Keywords: []string{"business", "market", "economy", "finance"}, Hint: TopicBusiness},
	{Keywords: []string{"technology", "tech", "ai", "software"}, Hint: TopicTechnology},
	{Keywords: []string{"health", "medical", "medicine", "disease"}, Hint: TopicHealth},
	{Keywords: []string{"politics", "government", "policy", "election"}, Hint: TopicPolitics},
}

// Classify returns the hint of the first rule with a keyword contained in
// the lowercased query. Pure string matching, no IO.
func Classify(query string, rules []TopicRule) TopicHint {
	q := strings.ToLower(query)
	for _, r := range rules {
		if containsAny(q, r.Keywords) {
			return r.Hint
		}
	}
	return TopicGeneral
}

// temporalKeywords switch on the breaking-news strategy.
var temporalKeywords = []string{"current", "latest", "recent", "news", "today"}

// IsTimely reports whether the query asks for recent events.
func IsTimely(query string) bool {
	return containsAny(strings.ToLower(query), temporalKeywords)
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
