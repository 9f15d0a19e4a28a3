package engine

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		query string
		want  TopicHint
	}{
		{"breaking news on the election", TopicNews}, // news rule is checked first
		{"stock market outlook", TopicBusiness},
		{"Global Economy 2026", TopicBusiness},
		{"best software for note taking", TopicTechnology},
		{"medical uses of psilocybin", TopicHealth},
		{"government policy on housing", TopicPolitics},
		{"origins of the Roman empire", TopicGeneral},
		{"", TopicGeneral},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			if got := Classify(tt.query, DefaultTopicRules); got != tt.want {
				t.Errorf("Classify(%q) = %q, want %q", tt.query, got, tt.want)
			}
		})
	}
}

func TestClassifyCustomRules(t *testing.T) {
	rules := []TopicRule{{Keywords: []string{"paper", "arxiv"}, Hint: TopicAcademic}}
	if got := Classify("new arxiv paper on transformers", rules); got != TopicAcademic {
		t.Errorf("got %q, want academic", got)
	}
	if got := Classify("anything", nil); got != TopicGeneral {
		t.Errorf("nil rules: got %q, want general", got)
	}
}

func TestParseTopicHint(t *testing.T) {
	tests := []struct {
		in   string
		want TopicHint
	}{
		{"news", TopicNews},
		{" Technology ", TopicTechnology},
		{"academic", TopicAcademic},
		{"sports", TopicGeneral},
		{"", TopicGeneral},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseTopicHint(tt.in); got != tt.want {
				t.Errorf("ParseTopicHint(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsTimely(t *testing.T) {
	tests := []struct {
		query string
		want  bool
	}{
		{"latest fusion results", true},
		{"What happened TODAY", true},
		{"recent rulings", true},
		{"history of the printing press", false},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			if got := IsTimely(tt.query); got != tt.want {
				t.Errorf("IsTimely(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}
