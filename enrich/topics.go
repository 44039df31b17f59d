package enrich

import "strings"

// FallbackTopic tags articles no vocabulary entry matched. Every article ends
// up with at least one topic.
const FallbackTopic = "General"

// topicVocabulary maps topic names to the keywords that select them. Matching
// is a plain substring check over the lowercased text.
var topicVocabulary = []struct {
	name     string
	keywords []string
}{
	{"AI", []string{"ai", "artificial intelligence"}},
	{"Finance", []string{"finance", "economy"}},
	{"Technology", []string{"technology", "tech"}},
}

// MatchTopics derives a topic set from article text by keyword matching
// against the fixed vocabulary. Falls back to FallbackTopic when nothing
// matches.
func MatchTopics(text string) []string {
	lower := strings.ToLower(text)
	topics := []string{}
	for _, entry := range topicVocabulary {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				topics = append(topics, entry.name)
				break
			}
		}
	}
	if len(topics) == 0 {
		topics = append(topics, FallbackTopic)
	}
	return topics
}
