package enrich

import (
	"context"
	"strings"
)

// FakeModelClient is a deterministic stand-in for the model server, used in
// tests and local runs without a model deployment. Classification counts
// occurrences of a few loaded words, entity extraction returns capitalized
// tokens, keyword extraction returns the longest tokens.
type FakeModelClient struct{}

func (FakeModelClient) Classify(ctx context.Context, text string) (SentimentResult, error) {
	lower := strings.ToLower(text)
	score := 0
	for _, w := range []string{"good", "great", "win", "growth", "success"} {
		score += strings.Count(lower, w)
	}
	for _, w := range []string{"bad", "crisis", "loss", "fail", "war"} {
		score -= strings.Count(lower, w)
	}
	switch {
	case score > 0:
		return SentimentResult{Label: "positive", Score: 0.9}, nil
	case score < 0:
		return SentimentResult{Label: "negative", Score: 0.9}, nil
	default:
		return SentimentResult{Label: "neutral", Score: 0.5}, nil
	}
}

func (FakeModelClient) ExtractEntities(ctx context.Context, text string) ([]Entity, error) {
	entities := []Entity{}
	offset := 0
	for _, token := range strings.Fields(text) {
		start := strings.Index(text[offset:], token) + offset
		if len(token) > 1 && token[0] >= 'A' && token[0] <= 'Z' {
			entities = append(entities, Entity{
				Group: "MISC",
				Word:  token,
				Score: 0.99,
				Start: start,
				End:   start + len(token),
			})
		}
		offset = start + len(token)
	}
	return entities, nil
}

func (FakeModelClient) ExtractKeywords(ctx context.Context, text string, topN int) ([]string, error) {
	tokens := strings.Fields(strings.ToLower(text))
	seen := map[string]bool{}
	keywords := []string{}
	for _, token := range tokens {
		if len(token) >= 6 && !seen[token] {
			seen[token] = true
			keywords = append(keywords, token)
		}
		if len(keywords) == topN {
			break
		}
	}
	return keywords, nil
}

var queryStopwords = map[string]bool{
	"a": true, "an": true, "the": true, "of": true, "in": true, "on": true,
	"for": true, "and": true, "or": true, "to": true, "is": true, "are": true,
	"about": true, "latest": true, "news": true,
}

func (FakeModelClient) CleanQuery(ctx context.Context, text string) (CleanedQuery, error) {
	original := strings.TrimSpace(text)
	kept := []string{}
	for _, token := range strings.Fields(strings.ToLower(original)) {
		if strings.HasPrefix(token, "http") || strings.HasPrefix(token, "www.") {
			continue
		}
		token = strings.Map(func(r rune) rune {
			if r >= 'a' && r <= 'z' {
				return r
			}
			return -1
		}, token)
		if token == "" || queryStopwords[token] {
			continue
		}
		kept = append(kept, token)
	}
	res := CleanedQuery{Original: original, Cleaned: strings.Join(kept, " ")}
	// Mirror the real cleaner's similarity threshold: only a rewrite that
	// shed a sizable share of the query produces a suggestion.
	if len(res.Cleaned)*5 < len(original)*4 {
		res.Suggestion = res.Cleaned
	}
	return res, nil
}

func (FakeModelClient) ExtractTopics(ctx context.Context, documents []string, numTopics int) (TopicModelResult, error) {
	res := TopicModelResult{TotalDocuments: len(documents)}
	if len(documents) < 3 {
		return res, nil
	}
	res.Topics = []ModeledTopic{{TopicId: 0, Count: len(documents), Keywords: []string{"news"}, Label: "news"}}
	res.TotalTopics = 1
	for i := range documents {
		res.DocumentTopics = append(res.DocumentTopics, DocumentTopic{
			DocumentIndex: i,
			TopicId:       0,
			TopicLabel:    "news",
			Probability:   1.0,
		})
	}
	return res, nil
}
