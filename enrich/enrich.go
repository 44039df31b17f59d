// Package enrich annotates stored articles with sentiment, named entities,
// keywords and topics. The NLP models themselves are opaque external
// services; this package only knows their input/output contracts.
package enrich

import "context"

// SentimentResult is one classification: a categorical label and the
// classifier's confidence score.
type SentimentResult struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Entity is one named entity as returned by the extractor.
type Entity struct {
	Group string  `json:"entity_group"`
	Word  string  `json:"word"`
	Score float64 `json:"score"`
	Start int     `json:"start"`
	End   int     `json:"end"`
}

// ModeledTopic is one topic discovered by the topic model over a document
// batch.
type ModeledTopic struct {
	TopicId  int      `json:"topic_id"`
	Count    int      `json:"count"`
	Keywords []string `json:"keywords"`
	Label    string   `json:"label"`
}

// DocumentTopic assigns one input document to a modeled topic. TopicId -1
// marks an outlier document.
type DocumentTopic struct {
	DocumentIndex int     `json:"document_index"`
	TopicId       int     `json:"topic_id"`
	TopicLabel    string  `json:"topic_label"`
	Probability   float64 `json:"probability"`
}

// TopicModelResult is the full output of one topic modeling call.
type TopicModelResult struct {
	Topics         []ModeledTopic  `json:"topics"`
	DocumentTopics []DocumentTopic `json:"document_topics"`
	TotalTopics    int             `json:"total_topics"`
	TotalDocuments int             `json:"total_documents"`
}

type SentimentClassifier interface {
	Classify(ctx context.Context, text string) (SentimentResult, error)
}

type EntityExtractor interface {
	ExtractEntities(ctx context.Context, text string) ([]Entity, error)
}

type KeywordExtractor interface {
	ExtractKeywords(ctx context.Context, text string, topN int) ([]string, error)
}

type TopicModeler interface {
	ExtractTopics(ctx context.Context, documents []string, numTopics int) (TopicModelResult, error)
}

// CleanedQuery is the output of search query preprocessing. Suggestion is
// empty unless the rewrite was heavy enough to be worth surfacing to the
// caller as a "did you mean" hint.
type CleanedQuery struct {
	Original   string `json:"original"`
	Cleaned    string `json:"cleaned"`
	Suggestion string `json:"suggestion,omitempty"`
}

// QueryCleaner preprocesses a search query before it is sent to a news
// source: noise stripping, normalization, stopword removal. The cleaning
// model is opaque like the other NLP services.
type QueryCleaner interface {
	CleanQuery(ctx context.Context, text string) (CleanedQuery, error)
}
