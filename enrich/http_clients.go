package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/pkg/errors"
)

// ModelServerClient talks to the model serving endpoint that hosts the
// sentiment, NER, keyword and topic models. Calls are blocking with a flat
// client timeout and no retry; a failed call is terminal for that unit of
// work.
type ModelServerClient struct {
	client  *http.Client
	baseUrl string
}

func NewModelServerClient() *ModelServerClient {
	return &ModelServerClient{
		client:  &http.Client{Timeout: 60 * time.Second},
		baseUrl: os.Getenv("MODEL_SERVER_URL"),
	}
}

// NewModelServerClientWithBaseUrl is used in tests to point the client at a
// stub server.
func NewModelServerClientWithBaseUrl(baseUrl string) *ModelServerClient {
	c := NewModelServerClient()
	c.baseUrl = baseUrl
	return c
}

func (c *ModelServerClient) post(ctx context.Context, path string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, "POST", c.baseUrl+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return errors.Errorf("model server %s: HTTP %d", path, res.StatusCode)
	}
	return json.NewDecoder(res.Body).Decode(out)
}

func (c *ModelServerClient) Classify(ctx context.Context, text string) (SentimentResult, error) {
	var out SentimentResult
	err := c.post(ctx, "/sentiment", map[string]string{"text": text}, &out)
	return out, err
}

func (c *ModelServerClient) ExtractEntities(ctx context.Context, text string) ([]Entity, error) {
	var out struct {
		Entities []Entity `json:"entities"`
	}
	err := c.post(ctx, "/entities", map[string]string{"text": text}, &out)
	return out.Entities, err
}

func (c *ModelServerClient) ExtractKeywords(ctx context.Context, text string, topN int) ([]string, error) {
	var out struct {
		Keywords []string `json:"keywords"`
	}
	err := c.post(ctx, "/keywords", map[string]interface{}{"text": text, "top_n": topN}, &out)
	return out.Keywords, err
}

func (c *ModelServerClient) ExtractTopics(ctx context.Context, documents []string, numTopics int) (TopicModelResult, error) {
	var out TopicModelResult
	err := c.post(ctx, "/topics", map[string]interface{}{"documents": documents, "num_topics": numTopics}, &out)
	return out, err
}

func (c *ModelServerClient) CleanQuery(ctx context.Context, text string) (CleanedQuery, error) {
	var out CleanedQuery
	err := c.post(ctx, "/clean_query", map[string]string{"text": text}, &out)
	return out, err
}
