package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/pkg/errors"
)

const newsApiBaseUrl = "https://newsapi.org/v2/everything"

type newsApiSource struct {
	Name string `json:"name"`
}

type newsApiArticle struct {
	Source      newsApiSource `json:"source"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Url         string        `json:"url"`
	UrlToImage  string        `json:"urlToImage"`
	PublishedAt string        `json:"publishedAt"`
}

type newsApiResponse struct {
	Status   string           `json:"status"`
	Articles []newsApiArticle `json:"articles"`
}

// NewsAPIClient fetches articles from the NewsAPI "everything" endpoint.
type NewsAPIClient struct {
	client  *http.Client
	baseUrl string
	apiKey  string
}

func NewNewsAPIClient() *NewsAPIClient {
	return &NewsAPIClient{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseUrl: newsApiBaseUrl,
		apiKey:  os.Getenv("NEWS_API_KEY"),
	}
}

// NewNewsAPIClientWithBaseUrl is used in tests to point the client at a stub
// server.
func NewNewsAPIClientWithBaseUrl(baseUrl string, apiKey string) *NewsAPIClient {
	c := NewNewsAPIClient()
	c.baseUrl = baseUrl
	c.apiKey = apiKey
	return c
}

func (c *NewsAPIClient) Name() string {
	return "newsapi"
}

func (c *NewsAPIClient) FetchDocuments(ctx context.Context, opts FetchOptions) ([]RawDocument, error) {
	params := url.Values{}
	params.Set("q", opts.Query)
	params.Set("language", opts.Language)
	params.Set("pageSize", fmt.Sprintf("%d", opts.MaxRecords))
	params.Set("apiKey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseUrl+"?"+params.Encode(), nil)
	if err != nil {
		return nil, &SourceError{Source: c.Name(), Err: err}
	}

	res, err := c.client.Do(req)
	if err != nil {
		return nil, &SourceError{Source: c.Name(), Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, &SourceError{Source: c.Name(), Err: errors.Errorf("HTTP %d", res.StatusCode)}
	}

	var body newsApiResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, &SourceError{Source: c.Name(), Err: errors.Wrap(err, "non-JSON body")}
	}
	if body.Status != "ok" {
		return nil, &SourceError{Source: c.Name(), Err: errors.Errorf("status %q", body.Status)}
	}

	docs := []RawDocument{}
	for _, a := range body.Articles {
		docs = append(docs, RawDocument{
			Title:       a.Title,
			Url:         a.Url,
			Description: a.Description,
			PublishedAt: a.PublishedAt,
			Source:      a.Source.Name,
			ImageUrl:    a.UrlToImage,
		})
	}
	return docs, nil
}
