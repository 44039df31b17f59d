package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"

	Logger "github.com/newslens/newslens/utils/log"
)

const gdeltBaseUrl = "https://api.gdeltproject.org/api/v2/doc/doc"

// Minimal ISO2 -> country name map (extend as needed)
var iso2ToCountry = map[string]string{
	"IN": "India",
	"US": "United States",
	"GB": "United Kingdom",
	"CA": "Canada",
	"AU": "Australia",
	"DE": "Germany",
	"FR": "France",
	"BR": "Brazil",
	"JP": "Japan",
	"CN": "China",
	"RU": "Russia",
	"ZA": "South Africa",
}

type gdeltArticle struct {
	Title         string `json:"title"`
	Url           string `json:"url"`
	SeenDate      string `json:"seendate"`
	Date          string `json:"date"`
	Domain        string `json:"domain"`
	SourceCountry string `json:"sourcecountry"`
	SocialImage   string `json:"socialimage"`
}

type gdeltResponse struct {
	Articles []gdeltArticle `json:"articles"`
}

// GDELTClient fetches articles from the GDELT DOC 2.0 ArtList API.
type GDELTClient struct {
	client  *http.Client
	baseUrl string
}

func NewGDELTClient() *GDELTClient {
	return &GDELTClient{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseUrl: gdeltBaseUrl,
	}
}

// NewGDELTClientWithBaseUrl is used in tests to point the client at a stub
// server.
func NewGDELTClientWithBaseUrl(baseUrl string) *GDELTClient {
	c := NewGDELTClient()
	c.baseUrl = baseUrl
	return c
}

func (c *GDELTClient) Name() string {
	return "gdelt"
}

func (c *GDELTClient) FetchDocuments(ctx context.Context, opts FetchOptions) ([]RawDocument, error) {
	params := url.Values{}
	params.Set("format", "JSON")
	params.Set("timespan", fmt.Sprintf("%dh", opts.TimespanHours))
	params.Set("maxrecords", fmt.Sprintf("%d", opts.MaxRecords))
	params.Set("mode", "ArtList")
	params.Set("sort", "DateDesc")
	// must be non-empty
	params.Set("query", opts.Query)

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseUrl+"?"+params.Encode(), nil)
	if err != nil {
		return nil, &SourceError{Source: c.Name(), Err: err}
	}
	req.Header.Set("User-Agent", "newslens/1.0")

	res, err := c.client.Do(req)
	if err != nil {
		return nil, &SourceError{Source: c.Name(), Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, &SourceError{Source: c.Name(), Err: errors.Errorf("HTTP %d", res.StatusCode)}
	}

	var body gdeltResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, &SourceError{Source: c.Name(), Err: errors.Wrap(err, "non-JSON body")}
	}

	Logger.Log.Infof("gdelt articles fetched: %d", len(body.Articles))

	docs := []RawDocument{}
	for _, a := range body.Articles {
		publishedAt := a.SeenDate
		if publishedAt == "" {
			publishedAt = a.Date
		}
		docs = append(docs, RawDocument{
			Title:       a.Title,
			Url:         a.Url,
			PublishedAt: publishedAt,
			Source:      a.Domain,
			CountryCode: a.SourceCountry,
			ImageUrl:    a.SocialImage,
			// leave coordinates empty; backfill will set centroids
		})
	}
	return docs, nil
}
