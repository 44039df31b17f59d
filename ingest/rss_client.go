package ingest

import (
	"context"

	"github.com/mmcdole/gofeed"
)

// RSSClient fetches articles from a single RSS/Atom feed. The query option is
// ignored, feeds are already scoped by their URL.
type RSSClient struct {
	parser  *gofeed.Parser
	feedUrl string
	source  string
}

func NewRSSClient(feedUrl string, source string) *RSSClient {
	return &RSSClient{
		parser:  gofeed.NewParser(),
		feedUrl: feedUrl,
		source:  source,
	}
}

func (c *RSSClient) Name() string {
	return "rss:" + c.source
}

func (c *RSSClient) FetchDocuments(ctx context.Context, opts FetchOptions) ([]RawDocument, error) {
	feed, err := c.parser.ParseURLWithContext(c.feedUrl, ctx)
	if err != nil {
		return nil, &SourceError{Source: c.Name(), Err: err}
	}

	docs := []RawDocument{}
	for i, item := range feed.Items {
		if opts.MaxRecords > 0 && i >= opts.MaxRecords {
			break
		}
		doc := RawDocument{
			Title:       item.Title,
			Url:         item.Link,
			Description: item.Description,
			PublishedAt: item.Published,
			Source:      c.source,
		}
		if item.Image != nil {
			doc.ImageUrl = item.Image.URL
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
