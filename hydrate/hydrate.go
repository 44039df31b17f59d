// Package hydrate fills the nullable article body by fetching the origin page
// and extracting its paragraph text. Articles enter the store with only title
// and description; hydration is a separate, optional pass.
package hydrate

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/newslens/newslens/model"
	Logger "github.com/newslens/newslens/utils/log"
)

// Hydrator fetches article fulltext from origin URLs.
type Hydrator struct {
	client *http.Client
}

func NewHydrator() *Hydrator {
	return &Hydrator{client: &http.Client{Timeout: 20 * time.Second}}
}

// FetchBody downloads the page at url and returns its paragraph text joined
// by blank lines. Boilerplate removal is out of scope; short paragraphs are
// dropped as a crude noise filter.
func (h *Hydrator) FetchBody(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "newslens/1.0")

	res, err := h.client.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return "", errors.Errorf("HTTP %d", res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return "", err
	}

	paragraphs := []string{}
	doc.Find("article p, p").Each(func(i int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if len(text) >= 80 {
			paragraphs = append(paragraphs, text)
		}
	})
	return strings.Join(paragraphs, "\n\n"), nil
}

// HydrateArticle fills the article's body if it is still null. A fetch
// failure leaves the row unchanged; hydration can be re-run later.
func (h *Hydrator) HydrateArticle(ctx context.Context, db *gorm.DB, article *model.Article) error {
	if article.Body != nil {
		return nil
	}
	body, err := h.FetchBody(ctx, article.Url)
	if err != nil {
		Logger.Log.Errorf("fail to hydrate article %s: %s", article.Id, err)
		return err
	}
	if body == "" {
		return nil
	}
	return db.Model(article).Update("body", body).Error
}
