package ingest

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/newslens/newslens/model"
	"github.com/newslens/newslens/utils"
	Logger "github.com/newslens/newslens/utils/log"
)

// UpsertDocuments writes a batch of canonical records into the article table.
// For each record: look up by URL, insert when absent, otherwise backfill only
// the fields that are still empty. Populated fields are never overwritten.
// The whole run commits as one transaction; any record failure rolls back the
// entire batch. Returns the number of newly inserted rows.
func UpsertDocuments(db *gorm.DB, docs []Document) (int, error) {
	inserted := 0
	var txn utils.GormTransaction = func(tx *gorm.DB) error {
		for _, d := range docs {
			var article model.Article
			queryResult := tx.Where("url = ?", d.Url).First(&article)
			if queryResult.Error != nil && !errors.Is(queryResult.Error, gorm.ErrRecordNotFound) {
				return queryResult.Error
			}

			if queryResult.RowsAffected == 0 {
				if err := tx.Create(newArticleFromDocument(d)).Error; err != nil {
					return err
				}
				inserted++
				continue
			}

			if err := backfillArticle(tx, &article, d); err != nil {
				return err
			}
		}
		return nil
	}
	if err := db.Transaction(txn); err != nil {
		return 0, err
	}
	return inserted, nil
}

func newArticleFromDocument(d Document) *model.Article {
	title := d.Title
	if title == "" {
		title = "(untitled)"
	}
	// Never leave PublishedAt NULL so the row passes window filters
	// downstream. Rows that got the fallback carry the "defaulted" marker.
	publishedAt := d.PublishedAt
	publishedAtSource := model.PublishedAtParsed
	if publishedAt == nil {
		now := time.Now().UTC()
		publishedAt = &now
		publishedAtSource = model.PublishedAtDefaulted
	}
	// Coordinates go in as a complete pair or not at all, even for documents
	// that bypassed Normalize.
	lat, lon := d.Lat, d.Lon
	if lat == nil || lon == nil {
		lat, lon = nil, nil
	}
	return &model.Article{
		Id:                uuid.New().String(),
		Title:             title,
		Description:       d.Description,
		PublishedAt:       publishedAt,
		PublishedAtSource: publishedAtSource,
		Source:            d.Source,
		Url:               d.Url,
		Location:          d.Location,
		Lat:               lat,
		Lon:               lon,
		ImageUrl:          d.ImageUrl,
	}
}

// backfillArticle fills still-empty fields of an existing row from the new
// record. Coordinates are only ever written as a complete pair so a row never
// ends up half geocoded.
func backfillArticle(tx *gorm.DB, article *model.Article, d Document) error {
	updates := map[string]interface{}{}

	if (article.Lat == nil || article.Lon == nil) && d.Lat != nil && d.Lon != nil {
		updates["lat"] = *d.Lat
		updates["lon"] = *d.Lon
	}
	if article.Location == "" && d.Location != "" {
		updates["location"] = d.Location
	}
	if article.PublishedAt == nil {
		publishedAtSource := model.PublishedAtParsed
		publishedAt := d.PublishedAt
		if publishedAt == nil {
			now := time.Now().UTC()
			publishedAt = &now
			publishedAtSource = model.PublishedAtDefaulted
		}
		updates["published_at"] = *publishedAt
		updates["published_at_source"] = publishedAtSource
	}

	if len(updates) == 0 {
		return nil
	}
	return tx.Model(article).Updates(updates).Error
}

// Ingester ties a document source to the store: fetch, normalize, upsert,
// record run status. One Run is one ingestion run in the sense of the upsert
// contract above.
type Ingester struct {
	db     *gorm.DB
	source DocumentSource
	status *utils.RedisStatusStore
}

func NewIngester(db *gorm.DB, source DocumentSource) *Ingester {
	return &Ingester{db: db, source: source}
}

// WithStatusStore makes the ingester record each run into Redis. Optional:
// without it runs are only logged.
func (in *Ingester) WithStatusStore(status *utils.RedisStatusStore) *Ingester {
	in.status = status
	return in
}

// Run performs one ingestion run. An upstream fetch failure degrades to an
// empty batch: zero new records, indistinguishable from "legitimately nothing
// new" except in the logs.
func (in *Ingester) Run(ctx context.Context, opts FetchOptions) (int, error) {
	raws, err := in.source.FetchDocuments(ctx, opts)
	if err != nil {
		var srcErr *SourceError
		if !errors.As(err, &srcErr) {
			return 0, err
		}
		Logger.Log.Errorf("fetch from %s failed, degrading to empty batch: %s", in.source.Name(), err)
		raws = nil
	}

	inserted, err := UpsertDocuments(in.db, Normalize(raws))
	if err != nil {
		return 0, err
	}
	Logger.Log.Infof("inserted %d articles from %s", inserted, in.source.Name())

	if in.status != nil {
		status := utils.IngestRunStatus{LastRunAt: time.Now().UTC(), Inserted: inserted}
		if err := in.status.SetIngestRunStatus(in.source.Name(), opts.Query, status); err != nil {
			// Status bookkeeping must not fail the run.
			Logger.Log.Errorf("fail to record ingest run status: %s", err)
		}
	}
	return inserted, nil
}
