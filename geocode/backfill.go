package geocode

import (
	"context"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/newslens/newslens/model"
	Logger "github.com/newslens/newslens/utils/log"
)

// BackfillOptions tune the offline geocoding pass.
type BackfillOptions struct {
	// Delay is the fixed pause between lookups of distinct locations, to
	// honor the geocoder's rate limit.
	Delay time.Duration
	// CommitBatchSize is how many row updates are committed per transaction.
	CommitBatchSize int
}

func DefaultBackfillOptions() BackfillOptions {
	return BackfillOptions{
		Delay:           1100 * time.Millisecond,
		CommitBatchSize: 50,
	}
}

// BackfillResult summarizes one backfill pass.
type BackfillResult struct {
	Updated         int
	Skipped         int
	FailedLocations []string
}

// Backfill resolves coordinates for articles that have a location but no
// complete coordinate pair yet, and a publish timestamp. Lookups are batched
// by distinct location string and cached for the duration of the run; a
// failed lookup is cached too, so it is not retried within the same run.
// Coordinates are always written as a complete pair: a pass either sets both
// or leaves both null.
func Backfill(ctx context.Context, db *gorm.DB, geocoder Geocoder, opts BackfillOptions) (BackfillResult, error) {
	result := BackfillResult{}

	var articles []model.Article
	err := db.
		Where("location IS NOT NULL AND location <> ''").
		Where("lat IS NULL OR lon IS NULL").
		Where("published_at IS NOT NULL").
		Find(&articles).Error
	if err != nil {
		return result, err
	}

	cache := map[string]*Coordinates{}
	failed := map[string]bool{}
	pending := []model.Article{}

	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		batch := pending
		pending = nil
		return db.Transaction(func(tx *gorm.DB) error {
			for _, a := range batch {
				err := tx.Model(&model.Article{}).
					Where("id = ?", a.Id).
					Updates(map[string]interface{}{"lat": *a.Lat, "lon": *a.Lon}).Error
				if err != nil {
					return err
				}
			}
			return nil
		})
	}

	for _, article := range articles {
		loc := strings.TrimSpace(article.Location)
		if loc == "" {
			result.Skipped++
			continue
		}

		coords, cached := cache[loc]
		if !cached {
			resolved, ok, err := geocoder.Geocode(ctx, loc)
			if err != nil || !ok {
				if err != nil {
					Logger.Log.Errorf("geocoding failed for location %q: %s", loc, err)
				}
				// Cache the failure so the location isn't retried this run.
				cache[loc] = nil
				failed[loc] = true
			} else {
				cache[loc] = &resolved
			}
			coords = cache[loc]
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			case <-time.After(opts.Delay):
			}
		}

		if coords == nil {
			continue
		}
		lat, lon := coords.Lat, coords.Lon
		article.Lat, article.Lon = &lat, &lon
		pending = append(pending, article)
		result.Updated++

		if len(pending) >= opts.CommitBatchSize {
			if err := flush(); err != nil {
				return result, err
			}
			Logger.Log.Infof("updated %d rows...", result.Updated)
		}
	}

	if err := flush(); err != nil {
		return result, err
	}

	for loc := range failed {
		result.FailedLocations = append(result.FailedLocations, loc)
	}
	sort.Strings(result.FailedLocations)
	return result, nil
}
