package geocode

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/newslens/newslens/model"
	"github.com/newslens/newslens/utils"
	"github.com/newslens/newslens/utils/dotenv"
)

func TestMain(m *testing.M) {
	dotenv.LoadDotEnvsInTests()
	os.Exit(m.Run())
}

// fakeGeocoder resolves from a fixed table and counts lookups per location.
type fakeGeocoder struct {
	coords map[string]Coordinates
	calls  map[string]int
}

func newFakeGeocoder(coords map[string]Coordinates) *fakeGeocoder {
	return &fakeGeocoder{coords: coords, calls: map[string]int{}}
}

func (g *fakeGeocoder) Geocode(ctx context.Context, location string) (Coordinates, bool, error) {
	g.calls[location]++
	c, ok := g.coords[location]
	return c, ok, nil
}

func createGeoArticle(t *testing.T, db *gorm.DB, location string, published bool) *model.Article {
	t.Helper()
	article := &model.Article{
		Id:       uuid.New().String(),
		Title:    "t",
		Url:      "http://x/" + uuid.New().String(),
		Location: location,
	}
	if published {
		now := time.Now().UTC()
		article.PublishedAt = &now
		article.PublishedAtSource = model.PublishedAtParsed
	}
	require.NoError(t, db.Create(article).Error)
	return article
}

func testBackfillOptions() BackfillOptions {
	return BackfillOptions{Delay: time.Millisecond, CommitBatchSize: 2}
}

func TestBackfillWritesCoordinatePairs(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	a := createGeoArticle(t, db, "Bengaluru", true)
	b := createGeoArticle(t, db, "London", true)

	geocoder := newFakeGeocoder(map[string]Coordinates{
		"Bengaluru": {Lat: 12.97, Lon: 77.59},
		"London":    {Lat: 51.5, Lon: -0.12},
	})
	result, err := Backfill(context.Background(), db, geocoder, testBackfillOptions())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Updated)
	assert.Empty(t, result.FailedLocations)

	var stored model.Article
	require.NoError(t, db.First(&stored, "id = ?", a.Id).Error)
	require.NotNil(t, stored.Lat)
	require.NotNil(t, stored.Lon)
	assert.Equal(t, 12.97, *stored.Lat)
	assert.Equal(t, 77.59, *stored.Lon)

	require.NoError(t, db.First(&stored, "id = ?", b.Id).Error)
	require.NotNil(t, stored.Lat)
	assert.Equal(t, 51.5, *stored.Lat)
}

func TestBackfillCachesDistinctLocations(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	for i := 0; i < 3; i++ {
		createGeoArticle(t, db, "Mumbai", true)
	}
	createGeoArticle(t, db, "Paris", true)

	geocoder := newFakeGeocoder(map[string]Coordinates{
		"Mumbai": {Lat: 19.07, Lon: 72.87},
		"Paris":  {Lat: 48.85, Lon: 2.35},
	})
	result, err := Backfill(context.Background(), db, geocoder, testBackfillOptions())
	require.NoError(t, err)
	assert.Equal(t, 4, result.Updated)
	assert.Equal(t, 1, geocoder.calls["Mumbai"])
	assert.Equal(t, 1, geocoder.calls["Paris"])
}

func TestBackfillCachesFailedLookups(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	createGeoArticle(t, db, "Atlantis", true)
	createGeoArticle(t, db, "Atlantis", true)

	geocoder := newFakeGeocoder(map[string]Coordinates{})
	result, err := Backfill(context.Background(), db, geocoder, testBackfillOptions())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Updated)
	assert.Equal(t, 1, geocoder.calls["Atlantis"])
	assert.Equal(t, []string{"Atlantis"}, result.FailedLocations)

	var stored []model.Article
	require.NoError(t, db.Find(&stored).Error)
	for _, article := range stored {
		assert.Nil(t, article.Lat)
		assert.Nil(t, article.Lon)
	}
}

func TestBackfillSkipsUnpublishedArticles(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	unpublished := createGeoArticle(t, db, "Tokyo", false)

	geocoder := newFakeGeocoder(map[string]Coordinates{
		"Tokyo": {Lat: 35.67, Lon: 139.65},
	})
	result, err := Backfill(context.Background(), db, geocoder, testBackfillOptions())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Updated)
	assert.Zero(t, geocoder.calls["Tokyo"])

	var stored model.Article
	require.NoError(t, db.First(&stored, "id = ?", unpublished.Id).Error)
	assert.Nil(t, stored.Lat)
}

func TestBackfillHonorsContextCancellation(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	createGeoArticle(t, db, "Berlin", true)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	geocoder := newFakeGeocoder(map[string]Coordinates{
		"Berlin": {Lat: 52.52, Lon: 13.4},
	})
	opts := BackfillOptions{Delay: time.Hour, CommitBatchSize: 2}
	_, err := Backfill(ctx, db, geocoder, opts)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}
