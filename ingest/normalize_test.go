package ingest

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestampCompactNumeric(t *testing.T) {
	ts := ParseTimestamp("20240115")
	require.NotNil(t, ts)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), ts.UTC())

	ts = ParseTimestamp("202401151330")
	require.NotNil(t, ts)
	assert.Equal(t, time.Date(2024, 1, 15, 13, 30, 0, 0, time.UTC), ts.UTC())

	ts = ParseTimestamp("20240115133045")
	require.NotNil(t, ts)
	assert.Equal(t, time.Date(2024, 1, 15, 13, 30, 45, 0, time.UTC), ts.UTC())
}

func TestParseTimestampGenericGrammar(t *testing.T) {
	ts := ParseTimestamp("2024-01-15T10:30:00Z")
	require.NotNil(t, ts)
	assert.Equal(t, time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC), ts.UTC())

	ts = ParseTimestamp("Jan 15, 2024")
	require.NotNil(t, ts)
	assert.Equal(t, 2024, ts.Year())
}

func TestParseTimestampGarbageYieldsNil(t *testing.T) {
	assert.Nil(t, ParseTimestamp("not-a-date"))
	assert.Nil(t, ParseTimestamp(""))
	assert.Nil(t, ParseTimestamp("   "))
	// numeric but not one of the fixed widths
	assert.Nil(t, ParseTimestamp("999999999999999999999"))
}

func TestResolveCountry(t *testing.T) {
	assert.Equal(t, "India", ResolveCountry("IN"))
	assert.Equal(t, "United States", ResolveCountry("us"))
	// unmapped codes pass through as the raw code
	assert.Equal(t, "ZZ", ResolveCountry("ZZ"))
	assert.Equal(t, "", ResolveCountry(""))
}

func TestNormalizeDropsDocumentsWithoutUrl(t *testing.T) {
	docs := Normalize([]RawDocument{
		{Title: "has url", Url: "http://x/y"},
		{Title: "no url"},
	})
	require.Len(t, docs, 1)
	assert.Equal(t, "http://x/y", docs[0].Url)
}

func TestNormalizeResolvesCountryCode(t *testing.T) {
	docs := Normalize([]RawDocument{
		{Url: "http://x/1", CountryCode: "IN"},
		{Url: "http://x/2", CountryCode: "ZZ"},
		{Url: "http://x/3", Location: "Bangalore", CountryCode: "IN"},
	})
	require.Len(t, docs, 3)
	assert.Equal(t, "India", docs[0].Location)
	assert.Equal(t, "ZZ", docs[1].Location)
	// an explicit location wins over the country code
	assert.Equal(t, "Bangalore", docs[2].Location)
}

func TestNormalizeFullDocument(t *testing.T) {
	lat, lon := 12.9, 77.6
	docs := Normalize([]RawDocument{{
		Title:       "headline",
		Url:         "http://x/full",
		Description: "desc",
		PublishedAt: "2024-01-15T10:30:00Z",
		Source:      "example",
		CountryCode: "IN",
		ImageUrl:    "http://x/img.png",
		Lat:         &lat,
		Lon:         &lon,
	}})
	require.Len(t, docs, 1)

	publishedAt := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	want := Document{
		Title:       "headline",
		Url:         "http://x/full",
		Description: "desc",
		PublishedAt: &publishedAt,
		Source:      "example",
		Location:    "India",
		ImageUrl:    "http://x/img.png",
		Lat:         &lat,
		Lon:         &lon,
	}
	if diff := cmp.Diff(want, docs[0]); diff != "" {
		t.Errorf("normalized document mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizeHalfSuppliedPairIsDropped(t *testing.T) {
	lat := 12.9
	docs := Normalize([]RawDocument{
		{Url: "http://x/1", Lat: &lat},
	})
	require.Len(t, docs, 1)
	assert.Nil(t, docs[0].Lat)
	assert.Nil(t, docs[0].Lon)
}
