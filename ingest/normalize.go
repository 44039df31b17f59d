package ingest

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Document is the canonical record produced by normalization, the only shape
// the upsert layer accepts.
//
// PublishedAt stays nil when the source timestamp could not be parsed; the
// upsert layer decides what to substitute. Lat/Lon are either both set or both
// nil.
type Document struct {
	Title       string
	Url         string
	Description string
	PublishedAt *time.Time
	Source      string
	Location    string
	ImageUrl    string
	Lat         *float64
	Lon         *float64
}

// ParseTimestamp parses source timestamps of several shapes. It first tries a
// generic date/time grammar, then the compact numeric formats some feeds use:
// YYYYMMDD, YYYYMMDDHHMM and YYYYMMDDHHMMSS. Anything else yields nil. Parse
// failure is a silent policy here, not an error: the record survives with an
// unknown publish time.
func ParseTimestamp(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	if ts, err := dateparse.ParseAny(s); err == nil {
		return &ts
	}

	if !isAllDigits(s) {
		return nil
	}
	var layout string
	switch len(s) {
	case 8:
		layout = "20060102"
	case 12:
		layout = "200601021504"
	case 14:
		layout = "20060102150405"
	default:
		return nil
	}
	ts, err := time.Parse(layout, s)
	if err != nil {
		return nil
	}
	return &ts
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

// ResolveCountry maps an ISO2 country code to a country name for geocoding.
// Unmapped codes pass through as the raw code so the geocoder still gets a
// chance at them.
func ResolveCountry(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return ""
	}
	if name, ok := iso2ToCountry[code]; ok {
		return name
	}
	return code
}

// Normalize converts a batch of raw source documents into canonical records.
// Documents without a URL are dropped: the URL is the dedup key and a record
// without one has no identity.
func Normalize(raws []RawDocument) []Document {
	docs := []Document{}
	for _, raw := range raws {
		if raw.Url == "" {
			continue
		}
		location := raw.Location
		if location == "" {
			location = ResolveCountry(raw.CountryCode)
		}
		doc := Document{
			Title:       raw.Title,
			Url:         raw.Url,
			Description: raw.Description,
			PublishedAt: ParseTimestamp(raw.PublishedAt),
			Source:      raw.Source,
			Location:    location,
			ImageUrl:    raw.ImageUrl,
		}
		// A half-supplied coordinate pair is treated as absent.
		if raw.Lat != nil && raw.Lon != nil {
			doc.Lat, doc.Lon = raw.Lat, raw.Lon
		}
		docs = append(docs, doc)
	}
	return docs
}
