package main

import (
	"context"
	"os"
	"strconv"

	"github.com/newslens/newslens/ingest"
	"github.com/newslens/newslens/utils"
	"github.com/newslens/newslens/utils/dotenv"
	Logger "github.com/newslens/newslens/utils/log"
)

func envOr(key string, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func main() {
	if err := dotenv.LoadDotEnvs(); err != nil {
		panic(err)
	}

	db, err := utils.GetDBConnection()
	if err != nil {
		Logger.Log.Fatalf("fail to connect to DB: %s", err)
	}
	utils.DatabaseSetupAndMigration(db)

	var source ingest.DocumentSource
	switch envOr("NEWS_SOURCE", "gdelt") {
	case "newsapi":
		source = ingest.NewNewsAPIClient()
	case "rss":
		source = ingest.NewRSSClient(os.Getenv("RSS_FEED_URL"), envOr("RSS_SOURCE_NAME", "rss"))
	default:
		source = ingest.NewGDELTClient()
	}

	ingester := ingest.NewIngester(db, source)
	if os.Getenv("REDIS_HOST") != "" {
		status, err := utils.GetRedisStatusStore()
		if err != nil {
			Logger.Log.Errorf("fail to connect to redis, run status disabled: %s", err)
		} else {
			ingester.WithStatusStore(status)
		}
	}

	opts := ingest.FetchOptions{
		// Parenthesized OR group is required by DOC 2.0 query syntax
		Query:         envOr("INGEST_QUERY", "(AI OR climate OR india)"),
		TimespanHours: envIntOr("INGEST_TIMESPAN_HOURS", 168),
		MaxRecords:    envIntOr("INGEST_MAX_RECORDS", 150),
		Language:      envOr("INGEST_LANGUAGE", "en"),
	}

	inserted, err := ingester.Run(context.Background(), opts)
	if err != nil {
		Logger.Log.Fatalf("ingestion run failed: %s", err)
	}
	Logger.Log.Infof("ingestion run done, %d new articles", inserted)
}
