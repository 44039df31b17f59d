package main

import (
	"context"

	"github.com/newslens/newslens/geocode"
	"github.com/newslens/newslens/utils"
	"github.com/newslens/newslens/utils/dotenv"
	Logger "github.com/newslens/newslens/utils/log"
)

func main() {
	if err := dotenv.LoadDotEnvs(); err != nil {
		panic(err)
	}

	db, err := utils.GetDBConnection()
	if err != nil {
		Logger.Log.Fatalf("fail to connect to DB: %s", err)
	}

	result, err := geocode.Backfill(
		context.Background(),
		db,
		geocode.NewNominatimClient(),
		geocode.DefaultBackfillOptions(),
	)
	if err != nil {
		Logger.Log.Fatalf("backfill failed: %s", err)
	}

	Logger.Log.Infof("done. updated %d rows, skipped %d empty locations", result.Updated, result.Skipped)
	for _, loc := range result.FailedLocations {
		Logger.Log.Warnf("failed to geocode location: %s", loc)
	}
}
