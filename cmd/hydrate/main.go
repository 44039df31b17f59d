package main

import (
	"context"
	"os"
	"strconv"

	"github.com/newslens/newslens/hydrate"
	"github.com/newslens/newslens/model"
	"github.com/newslens/newslens/utils"
	"github.com/newslens/newslens/utils/dotenv"
	Logger "github.com/newslens/newslens/utils/log"
)

func batchSize() int {
	if v := os.Getenv("HYDRATE_BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return 50
}

func main() {
	if err := dotenv.LoadDotEnvs(); err != nil {
		panic(err)
	}

	db, err := utils.GetDBConnection()
	if err != nil {
		Logger.Log.Fatalf("fail to connect to DB: %s", err)
	}

	var articles []model.Article
	err = db.
		Where("body IS NULL").
		Order("published_at DESC").
		Limit(batchSize()).
		Find(&articles).Error
	if err != nil {
		Logger.Log.Fatalf("fail to load articles: %s", err)
	}

	hydrator := hydrate.NewHydrator()
	hydrated := 0
	for i := range articles {
		// Fetch failures are already logged by the hydrator; a failed row
		// stays NULL and is retried on the next run.
		if err := hydrator.HydrateArticle(context.Background(), db, &articles[i]); err != nil {
			continue
		}
		hydrated++
	}
	Logger.Log.Infof("done. hydrated %d of %d articles", hydrated, len(articles))
}
