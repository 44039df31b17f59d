package main

import (
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/newslens/newslens/enrich"
	"github.com/newslens/newslens/ingest"
	"github.com/newslens/newslens/server"
	"github.com/newslens/newslens/utils"
	"github.com/newslens/newslens/utils/dotenv"
	Logger "github.com/newslens/newslens/utils/log"
)

// newSource picks the news source by env. GDELT is the default; NewsAPI needs
// an API key.
func newSource() ingest.DocumentSource {
	if os.Getenv("NEWS_SOURCE") == "newsapi" {
		return ingest.NewNewsAPIClient()
	}
	return ingest.NewGDELTClient()
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

	var classifier enrich.SentimentClassifier
	var entities enrich.EntityExtractor
	var keywords enrich.KeywordExtractor
	var topics enrich.TopicModeler
	var cleaner enrich.QueryCleaner
	if os.Getenv("MODEL_SERVER_URL") == "" {
		// No model deployment configured, serve deterministic fakes so the
		// API stays usable in development.
		fake := enrich.FakeModelClient{}
		classifier, entities, keywords, topics, cleaner = fake, fake, fake, fake, fake
		Logger.Log.Warn("MODEL_SERVER_URL not set, using fake model clients")
	} else {
		client := enrich.NewModelServerClient()
		classifier, entities, keywords, topics, cleaner = client, client, client, client, client
	}

	srv := server.NewServer(db, newSource(), classifier, entities, keywords, topics, cleaner)
	if os.Getenv("REDIS_HOST") != "" {
		status, err := utils.GetRedisStatusStore()
		if err != nil {
			Logger.Log.Errorf("fail to connect to redis, run status disabled: %s", err)
		} else {
			srv.WithStatusStore(status)
		}
	}

	// Default With the Logger and Recovery middleware already attached
	router := gin.Default()
	router.Use(cors.Default())
	srv.RegisterRoutes(router)

	Logger.Log.Info("api server starts up")
	router.Run(":8080")
}
