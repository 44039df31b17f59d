package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisStatusStore records operational status of ingestion runs: for each
// search query we keep the time of the last successful run and how many new
// articles it inserted. The admin stats endpoint reads these back.
type RedisStatusStore struct {
	inner     *redis.Client
	keyParser RedisKeyParser
}

var ctx = context.Background()

func GetRedisStatusStore() (*RedisStatusStore, error) {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT")),
		Password: os.Getenv("REDIS_PASSWD"),
		DB:       0, // use default DB
	})
	_, err := redisClient.Ping(ctx).Result()
	if err != nil {
		return nil, err
	}
	return &RedisStatusStore{
		inner:     redisClient,
		keyParser: RedisKeyParser{delimiter: "__"},
	}, nil
}

type RedisKeyParser struct {
	delimiter string
}

func (r RedisKeyParser) ValidateId(id string) bool {
	return !strings.Contains(id, r.delimiter)
}

func (r RedisKeyParser) EncodeIngestRunKey(source string, query string) (string, error) {
	if !r.ValidateId(source) || !r.ValidateId(query) {
		return "", fmt.Errorf("invalid source or query")
	}
	return fmt.Sprintf("ingest_run%s%s%s%s", r.delimiter, source, r.delimiter, query), nil
}

func (r RedisKeyParser) DecodeIngestRunKey(key string) (string, string, error) {
	splits := strings.Split(key, r.delimiter)
	if len(splits) != 3 {
		return "", "", fmt.Errorf("invalid key: %s", key)
	}
	return splits[1], splits[2], nil
}

// IngestRunStatus is the JSON payload stored per (source, query) pair.
type IngestRunStatus struct {
	LastRunAt time.Time `json:"last_run_at"`
	Inserted  int       `json:"inserted"`
}

func (r *RedisStatusStore) SetIngestRunStatus(source string, query string, status IngestRunStatus) error {
	key, err := r.keyParser.EncodeIngestRunKey(source, query)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(status)
	if err != nil {
		return err
	}
	return r.inner.Set(ctx, key, string(payload), 0).Err()
}

// GetIngestRunStatus returns the recorded status and whether any run has been
// recorded for the (source, query) pair at all.
func (r *RedisStatusStore) GetIngestRunStatus(source string, query string) (IngestRunStatus, bool, error) {
	var status IngestRunStatus
	key, err := r.keyParser.EncodeIngestRunKey(source, query)
	if err != nil {
		return status, false, err
	}
	res, err := r.inner.Get(ctx, key).Result()
	if err == redis.Nil {
		return status, false, nil
	}
	if err != nil {
		return status, false, err
	}
	if err := json.Unmarshal([]byte(res), &status); err != nil {
		return status, false, err
	}
	return status, true, nil
}
