package main

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/snapstats/analyzer/internal/logic"
	"github.com/snapstats/analyzer/internal/names"
)

const redisNamesPrefix = "names:"

// buildResolver merges name tables from files and, when rdb is set, Redis.
// Redis entries win over file entries.
func buildResolver(ctx context.Context, files []string, rdb names.RedisClient, logger *zap.Logger) (logic.NameResolver, error) {
	if len(files) == 0 {
		files = names.DefaultFiles
	}
	tables := names.LoadFiles(files, logger)

	if rdb != nil {
		fromRedis, err := names.LoadRedis(ctx, rdb, redisNamesPrefix, logger)
		if err != nil {
			return nil, err
		}
		tables.Merge(fromRedis)
	}

	table := names.NewTable(tables, logger)
	logger.Sugar().Infow("Loaded display names", "names", table.Len(), "files", len(files), "redis", rdb != nil)
	return table, nil
}

func openRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}
