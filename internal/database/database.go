package database

import (
	client "rewear/internal/database/client"
	fluentdRepo "rewear/internal/database/fluentd/repository"
	mongoRepo "rewear/internal/database/mongodb/repository"
	redisRepo "rewear/internal/database/redis/repository"

	"github.com/google/wire"
)

// ProviderSet 定義所有 DB Client 與 repository 的依賴
var ProviderSet = wire.NewSet(
	client.NewMongoClient,
	client.NewMongoTransactor,
	client.NewRedisClient,
	client.NewFluentdClient,
	mongoRepo.ProviderSet,
	redisRepo.ProviderSet,
	fluentdRepo.ProviderSet,
)
