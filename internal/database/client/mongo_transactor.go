package client

import (
	"context"

	"rewear/config"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
	"go.uber.org/zap"
)

// MongoTransactor 以 session 執行多文件交易；
// 單機 MongoDB（無 replica set）可用 MONGODB__DISABLE_TRANSACTIONS 關閉，改由呼叫端補償
type MongoTransactor struct {
	mongoClient *MongoClient
	disabled    bool
	logger      *zap.Logger
}

func NewMongoTransactor(logger *zap.Logger, config *config.Configuration, mongoClient *MongoClient) *MongoTransactor {
	if config.MongoDB.DisableTransactions {
		logger.Warn("MongoDB transactions disabled, multi-document writes fall back to compensation")
	}
	return &MongoTransactor{
		mongoClient: mongoClient,
		disabled:    config.MongoDB.DisableTransactions,
		logger:      logger,
	}
}

// Atomic 回報 WithTransaction 是否真的具備回滾能力
func (t *MongoTransactor) Atomic() bool {
	return !t.disabled
}

// WithTransaction 在同一個交易內執行 fn；fn 回傳錯誤即 abort。
// fn 拿到的 ctx 帶有 session，repository 需沿用這個 ctx。
func (t *MongoTransactor) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if t.disabled {
		return fn(ctx)
	}

	session, err := t.mongoClient.Client().StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(context.Background())

	txnOptions := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	_, err = session.WithTransaction(ctx, func(sessionContext mongo.SessionContext) (interface{}, error) {
		return nil, fn(sessionContext)
	}, txnOptions)
	return err
}
