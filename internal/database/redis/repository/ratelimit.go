package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rewear/internal/core"
	client "rewear/internal/database/client"
	"rewear/internal/telemetry"

	"github.com/redis/go-redis/v9"
)

// RateLimiterRepository 固定視窗計數器：每個 subject 一把 key，值為剩餘次數
type RateLimiterRepository struct {
	trace  *telemetry.Trace
	client *redis.Client
}

func NewRateLimiterRepository(trace *telemetry.Trace, client *client.RedisClient) *RateLimiterRepository {
	return &RateLimiterRepository{trace: trace, client: client.Client()}
}

var ErrRateLimitExceeded = errors.New("rate limit exceeded")

// Enabled 未設定 Redis 時限流停用
func (repository *RateLimiterRepository) Enabled() bool {
	return repository != nil && repository.client != nil
}

// Consume 消耗一次配額；自動處理新週期初始化與剩餘 TTL。
// 回傳：remaining（剩餘次數）、ttlSec（剩餘秒數）、err（若超限為 ErrRateLimitExceeded）
func (repository *RateLimiterRepository) Consume(
	contextValue context.Context,
	subject string,
	windowSeconds int64,
	limitCount int,
) (remainingCount int, timeToLiveSeconds int64, returnedError error) {

	contextValue, span, endSpan := repository.trace.WithSpan(contextValue)
	defer func() {
		// 超限是正常結果，不標記 span 錯誤
		if errors.Is(returnedError, ErrRateLimitExceeded) {
			endSpan(nil)
			return
		}
		endSpan(returnedError)
	}()

	traceMetadata := core.TraceRateLimitMeta{
		Subject:   subject,
		Limit:     limitCount,
		WindowSec: windowSeconds,
		Op:        "consume",
	}
	repository.trace.ApplyTraceAttributes(span, traceMetadata)

	redisKey := repository.buildKey(subject)
	expirationDuration := time.Duration(windowSeconds) * time.Second

	// 嘗試初始化：SETNX key value EX expiration
	wasSet, setError := repository.client.SetNX(
		contextValue,
		redisKey,
		limitCount-1, // 本次消耗一次，所以初始值 = 總額-1
		expirationDuration,
	).Result()
	if setError != nil {
		returnedError = setError
		return 0, 0, returnedError
	}
	if wasSet {
		remainingCount = limitCount - 1
		if remainingCount < 0 {
			remainingCount = 0
			returnedError = ErrRateLimitExceeded
		}
		timeToLiveSeconds = windowSeconds
		traceMetadata.Remaining, traceMetadata.TTL = remainingCount, timeToLiveSeconds
		repository.trace.ApplyTraceAttributes(span, traceMetadata)
		return remainingCount, timeToLiveSeconds, returnedError
	}

	// Key 已存在 → 執行 DECR 扣一次
	newValue, decrError := repository.client.Decr(contextValue, redisKey).Result()
	if decrError != nil {
		returnedError = decrError
		return 0, 0, returnedError
	}

	ttlDuration, _ := repository.client.TTL(contextValue, redisKey).Result()
	if ttlDuration > 0 {
		timeToLiveSeconds = int64(ttlDuration.Seconds())
	} else {
		// key 沒有 TTL（例如 SETNX 與 EXPIRE 之間被人改寫），補上避免永久封鎖
		_ = repository.client.Expire(contextValue, redisKey, expirationDuration).Err()
		timeToLiveSeconds = windowSeconds
	}

	if newValue < 0 {
		remainingCount = 0
		traceMetadata.Remaining, traceMetadata.TTL = remainingCount, timeToLiveSeconds
		repository.trace.ApplyTraceAttributes(span, traceMetadata)
		returnedError = ErrRateLimitExceeded
		return remainingCount, timeToLiveSeconds, returnedError
	}

	remainingCount = int(newValue)
	traceMetadata.Remaining, traceMetadata.TTL = remainingCount, timeToLiveSeconds
	repository.trace.ApplyTraceAttributes(span, traceMetadata)
	return remainingCount, timeToLiveSeconds, nil
}

// GetCurrent 查詢目前剩餘次數與 TTL；尚無紀錄時回傳 limitCount, 0
func (repository *RateLimiterRepository) GetCurrent(
	contextValue context.Context,
	subject string,
	limitCount int,
) (remainingCount int, timeToLiveSeconds int64, returnedError error) {

	contextValue, span, endSpan := repository.trace.WithSpan(contextValue)
	defer func() { endSpan(returnedError) }()

	traceMetadata := core.TraceRateLimitMeta{Subject: subject, Limit: limitCount, Op: "get"}
	repository.trace.ApplyTraceAttributes(span, traceMetadata)

	redisKey := repository.buildKey(subject)

	// 用 pipeline 合併 GET + TTL 減少往返
	pipeline := repository.client.Pipeline()
	getCommand := pipeline.Get(contextValue, redisKey)
	ttlCommand := pipeline.TTL(contextValue, redisKey)
	if _, execError := pipeline.Exec(contextValue); execError != nil && execError != redis.Nil {
		returnedError = execError
		return 0, 0, returnedError
	}

	value, getError := getCommand.Int()
	if getError == redis.Nil {
		return limitCount, 0, nil
	}
	if getError != nil {
		returnedError = getError
		return 0, 0, returnedError
	}

	if ttlDuration := ttlCommand.Val(); ttlDuration > 0 {
		timeToLiveSeconds = int64(ttlDuration.Seconds())
	}
	remainingCount = max(value, 0)

	traceMetadata.Remaining, traceMetadata.TTL = remainingCount, timeToLiveSeconds
	repository.trace.ApplyTraceAttributes(span, traceMetadata)
	return remainingCount, timeToLiveSeconds, nil
}

// Delete 刪除 subject 的計數（管理用）
func (repository *RateLimiterRepository) Delete(
	contextValue context.Context,
	subject string,
) (returnedError error) {

	contextValue, span, endSpan := repository.trace.WithSpan(contextValue)
	defer func() { endSpan(returnedError) }()

	repository.trace.ApplyTraceAttributes(span, core.TraceRateLimitMeta{Subject: subject, Op: "delete"})

	returnedError = repository.client.Del(contextValue, repository.buildKey(subject)).Err()
	return returnedError
}

// buildKey 建構 RateLimiter 用的 Redis key
func (r *RateLimiterRepository) buildKey(subject string) string {
	return fmt.Sprintf("%s:%s:%s", core.RedisKeyServerName, core.RedisKeyRateLimit, subject)
}
