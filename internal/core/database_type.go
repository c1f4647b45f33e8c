package core

// ─── Database Types ────────────────────────────────────────────────────────────

type MongoCollection string
type RedisKey string
type FluentdSubTag string

// ─── MongoDB ───────────────────────────────────────────────────────────────────

// 資料庫名稱由 MONGODB__DATABASE 決定，這裡只是預設值
const MongoDBDefaultName = "rewear"

const (
	MongoCollectionUsers        MongoCollection = "users"
	MongoCollectionItems        MongoCollection = "items"
	MongoCollectionSwapRequests MongoCollection = "swap_requests"
)

// ─── Redis Keys ────────────────────────────────────────────────────────────────

const (
	RedisKeyServerName RedisKey = "rewear"     // 伺服器名稱
	RedisKeyRateLimit  RedisKey = "rate_limit" // 使用者限流計數
)

// ─── Fluentd ───────────────────────────────────────────────────────────────────

const (
	FluentdRequest   FluentdSubTag = "request_log"
	FluentdResponse  FluentdSubTag = "response_log"
	FluentdSwapEvent FluentdSubTag = "swap_event_log"
)
