package core

const ContextTraceKey = "telemetry_trace_ctx"

// ==== 型別安全 span name ====
// 專案全域建議都寫這裡，方便集中管理
type TraceSpanName string

const (
	SpanHttpRequest         TraceSpanName = "http_request"
	SpanLoggerMiddleware    TraceSpanName = "logger_middleware"
	SpanRecoveryMiddleware  TraceSpanName = "recovery_middleware"
	SpanCorsMiddleware      TraceSpanName = "cors_middleware"
	SpanResponseMiddleware  TraceSpanName = "response_middleware"
	SpanIdentityMiddleware  TraceSpanName = "identity_middleware"
	SpanUserMiddleware      TraceSpanName = "user_middleware"
	SpanRoleMiddleware      TraceSpanName = "role_middleware"
	SpanRateLimitMiddleware TraceSpanName = "ratelimit_middleware"
	SpanSwapAcceptTx        TraceSpanName = "swap_accept_transaction"
	SpanStatsJob            TraceSpanName = "marketplace_stats_job"
)

// 指標名稱常數
type MetricName string

const (
	MetricHttpRequestsTotal   MetricName = "requests_total"
	MetricHttpRequestDuration MetricName = "request_duration_seconds"
	MetricRequestSuccessTotal MetricName = "request_success_total"
	MetricRequestFailTotal    MetricName = "request_fail_total"
	MetricRateLimitTotal      MetricName = "rate_limited_total"
	MetricSwapTransitionTotal MetricName = "swap_transitions_total"
	MetricMediaUploadTotal    MetricName = "media_uploads_total"
	MetricItemsGauge          MetricName = "items"
	MetricSwapRequestsGauge   MetricName = "swap_requests"
)

// label name 常數
type MetricLabelName string

const (
	MetricLabelEndpoint MetricLabelName = "endpoint"
	MetricLabelStatus   MetricLabelName = "status"
	MetricLabelReason   MetricLabelName = "reason"
	MetricLabelApproved MetricLabelName = "approved"
	MetricLabelResult   MetricLabelName = "result"
	MetricLabelDriver   MetricLabelName = "driver"
)

type LoggerRequestMeta struct {
	Method     string            `trace:"request.method"`
	Path       string            `trace:"request.path"`
	FullPath   string            `trace:"request.full_path"`
	Query      string            `trace:"request.query"`
	Body       string            `trace:"request.body"`
	Scheme     string            `trace:"http.scheme"`
	Host       string            `trace:"http.host"`
	UserAgent  string            `trace:"http.user_agent"`
	ContentLen int64             `trace:"http.request_content_length"`
	Proto      string            `trace:"http.flavor"`
	ClientIP   string            `trace:"net.peer.ip"`
	Headers    map[string]string `trace:"http.request.header"`
	Params     map[string]string `trace:"http.request.param"`
}

// 供 Redis 限流 Consume / Reset 使用
type TraceRateLimitMeta struct {
	Subject   string `trace:"rl.subject"`
	Limit     int    `trace:"rl.limit_count"`
	WindowSec int64  `trace:"rl.window_sec"`
	Remaining int    `trace:"rl.remaining,omitempty"`
	TTL       int64  `trace:"rl.ttl_sec,omitempty"`
	Op        string `trace:"rl.op"` // "consume" / "reset" / "get"
}

type TraceRateLimitMiddlewareMeta struct {
	Subject     string `trace:"ratelimit.subject"`
	ConfigLimit int    `trace:"ratelimit.config.limit"`
	Remaining   int    `trace:"ratelimit.remaining"`
	TTLSeconds  int64  `trace:"ratelimit.ttl_sec"`
	Blocked     bool   `trace:"ratelimit.blocked"`
	Degraded    bool   `trace:"ratelimit.degraded"`
}

type TraceAuthMiddlewareMeta struct {
	Subject  string `trace:"auth.subject,omitempty"`
	UserID   string `trace:"auth.user_id,omitempty"`
	Role     string `trace:"auth.role,omitempty"`
	Verified bool   `trace:"auth.email_verified"`
	Status   string `trace:"auth.status,omitempty"`
}

type TraceItemListMeta struct {
	Status      string `trace:"item.filter.status,omitempty"`
	Category    string `trace:"item.filter.category,omitempty"`
	Approved    string `trace:"item.filter.approved,omitempty"`
	ViewerRole  string `trace:"viewer.role,omitempty"`
	ResultCount int    `trace:"result.count"`
}

type TraceItemMeta struct {
	Op       string `trace:"op"`
	ItemID   string `trace:"item.id,omitempty"`
	OwnerID  string `trace:"item.owner_id,omitempty"`
	ActorID  string `trace:"actor.id,omitempty"`
	Status   string `trace:"item.status,omitempty"`
	Approved bool   `trace:"item.approved"`
	Images   int    `trace:"item.images"`
}

type TraceSwapMeta struct {
	Op            string `trace:"op"`
	SwapID        string `trace:"swap.id,omitempty"`
	FromUserID    string `trace:"swap.from_user_id,omitempty"`
	ToUserID      string `trace:"swap.to_user_id,omitempty"`
	ItemID        string `trace:"swap.item_id,omitempty"`
	OfferItemID   string `trace:"swap.offer_item_id,omitempty"`
	Points        int64  `trace:"swap.points_offered"`
	FromStatus    string `trace:"swap.from_status,omitempty"`
	ToStatus      string `trace:"swap.to_status,omitempty"`
	Transactional bool   `trace:"swap.transactional"`
}

type TracePointsMeta struct {
	UserID    string `trace:"user.id,omitempty"`
	Operation string `trace:"points.operation"`
	Amount    int64  `trace:"points.amount"`
	Balance   int64  `trace:"points.balance"`
}

type TraceMediaMeta struct {
	Driver   string `trace:"media.driver"`
	Op       string `trace:"media.op"`
	Files    int    `trace:"media.files"`
	Bytes    int64  `trace:"media.bytes"`
	PublicID string `trace:"media.public_id,omitempty"`
}

type TracePanicMeta struct {
	Path       string  `trace:"http.path"`
	Method     string  `trace:"http.method"`
	ClientIP   string  `trace:"net.peer.ip"`
	UserAgent  string  `trace:"http.user_agent"`
	DurationMs float64 `trace:"response.latency_ms"`
	Status     int     `trace:"http.status_code"`
	Message    string  `trace:"error.message"`
	Stack      string  `trace:"error.stack"`
}

type TraceErrorMeta struct {
	Code       int     `trace:"error.code"`
	Message    string  `trace:"error.message"`
	Detail     string  `trace:"error.detail"`
	Status     int     `trace:"http.status_code"`
	DurationMs float64 `trace:"response.latency_ms"`
}

type TraceResponseMeta struct {
	Path       string  `trace:"http.path"`
	Method     string  `trace:"http.method"`
	Status     int     `trace:"http.status_code"`
	Message    string  `trace:"response.message"`
	DurationMs float64 `trace:"response.latency_ms"`
	Data       string  `trace:"response.data_preview"`
}

type TraceHttpServerMeta struct {
	// request side
	ClientAddr        string `trace:"client.address"`
	HttpRequestMethod string `trace:"http.request.method"`
	HttpRoute         string `trace:"http.route"`
	UrlPath           string `trace:"http.request.path"`
	UrlScheme         string `trace:"http.request.url.scheme"`
	UserAgent         string `trace:"user_agent.original"`
	ServerAddress     string `trace:"server.address"`
	NetworkPeerAddr   string `trace:"network.peer.address"`
	NetworkPeerPort   int    `trace:"network.peer.port"`
	NetworkProtoVer   string `trace:"network.protocol.version"`
	SpanTraceID       string `trace:"span.trace_id"`
	HttpStatusCode    int    `trace:"http.response.status_code"`
}

type TraceStatsMeta struct {
	Items int `trace:"stats.items"`
	Swaps int `trace:"stats.swaps"`
}
