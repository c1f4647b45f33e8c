package telemetry

import (
	"strconv"

	"rewear/config"
	"rewear/internal/core"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metric struct
type Metric struct {
	HttpRequestsTotal    *prometheus.CounterVec
	HttpRequestDuration  *prometheus.HistogramVec
	RequestSuccessTotal  *prometheus.CounterVec
	RequestFailTotal     *prometheus.CounterVec
	RateLimitedTotal     *prometheus.CounterVec
	SwapTransitionsTotal *prometheus.CounterVec
	MediaUploadsTotal    *prometheus.CounterVec
	ItemsGauge           *prometheus.GaugeVec
	SwapRequestsGauge    *prometheus.GaugeVec
	config               *config.Configuration
}

// NewMetric 建立所有指標（註冊到 default registry，/metrics 直接輸出）
func NewMetric(config *config.Configuration) *Metric {
	return NewMetricWith(config, prometheus.DefaultRegisterer)
}

// NewMetricWith 測試時傳入獨立 registry，避免重複註冊 panic
func NewMetricWith(config *config.Configuration, registerer prometheus.Registerer) *Metric {
	if config == nil || !config.Telemetry.Metric.Enabled {
		return &Metric{}
	}
	buckets := prometheus.DefBuckets
	if len(config.Telemetry.Metric.Buckets) > 0 {
		buckets = config.Telemetry.Metric.Buckets
	}
	factory := promauto.With(registerer)
	prefix := config.App.Name + "_"
	return &Metric{
		config: config,
		HttpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + string(core.MetricHttpRequestsTotal),
				Help: "Total received API requests",
			},
			labelNames(core.MetricLabelEndpoint, core.MetricLabelStatus),
		),
		HttpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + string(core.MetricHttpRequestDuration),
				Help:    "API request duration (seconds)",
				Buckets: buckets,
			},
			labelNames(core.MetricLabelEndpoint),
		),
		RequestSuccessTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + string(core.MetricRequestSuccessTotal),
				Help: "Successful API responses",
			},
			labelNames(core.MetricLabelEndpoint, core.MetricLabelStatus),
		),
		RequestFailTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + string(core.MetricRequestFailTotal),
				Help: "Failed API responses by error slug",
			},
			labelNames(core.MetricLabelReason),
		),
		RateLimitedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + string(core.MetricRateLimitTotal),
				Help: "Requests rejected by the rate limiter",
			},
			labelNames(core.MetricLabelEndpoint),
		),
		SwapTransitionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + string(core.MetricSwapTransitionTotal),
				Help: "Swap request status transitions",
			},
			labelNames(core.MetricLabelStatus, core.MetricLabelResult),
		),
		MediaUploadsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + string(core.MetricMediaUploadTotal),
				Help: "Image uploads by storage driver",
			},
			labelNames(core.MetricLabelDriver, core.MetricLabelResult),
		),
		ItemsGauge: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: prefix + string(core.MetricItemsGauge),
				Help: "Listed items by status and approval",
			},
			labelNames(core.MetricLabelStatus, core.MetricLabelApproved),
		),
		SwapRequestsGauge: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: prefix + string(core.MetricSwapRequestsGauge),
				Help: "Swap requests by status",
			},
			labelNames(core.MetricLabelStatus),
		),
	}
}

func (m *Metric) IncSwapTransition(status core.SwapStatus, result string) {
	if m == nil || m.SwapTransitionsTotal == nil {
		return
	}
	m.SwapTransitionsTotal.WithLabelValues(string(status), result).Inc()
}

func (m *Metric) IncMediaUpload(driver, result string) {
	if m == nil || m.MediaUploadsTotal == nil {
		return
	}
	m.MediaUploadsTotal.WithLabelValues(driver, result).Inc()
}

// SetItemCounts 以最新統計覆寫商品 gauge
func (m *Metric) SetItemCounts(counts map[core.ItemStatus]map[bool]int64) {
	if m == nil || m.ItemsGauge == nil {
		return
	}
	m.ItemsGauge.Reset()
	for status, byApproval := range counts {
		for approved, n := range byApproval {
			m.ItemsGauge.WithLabelValues(string(status), strconv.FormatBool(approved)).Set(float64(n))
		}
	}
}

func (m *Metric) SetSwapCounts(counts map[core.SwapStatus]int64) {
	if m == nil || m.SwapRequestsGauge == nil {
		return
	}
	m.SwapRequestsGauge.Reset()
	for status, n := range counts {
		m.SwapRequestsGauge.WithLabelValues(string(status)).Set(float64(n))
	}
}

// labelNames helper: LabelName slice 轉成 []string
func labelNames(labels ...core.MetricLabelName) []string {
	strs := make([]string, len(labels))
	for i, l := range labels {
		strs[i] = string(l)
	}
	return strs
}
