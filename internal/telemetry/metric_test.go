package telemetry

import (
	"testing"

	"rewear/config"
	"rewear/internal/core"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNewMetricWith_Disabled(t *testing.T) {
	m := NewMetricWith(&config.Configuration{}, prometheus.NewRegistry())
	assert.Nil(t, m.HttpRequestsTotal)
	// 停用時 helper 不可 panic
	m.IncSwapTransition(core.SwapStatusAccepted, "ok")
	m.IncMediaUpload("bucket", "ok")
}

func TestNewMetricWith_Counters(t *testing.T) {
	conf := &config.Configuration{}
	conf.App.Name = "rewear"
	conf.Telemetry.Metric.Enabled = true

	m := NewMetricWith(conf, prometheus.NewRegistry())
	m.IncSwapTransition(core.SwapStatusAccepted, "ok")
	m.IncSwapTransition(core.SwapStatusAccepted, "ok")
	m.IncMediaUpload("cloudinary", "error")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.SwapTransitionsTotal.WithLabelValues("accepted", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MediaUploadsTotal.WithLabelValues("cloudinary", "error")))
}

func TestSetCounts_ResetsStaleSeries(t *testing.T) {
	conf := &config.Configuration{}
	conf.App.Name = "rewear"
	conf.Telemetry.Metric.Enabled = true
	m := NewMetricWith(conf, prometheus.NewRegistry())

	m.SetItemCounts(map[core.ItemStatus]map[bool]int64{
		core.ItemStatusPending:   {false: 3},
		core.ItemStatusAvailable: {true: 5},
	})
	assert.Equal(t, 5.0, testutil.ToFloat64(m.ItemsGauge.WithLabelValues("available", "true")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.ItemsGauge))

	m.SetItemCounts(map[core.ItemStatus]map[bool]int64{core.ItemStatusSwapped: {true: 1}})
	assert.Equal(t, 1, testutil.CollectAndCount(m.ItemsGauge))

	m.SetSwapCounts(map[core.SwapStatus]int64{core.SwapStatusPending: 4})
	assert.Equal(t, 4.0, testutil.ToFloat64(m.SwapRequestsGauge.WithLabelValues("pending")))
}
