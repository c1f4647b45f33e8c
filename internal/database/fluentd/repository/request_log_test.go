package repository

import (
	"context"
	"testing"

	"rewear/config"
	"rewear/internal/database/fluentd/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type postedRecord struct {
	tag     string
	message any
}

type recordingClient struct {
	records []postedRecord
}

func (c *recordingClient) Post(_ context.Context, tag string, message any) error {
	c.records = append(c.records, postedRecord{tag: tag, message: message})
	return nil
}

func (c *recordingClient) Close() error { return nil }

func TestLogSwapEvent(t *testing.T) {
	fake := &recordingClient{}
	conf := &config.Configuration{}
	conf.App.Version = "2.1.0"
	repo := NewLogRepository(conf, fake)

	err := repo.LogSwapEvent(context.Background(), model.SwapEventLog{
		SwapID:        "s1",
		ActorID:       "u2",
		FromStatus:    "pending",
		ToStatus:      "accepted",
		PointsOffered: 30,
		Transactional: true,
	})
	require.NoError(t, err)
	require.Len(t, fake.records, 1)

	record := fake.records[0]
	assert.Equal(t, "swap_event_log", record.tag)
	message, ok := record.message.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "s1", message["swap_id"])
	assert.Equal(t, "accepted", message["to_status"])
	assert.Equal(t, float64(30), message["points_offered"])
	assert.Equal(t, "2.1.0", message["version"])
	assert.NotEmpty(t, message["logged_at"])
	assert.NotContains(t, message, "offer_item_id")
}

func TestLogRequest_DefaultVersion(t *testing.T) {
	fake := &recordingClient{}
	repo := NewLogRepository(&config.Configuration{}, fake)

	require.NoError(t, repo.LogRequest(context.Background(), model.RequestLog{RequestID: "r1", Path: "/api/items", Method: "GET"}))
	message := fake.records[0].message.(map[string]any)
	assert.Equal(t, "request_log", fake.records[0].tag)
	assert.Equal(t, "1.0.0", message["version"])
}
