package repository

import (
	"context"
	"encoding/json"
	"time"

	"rewear/config"
	"rewear/internal/core"
	"rewear/internal/database/client"
	"rewear/internal/database/fluentd/model"
)

const loggedAtLayout = "2006-01-02 15:04:05.999999 UTC"

// LogRepository 統一負責發送 Request/Response/SwapEvent Log 到 Fluentd
type LogRepository struct {
	fluentdClient client.Client
	version       string
}

func NewLogRepository(config *config.Configuration, client client.Client) *LogRepository {
	version := "1.0.0"
	if config.App.Version != "" {
		version = config.App.Version
	}
	return &LogRepository{fluentdClient: client, version: version}
}

func (repository *LogRepository) LogRequest(ctx context.Context, req model.RequestLog) error {
	if req.LoggedAt == "" {
		req.LoggedAt = time.Now().UTC().Format(loggedAtLayout)
	}
	if req.Version == "" {
		req.Version = repository.version
	}
	return repository.post(ctx, core.FluentdRequest, req)
}

func (repository *LogRepository) LogResponse(ctx context.Context, resp model.ResponseLog) error {
	if resp.LoggedAt == "" {
		resp.LoggedAt = time.Now().UTC().Format(loggedAtLayout)
	}
	if resp.Version == "" {
		resp.Version = repository.version
	}
	return repository.post(ctx, core.FluentdResponse, resp)
}

// LogSwapEvent 交換被接受/拒絕時寫一筆稽核紀錄
func (repository *LogRepository) LogSwapEvent(ctx context.Context, event model.SwapEventLog) error {
	if event.LoggedAt == "" {
		event.LoggedAt = time.Now().UTC().Format(loggedAtLayout)
	}
	if event.Version == "" {
		event.Version = repository.version
	}
	return repository.post(ctx, core.FluentdSwapEvent, event)
}

// post 轉成 map 再送，欄位名稱沿用 json tag
func (repository *LogRepository) post(ctx context.Context, tag core.FluentdSubTag, record any) error {
	b, err := json.Marshal(record)
	if err != nil {
		return err
	}
	var fluentdMessage map[string]any
	if err := json.Unmarshal(b, &fluentdMessage); err != nil {
		return err
	}
	return repository.fluentdClient.Post(ctx, string(tag), fluentdMessage)
}
