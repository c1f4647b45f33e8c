package service

import (
	"context"

	"rewear/internal/core"
	cErr "rewear/internal/pkg/error"
	"rewear/internal/telemetry"

	"go.uber.org/zap"
)

// StatsService 市集統計，由排程定期寫入 Prometheus gauge
type StatsService struct {
	trace  *telemetry.Trace
	metric *telemetry.Metric
	logger *zap.Logger
	items  ItemStore
	swaps  SwapStore
}

func NewStatsService(trace *telemetry.Trace, metric *telemetry.Metric, logger *zap.Logger, items ItemStore, swaps SwapStore) *StatsService {
	return &StatsService{trace: trace, metric: metric, logger: logger, items: items, swaps: swaps}
}

func (s *StatsService) Collect(ctx context.Context) (*core.TraceStatsMeta, error) {
	ctx, span, end := s.trace.WithSpan(ctx, string(core.SpanStatsJob))
	defer end(nil)

	itemCounts, err := s.items.CountByStatus(ctx)
	if err != nil {
		s.logger.Error("count items failed", zap.Error(err))
		return nil, cErr.DatabaseError("database CountItems error")
	}
	swapCounts, err := s.swaps.CountByStatus(ctx)
	if err != nil {
		s.logger.Error("count swap requests failed", zap.Error(err))
		return nil, cErr.DatabaseError("database CountSwapRequests error")
	}

	meta := &core.TraceStatsMeta{}
	items := map[core.ItemStatus]map[bool]int64{}
	for _, c := range itemCounts {
		if items[c.Status] == nil {
			items[c.Status] = map[bool]int64{}
		}
		items[c.Status][c.Approved] += c.Count
		meta.Items += int(c.Count)
	}
	swaps := map[core.SwapStatus]int64{}
	for _, c := range swapCounts {
		swaps[c.Status] += c.Count
		meta.Swaps += int(c.Count)
	}

	s.metric.SetItemCounts(items)
	s.metric.SetSwapCounts(swaps)
	s.trace.ApplyTraceAttributes(span, meta)
	return meta, nil
}
