package cron

import (
	"context"

	"rewear/internal/service"

	"github.com/google/wire"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

var ProviderSet = wire.NewSet(NewCron)

// 每分鐘第 0 秒更新商品與交換統計
const statsSchedule = "0 * * * * *"

type Cron struct {
	logger       *zap.Logger
	server       *cron.Cron
	statsService *service.StatsService
}

// NewCron .
func NewCron(logger *zap.Logger, statsService *service.StatsService) *Cron {
	server := cron.New(
		cron.WithSeconds(),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)

	return &Cron{
		logger:       logger,
		server:       server,
		statsService: statsService,
	}
}

func (c *Cron) Run() error {
	if _, err := c.server.AddFunc(statsSchedule, c.collectStats); err != nil {
		return err
	}
	// 啟動時先跑一次，避免 gauge 空白一分鐘
	go c.collectStats()

	c.server.Start()
	return nil
}

func (c *Cron) Stop(ctx context.Context) error {
	done := c.server.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Cron) collectStats() {
	stats, err := c.statsService.Collect(context.Background())
	if err != nil {
		c.logger.Warn("collect marketplace stats failed", zap.Error(err))
		return
	}
	c.logger.Debug("marketplace stats collected",
		zap.Int("items", stats.Items),
		zap.Int("swaps", stats.Swaps),
	)
}
