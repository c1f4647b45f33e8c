package main

import (
	"context"
	"errors"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"rewear/config"
	"rewear/internal/cron"
	"rewear/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzhttp"
	"go.uber.org/zap"
)

type App struct {
	conf          *config.Configuration
	logger        *zap.Logger
	cronSrv       *cron.Cron
	httpServer    *http.Server
	healthService *service.HealthService

	startAt  time.Time // 程式啟動時間（非環境變數）
	serveErr chan error
}

// newHttpServer gzip 只壓縮文字回應，圖片由 gzhttp 依 Content-Type 略過
func newHttpServer(
	conf *config.Configuration,
	router *gin.Engine,
) (*http.Server, error) {
	wrapper, err := gzhttp.NewWrapper(
		gzhttp.MinSize(1024),
		gzhttp.ExceptContentTypes([]string{"image/*"}),
	)
	if err != nil {
		return nil, err
	}
	return &http.Server{
		Addr:              ":" + strconv.FormatUint(uint64(conf.App.Port), 10),
		Handler:           wrapper(router),
		ReadHeaderTimeout: 10 * time.Second,
	}, nil
}

func newApp(
	conf *config.Configuration,
	logger *zap.Logger,
	httpServer *http.Server,
	healthService *service.HealthService,
	cronSrv *cron.Cron,
) *App {
	return &App{
		conf:          conf,
		logger:        logger,
		httpServer:    httpServer,
		healthService: healthService,
		cronSrv:       cronSrv,
		startAt:       time.Now(),
		serveErr:      make(chan error, 1),
	}
}

func (a *App) Run() error {
	a.logger.Info("app runtime info",
		zap.String("env", a.conf.App.Env),
		zap.String("name", a.conf.App.Name),
		zap.String("version", a.conf.App.Version),
		zap.String("go_version", runtime.Version()),
		zap.Time("start_at", a.startAt),
	)

	if err := a.cronSrv.Run(); err != nil {
		return err
	}
	a.logger.Info("cron server started")

	go func() {
		a.logger.Info("http server listening", zap.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.serveErr <- err
		}
		close(a.serveErr)
	}()

	a.healthService.SetReady(true)
	return nil
}

// Errors http server 非預期結束時回報
func (a *App) Errors() <-chan error {
	return a.serveErr
}

// Stop 依序：readiness 關閉 → http 停止收新請求 → cron 停止；連線由 wire cleanup 關閉
func (a *App) Stop(ctx context.Context) error {
	a.healthService.SetReady(false)

	var errs []error
	if err := a.httpServer.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	a.logger.Info("http server has been stop")

	if a.cronSrv != nil {
		if err := a.cronSrv.Stop(ctx); err != nil {
			errs = append(errs, err)
		}
		a.logger.Info("cron server has been stop")
	}
	return errors.Join(errs...)
}
