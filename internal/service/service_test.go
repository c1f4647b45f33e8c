package service

import (
	"testing"

	"rewear/config"
	"rewear/internal/database/mongodb/model"
	cErr "rewear/internal/pkg/error"
	"rewear/internal/telemetry"
	"rewear/internal/testutil"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type fixture struct {
	mem   *testutil.Memory
	media *testutil.MediaStore
	users *UserService
	items *ItemService
	swaps *SwapService
	stats *StatsService
}

func newFixture(t *testing.T, atomic bool) *fixture {
	t.Helper()
	mem := testutil.NewMemory()
	mediaStore := testutil.NewMediaStore()
	trace := telemetry.NewNoopTrace()
	metric := telemetry.NewMetricWith(&config.Configuration{}, prometheus.NewRegistry())
	logger := zap.NewNop()

	conf := &config.Configuration{}
	conf.Media.MaxFiles = 5

	tx := mem.Transactor()
	if !atomic {
		tx = mem.NonAtomicTransactor()
	}

	return &fixture{
		mem:   mem,
		media: mediaStore,
		users: NewUserService(trace, logger, mem.Users()),
		items: NewItemService(trace, metric, logger, conf, mem.Items(), mem.Users(), mediaStore),
		swaps: NewSwapService(trace, metric, logger, mem.Swaps(), mem.Items(), mem.Users(), tx, mem.Auditor()),
		stats: NewStatsService(trace, metric, logger, mem.Items(), mem.Swaps()),
	}
}

// requireAppErr 檢查錯誤為指定 HTTP 狀態與訊息
func requireAppErr(t *testing.T, err error, httpCode int, desc string) {
	t.Helper()
	require.Error(t, err)
	var appErr *cErr.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, httpCode, appErr.HttpCode(), appErr.ErrorDesc())
	if desc != "" {
		require.Equal(t, desc, appErr.ErrorDesc())
	}
}

func ptr[T any](v T) *T { return &v }

func (f *fixture) ownerFilter(owner primitive.ObjectID) model.ItemFilter {
	return model.ItemFilter{UploaderID: &owner}
}
