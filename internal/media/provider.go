package media

import (
	"context"
	"errors"

	"rewear/config"

	"github.com/google/wire"
	"go.uber.org/zap"
)

var ProviderSet = wire.NewSet(NewStore)

// NewStore 依 MEDIA__DRIVER 選擇儲存；cloudinary 未設定金鑰時退回 bucket
func NewStore(logger *zap.Logger, conf *config.Configuration) (Store, func(), error) {
	if conf.Media.Driver != config.MediaDriverBucket {
		store, err := NewCloudinaryStore(logger, conf)
		if err == nil {
			logger.Info("media driver ready", zap.String("driver", store.Driver()))
			return store, func() {}, nil
		}
		if !errors.Is(err, errCloudinaryConfig) {
			return nil, nil, err
		}
		logger.Warn("cloudinary credentials missing, falling back to bucket driver",
			zap.String("bucket", conf.Media.Bucket.URL))
	}
	store, cleanup, err := OpenBucketStore(context.Background(), logger, conf)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("media driver ready", zap.String("driver", store.Driver()))
	return store, cleanup, nil
}
