package media

import (
	"context"
	"fmt"
	"path"
	"strings"

	"rewear/config"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"
	"gocloud.dev/gcerrors"
)

// BucketStore 以 gocloud blob 儲存（本機 file:// 或 mem://），圖片先縮圖再存
type BucketStore struct {
	bucket        *blob.Bucket
	folder        string
	maxDimension  int
	maxPixels     int
	publicBaseURL string
	logger        *zap.Logger
}

func OpenBucketStore(ctx context.Context, logger *zap.Logger, conf *config.Configuration) (*BucketStore, func(), error) {
	bucket, err := blob.OpenBucket(ctx, conf.Media.Bucket.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("open bucket %q: %w", conf.Media.Bucket.URL, err)
	}
	store := NewBucketStore(logger, bucket, conf)
	cleanup := func() {
		if err := bucket.Close(); err != nil {
			logger.Error("failed to close media bucket", zap.Error(err))
		}
	}
	return store, cleanup, nil
}

func NewBucketStore(logger *zap.Logger, bucket *blob.Bucket, conf *config.Configuration) *BucketStore {
	publicBaseURL := conf.Media.Bucket.PublicBaseURL
	if publicBaseURL == "" {
		publicBaseURL = strings.TrimRight(conf.App.BasePath, "/") + "/media"
	}
	return &BucketStore{
		bucket:        bucket,
		folder:        conf.Media.Folder,
		maxDimension:  conf.Media.MaxDimension,
		maxPixels:     conf.Media.MaxPixels,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		logger:        logger,
	}
}

func (s *BucketStore) Driver() string { return config.MediaDriverBucket }

func (s *BucketStore) Upload(ctx context.Context, file File) (*Asset, error) {
	data, err := Process(file.Data, s.maxDimension, s.maxPixels)
	if err != nil {
		return nil, err
	}
	key := path.Join(s.folder, uuid.NewString()+".jpg")
	if err := s.bucket.WriteAll(ctx, key, data, &blob.WriterOptions{
		ContentType:  "image/jpeg",
		CacheControl: "public, max-age=31536000, immutable",
	}); err != nil {
		return nil, fmt.Errorf("write %s: %w", key, err)
	}
	return &Asset{URL: s.publicBaseURL + "/" + key, PublicID: key}, nil
}

func (s *BucketStore) Delete(ctx context.Context, publicID string) error {
	err := s.bucket.Delete(ctx, publicID)
	if gcerrors.Code(err) == gcerrors.NotFound {
		return nil
	}
	return err
}

func (s *BucketStore) Open(ctx context.Context, key string) (*Object, error) {
	key = strings.TrimPrefix(key, "/")
	if key == "" || strings.Contains(key, "..") {
		return nil, ErrNotFound
	}
	reader, err := s.bucket.NewReader(ctx, key, nil)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &Object{Body: reader, ContentType: reader.ContentType(), Size: reader.Size()}, nil
}
