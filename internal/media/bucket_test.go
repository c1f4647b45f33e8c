package media

import (
	"context"
	"io"
	"strings"
	"testing"

	"rewear/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gocloud.dev/blob/memblob"
)

func newMemStore(t *testing.T) *BucketStore {
	t.Helper()
	bucket := memblob.OpenBucket(nil)
	t.Cleanup(func() { _ = bucket.Close() })

	conf := &config.Configuration{}
	conf.App.BasePath = "/api"
	conf.Media.Folder = "rewear"
	conf.Media.MaxDimension = 800
	return NewBucketStore(zap.NewNop(), bucket, conf)
}

func TestBucketStore_UploadOpenDelete(t *testing.T) {
	store := newMemStore(t)
	ctx := context.Background()

	asset, err := store.Upload(ctx, File{Name: "shirt.png", Data: pngBytes(t, 1000, 1000)})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(asset.PublicID, "rewear/"))
	assert.True(t, strings.HasSuffix(asset.PublicID, ".jpg"))
	assert.Equal(t, "/api/media/"+asset.PublicID, asset.URL)

	obj, err := store.Open(ctx, "/"+asset.PublicID)
	require.NoError(t, err)
	body, err := io.ReadAll(obj.Body)
	require.NoError(t, obj.Body.Close())
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", obj.ContentType)
	assert.Equal(t, int64(len(body)), obj.Size)

	require.NoError(t, store.Delete(ctx, asset.PublicID))
	_, err = store.Open(ctx, asset.PublicID)
	assert.ErrorIs(t, err, ErrNotFound)

	// 重複刪除不算錯
	assert.NoError(t, store.Delete(ctx, asset.PublicID))
}

func TestBucketStore_RejectsInvalidUpload(t *testing.T) {
	store := newMemStore(t)
	_, err := store.Upload(context.Background(), File{Name: "x.txt", Data: []byte("hello")})
	assert.ErrorIs(t, err, ErrInvalidImage)
}

func TestBucketStore_OpenRejectsTraversal(t *testing.T) {
	store := newMemStore(t)
	_, err := store.Open(context.Background(), "../etc/passwd")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNewStore_FallsBackToBucket(t *testing.T) {
	conf := &config.Configuration{}
	conf.Media.Driver = config.MediaDriverCloudinary
	conf.Media.Bucket.URL = "mem://"
	conf.App.BasePath = "/api"

	store, cleanup, err := NewStore(zap.NewNop(), conf)
	require.NoError(t, err)
	defer cleanup()
	assert.Equal(t, config.MediaDriverBucket, store.Driver())
}
