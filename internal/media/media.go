package media

import (
	"context"
	"errors"
	"io"
)

// File 上傳的原始檔案
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Asset 上傳結果：URL 給前端，PublicID 給刪除
type Asset struct {
	URL      string
	PublicID string
}

var (
	// ErrInvalidImage 檔案不是可接受的圖片（使用者錯誤）
	ErrInvalidImage = errors.New("invalid image")
	// ErrNotFound 物件不存在
	ErrNotFound = errors.New("media not found")
)

// Store 圖片儲存
type Store interface {
	Upload(ctx context.Context, file File) (*Asset, error)
	// Delete 盡力刪除，呼叫端只記 log
	Delete(ctx context.Context, publicID string) error
	Driver() string
}

// Object 由 bucket 讀回的物件（GET /media/*key）
type Object struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64
}

// Reader 可回讀物件的 Store（只有 bucket driver 實作）
type Reader interface {
	Open(ctx context.Context, key string) (*Object, error)
}
