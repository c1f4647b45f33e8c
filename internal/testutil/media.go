package testutil

import (
	"context"
	"fmt"
	"sync"

	"rewear/internal/media"
)

// MediaStore 記錄上傳與刪除；FailAfter 之後的上傳回傳錯誤
type MediaStore struct {
	mu        sync.Mutex
	seq       int
	Uploaded  []string
	Deleted   []string
	FailAfter int // <0 代表不失敗
	FailErr   error
}

func NewMediaStore() *MediaStore {
	return &MediaStore{FailAfter: -1}
}

func (s *MediaStore) Driver() string { return "memory" }

func (s *MediaStore) Upload(_ context.Context, file media.File) (*media.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailAfter >= 0 && len(s.Uploaded) >= s.FailAfter {
		if s.FailErr != nil {
			return nil, s.FailErr
		}
		return nil, ErrInjected
	}
	s.seq++
	id := fmt.Sprintf("rewear/%03d-%s", s.seq, file.Name)
	s.Uploaded = append(s.Uploaded, id)
	return &media.Asset{URL: "https://media.test/" + id, PublicID: id}, nil
}

func (s *MediaStore) Delete(_ context.Context, publicID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Deleted = append(s.Deleted, publicID)
	return nil
}
