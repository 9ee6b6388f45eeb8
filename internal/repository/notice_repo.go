package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"gram_sahay/internal/model"
)

// NoticeRepository defines operations for notice board data
type NoticeRepository interface {
	List(ctx context.Context) ([]model.Notice, error)
	Save(ctx context.Context, notices []model.Notice) error
}

type noticeRepository struct {
	store KVStore
}

// NewNoticeRepository creates a NoticeRepository over the shared key-value store.
func NewNoticeRepository(store KVStore) NoticeRepository {
	return &noticeRepository{store: store}
}

func (r *noticeRepository) List(ctx context.Context) ([]model.Notice, error) {
	raw, ok, err := r.store.Get(ctx, model.NoticesKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read notices: %w", err)
	}
	if !ok {
		return []model.Notice{}, nil
	}
	var notices []model.Notice
	if err := json.Unmarshal([]byte(raw), &notices); err != nil {
		log.Printf("WARN: stored notice list is corrupt, treating as empty: %v", err)
		return []model.Notice{}, nil
	}
	return notices, nil
}

func (r *noticeRepository) Save(ctx context.Context, notices []model.Notice) error {
	b, err := json.Marshal(notices)
	if err != nil {
		return fmt.Errorf("failed to encode notices: %w", err)
	}
	if err := r.store.Set(ctx, model.NoticesKey, string(b)); err != nil {
		return fmt.Errorf("failed to write notices: %w", err)
	}
	return nil
}
