package service

import (
	"context"
	"time"

	"gram_sahay/internal/model"
	"gram_sahay/internal/repository"
)

// NoticeService exposes the panchayat notice board. The board is read-only
// for users; only admins publish to it.
type NoticeService interface {
	List(ctx context.Context) ([]model.Notice, error)
	Publish(ctx context.Context, req model.PublishNoticeRequest) (*model.Notice, error)
}

type noticeService struct {
	repo repository.NoticeRepository
}

// NewNoticeService creates a new NoticeService
func NewNoticeService(repo repository.NoticeRepository) NoticeService {
	return &noticeService{repo: repo}
}

func (s *noticeService) List(ctx context.Context) ([]model.Notice, error) {
	return s.repo.List(ctx)
}

func (s *noticeService) Publish(ctx context.Context, req model.PublishNoticeRequest) (*model.Notice, error) {
	notices, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	notice := model.Notice{
		ID:          nextNoticeID(notices),
		Title:       req.Title,
		Description: req.Description,
		Date:        time.Now().UTC(),
	}

	notices = append(notices, notice)
	if err := s.repo.Save(ctx, notices); err != nil {
		return nil, err
	}
	return &notice, nil
}

func nextNoticeID(notices []model.Notice) int64 {
	id := time.Now().UnixMilli()
	for _, n := range notices {
		if n.ID >= id {
			id = n.ID + 1
		}
	}
	return id
}
