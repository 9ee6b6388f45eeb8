package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gram_sahay/internal/model"
	"gram_sahay/internal/repository"
)

var (
	ErrComplaintNotFound   = errors.New("complaint not found")
	ErrInvalidCategory     = errors.New("unknown complaint category")
	ErrDescriptionRequired = errors.New("complaint description is required")
	ErrInvalidStatusFilter = errors.New("unknown status filter")
	ErrInvalidTransition   = errors.New("action not allowed for the current complaint status")
)

// Admin actions on a complaint
const (
	ActionAccept   = "accept"
	ActionReject   = "reject"
	ActionComplete = "complete"
)

// statusTransitions lists, per action, the statuses the action may be
// applied from. Anything else is rejected.
var statusTransitions = map[string][]string{
	ActionAccept:   {model.StatusPending},
	ActionReject:   {model.StatusPending, model.StatusInProgress},
	ActionComplete: {model.StatusInProgress},
}

// actionResult maps an admin action to the resulting status.
var actionResult = map[string]string{
	ActionAccept:   model.StatusInProgress,
	ActionReject:   model.StatusRejected,
	ActionComplete: model.StatusResolved,
}

func validTransition(action, fromStatus string) bool {
	allowed, ok := statusTransitions[action]
	if !ok {
		return false
	}
	for _, status := range allowed {
		if status == fromStatus {
			return true
		}
	}
	return false
}

// ComplaintService defines operations for filing and managing complaints
type ComplaintService interface {
	File(ctx context.Context, req model.FileComplaintRequest) (*model.Complaint, error)
	Track(ctx context.Context) ([]model.Complaint, error)
	ListAdmin(ctx context.Context, status string) ([]model.Complaint, error)
	UpdateStatus(ctx context.Context, id int64, action string) (*model.Complaint, error)
	Stats(ctx context.Context) (*model.ComplaintStats, error)
	ExportCSV(ctx context.Context) (*bytes.Buffer, error)
}

type complaintService struct {
	repo repository.ComplaintRepository
}

// NewComplaintService creates a new ComplaintService
func NewComplaintService(repo repository.ComplaintRepository) ComplaintService {
	return &complaintService{repo: repo}
}

// File registers a new complaint with status pending. IDs are millisecond
// timestamps kept monotonic by creation time.
func (s *complaintService) File(ctx context.Context, req model.FileComplaintRequest) (*model.Complaint, error) {
	if !model.ValidCategory(req.Category) {
		return nil, ErrInvalidCategory
	}
	if strings.TrimSpace(req.Description) == "" {
		return nil, ErrDescriptionRequired
	}

	complaints, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	complaint := model.Complaint{
		ID:          nextComplaintID(complaints),
		Category:    req.Category,
		Description: strings.TrimSpace(req.Description),
		Location:    strings.TrimSpace(req.Location),
		Status:      model.StatusPending,
		Date:        time.Now().UTC(),
	}

	complaints = append(complaints, complaint)
	if err := s.repo.Save(ctx, complaints); err != nil {
		return nil, err
	}
	return &complaint, nil
}

// Track returns all complaints for the tracking screen. The store is
// single-tenant, so there is no per-user partitioning to apply.
func (s *complaintService) Track(ctx context.Context) ([]model.Complaint, error) {
	return s.repo.List(ctx)
}

// ListAdmin returns complaints, optionally filtered by status.
func (s *complaintService) ListAdmin(ctx context.Context, status string) ([]model.Complaint, error) {
	complaints, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if status == "" {
		return complaints, nil
	}
	switch status {
	case model.StatusPending, model.StatusInProgress, model.StatusResolved, model.StatusRejected:
	default:
		return nil, ErrInvalidStatusFilter
	}

	filtered := make([]model.Complaint, 0, len(complaints))
	for _, c := range complaints {
		if c.Status == status {
			filtered = append(filtered, c)
		}
	}
	return filtered, nil
}

// UpdateStatus applies an admin action (accept, reject, complete) to a
// complaint, validating the transition against the status lifecycle.
func (s *complaintService) UpdateStatus(ctx context.Context, id int64, action string) (*model.Complaint, error) {
	newStatus, ok := actionResult[action]
	if !ok {
		return nil, ErrInvalidTransition
	}

	complaints, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	for i := range complaints {
		if complaints[i].ID != id {
			continue
		}
		if !validTransition(action, complaints[i].Status) {
			return nil, ErrInvalidTransition
		}
		complaints[i].Status = newStatus
		if err := s.repo.Save(ctx, complaints); err != nil {
			return nil, err
		}
		return &complaints[i], nil
	}
	return nil, ErrComplaintNotFound
}

// Stats returns per-status complaint counts for the admin dashboard.
func (s *complaintService) Stats(ctx context.Context) (*model.ComplaintStats, error) {
	complaints, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	stats := &model.ComplaintStats{Total: len(complaints)}
	for _, c := range complaints {
		switch c.Status {
		case model.StatusPending:
			stats.Pending++
		case model.StatusInProgress:
			stats.InProgress++
		case model.StatusResolved:
			stats.Resolved++
		case model.StatusRejected:
			stats.Rejected++
		}
	}
	return stats, nil
}

// ExportCSV renders all complaints as CSV for download.
func (s *complaintService) ExportCSV(ctx context.Context) (*bytes.Buffer, error) {
	complaints, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	buf := new(bytes.Buffer)
	writer := csv.NewWriter(buf)

	header := []string{"ID", "Category", "Description", "Location", "Status", "Date"}
	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, c := range complaints {
		record := []string{
			strconv.FormatInt(c.ID, 10),
			c.Category,
			c.Description,
			c.Location,
			c.Status,
			c.Date.Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf, nil
}

// nextComplaintID keeps IDs monotonic by creation time even when two
// complaints land within the same millisecond.
func nextComplaintID(complaints []model.Complaint) int64 {
	id := time.Now().UnixMilli()
	for _, c := range complaints {
		if c.ID >= id {
			id = c.ID + 1
		}
	}
	return id
}
