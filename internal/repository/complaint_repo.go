package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"gram_sahay/internal/model"
)

// ComplaintRepository defines operations for complaint data
type ComplaintRepository interface {
	List(ctx context.Context) ([]model.Complaint, error)
	Save(ctx context.Context, complaints []model.Complaint) error
}

type complaintRepository struct {
	store KVStore
}

// NewComplaintRepository creates a ComplaintRepository over the shared
// key-value store. The whole list lives under one key as a JSON array.
func NewComplaintRepository(store KVStore) ComplaintRepository {
	return &complaintRepository{store: store}
}

// List returns all complaints, oldest first. A missing key yields an empty
// list; a value that fails to decode is treated as empty after logging,
// never as a fatal condition.
func (r *complaintRepository) List(ctx context.Context) ([]model.Complaint, error) {
	raw, ok, err := r.store.Get(ctx, model.ComplaintsKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read complaints: %w", err)
	}
	if !ok {
		return []model.Complaint{}, nil
	}
	var complaints []model.Complaint
	if err := json.Unmarshal([]byte(raw), &complaints); err != nil {
		log.Printf("WARN: stored complaint list is corrupt, treating as empty: %v", err)
		return []model.Complaint{}, nil
	}
	return complaints, nil
}

// Save writes the full complaint list back to the store.
func (r *complaintRepository) Save(ctx context.Context, complaints []model.Complaint) error {
	b, err := json.Marshal(complaints)
	if err != nil {
		return fmt.Errorf("failed to encode complaints: %w", err)
	}
	if err := r.store.Set(ctx, model.ComplaintsKey, string(b)); err != nil {
		return fmt.Errorf("failed to write complaints: %w", err)
	}
	return nil
}
