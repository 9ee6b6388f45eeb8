package model

import "time"

const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusResolved   = "resolved"
	StatusRejected   = "rejected"
)

const (
	CategoryRoad        = "road"
	CategoryWater       = "water"
	CategoryElectricity = "electricity"
	CategorySanitation  = "sanitation"
	CategoryOther       = "other"
)

// ComplaintsKey is the key-value store key holding the complaint list.
const ComplaintsKey = "complaints"

// Complaint represents a citizen-filed issue report. Complaints are not
// partitioned per user: the store is device-local and single-tenant.
type Complaint struct {
	ID          int64     `json:"id"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Location    string    `json:"location,omitempty"`
	Status      string    `json:"status"`
	Date        time.Time `json:"date"`
}

// FileComplaintRequest is used for filing a new complaint
type FileComplaintRequest struct {
	Category    string `json:"category" binding:"required,oneof=road water electricity sanitation other"`
	Description string `json:"description" binding:"required"`
	Location    string `json:"location"`
}

// UpdateComplaintStatusRequest carries an admin action on a complaint
type UpdateComplaintStatusRequest struct {
	Action string `json:"action" binding:"required,oneof=accept reject complete"`
}

// ComplaintStats represents the per-status counts shown on the admin dashboard
type ComplaintStats struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
	Resolved   int `json:"resolved"`
	Rejected   int `json:"rejected"`
}

// ValidCategory reports whether c is one of the fixed complaint categories.
func ValidCategory(c string) bool {
	switch c {
	case CategoryRoad, CategoryWater, CategoryElectricity, CategorySanitation, CategoryOther:
		return true
	}
	return false
}
