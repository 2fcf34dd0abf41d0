package models

import "time"

// Report status values. A report starts Pending and moves to Resolved
// exactly once; there is no way back.
const (
	StatusPending  = "Pending"
	StatusResolved = "Resolved"
)

type HazardReport struct {
	ID           int64      `json:"id" db:"id"`
	BeforeImage  string     `json:"before_image" db:"before_image"`
	AfterImage   *string    `json:"after_image,omitempty" db:"after_image"`
	Description  string     `json:"description" db:"description"`
	Latitude     float64    `json:"latitude" db:"latitude"`
	Longitude    float64    `json:"longitude" db:"longitude"`
	Status       string     `json:"status" db:"status"`
	DateReported time.Time  `json:"date_reported" db:"date_reported"`
	DateResolved *time.Time `json:"date_resolved,omitempty" db:"date_resolved"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}

func (r *HazardReport) IsResolved() bool {
	return r.Status == StatusResolved
}

type AdminAccount struct {
	ID           int64     `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
