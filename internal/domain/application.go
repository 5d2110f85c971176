package domain

import "time"

type ApplicationStatus string

const (
	ApplicationStatusPending  ApplicationStatus = "PENDING"
	ApplicationStatusApproved ApplicationStatus = "APPROVED"
	ApplicationStatusRejected ApplicationStatus = "REJECTED"
)

// Application is a join request against a pod. At most one PENDING
// application may exist per (pod, applicant) pair; approved or rejected
// applications are terminal and never resurrected.
type Application struct {
	ID          int32             `json:"id"`
	PodID       int32             `json:"pod_id"`
	ApplicantID int32             `json:"applicant_id"`
	Message     string            `json:"message"`
	Status      ApplicationStatus `json:"status"`
	Hidden      bool              `json:"hidden"`
	AppliedOn   time.Time         `json:"applied_on"`
	ReviewedOn  *time.Time        `json:"reviewed_on,omitempty"`
	ReviewerID  *int32            `json:"reviewer_id,omitempty"`
}
