package domain

import "time"

type MembershipRole string

const (
	MembershipRoleOwner  MembershipRole = "OWNER"
	MembershipRoleMember MembershipRole = "MEMBER"
)

// Membership is confirmed participation in a pod. The owner is counted as a
// participant without a persisted row, so occupancy is always
// count(membership rows) + 1.
type Membership struct {
	PodID    int32          `json:"pod_id"`
	UserID   int32          `json:"user_id"`
	Role     MembershipRole `json:"role"`
	JoinedOn time.Time      `json:"joined_on"`
}
