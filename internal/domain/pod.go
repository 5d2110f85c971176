package domain

import "time"

type PodStatus string

const (
	PodStatusRecruiting PodStatus = "RECRUITING"
	PodStatusCompleted  PodStatus = "COMPLETED"
	PodStatusCanceled   PodStatus = "CANCELED"
	PodStatusClosed     PodStatus = "CLOSED"
)

// Pod is a capacity-limited group activity. Capacity is immutable after
// creation and counts the owner, so a pod of capacity 4 has room for the
// owner plus three members.
type Pod struct {
	ID             int32     `json:"id"`
	OwnerID        int32     `json:"owner_id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Capacity       int32     `json:"capacity"`
	Status         PodStatus `json:"status"`
	ChatChannelRef string    `json:"chat_channel_ref,omitempty"`
	MeetAt         time.Time `json:"meet_at"`
	CreatedOn      time.Time `json:"created_on"`
	UpdatedOn      time.Time `json:"updated_on"`
}

// AcceptsMembers reports whether membership changes are still legal.
// CANCELED and CLOSED pods are frozen.
func (p *Pod) AcceptsMembers() bool {
	return p.Status == PodStatusRecruiting || p.Status == PodStatusCompleted
}
