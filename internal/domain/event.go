package domain

type EventKind string

const (
	EventJoinRequested       EventKind = "JOIN_REQUESTED"
	EventApplicationApproved EventKind = "APPLICATION_APPROVED"
	EventApplicationRejected EventKind = "APPLICATION_REJECTED"
	EventMemberAdmitted      EventKind = "MEMBER_ADMITTED"
	EventMemberLeft          EventKind = "MEMBER_LEFT"
	EventPodCapacityReached  EventKind = "POD_CAPACITY_REACHED"
	EventPodCanceled         EventKind = "POD_CANCELED"
)

// Event is emitted by the recruitment workflow after a committed state
// transition. Delivery to the push/chat gateways happens outside the
// workflow transaction and is best-effort.
type Event struct {
	Kind           EventKind
	PodID          int32
	ActorID        int32
	TargetID       int32
	ChatChannelRef string
	// Participants is populated only for PodCanceled: every user that must
	// be removed from the external chat channel, owner included.
	Participants []int32
	Payload      map[string]string
}
