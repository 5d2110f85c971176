package service

import (
	"context"
	"time"

	"podpal-backend/internal/domain"
	"podpal-backend/internal/repository"
)

// CapacityGuard is the only legal way to add a member to a pod. Admission is
// serialized per pod by a row lock on the pod record, so two concurrent
// admissions can never both observe the last free slot.
type CapacityGuard interface {
	// CurrentOccupancy returns owner + member count.
	CurrentOccupancy(ctx context.Context, podID int32) (int32, error)
	// TryAdmit admits the user in its own transaction. Idempotent: a retry
	// for an already-admitted user returns the existing membership.
	TryAdmit(ctx context.Context, podID, userID int32) (*domain.Membership, error)
	// AdmitTx performs the admission against a transaction-bound store whose
	// pod row is already locked. Returns the membership and the occupancy
	// after admission. The workflow uses this so admission and the
	// application transition commit as one unit.
	AdmitTx(ctx context.Context, s repository.Store, pod *domain.Pod, userID int32) (*domain.Membership, int32, error)
	// Remove deletes the membership row. Idempotent.
	Remove(ctx context.Context, podID, userID int32) (bool, error)
}

// RecruitmentService orchestrates the apply -> review -> admit/reject ->
// cancel/leave workflow. Every mutating operation returns the domain events
// the caller should hand to the EventDispatcher after the operation commits.
type RecruitmentService interface {
	ApplyToPod(ctx context.Context, podID, userID int32, message string) (*domain.Application, []domain.Event, error)
	ReviewApplication(ctx context.Context, applicationID int32, decision domain.ApplicationStatus, reviewerID int32) (*domain.Application, []domain.Event, error)
	// CancelApplication dispatches by role: the applicant hard-deletes a
	// pending application, the pod owner soft-hides it regardless of status.
	CancelApplication(ctx context.Context, applicationID, requesterID int32) error
	// HideApplication is the owner-only soft dismissal.
	HideApplication(ctx context.Context, applicationID, requesterID int32) error
	LeavePod(ctx context.Context, podID, userID int32) ([]domain.Event, error)
	ListApplicationsForPod(ctx context.Context, podID, requesterID int32, includeHidden bool) ([]domain.Application, error)
}

type PodService interface {
	CreatePod(ctx context.Context, ownerID int32, title, description string, capacity int32, meetAt time.Time) (*domain.Pod, error)
	GetPod(ctx context.Context, podID int32) (*domain.Pod, error)
	ListRecruitingPods(ctx context.Context) ([]domain.Pod, error)
}

type NotificationService interface {
	GetNotifications(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, userID, notificationID int32) error
}

// EventDispatcher delivers workflow events to the push/chat/email gateways
// and the in-app inbox. Best-effort by design: failures are logged and never
// change the outcome of the operation that produced the events.
type EventDispatcher interface {
	Dispatch(ctx context.Context, events []domain.Event)
}
