package repository

import (
	"context"
	"time"

	"podpal-backend/internal/domain"
)

// Store bundles the repositories and the transaction boundary. ExecTx runs fn
// against a Store bound to a single database transaction, committing when fn
// returns nil and rolling back otherwise. Admission and the application
// transition it belongs to must share one ExecTx call.
type Store interface {
	Pods() PodRepository
	Applications() ApplicationRepository
	Memberships() MembershipRepository
	Users() UserRepository
	Notifications() NotificationRepository

	ExecTx(ctx context.Context, fn func(Store) error) error
}

type PodRepository interface {
	Create(ctx context.Context, pod *domain.Pod) error
	GetByID(ctx context.Context, id int32) (*domain.Pod, error)
	// GetByIDForUpdate reads the pod under a row lock. Only meaningful inside
	// ExecTx; the lock serializes concurrent admissions for the same pod.
	GetByIDForUpdate(ctx context.Context, id int32) (*domain.Pod, error)
	UpdateStatus(ctx context.Context, id int32, status domain.PodStatus) error
	SetChatChannelRef(ctx context.Context, id int32, channelRef string) error
	ListByStatus(ctx context.Context, status domain.PodStatus) ([]domain.Pod, error)
	// ListExpired returns pods whose meet time has passed and which are still
	// RECRUITING or COMPLETED.
	ListExpired(ctx context.Context, now time.Time) ([]domain.Pod, error)
}

type ApplicationRepository interface {
	// Create inserts a PENDING application. Returns a RecruitmentError with
	// code ALREADY_APPLIED when a pending row already exists for the pair.
	Create(ctx context.Context, app *domain.Application) error
	GetByID(ctx context.Context, id int32) (*domain.Application, error)
	GetPending(ctx context.Context, podID, applicantID int32) (*domain.Application, error)
	ListByPod(ctx context.Context, podID int32, includeHidden bool) ([]domain.Application, error)
	// Review transitions PENDING -> decision, stamping reviewer and review
	// time. Returns ALREADY_REVIEWED when the row is no longer pending.
	Review(ctx context.Context, id int32, decision domain.ApplicationStatus, reviewerID int32) (*domain.Application, error)
	Hide(ctx context.Context, id int32) (bool, error)
	// Delete removes the row only while it is still PENDING.
	Delete(ctx context.Context, id int32) (bool, error)
}

type MembershipRepository interface {
	Create(ctx context.Context, m *domain.Membership) error
	Get(ctx context.Context, podID, userID int32) (*domain.Membership, error)
	CountByPod(ctx context.Context, podID int32) (int32, error)
	ListByPod(ctx context.Context, podID int32) ([]domain.Membership, error)
	Delete(ctx context.Context, podID, userID int32) (bool, error)
}

// UserRepository is the read-only directory view the workflow needs.
type UserRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.User, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, note *domain.Notification) error
	List(ctx context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, id, userID int32) error
}
