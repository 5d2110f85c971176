package service_test

import (
	"context"
	"errors"
	"testing"

	"podpal-backend/internal/domain"
	"podpal-backend/internal/repository"
	"podpal-backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRecruitment(store *memStore) service.RecruitmentService {
	return service.NewRecruitmentService(store, service.NewCapacityGuard(store))
}

func TestApplyToPod(t *testing.T) {
	store := newMemStore()
	svc := newRecruitment(store)
	pod := seedPod(store, 1, 4, domain.PodStatusRecruiting)

	app, events, err := svc.ApplyToPod(context.Background(), pod.ID, 2, "count me in")
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationStatusPending, app.Status)
	assert.Equal(t, int32(2), app.ApplicantID)
	assert.Equal(t, "count me in", app.Message)

	require.Len(t, events, 1)
	assert.Equal(t, domain.EventJoinRequested, events[0].Kind)
	assert.Equal(t, pod.OwnerID, events[0].TargetID)
	assert.Equal(t, pod.Title, events[0].Payload["pod_title"])
}

func TestApplyToPod_PodNotFound(t *testing.T) {
	store := newMemStore()
	svc := newRecruitment(store)

	_, _, err := svc.ApplyToPod(context.Background(), 999, 2, "")
	assert.True(t, domain.IsCode(err, domain.CodePodNotFound))
}

func TestApplyToPod_NotRecruiting(t *testing.T) {
	store := newMemStore()
	svc := newRecruitment(store)

	for _, status := range []domain.PodStatus{domain.PodStatusCompleted, domain.PodStatusCanceled, domain.PodStatusClosed} {
		pod := seedPod(store, 1, 4, status)
		_, _, err := svc.ApplyToPod(context.Background(), pod.ID, 2, "")
		assert.True(t, domain.IsCode(err, domain.CodeInvalidPodStatus), "status %s must reject applications", status)
	}
}

func TestApplyToPod_OwnerCannotApply(t *testing.T) {
	store := newMemStore()
	svc := newRecruitment(store)
	pod := seedPod(store, 1, 4, domain.PodStatusRecruiting)

	_, _, err := svc.ApplyToPod(context.Background(), pod.ID, pod.OwnerID, "")
	assert.True(t, domain.IsCode(err, domain.CodeAlreadyMember))
}

func TestApplyToPod_MemberCannotApply(t *testing.T) {
	store := newMemStore()
	svc := newRecruitment(store)
	guard := service.NewCapacityGuard(store)
	pod := seedPod(store, 1, 4, domain.PodStatusRecruiting)

	_, err := guard.TryAdmit(context.Background(), pod.ID, 2)
	require.NoError(t, err)

	_, _, err = svc.ApplyToPod(context.Background(), pod.ID, 2, "")
	assert.True(t, domain.IsCode(err, domain.CodeAlreadyMember))
}

func TestApplyToPod_DuplicatePending(t *testing.T) {
	store := newMemStore()
	svc := newRecruitment(store)
	pod := seedPod(store, 1, 4, domain.PodStatusRecruiting)

	_, _, err := svc.ApplyToPod(context.Background(), pod.ID, 2, "first")
	require.NoError(t, err)

	_, _, err = svc.ApplyToPod(context.Background(), pod.ID, 2, "second")
	assert.True(t, domain.IsCode(err, domain.CodeAlreadyApplied))
}

func TestApplyToPod_AfterRejectionSucceeds(t *testing.T) {
	store := newMemStore()
	svc := newRecruitment(store)
	pod := seedPod(store, 1, 4, domain.PodStatusRecruiting)

	app, _, err := svc.ApplyToPod(context.Background(), pod.ID, 2, "")
	require.NoError(t, err)

	_, _, err = svc.ReviewApplication(context.Background(), app.ID, domain.ApplicationStatusRejected, pod.OwnerID)
	require.NoError(t, err)

	// A rejected application is terminal, not blocking. The applicant may
	// apply again.
	_, _, err = svc.ApplyToPod(context.Background(), pod.ID, 2, "second try")
	assert.NoError(t, err)
}

func TestApplyToPod_AfterCancelSucceeds(t *testing.T) {
	store := newMemStore()
	svc := newRecruitment(store)
	pod := seedPod(store, 1, 4, domain.PodStatusRecruiting)

	app, _, err := svc.ApplyToPod(context.Background(), pod.ID, 2, "")
	require.NoError(t, err)
	require.NoError(t, svc.CancelApplication(context.Background(), app.ID, 2))

	_, _, err = svc.ApplyToPod(context.Background(), pod.ID, 2, "again")
	assert.NoError(t, err)
}

func TestReviewApplication_Approve(t *testing.T) {
	store := newMemStore()
	svc := newRecruitment(store)
	pod := seedPod(store, 1, 4, domain.PodStatusRecruiting)

	app, _, err := svc.ApplyToPod(context.Background(), pod.ID, 2, "")
	require.NoError(t, err)

	reviewed, events, err := svc.ReviewApplication(context.Background(), app.ID, domain.ApplicationStatusApproved, pod.OwnerID)
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationStatusApproved, reviewed.Status)
	require.NotNil(t, reviewed.ReviewerID)
	assert.Equal(t, pod.OwnerID, *reviewed.ReviewerID)
	assert.NotNil(t, reviewed.ReviewedOn)

	m, err := store.Memberships().Get(context.Background(), pod.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, domain.MembershipRoleMember, m.Role)

	require.Len(t, events, 2)
	assert.Equal(t, domain.EventApplicationApproved, events[0].Kind)
	assert.Equal(t, int32(2), events[0].TargetID)
	assert.Equal(t, domain.EventMemberAdmitted, events[1].Kind)

	got, err := store.Pods().GetByID(context.Background(), pod.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PodStatusRecruiting, got.Status, "pod below capacity keeps recruiting")
}

func TestReviewApplication_ApproveFillsPod(t *testing.T) {
	store := newMemStore()
	svc := newRecruitment(store)
	pod := seedPod(store, 1, 2, domain.PodStatusRecruiting)

	app, _, err := svc.ApplyToPod(context.Background(), pod.ID, 2, "")
	require.NoError(t, err)

	_, events, err := svc.ReviewApplication(context.Background(), app.ID, domain.ApplicationStatusApproved, pod.OwnerID)
	require.NoError(t, err)

	got, err := store.Pods().GetByID(context.Background(), pod.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PodStatusCompleted, got.Status)

	require.Len(t, events, 3)
	assert.Equal(t, domain.EventPodCapacityReached, events[2].Kind)
	assert.Equal(t, pod.OwnerID, events[2].TargetID)
}

func TestReviewApplication_ApproveBeyondCapacity(t *testing.T) {
	store := newMemStore()
	svc := newRecruitment(store)
	pod := seedPod(store, 1, 2, domain.PodStatusRecruiting)

	appA, _, err := svc.ApplyToPod(context.Background(), pod.ID, 2, "")
	require.NoError(t, err)
	appB, _, err := svc.ApplyToPod(context.Background(), pod.ID, 3, "")
	require.NoError(t, err)

	_, _, err = svc.ReviewApplication(context.Background(), appA.ID, domain.ApplicationStatusApproved, pod.OwnerID)
	require.NoError(t, err)

	// Pod is COMPLETED now, which still accepts reviews, but the capacity
	// guard must refuse the second seat.
	_, _, err = svc.ReviewApplication(context.Background(), appB.ID, domain.ApplicationStatusApproved, pod.OwnerID)
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodePodFull))

	// The failed approval rolls back wholesale: the application stays
	// PENDING and no membership row exists.
	got, err := store.Applications().GetByID(context.Background(), appB.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationStatusPending, got.Status)

	_, err = store.Memberships().Get(context.Background(), pod.ID, 3)
	assert.Error(t, err)
}

func TestReviewApplication_Reject(t *testing.T) {
	store := newMemStore()
	svc := newRecruitment(store)
	pod := seedPod(store, 1, 4, domain.PodStatusRecruiting)

	app, _, err := svc.ApplyToPod(context.Background(), pod.ID, 2, "")
	require.NoError(t, err)

	reviewed, events, err := svc.ReviewApplication(context.Background(), app.ID, domain.ApplicationStatusRejected, pod.OwnerID)
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationStatusRejected, reviewed.Status)

	_, err = store.Memberships().Get(context.Background(), pod.ID, 2)
	assert.Error(t, err, "rejection must not create a membership")

	require.Len(t, events, 1)
	assert.Equal(t, domain.EventApplicationRejected, events[0].Kind)
	assert.Equal(t, int32(2), events[0].TargetID)
}

func TestReviewApplication_NotPodHost(t *testing.T) {
	store := newMemStore()
	svc := newRecruitment(store)
	pod := seedPod(store, 1, 4, domain.PodStatusRecruiting)

	app, _, err := svc.ApplyToPod(context.Background(), pod.ID, 2, "")
	require.NoError(t, err)

	_, _, err = svc.ReviewApplication(context.Background(), app.ID, domain.ApplicationStatusApproved, 42)
	assert.True(t, domain.IsCode(err, domain.CodeNotPodHost))
}

func TestReviewApplication_AlreadyReviewed(t *testing.T) {
	store := newMemStore()
	svc := newRecruitment(store)
	pod := seedPod(store, 1, 4, domain.PodStatusRecruiting)

	app, _, err := svc.ApplyToPod(context.Background(), pod.ID, 2, "")
	require.NoError(t, err)

	_, _, err = svc.ReviewApplication(context.Background(), app.ID, domain.ApplicationStatusRejected, pod.OwnerID)
	require.NoError(t, err)

	// Terminal states are immutable: neither re-rejecting nor flipping to
	// approved is allowed.
	_, _, err = svc.ReviewApplication(context.Background(), app.ID, domain.ApplicationStatusRejected, pod.OwnerID)
	assert.True(t, domain.IsCode(err, domain.CodeAlreadyReviewed))

	_, _, err = svc.ReviewApplication(context.Background(), app.ID, domain.ApplicationStatusApproved, pod.OwnerID)
	assert.True(t, domain.IsCode(err, domain.CodeAlreadyReviewed))
}

func TestReviewApplication_InvalidDecision(t *testing.T) {
	store := newMemStore()
	svc := newRecruitment(store)

	_, _, err := svc.ReviewApplication(context.Background(), 1, domain.ApplicationStatusPending, 1)
	assert.Error(t, err)
}

// reviewFailStore makes the application transition fail inside the approval
// transaction so the rollback of the membership insert can be observed.
type reviewFailStore struct {
	*memStore
}

func (s *reviewFailStore) Applications() repository.ApplicationRepository {
	return failingAppRepo{s.memStore.Applications()}
}

func (s *reviewFailStore) ExecTx(ctx context.Context, fn func(repository.Store) error) error {
	return s.memStore.ExecTx(ctx, func(repository.Store) error { return fn(s) })
}

type failingAppRepo struct {
	repository.ApplicationRepository
}

func (failingAppRepo) Review(ctx context.Context, id int32, decision domain.ApplicationStatus, reviewerID int32) (*domain.Application, error) {
	return nil, errors.New("review write failed")
}

func TestReviewApplication_ApprovalIsAtomic(t *testing.T) {
	store := newMemStore()
	pod := seedPod(store, 1, 4, domain.PodStatusRecruiting)

	plain := newRecruitment(store)
	app, _, err := plain.ApplyToPod(context.Background(), pod.ID, 2, "")
	require.NoError(t, err)

	failing := &reviewFailStore{memStore: store}
	svc := service.NewRecruitmentService(failing, service.NewCapacityGuard(failing))

	_, _, err = svc.ReviewApplication(context.Background(), app.ID, domain.ApplicationStatusApproved, pod.OwnerID)
	require.Error(t, err)

	// The admission that preceded the failed write must be rolled back.
	_, err = store.Memberships().Get(context.Background(), pod.ID, 2)
	assert.Error(t, err, "membership insert must not survive the failed transaction")

	got, err := store.Applications().GetByID(context.Background(), app.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationStatusPending, got.Status)
}

func TestCancelApplication_ByApplicant(t *testing.T) {
	store := newMemStore()
	svc := newRecruitment(store)
	pod := seedPod(store, 1, 4, domain.PodStatusRecruiting)

	app, _, err := svc.ApplyToPod(context.Background(), pod.ID, 2, "")
	require.NoError(t, err)

	require.NoError(t, svc.CancelApplication(context.Background(), app.ID, 2))

	_, err = store.Applications().GetByID(context.Background(), app.ID)
	assert.Error(t, err, "applicant cancel is a hard delete")
}

func TestCancelApplication_ByApplicantAfterReview(t *testing.T) {
	store := newMemStore()
	svc := newRecruitment(store)
	pod := seedPod(store, 1, 4, domain.PodStatusRecruiting)

	app, _, err := svc.ApplyToPod(context.Background(), pod.ID, 2, "")
	require.NoError(t, err)
	_, _, err = svc.ReviewApplication(context.Background(), app.ID, domain.ApplicationStatusRejected, pod.OwnerID)
	require.NoError(t, err)

	err = svc.CancelApplication(context.Background(), app.ID, 2)
	assert.True(t, domain.IsCode(err, domain.CodeAlreadyReviewed))
}

func TestCancelApplication_ByOwnerHides(t *testing.T) {
	store := newMemStore()
	svc := newRecruitment(store)
	pod := seedPod(store, 1, 4, domain.PodStatusRecruiting)

	app, _, err := svc.ApplyToPod(context.Background(), pod.ID, 2, "")
	require.NoError(t, err)

	require.NoError(t, svc.CancelApplication(context.Background(), app.ID, pod.OwnerID))

	got, err := store.Applications().GetByID(context.Background(), app.ID)
	require.NoError(t, err)
	assert.True(t, got.Hidden, "owner cancel only hides the application")
	assert.Equal(t, domain.ApplicationStatusPending, got.Status)
}

func TestCancelApplication_ByStranger(t *testing.T) {
	store := newMemStore()
	svc := newRecruitment(store)
	pod := seedPod(store, 1, 4, domain.PodStatusRecruiting)

	app, _, err := svc.ApplyToPod(context.Background(), pod.ID, 2, "")
	require.NoError(t, err)

	err = svc.CancelApplication(context.Background(), app.ID, 42)
	assert.True(t, domain.IsCode(err, domain.CodeNoPodAccess))
}

func TestHideApplication(t *testing.T) {
	store := newMemStore()
	svc := newRecruitment(store)
	pod := seedPod(store, 1, 4, domain.PodStatusRecruiting)

	app, _, err := svc.ApplyToPod(context.Background(), pod.ID, 2, "")
	require.NoError(t, err)

	err = svc.HideApplication(context.Background(), app.ID, 2)
	assert.True(t, domain.IsCode(err, domain.CodeNoPodAccess), "only the owner hides applications")

	require.NoError(t, svc.HideApplication(context.Background(), app.ID, pod.OwnerID))
	got, err := store.Applications().GetByID(context.Background(), app.ID)
	require.NoError(t, err)
	assert.True(t, got.Hidden)

	// Hiding twice is fine.
	require.NoError(t, svc.HideApplication(context.Background(), app.ID, pod.OwnerID))
}

func TestLeavePod_Member(t *testing.T) {
	store := newMemStore()
	svc := newRecruitment(store)
	guard := service.NewCapacityGuard(store)
	pod := seedPod(store, 1, 4, domain.PodStatusRecruiting)
	store.pods[pod.ID].ChatChannelRef = "pod-chat-1"

	_, err := guard.TryAdmit(context.Background(), pod.ID, 2)
	require.NoError(t, err)

	events, err := svc.LeavePod(context.Background(), pod.ID, 2)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventMemberLeft, events[0].Kind)
	assert.Equal(t, int32(2), events[0].ActorID)
	assert.Equal(t, pod.OwnerID, events[0].TargetID)
	assert.Equal(t, "pod-chat-1", events[0].ChatChannelRef)

	_, err = store.Memberships().Get(context.Background(), pod.ID, 2)
	assert.Error(t, err)
}

func TestLeavePod_NonMember(t *testing.T) {
	store := newMemStore()
	svc := newRecruitment(store)
	pod := seedPod(store, 1, 4, domain.PodStatusRecruiting)

	_, err := svc.LeavePod(context.Background(), pod.ID, 42)
	assert.True(t, domain.IsCode(err, domain.CodeNoPodAccess))
}

func TestLeavePod_OwnerCancelsPod(t *testing.T) {
	store := newMemStore()
	svc := newRecruitment(store)
	guard := service.NewCapacityGuard(store)
	pod := seedPod(store, 1, 4, domain.PodStatusRecruiting)
	store.pods[pod.ID].ChatChannelRef = "pod-chat-9"

	_, err := guard.TryAdmit(context.Background(), pod.ID, 2)
	require.NoError(t, err)
	_, err = guard.TryAdmit(context.Background(), pod.ID, 3)
	require.NoError(t, err)

	events, err := svc.LeavePod(context.Background(), pod.ID, pod.OwnerID)
	require.NoError(t, err)

	got, err := store.Pods().GetByID(context.Background(), pod.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PodStatusCanceled, got.Status)

	// Membership rows survive cancellation for history.
	count, err := store.Memberships().CountByPod(context.Background(), pod.ID)
	require.NoError(t, err)
	assert.Equal(t, int32(2), count)

	require.Len(t, events, 1)
	assert.Equal(t, domain.EventPodCanceled, events[0].Kind)
	assert.ElementsMatch(t, []int32{1, 2, 3}, events[0].Participants)
	assert.Equal(t, "pod-chat-9", events[0].ChatChannelRef)
}

func TestLeavePod_FrozenPod(t *testing.T) {
	store := newMemStore()
	svc := newRecruitment(store)

	for _, status := range []domain.PodStatus{domain.PodStatusCanceled, domain.PodStatusClosed} {
		pod := seedPod(store, 1, 4, status)
		_, err := svc.LeavePod(context.Background(), pod.ID, 2)
		assert.True(t, domain.IsCode(err, domain.CodeInvalidPodStatus), "status %s must be frozen", status)
	}
}

func TestListApplicationsForPod(t *testing.T) {
	store := newMemStore()
	svc := newRecruitment(store)
	pod := seedPod(store, 1, 4, domain.PodStatusRecruiting)

	appA, _, err := svc.ApplyToPod(context.Background(), pod.ID, 2, "")
	require.NoError(t, err)
	_, _, err = svc.ApplyToPod(context.Background(), pod.ID, 3, "")
	require.NoError(t, err)
	require.NoError(t, svc.CancelApplication(context.Background(), appA.ID, pod.OwnerID))

	_, err = svc.ListApplicationsForPod(context.Background(), pod.ID, 42, false)
	assert.True(t, domain.IsCode(err, domain.CodeNotPodHost))

	visible, err := svc.ListApplicationsForPod(context.Background(), pod.ID, pod.OwnerID, false)
	require.NoError(t, err)
	assert.Len(t, visible, 1)

	all, err := svc.ListApplicationsForPod(context.Background(), pod.ID, pod.OwnerID, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
