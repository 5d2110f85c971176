package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"podpal-backend/internal/domain"
	"podpal-backend/internal/logger"
	"podpal-backend/internal/repository"
)

type recruitmentService struct {
	store repository.Store
	guard CapacityGuard
}

func NewRecruitmentService(store repository.Store, guard CapacityGuard) RecruitmentService {
	return &recruitmentService{store: store, guard: guard}
}

func (s *recruitmentService) getPod(ctx context.Context, podID int32) (*domain.Pod, error) {
	pod, err := s.store.Pods().GetByID(ctx, podID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrPodNotFound(podID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load pod %d: %w", podID, err)
	}
	return pod, nil
}

func (s *recruitmentService) getApplication(ctx context.Context, applicationID int32) (*domain.Application, error) {
	app, err := s.store.Applications().GetByID(ctx, applicationID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrApplicationNotFound(applicationID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load application %d: %w", applicationID, err)
	}
	return app, nil
}

func (s *recruitmentService) ApplyToPod(ctx context.Context, podID, userID int32, message string) (*domain.Application, []domain.Event, error) {
	pod, err := s.getPod(ctx, podID)
	if err != nil {
		return nil, nil, err
	}
	if pod.Status != domain.PodStatusRecruiting {
		return nil, nil, domain.ErrInvalidPodStatus(podID, pod.Status)
	}
	if userID == pod.OwnerID {
		return nil, nil, domain.ErrAlreadyMember(podID, userID)
	}
	if _, err := s.store.Memberships().Get(ctx, podID, userID); err == nil {
		return nil, nil, domain.ErrAlreadyMember(podID, userID)
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, nil, fmt.Errorf("failed to look up membership: %w", err)
	}

	app := &domain.Application{
		PodID:       podID,
		ApplicantID: userID,
		Message:     message,
	}
	if err := s.store.Applications().Create(ctx, app); err != nil {
		return nil, nil, err
	}

	events := []domain.Event{{
		Kind:     domain.EventJoinRequested,
		PodID:    podID,
		ActorID:  userID,
		TargetID: pod.OwnerID,
		Payload: map[string]string{
			"application_id": fmt.Sprintf("%d", app.ID),
			"pod_title":      pod.Title,
		},
	}}
	return app, events, nil
}

func (s *recruitmentService) ReviewApplication(ctx context.Context, applicationID int32, decision domain.ApplicationStatus, reviewerID int32) (*domain.Application, []domain.Event, error) {
	if decision != domain.ApplicationStatusApproved && decision != domain.ApplicationStatusRejected {
		return nil, nil, fmt.Errorf("invalid review decision %q", decision)
	}

	app, err := s.getApplication(ctx, applicationID)
	if err != nil {
		return nil, nil, err
	}
	pod, err := s.getPod(ctx, app.PodID)
	if err != nil {
		return nil, nil, err
	}
	if pod.OwnerID != reviewerID {
		return nil, nil, domain.ErrNotPodHost(pod.ID, reviewerID)
	}
	if app.Status != domain.ApplicationStatusPending {
		return nil, nil, domain.ErrAlreadyReviewed(applicationID)
	}

	var events []domain.Event

	if decision == domain.ApplicationStatusApproved {
		var reviewed *domain.Application
		var completed bool
		// Admission, the application transition, and pod completion commit
		// as one unit. A failure in any step rolls the others back.
		err = s.store.ExecTx(ctx, func(txStore repository.Store) error {
			locked, err := txStore.Pods().GetByIDForUpdate(ctx, pod.ID)
			if errors.Is(err, sql.ErrNoRows) {
				return domain.ErrPodNotFound(pod.ID)
			}
			if err != nil {
				return fmt.Errorf("failed to lock pod %d: %w", pod.ID, err)
			}
			if !locked.AcceptsMembers() {
				return domain.ErrInvalidPodStatus(locked.ID, locked.Status)
			}

			_, occupancy, err := s.guard.AdmitTx(ctx, txStore, locked, app.ApplicantID)
			if err != nil {
				return err
			}
			reviewed, err = txStore.Applications().Review(ctx, applicationID, decision, reviewerID)
			if err != nil {
				return err
			}
			if occupancy >= locked.Capacity && locked.Status == domain.PodStatusRecruiting {
				if err := txStore.Pods().UpdateStatus(ctx, locked.ID, domain.PodStatusCompleted); err != nil {
					return fmt.Errorf("failed to mark pod completed: %w", err)
				}
				completed = true
			}
			return nil
		})
		if err != nil {
			return nil, nil, err
		}
		app = reviewed

		events = append(events,
			domain.Event{
				Kind:     domain.EventApplicationApproved,
				PodID:    pod.ID,
				ActorID:  reviewerID,
				TargetID: app.ApplicantID,
				Payload:  map[string]string{"application_id": fmt.Sprintf("%d", app.ID)},
			},
			domain.Event{
				Kind:           domain.EventMemberAdmitted,
				PodID:          pod.ID,
				ActorID:        reviewerID,
				TargetID:       app.ApplicantID,
				ChatChannelRef: pod.ChatChannelRef,
			},
		)
		if completed {
			events = append(events, domain.Event{
				Kind:     domain.EventPodCapacityReached,
				PodID:    pod.ID,
				ActorID:  reviewerID,
				TargetID: pod.OwnerID,
			})
		}
		logger.Info("Application approved", "applicationID", app.ID, "podID", pod.ID, "applicantID", app.ApplicantID, "podCompleted", completed)
	} else {
		reviewed, err := s.store.Applications().Review(ctx, applicationID, decision, reviewerID)
		if err != nil {
			return nil, nil, err
		}
		app = reviewed
		events = append(events, domain.Event{
			Kind:     domain.EventApplicationRejected,
			PodID:    pod.ID,
			ActorID:  reviewerID,
			TargetID: app.ApplicantID,
			Payload:  map[string]string{"application_id": fmt.Sprintf("%d", app.ID)},
		})
		logger.Info("Application rejected", "applicationID", app.ID, "podID", pod.ID, "applicantID", app.ApplicantID)
	}

	return app, events, nil
}

// CancelApplication dispatches by requester role: the applicant hard-deletes
// a still-pending application, the pod owner soft-hides it, anyone else is
// denied.
func (s *recruitmentService) CancelApplication(ctx context.Context, applicationID, requesterID int32) error {
	app, err := s.getApplication(ctx, applicationID)
	if err != nil {
		return err
	}
	pod, err := s.getPod(ctx, app.PodID)
	if err != nil {
		return err
	}

	switch requesterID {
	case app.ApplicantID:
		if app.Status != domain.ApplicationStatusPending {
			return domain.ErrAlreadyReviewed(applicationID)
		}
		deleted, err := s.store.Applications().Delete(ctx, applicationID)
		if err != nil {
			return fmt.Errorf("failed to delete application %d: %w", applicationID, err)
		}
		if !deleted {
			// Lost a race with the reviewer.
			return domain.ErrAlreadyReviewed(applicationID)
		}
		return nil
	case pod.OwnerID:
		_, err := s.store.Applications().Hide(ctx, applicationID)
		return err
	default:
		return domain.ErrNoPodAccess(pod.ID, requesterID)
	}
}

// HideApplication is the owner-only soft dismissal; legal in any application
// status and idempotent.
func (s *recruitmentService) HideApplication(ctx context.Context, applicationID, requesterID int32) error {
	app, err := s.getApplication(ctx, applicationID)
	if err != nil {
		return err
	}
	pod, err := s.getPod(ctx, app.PodID)
	if err != nil {
		return err
	}
	if pod.OwnerID != requesterID {
		return domain.ErrNoPodAccess(pod.ID, requesterID)
	}
	_, err = s.store.Applications().Hide(ctx, applicationID)
	return err
}

func (s *recruitmentService) LeavePod(ctx context.Context, podID, userID int32) ([]domain.Event, error) {
	pod, err := s.getPod(ctx, podID)
	if err != nil {
		return nil, err
	}
	if !pod.AcceptsMembers() {
		return nil, domain.ErrInvalidPodStatus(podID, pod.Status)
	}

	if userID == pod.OwnerID {
		// Owner exit cancels the whole pod. Membership rows are retained for
		// history; only the external chat channel is torn down.
		members, err := s.store.Memberships().ListByPod(ctx, podID)
		if err != nil {
			return nil, fmt.Errorf("failed to list memberships: %w", err)
		}
		if err := s.store.Pods().UpdateStatus(ctx, podID, domain.PodStatusCanceled); err != nil {
			return nil, fmt.Errorf("failed to cancel pod %d: %w", podID, err)
		}

		participants := make([]int32, 0, len(members)+1)
		participants = append(participants, pod.OwnerID)
		for _, m := range members {
			participants = append(participants, m.UserID)
		}
		logger.Info("Pod canceled by owner", "podID", podID, "participants", len(participants))
		return []domain.Event{{
			Kind:           domain.EventPodCanceled,
			PodID:          podID,
			ActorID:        userID,
			ChatChannelRef: pod.ChatChannelRef,
			Participants:   participants,
		}}, nil
	}

	removed, err := s.guard.Remove(ctx, podID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to remove membership: %w", err)
	}
	if !removed {
		return nil, domain.ErrNoPodAccess(podID, userID)
	}
	return []domain.Event{{
		Kind:           domain.EventMemberLeft,
		PodID:          podID,
		ActorID:        userID,
		TargetID:       pod.OwnerID,
		ChatChannelRef: pod.ChatChannelRef,
	}}, nil
}

func (s *recruitmentService) ListApplicationsForPod(ctx context.Context, podID, requesterID int32, includeHidden bool) ([]domain.Application, error) {
	pod, err := s.getPod(ctx, podID)
	if err != nil {
		return nil, err
	}
	if pod.OwnerID != requesterID {
		return nil, domain.ErrNotPodHost(podID, requesterID)
	}
	return s.store.Applications().ListByPod(ctx, podID, includeHidden)
}
