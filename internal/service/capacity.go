package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"podpal-backend/internal/domain"
	"podpal-backend/internal/repository"
)

type capacityGuard struct {
	store repository.Store
}

func NewCapacityGuard(store repository.Store) CapacityGuard {
	return &capacityGuard{store: store}
}

func (g *capacityGuard) CurrentOccupancy(ctx context.Context, podID int32) (int32, error) {
	count, err := g.store.Memberships().CountByPod(ctx, podID)
	if err != nil {
		return 0, fmt.Errorf("failed to count memberships: %w", err)
	}
	return count + 1, nil // owner always occupies a seat
}

func (g *capacityGuard) TryAdmit(ctx context.Context, podID, userID int32) (*domain.Membership, error) {
	var m *domain.Membership
	err := g.store.ExecTx(ctx, func(s repository.Store) error {
		pod, err := s.Pods().GetByIDForUpdate(ctx, podID)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrPodNotFound(podID)
		}
		if err != nil {
			return fmt.Errorf("failed to lock pod %d: %w", podID, err)
		}
		m, _, err = g.AdmitTx(ctx, s, pod, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// AdmitTx runs pre-check-then-insert under the caller's pod lock. The
// existing-membership check comes before the capacity check so that a retried
// admit for an already-seated user stays idempotent even when the pod is full.
func (g *capacityGuard) AdmitTx(ctx context.Context, s repository.Store, pod *domain.Pod, userID int32) (*domain.Membership, int32, error) {
	count, err := s.Memberships().CountByPod(ctx, pod.ID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count memberships: %w", err)
	}
	occupancy := count + 1

	existing, err := s.Memberships().Get(ctx, pod.ID, userID)
	if err == nil {
		return existing, occupancy, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, 0, fmt.Errorf("failed to look up membership: %w", err)
	}

	if occupancy >= pod.Capacity {
		return nil, 0, domain.ErrPodFull(pod.ID, occupancy, pod.Capacity)
	}

	m := &domain.Membership{
		PodID:    pod.ID,
		UserID:   userID,
		Role:     domain.MembershipRoleMember,
		JoinedOn: time.Now(),
	}
	if err := s.Memberships().Create(ctx, m); err != nil {
		return nil, 0, fmt.Errorf("failed to insert membership: %w", err)
	}
	return m, occupancy + 1, nil
}

func (g *capacityGuard) Remove(ctx context.Context, podID, userID int32) (bool, error) {
	return g.store.Memberships().Delete(ctx, podID, userID)
}
