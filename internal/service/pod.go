package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"podpal-backend/internal/domain"
	"podpal-backend/internal/gateway"
	"podpal-backend/internal/logger"
	"podpal-backend/internal/repository"
)

type podService struct {
	store repository.Store
	chat  gateway.ChatGateway
}

func NewPodService(store repository.Store, chat gateway.ChatGateway) PodService {
	return &podService{store: store, chat: chat}
}

func (s *podService) CreatePod(ctx context.Context, ownerID int32, title, description string, capacity int32, meetAt time.Time) (*domain.Pod, error) {
	if capacity < 2 {
		return nil, fmt.Errorf("capacity must leave room for at least one member, got %d", capacity)
	}
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}

	pod := &domain.Pod{
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
		Capacity:    capacity,
		Status:      domain.PodStatusRecruiting,
		MeetAt:      meetAt,
	}
	if err := s.store.Pods().Create(ctx, pod); err != nil {
		return nil, fmt.Errorf("failed to create pod: %w", err)
	}

	// Chat is advisory: a provider outage must not block pod creation.
	channelRef, err := s.chat.CreateChannel(ctx, title, ownerID)
	if err != nil {
		logger.Error("Failed to create chat channel for pod", "podID", pod.ID, "error", err)
		return pod, nil
	}
	if channelRef != "" {
		if err := s.store.Pods().SetChatChannelRef(ctx, pod.ID, channelRef); err != nil {
			logger.Error("Failed to persist chat channel ref", "podID", pod.ID, "channelRef", channelRef, "error", err)
			return pod, nil
		}
		pod.ChatChannelRef = channelRef
	}
	return pod, nil
}

func (s *podService) GetPod(ctx context.Context, podID int32) (*domain.Pod, error) {
	pod, err := s.store.Pods().GetByID(ctx, podID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrPodNotFound(podID)
	}
	return pod, err
}

func (s *podService) ListRecruitingPods(ctx context.Context) ([]domain.Pod, error) {
	return s.store.Pods().ListByStatus(ctx, domain.PodStatusRecruiting)
}
