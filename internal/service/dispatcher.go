package service

import (
	"context"
	"fmt"

	"podpal-backend/internal/domain"
	"podpal-backend/internal/gateway"
	"podpal-backend/internal/logger"
	"podpal-backend/internal/repository"
)

type eventDispatcher struct {
	users repository.UserRepository
	notes repository.NotificationRepository
	push  gateway.NotificationGateway
	chat  gateway.ChatGateway
	email gateway.EmailSender
}

// NewEventDispatcher builds the fan-out sink for workflow events. Every
// delivery is best-effort: a push, chat or email failure is logged and the
// remaining deliveries still run.
func NewEventDispatcher(
	users repository.UserRepository,
	notes repository.NotificationRepository,
	push gateway.NotificationGateway,
	chat gateway.ChatGateway,
	email gateway.EmailSender,
) EventDispatcher {
	return &eventDispatcher{
		users: users,
		notes: notes,
		push:  push,
		chat:  chat,
		email: email,
	}
}

func (d *eventDispatcher) Dispatch(ctx context.Context, events []domain.Event) {
	for _, ev := range events {
		d.dispatchOne(ctx, ev)
	}
}

func (d *eventDispatcher) dispatchOne(ctx context.Context, ev domain.Event) {
	switch ev.Kind {
	case domain.EventJoinRequested:
		actor := d.nickname(ctx, ev.ActorID)
		body := fmt.Sprintf("%s wants to join your pod", actor)
		d.notify(ctx, ev, ev.TargetID, "New join request", body)
		d.emailOwner(ctx, ev, actor)

	case domain.EventApplicationApproved:
		d.notify(ctx, ev, ev.TargetID, "Application approved", "Your join request was approved. See you there!")

	case domain.EventApplicationRejected:
		d.notify(ctx, ev, ev.TargetID, "Application update", "Your join request was not accepted this time.")

	case domain.EventMemberAdmitted:
		if ev.ChatChannelRef == "" {
			return
		}
		if err := d.chat.AddParticipant(ctx, ev.ChatChannelRef, ev.TargetID); err != nil {
			logger.Error("Chat sync failed to add participant", "channelRef", ev.ChatChannelRef, "userID", ev.TargetID, "error", err)
		}

	case domain.EventMemberLeft:
		actor := d.nickname(ctx, ev.ActorID)
		d.notify(ctx, ev, ev.TargetID, "A member left your pod", fmt.Sprintf("%s left your pod", actor))
		if ev.ChatChannelRef != "" {
			if err := d.chat.RemoveParticipant(ctx, ev.ChatChannelRef, ev.ActorID); err != nil {
				logger.Error("Chat sync failed to remove participant", "channelRef", ev.ChatChannelRef, "userID", ev.ActorID, "error", err)
			}
		}

	case domain.EventPodCapacityReached:
		d.notify(ctx, ev, ev.TargetID, "Your pod is full", "Every seat is taken. Recruiting is complete.")

	case domain.EventPodCanceled:
		for _, userID := range ev.Participants {
			if ev.ChatChannelRef != "" {
				if err := d.chat.RemoveParticipant(ctx, ev.ChatChannelRef, userID); err != nil {
					logger.Error("Chat sync failed to remove participant", "channelRef", ev.ChatChannelRef, "userID", userID, "error", err)
				}
			}
			if userID == ev.ActorID {
				continue // the owner canceled; no need to tell them
			}
			d.notify(ctx, ev, userID, "Pod canceled", "The organizer canceled this pod.")
		}
		if ev.ChatChannelRef != "" {
			if err := d.chat.RemoveChannel(ctx, ev.ChatChannelRef); err != nil {
				logger.Error("Chat sync failed to remove channel", "channelRef", ev.ChatChannelRef, "error", err)
			}
		}

	default:
		logger.Warn("Unknown event kind, dropping", "kind", ev.Kind, "podID", ev.PodID)
	}
}

// notify persists an inbox row and sends a push; both best-effort.
func (d *eventDispatcher) notify(ctx context.Context, ev domain.Event, targetID int32, title, body string) {
	note := &domain.Notification{
		UserID:     targetID,
		PodID:      ev.PodID,
		Title:      title,
		Message:    body,
		Attributes: map[string]string{"kind": string(ev.Kind)},
	}
	for k, v := range ev.Payload {
		note.Attributes[k] = v
	}
	if err := d.notes.Create(ctx, note); err != nil {
		logger.Error("Failed to persist notification", "userID", targetID, "kind", ev.Kind, "error", err)
	}

	payload := map[string]string{"body": body}
	for k, v := range ev.Payload {
		payload[k] = v
	}
	if err := d.push.Notify(ctx, ev.Kind, ev.PodID, ev.ActorID, targetID, payload); err != nil {
		logger.Error("Push delivery failed", "userID", targetID, "kind", ev.Kind, "error", err)
	}
}

func (d *eventDispatcher) emailOwner(ctx context.Context, ev domain.Event, applicantName string) {
	owner, err := d.users.GetByID(ctx, ev.TargetID)
	if err != nil {
		logger.Error("Failed to resolve owner for email", "userID", ev.TargetID, "error", err)
		return
	}
	podTitle := ev.Payload["pod_title"]
	if err := d.email.SendJoinRequestEmail(ctx, owner.Email, owner.Nickname, podTitle, applicantName); err != nil {
		logger.Error("Join request email failed", "userID", ev.TargetID, "error", err)
	}
}

func (d *eventDispatcher) nickname(ctx context.Context, userID int32) string {
	user, err := d.users.GetByID(ctx, userID)
	if err != nil || user.Nickname == "" {
		return "Someone"
	}
	return user.Nickname
}
