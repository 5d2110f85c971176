package gateway

import (
	"context"

	"podpal-backend/internal/domain"
)

// NotificationGateway delivers push notifications. Calls are fire-and-forget
// from the workflow's point of view: the dispatcher logs failures and never
// rolls anything back.
type NotificationGateway interface {
	Notify(ctx context.Context, kind domain.EventKind, podID, actorID, targetID int32, payload map[string]string) error
}

// ChatGateway keeps an external group-messaging channel aligned with pod
// membership. Best-effort: the database is authoritative, chat is advisory.
type ChatGateway interface {
	CreateChannel(ctx context.Context, name string, ownerID int32) (string, error)
	AddParticipant(ctx context.Context, channelRef string, userID int32) error
	RemoveParticipant(ctx context.Context, channelRef string, userID int32) error
	RemoveChannel(ctx context.Context, channelRef string) error
}

// EmailSender sends transactional email to pod owners.
type EmailSender interface {
	SendJoinRequestEmail(ctx context.Context, toEmail, toName, podTitle, applicantName string) error
	SendPodCanceledEmail(ctx context.Context, toEmail, toName, podTitle string) error
}

// NoopNotificationGateway is used when push is disabled in config.
type NoopNotificationGateway struct{}

func (NoopNotificationGateway) Notify(ctx context.Context, kind domain.EventKind, podID, actorID, targetID int32, payload map[string]string) error {
	return nil
}

// NoopChatGateway is used when the chat provider is disabled in config.
type NoopChatGateway struct{}

func (NoopChatGateway) CreateChannel(ctx context.Context, name string, ownerID int32) (string, error) {
	return "", nil
}
func (NoopChatGateway) AddParticipant(ctx context.Context, channelRef string, userID int32) error {
	return nil
}
func (NoopChatGateway) RemoveParticipant(ctx context.Context, channelRef string, userID int32) error {
	return nil
}
func (NoopChatGateway) RemoveChannel(ctx context.Context, channelRef string) error {
	return nil
}

// NoopEmailSender is used when email is disabled in config.
type NoopEmailSender struct{}

func (NoopEmailSender) SendJoinRequestEmail(ctx context.Context, toEmail, toName, podTitle, applicantName string) error {
	return nil
}
func (NoopEmailSender) SendPodCanceledEmail(ctx context.Context, toEmail, toName, podTitle string) error {
	return nil
}
