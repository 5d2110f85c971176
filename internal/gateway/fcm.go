package gateway

import (
	"context"
	"fmt"
	"strconv"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"podpal-backend/internal/domain"
	"podpal-backend/internal/logger"
	"podpal-backend/internal/repository"
)

var pushTitles = map[domain.EventKind]string{
	domain.EventJoinRequested:       "New join request",
	domain.EventApplicationApproved: "Application approved",
	domain.EventApplicationRejected: "Application update",
	domain.EventMemberAdmitted:      "Welcome aboard",
	domain.EventMemberLeft:          "A member left your pod",
	domain.EventPodCapacityReached:  "Your pod is full",
}

// FCMGateway implements NotificationGateway on Firebase Cloud Messaging.
// Device tokens are resolved from the user directory; users without a token
// are silently skipped.
type FCMGateway struct {
	client *messaging.Client
	users  repository.UserRepository
}

func NewFCMGateway(ctx context.Context, credentialsFile string, users repository.UserRepository) (*FCMGateway, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize FCM client: %w", err)
	}
	return &FCMGateway{client: client, users: users}, nil
}

func (g *FCMGateway) Notify(ctx context.Context, kind domain.EventKind, podID, actorID, targetID int32, payload map[string]string) error {
	target, err := g.users.GetByID(ctx, targetID)
	if err != nil {
		return fmt.Errorf("failed to resolve push target %d: %w", targetID, err)
	}
	if target.DeviceToken == "" {
		logger.Debug("Push target has no device token, skipping", "userID", targetID, "kind", kind)
		return nil
	}

	data := map[string]string{
		"kind":   string(kind),
		"pod_id": strconv.Itoa(int(podID)),
	}
	for k, v := range payload {
		data[k] = v
	}

	msg := &messaging.Message{
		Token: target.DeviceToken,
		Notification: &messaging.Notification{
			Title: pushTitles[kind],
			Body:  payload["body"],
		},
		Data: data,
	}

	logger.ExternalServiceCall("fcm", "Send", "kind", kind, "targetID", targetID)
	_, err = g.client.Send(ctx, msg)
	logger.ExternalServiceResult("fcm", "Send", err, "kind", kind, "targetID", targetID)
	if err != nil {
		return fmt.Errorf("failed to send push: %w", err)
	}
	return nil
}
