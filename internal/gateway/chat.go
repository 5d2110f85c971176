package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/sendgrid/rest"

	"podpal-backend/internal/logger"
)

// RestChatGateway implements ChatGateway against the group-messaging
// provider's REST API. Channel refs are provider channel URLs.
type RestChatGateway struct {
	baseURL  string
	appID    string
	apiToken string
}

func NewRestChatGateway(baseURL, appID, apiToken string) *RestChatGateway {
	return &RestChatGateway{baseURL: baseURL, appID: appID, apiToken: apiToken}
}

func (g *RestChatGateway) do(ctx context.Context, method rest.Method, path string, body any) (*rest.Response, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal chat request: %w", err)
		}
	}

	req := rest.Request{
		Method:  method,
		BaseURL: g.baseURL + path,
		Headers: map[string]string{
			"Api-Token":    g.apiToken,
			"Content-Type": "application/json; charset=utf8",
		},
		Body: payload,
	}

	logger.ExternalServiceCall("chat", string(method), "path", path)
	resp, err := rest.SendWithContext(ctx, req)
	logger.ExternalServiceResult("chat", string(method), err, "path", path)
	if err != nil {
		return nil, fmt.Errorf("chat provider request failed: %w", err)
	}
	if resp.StatusCode >= 400 {
		return resp, fmt.Errorf("chat provider error: status %d, body: %s", resp.StatusCode, resp.Body)
	}
	return resp, nil
}

func (g *RestChatGateway) CreateChannel(ctx context.Context, name string, ownerID int32) (string, error) {
	channelURL := "pod-" + uuid.NewString()
	body := map[string]any{
		"name":        name,
		"channel_url": channelURL,
		"user_ids":    []string{userRef(ownerID)},
	}
	if _, err := g.do(ctx, rest.Post, "/v3/group_channels", body); err != nil {
		return "", err
	}
	return channelURL, nil
}

func (g *RestChatGateway) AddParticipant(ctx context.Context, channelRef string, userID int32) error {
	body := map[string]any{"user_ids": []string{userRef(userID)}}
	_, err := g.do(ctx, rest.Post, "/v3/group_channels/"+channelRef+"/invite", body)
	return err
}

func (g *RestChatGateway) RemoveParticipant(ctx context.Context, channelRef string, userID int32) error {
	body := map[string]any{"user_ids": []string{userRef(userID)}}
	_, err := g.do(ctx, rest.Put, "/v3/group_channels/"+channelRef+"/leave", body)
	return err
}

func (g *RestChatGateway) RemoveChannel(ctx context.Context, channelRef string) error {
	_, err := g.do(ctx, rest.Delete, "/v3/group_channels/"+channelRef, nil)
	return err
}

func userRef(userID int32) string {
	return strconv.Itoa(int(userID))
}
