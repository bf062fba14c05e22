package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/HideOnBush-dev/MoneyKeeper-sub001/internal/domain"
)

// flexID accepts ids encoded as JSON strings or numbers.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexID(n.String())
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid id %s", data)
	}
	*f = flexID(s)
	return nil
}

type sessionDTO struct {
	ID          flexID `json:"id"`
	Personality string `json:"personality"`
	Title       string `json:"title,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

type sessionsResponse struct {
	Sessions []sessionDTO `json:"sessions"`
}

type sessionAction struct {
	Action      string `json:"action"`
	SessionID   string `json:"session_id,omitempty"`
	Personality string `json:"personality,omitempty"`
}

type sessionActionResponse struct {
	SessionID flexID `json:"session_id"`
}

type historyResponse struct {
	Messages []domain.HistoryRecord `json:"messages"`
}

// ListSessions returns the user's conversations, most recent first.
func (c *Client) ListSessions(ctx context.Context) ([]domain.Conversation, error) {
	var resp sessionsResponse
	if err := c.do(ctx, http.MethodGet, "/chat/sessions", nil, &resp); err != nil {
		return nil, err
	}
	out := make([]domain.Conversation, 0, len(resp.Sessions))
	for _, s := range resp.Sessions {
		out = append(out, domain.Conversation{
			ID:          string(s.ID),
			Personality: domain.ParsePersonality(s.Personality),
			Title:       s.Title,
			UpdatedAt:   domain.ParseTimestamp(s.UpdatedAt),
		})
	}
	return out, nil
}

// CreateSession creates a conversation and returns its id.
func (c *Client) CreateSession(ctx context.Context, personality domain.Personality) (string, error) {
	var resp sessionActionResponse
	req := sessionAction{Action: "new", Personality: string(personality)}
	if err := c.do(ctx, http.MethodPost, "/chat/sessions", req, &resp); err != nil {
		return "", err
	}
	if resp.SessionID == "" {
		return "", fmt.Errorf("create session: empty session_id in response")
	}
	return string(resp.SessionID), nil
}

// UpdateSession touches a conversation and stores its personality.
func (c *Client) UpdateSession(ctx context.Context, id string, personality domain.Personality) error {
	req := sessionAction{Action: "update", SessionID: id, Personality: string(personality)}
	return c.do(ctx, http.MethodPost, "/chat/sessions", req, nil)
}

// DeleteSession removes a conversation.
func (c *Client) DeleteSession(ctx context.Context, id string) error {
	req := sessionAction{Action: "delete", SessionID: id}
	return c.do(ctx, http.MethodPost, "/chat/sessions", req, nil)
}

// GetHistory returns the stored messages of a conversation.
func (c *Client) GetHistory(ctx context.Context, id string) ([]domain.HistoryRecord, error) {
	var resp historyResponse
	path := "/chat/sessions/" + url.PathEscape(id) + "/messages"
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Messages, nil
}
