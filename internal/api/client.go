// Package api is the client for the remote Agent Hub backend. It covers the
// four endpoints the app consumes: credential exchange, profile lookup, chat
// dispatch and chat history.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"agenthub/internal/types"
)

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type profileResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

// HistoryEntry is one exchange row from GET /api/chat/history. The caller
// splits it into a user message and an agent message.
type HistoryEntry struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Response  string    `json:"response"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatReply is the response body of POST /api/chat.
type ChatReply struct {
	ID        string    `json:"id"`
	Response  string    `json:"response"`
	Timestamp time.Time `json:"timestamp"`
}

// Login exchanges credentials at POST /token. A rejected exchange returns
// ErrInvalidCredentials; an unreachable backend returns a NetworkError.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &types.NetworkError{Op: "login", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", types.ErrInvalidCredentials
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	return tok.AccessToken, nil
}

// Me loads the profile behind a token via GET /users/me. A non-2xx status
// means the token was rejected and returns ErrInvalidToken.
func (c *Client) Me(ctx context.Context, token string) (types.User, error) {
	body, err := c.get(ctx, "/users/me", token, "profile")
	if err != nil {
		return types.User{}, err
	}

	var profile profileResponse
	if err := json.Unmarshal(body, &profile); err != nil {
		return types.User{}, fmt.Errorf("failed to decode profile: %w", err)
	}
	name := profile.FullName
	if name == "" {
		name = profile.Username
	}
	return types.User{ID: profile.ID, Email: profile.Email, Name: name}, nil
}

// History fetches prior exchanges for one agent.
func (c *Client) History(ctx context.Context, token, agentID string) ([]HistoryEntry, error) {
	body, err := c.get(ctx, "/api/chat/history?agent_id="+url.QueryEscape(agentID), token, "history")
	if err != nil {
		return nil, err
	}

	var entries []HistoryEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode history: %w", err)
	}
	return entries, nil
}

type chatRequest struct {
	Message string            `json:"message"`
	AgentID string            `json:"agent_id"`
	Config  map[string]string `json:"config,omitempty"`
}

// SendChat dispatches one message to the backend and returns the agent reply.
func (c *Client) SendChat(ctx context.Context, token, agentID, message string, config map[string]string) (ChatReply, error) {
	payload, err := json.Marshal(chatRequest{Message: message, AgentID: agentID, Config: config})
	if err != nil {
		return ChatReply{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return ChatReply{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return ChatReply{}, &types.NetworkError{Op: "chat", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return ChatReply{}, fmt.Errorf("chat dispatch failed: status %d", resp.StatusCode)
	}

	var reply ChatReply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return ChatReply{}, fmt.Errorf("failed to decode chat reply: %w", err)
	}
	return reply, nil
}

func (c *Client) get(ctx context.Context, path, token, op string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &types.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, types.ErrInvalidToken
	}
	return io.ReadAll(resp.Body)
}
