package hub

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"agenthub/internal/api"
	"agenthub/internal/catalog"
	"agenthub/internal/store"
	"agenthub/internal/types"
	"agenthub/internal/utils"
)

const (
	titleLimit        = 30
	pendingMarker     = "…"
	sendFailedMessage = "Sorry, I couldn't process your request. Please try again."
)

// SendReceipt correlates an in-flight send with its placeholder. The
// placeholder is replaced in place by exactly one terminal message, so two
// overlapping sends can never interleave their responses.
type SendReceipt struct {
	SessionID     string
	AgentID       string
	UserMessageID string
	PlaceholderID string
	Text          string
}

// ChatEngine owns per-agent conversations: lazy session creation, optimistic
// sends with placeholder replacement, and remote or simulated resolution.
type ChatEngine struct {
	mu     sync.Mutex
	local  store.Store
	client *api.Client
	auth   *AuthManager
	cfg    *ConfigFlow
	notify Notifier
	logger *utils.Logger

	sessions map[string][]*types.ChatSession // agentID -> sessions
	active   map[string]string               // agentID -> active session id
	loaded   map[string]bool

	simDelay time.Duration
}

func NewChatEngine(local store.Store, client *api.Client, auth *AuthManager, cfg *ConfigFlow, notify Notifier, logger *utils.Logger) *ChatEngine {
	return &ChatEngine{
		local:    local,
		client:   client,
		auth:     auth,
		cfg:      cfg,
		notify:   notify,
		logger:   logger,
		sessions: make(map[string][]*types.ChatSession),
		active:   make(map[string]string),
		loaded:   make(map[string]bool),
		simDelay: 1500 * time.Millisecond,
	}
}

// SetSimulatedDelay overrides the demo responder delay. Tests set it to zero.
func (ce *ChatEngine) SetSimulatedDelay(d time.Duration) {
	ce.mu.Lock()
	defer ce.mu.Unlock()
	ce.simDelay = d
}

// Open enters an agent's chat view. It resumes the most recent session with
// at least one message, or creates one seeded with the agent's greeting. For
// authenticated non-demo sessions it also merges remote history; a history
// fetch failure is logged and ignored.
func (ce *ChatEngine) Open(ctx context.Context, agentID string) (types.ChatSession, error) {
	agent, ok := catalog.Get(agentID)
	if !ok {
		return types.ChatSession{}, types.ErrAgentNotFound
	}

	ce.mu.Lock()
	ce.ensureLoadedLocked(agentID)

	var current *types.ChatSession
	for _, sess := range ce.sortedLocked(agentID) {
		if len(sess.Messages) > 0 {
			current = sess
			break
		}
	}
	if current == nil {
		current = ce.newSessionLocked(agent)
	}
	ce.active[agentID] = current.ID
	ce.mu.Unlock()

	ce.mergeHistory(ctx, agent, current.ID)

	return ce.snapshot(agentID, current.ID)
}

// NewSession starts a fresh greeting-seeded session for the agent and makes
// it the active one.
func (ce *ChatEngine) NewSession(agentID string) (types.ChatSession, error) {
	agent, ok := catalog.Get(agentID)
	if !ok {
		return types.ChatSession{}, types.ErrAgentNotFound
	}

	ce.mu.Lock()
	ce.ensureLoadedLocked(agentID)
	sess := ce.newSessionLocked(agent)
	ce.active[agentID] = sess.ID
	ce.mu.Unlock()

	return ce.snapshot(agentID, sess.ID)
}

// Sessions lists an agent's sessions, most recently active first.
func (ce *ChatEngine) Sessions(agentID string) []types.ChatSession {
	ce.mu.Lock()
	defer ce.mu.Unlock()
	ce.ensureLoadedLocked(agentID)

	sorted := ce.sortedLocked(agentID)
	out := make([]types.ChatSession, 0, len(sorted))
	for _, sess := range sorted {
		out = append(out, *sess)
	}
	return out
}

// Switch makes another of the agent's sessions active. Other sessions are
// left untouched.
func (ce *ChatEngine) Switch(agentID, sessionID string) (types.ChatSession, error) {
	ce.mu.Lock()
	ce.ensureLoadedLocked(agentID)
	sess := ce.findLocked(agentID, sessionID)
	if sess == nil {
		ce.mu.Unlock()
		return types.ChatSession{}, types.ErrSessionNotFound
	}
	ce.active[agentID] = sessionID
	ce.mu.Unlock()

	return ce.snapshot(agentID, sessionID)
}

// Active returns the agent's active session.
func (ce *ChatEngine) Active(agentID string) (types.ChatSession, bool) {
	ce.mu.Lock()
	defer ce.mu.Unlock()
	id, ok := ce.active[agentID]
	if !ok {
		return types.ChatSession{}, false
	}
	sess := ce.findLocked(agentID, id)
	if sess == nil {
		return types.ChatSession{}, false
	}
	return *sess, true
}

// Send performs the optimistic half of a message exchange: one atomic append
// of the user message (status sending) and an agent placeholder. The caller
// resolves the receipt, usually from a background goroutine.
//
// Empty input returns ErrEmptyMessage; an unconfigured agent that requires
// configuration returns ErrNotConfigured.
func (ce *ChatEngine) Send(agentID, text string) (SendReceipt, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return SendReceipt{}, types.ErrEmptyMessage
	}

	agent, ok := catalog.Get(agentID)
	if !ok {
		return SendReceipt{}, types.ErrAgentNotFound
	}
	if agent.RequiresConfig {
		if _, configured := ce.cfg.Lookup(agentID); !configured {
			ce.notify.Toast("Agent not configured", "Please configure "+agent.Name+" before chatting", true)
			return SendReceipt{}, types.ErrNotConfigured
		}
	}

	ce.mu.Lock()
	defer ce.mu.Unlock()
	ce.ensureLoadedLocked(agentID)

	sessID, ok := ce.active[agentID]
	if !ok {
		sess := ce.newSessionLocked(agent)
		ce.active[agentID] = sess.ID
		sessID = sess.ID
	}
	sess := ce.findLocked(agentID, sessID)
	if sess == nil {
		return SendReceipt{}, types.ErrSessionNotFound
	}

	now := time.Now().UTC()
	userMsg := types.ChatMessage{
		ID:        utils.NewID("msg"),
		Sender:    types.SenderUser,
		Content:   text,
		Timestamp: now,
		Status:    types.StatusSending,
	}
	placeholder := types.ChatMessage{
		ID:        utils.NewID("pending"),
		Sender:    types.SenderAgent,
		Content:   pendingMarker,
		Timestamp: now,
		Pending:   true,
	}
	sess.Messages = append(sess.Messages, userMsg, placeholder)
	sess.LastActivity = now
	if sess.Title == "" {
		sess.Title = deriveTitle(text)
	}
	ce.persistLocked(agentID)

	return SendReceipt{
		SessionID:     sessID,
		AgentID:       agentID,
		UserMessageID: userMsg.ID,
		PlaceholderID: placeholder.ID,
		Text:          text,
	}, nil
}

// Resolve produces the agent's reply for a receipt: a remote call for
// authenticated sessions, a deterministic simulated response for demo
// sessions. Exactly one terminal message replaces the placeholder, on both
// the success and the failure path.
func (ce *ChatEngine) Resolve(ctx context.Context, receipt SendReceipt) (types.ChatSession, error) {
	token := ce.auth.Token()
	config, _ := ce.cfg.Lookup(receipt.AgentID)

	var content string
	var err error
	if token == "" || token == types.DemoToken {
		content = ce.simulate(ctx, receipt, config)
	} else {
		var reply api.ChatReply
		reply, err = ce.client.SendChat(ctx, token, receipt.AgentID, receipt.Text, config.Values)
		content = reply.Response
	}

	if err != nil {
		ce.logger.Errorf("chat dispatch failed for %s: %v", receipt.AgentID, err)
		ce.commit(receipt, sendFailedMessage, types.StatusError)
		ce.notify.Toast("Failed to send message", "Please try again.", true)
		return ce.snapshot(receipt.AgentID, receipt.SessionID)
	}

	ce.commit(receipt, content, types.StatusSent)
	return ce.snapshot(receipt.AgentID, receipt.SessionID)
}

// simulate waits the configured delay and builds the demo template reply. A
// configured airflow agent echoes its connection settings, matching the
// backend's demo behavior.
func (ce *ChatEngine) simulate(ctx context.Context, receipt SendReceipt, config types.AgentConfig) string {
	ce.mu.Lock()
	delay := ce.simDelay
	ce.mu.Unlock()
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
		}
	}

	if receipt.AgentID == "airflow" && config.Values != nil {
		return fmt.Sprintf("Using Airflow at %s with username %s. Processing your request: %q",
			config.Values["url"], config.Values["username"], receipt.Text)
	}
	return fmt.Sprintf("Demo response for %q from the %s agent.", receipt.Text, receipt.AgentID)
}

// commit replaces the placeholder in place and finalizes the user message
// status. Missing placeholders (already resolved, or the session was cleared)
// are a no-op, which keeps resolution exactly-once.
func (ce *ChatEngine) commit(receipt SendReceipt, content string, status types.MessageStatus) {
	ce.mu.Lock()
	defer ce.mu.Unlock()

	sess := ce.findLocked(receipt.AgentID, receipt.SessionID)
	if sess == nil {
		return
	}

	now := time.Now().UTC()
	for i := range sess.Messages {
		msg := &sess.Messages[i]
		switch msg.ID {
		case receipt.PlaceholderID:
			if !msg.Pending {
				return
			}
			msg.Pending = false
			msg.Content = content
			msg.Timestamp = now
		case receipt.UserMessageID:
			msg.Status = status
		}
	}
	sess.LastActivity = now
	ce.persistLocked(receipt.AgentID)
}

// mergeHistory loads remote exchanges into the session. Each history row
// splits into a user message and an agent message, interleaved by timestamp.
func (ce *ChatEngine) mergeHistory(ctx context.Context, agent types.Agent, sessionID string) {
	token := ce.auth.Token()
	if token == "" || token == types.DemoToken {
		return
	}

	entries, err := ce.client.History(ctx, token, agent.ID)
	if err != nil {
		ce.logger.Warnf("failed to fetch chat history for %s: %v", agent.ID, err)
		return
	}
	if len(entries) == 0 {
		return
	}

	messages := make([]types.ChatMessage, 0, len(entries)*2)
	for _, entry := range entries {
		messages = append(messages,
			types.ChatMessage{
				ID:        entry.ID,
				Sender:    types.SenderUser,
				Content:   entry.Message,
				Timestamp: entry.Timestamp,
				Status:    types.StatusSent,
			},
			types.ChatMessage{
				ID:        "response-" + entry.ID,
				Sender:    types.SenderAgent,
				Content:   entry.Response,
				Timestamp: entry.Timestamp,
			},
		)
	}
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].Timestamp.Before(messages[j].Timestamp)
	})

	ce.mu.Lock()
	defer ce.mu.Unlock()
	sess := ce.findLocked(agent.ID, sessionID)
	if sess == nil {
		return
	}
	sess.Messages = messages
	for _, msg := range messages {
		if msg.Sender == types.SenderUser {
			sess.Title = deriveTitle(msg.Content)
			break
		}
	}
	sess.LastActivity = messages[len(messages)-1].Timestamp
	ce.persistLocked(agent.ID)
}

func (ce *ChatEngine) newSessionLocked(agent types.Agent) *types.ChatSession {
	now := time.Now().UTC()
	sess := &types.ChatSession{
		ID:      utils.NewID("sess"),
		AgentID: agent.ID,
		Messages: []types.ChatMessage{{
			ID:        utils.NewID("msg"),
			Sender:    types.SenderAgent,
			Content:   fmt.Sprintf("Hello! I'm the %s agent. How can I assist you today?", agent.Name),
			Timestamp: now,
		}},
		LastActivity: now,
	}
	ce.sessions[agent.ID] = append(ce.sessions[agent.ID], sess)
	ce.persistLocked(agent.ID)
	return sess
}

func (ce *ChatEngine) ensureLoadedLocked(agentID string) {
	if ce.loaded[agentID] {
		return
	}
	ce.loaded[agentID] = true

	var stored []types.ChatSession
	if !store.GetJSON(ce.local, store.ChatSessionsKey(agentID), &stored) {
		return
	}
	for i := range stored {
		sess := stored[i]
		// A crash mid-send can persist a pending placeholder; finalize it.
		for j := range sess.Messages {
			if sess.Messages[j].Pending {
				sess.Messages[j].Pending = false
				sess.Messages[j].Content = sendFailedMessage
			}
			if sess.Messages[j].Status == types.StatusSending {
				sess.Messages[j].Status = types.StatusError
			}
		}
		ce.sessions[agentID] = append(ce.sessions[agentID], &sess)
	}
}

func (ce *ChatEngine) sortedLocked(agentID string) []*types.ChatSession {
	sorted := make([]*types.ChatSession, len(ce.sessions[agentID]))
	copy(sorted, ce.sessions[agentID])
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].LastActivity.After(sorted[j].LastActivity)
	})
	return sorted
}

func (ce *ChatEngine) findLocked(agentID, sessionID string) *types.ChatSession {
	for _, sess := range ce.sessions[agentID] {
		if sess.ID == sessionID {
			return sess
		}
	}
	return nil
}

func (ce *ChatEngine) persistLocked(agentID string) {
	list := make([]types.ChatSession, 0, len(ce.sessions[agentID]))
	for _, sess := range ce.sessions[agentID] {
		list = append(list, *sess)
	}
	if err := store.SetJSON(ce.local, store.ChatSessionsKey(agentID), list); err != nil {
		ce.logger.Warnf("failed to persist sessions for %s: %v", agentID, err)
	}
}

func (ce *ChatEngine) snapshot(agentID, sessionID string) (types.ChatSession, error) {
	ce.mu.Lock()
	defer ce.mu.Unlock()
	sess := ce.findLocked(agentID, sessionID)
	if sess == nil {
		return types.ChatSession{}, types.ErrSessionNotFound
	}
	return *sess, nil
}

func deriveTitle(text string) string {
	text = strings.TrimSpace(strings.ReplaceAll(text, "\n", " "))
	runes := []rune(text)
	if len(runes) <= titleLimit {
		return text
	}
	return string(runes[:titleLimit]) + "…"
}
