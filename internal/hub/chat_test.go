package hub

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agenthub/internal/catalog"
	"agenthub/internal/store"
	"agenthub/internal/types"
)

func TestOpenSeedsGreeting(t *testing.T) {
	h := newTestHub("http://127.0.0.1:0")
	h.auth.LoginDemo()

	sess, err := h.chat.Open(context.Background(), "custom")
	require.NoError(t, err)
	require.Len(t, sess.Messages, 1)
	assert.Equal(t, types.SenderAgent, sess.Messages[0].Sender)
	assert.Equal(t, "Hello! I'm the Custom Agent agent. How can I assist you today?", sess.Messages[0].Content)

	active, ok := h.chat.Active("custom")
	require.True(t, ok)
	assert.Equal(t, sess.ID, active.ID)
}

func TestOpenUnknownAgent(t *testing.T) {
	h := newTestHub("http://127.0.0.1:0")
	_, err := h.chat.Open(context.Background(), "no-such-agent")
	assert.ErrorIs(t, err, types.ErrAgentNotFound)
}

func TestOpenResumesMostRecentSession(t *testing.T) {
	h := newTestHub("http://127.0.0.1:0")
	h.auth.LoginDemo()

	first, err := h.chat.Open(context.Background(), "custom")
	require.NoError(t, err)

	again, err := h.chat.Open(context.Background(), "custom")
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
}

func TestSendRejectsEmpty(t *testing.T) {
	h := newTestHub("http://127.0.0.1:0")
	h.auth.LoginDemo()

	_, err := h.chat.Send("custom", "   \n  ")
	assert.ErrorIs(t, err, types.ErrEmptyMessage)
}

func TestSendRejectsUnconfiguredAgent(t *testing.T) {
	h := newTestHub("http://127.0.0.1:0")
	h.auth.LoginDemo()

	<-h.notifs.Toasts() // login toast

	_, err := h.chat.Send("airflow", "list my dags")
	assert.ErrorIs(t, err, types.ErrNotConfigured)

	toast := <-h.notifs.Toasts()
	assert.True(t, toast.IsError)
}

func TestSendAppendsOptimisticPair(t *testing.T) {
	h := newTestHub("http://127.0.0.1:0")
	h.auth.LoginDemo()
	_, err := h.chat.Open(context.Background(), "custom")
	require.NoError(t, err)

	receipt, err := h.chat.Send("custom", "hello there")
	require.NoError(t, err)

	sess, ok := h.chat.Active("custom")
	require.True(t, ok)
	require.Len(t, sess.Messages, 3)

	user := sess.Messages[1]
	assert.Equal(t, types.SenderUser, user.Sender)
	assert.Equal(t, "hello there", user.Content)
	assert.Equal(t, types.StatusSending, user.Status)
	assert.Equal(t, receipt.UserMessageID, user.ID)

	placeholder := sess.Messages[2]
	assert.Equal(t, types.SenderAgent, placeholder.Sender)
	assert.True(t, placeholder.Pending)
	assert.Equal(t, receipt.PlaceholderID, placeholder.ID)
}

func TestResolveSimulated(t *testing.T) {
	h := newTestHub("http://127.0.0.1:0")
	h.auth.LoginDemo()
	_, err := h.chat.Open(context.Background(), "custom")
	require.NoError(t, err)

	receipt, err := h.chat.Send("custom", "hello there")
	require.NoError(t, err)

	sess, err := h.chat.Resolve(context.Background(), receipt)
	require.NoError(t, err)
	require.Len(t, sess.Messages, 3)

	assert.Equal(t, types.StatusSent, sess.Messages[1].Status)
	reply := sess.Messages[2]
	assert.False(t, reply.Pending)
	assert.Equal(t, `Demo response for "hello there" from the custom agent.`, reply.Content)
}

func TestResolveAirflowEchoesConfig(t *testing.T) {
	h := newTestHub("http://127.0.0.1:0")
	h.auth.LoginDemo()

	agent, ok := catalog.Get("airflow")
	require.True(t, ok)
	require.NoError(t, h.cfg.Save(agent, map[string]string{
		"url":      "https://airflow.example.com",
		"username": "admin",
		"password": "hunter2",
	}))

	receipt, err := h.chat.Send("airflow", "run the dag")
	require.NoError(t, err)
	sess, err := h.chat.Resolve(context.Background(), receipt)
	require.NoError(t, err)

	reply := sess.Messages[len(sess.Messages)-1]
	assert.Equal(t, `Using Airflow at https://airflow.example.com with username admin. Processing your request: "run the dag"`, reply.Content)
}

func TestOverlappingSendsPreserveOrder(t *testing.T) {
	h := newTestHub("http://127.0.0.1:0")
	h.auth.LoginDemo()
	_, err := h.chat.Open(context.Background(), "custom")
	require.NoError(t, err)

	first, err := h.chat.Send("custom", "first question")
	require.NoError(t, err)
	second, err := h.chat.Send("custom", "second question")
	require.NoError(t, err)

	// Replies land out of order; the transcript must not.
	_, err = h.chat.Resolve(context.Background(), second)
	require.NoError(t, err)
	sess, err := h.chat.Resolve(context.Background(), first)
	require.NoError(t, err)

	require.Len(t, sess.Messages, 5)
	assert.Equal(t, "first question", sess.Messages[1].Content)
	assert.Equal(t, `Demo response for "first question" from the custom agent.`, sess.Messages[2].Content)
	assert.Equal(t, "second question", sess.Messages[3].Content)
	assert.Equal(t, `Demo response for "second question" from the custom agent.`, sess.Messages[4].Content)
	for _, msg := range sess.Messages[1:] {
		assert.False(t, msg.Pending)
	}
}

func TestResolveRemote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/chat" {
			json.NewEncoder(w).Encode(map[string]string{"id": "r1", "response": "backend says hi"})
			return
		}
		w.Write([]byte("[]"))
	}))
	defer srv.Close()

	local := store.NewMemStore()
	require.NoError(t, store.SetJSON(local, store.KeyUser, types.User{ID: "42"}))
	require.NoError(t, store.SetJSON(local, store.KeyToken, "real-token"))
	h := newTestHubOn(local, srv.URL)

	receipt, err := h.chat.Send("custom", "hello backend")
	require.NoError(t, err)
	sess, err := h.chat.Resolve(context.Background(), receipt)
	require.NoError(t, err)

	reply := sess.Messages[len(sess.Messages)-1]
	assert.Equal(t, "backend says hi", reply.Content)
	assert.Equal(t, types.StatusSent, sess.Messages[len(sess.Messages)-2].Status)
}

func TestResolveRemoteFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	local := store.NewMemStore()
	require.NoError(t, store.SetJSON(local, store.KeyUser, types.User{ID: "42"}))
	require.NoError(t, store.SetJSON(local, store.KeyToken, "real-token"))
	h := newTestHubOn(local, srv.URL)

	receipt, err := h.chat.Send("custom", "hello backend")
	require.NoError(t, err)
	sess, err := h.chat.Resolve(context.Background(), receipt)
	require.NoError(t, err)

	reply := sess.Messages[len(sess.Messages)-1]
	assert.False(t, reply.Pending)
	assert.Equal(t, sendFailedMessage, reply.Content)
	assert.Equal(t, types.StatusError, sess.Messages[len(sess.Messages)-2].Status)
}

func TestTitleDerivation(t *testing.T) {
	h := newTestHub("http://127.0.0.1:0")
	h.auth.LoginDemo()

	long := strings.Repeat("a", 40)
	_, err := h.chat.Send("custom", long)
	require.NoError(t, err)

	sess, ok := h.chat.Active("custom")
	require.True(t, ok)
	assert.Equal(t, strings.Repeat("a", 30)+"…", sess.Title)

	// Later sends never retitle.
	_, err = h.chat.Send("custom", "something else")
	require.NoError(t, err)
	sess, _ = h.chat.Active("custom")
	assert.Equal(t, strings.Repeat("a", 30)+"…", sess.Title)
}

func TestCrashRecoveryFinalizesPending(t *testing.T) {
	local := store.NewMemStore()
	crashed := []types.ChatSession{{
		ID:      "sess-crashed",
		AgentID: "custom",
		Title:   "interrupted",
		Messages: []types.ChatMessage{
			{ID: "m1", Sender: types.SenderUser, Content: "hi", Status: types.StatusSending},
			{ID: "m2", Sender: types.SenderAgent, Content: "…", Pending: true},
		},
		LastActivity: time.Now().UTC(),
	}}
	require.NoError(t, store.SetJSON(local, store.ChatSessionsKey("custom"), crashed))

	h := newTestHubOn(local, "http://127.0.0.1:0")
	h.auth.LoginDemo()

	sess, err := h.chat.Open(context.Background(), "custom")
	require.NoError(t, err)
	require.Equal(t, "sess-crashed", sess.ID)
	assert.Equal(t, types.StatusError, sess.Messages[0].Status)
	assert.False(t, sess.Messages[1].Pending)
	assert.Equal(t, sendFailedMessage, sess.Messages[1].Content)
}

func TestSessionsAndSwitch(t *testing.T) {
	h := newTestHub("http://127.0.0.1:0")
	h.auth.LoginDemo()

	first, err := h.chat.Open(context.Background(), "custom")
	require.NoError(t, err)
	receipt, err := h.chat.Send("custom", "in the first session")
	require.NoError(t, err)
	_, err = h.chat.Resolve(context.Background(), receipt)
	require.NoError(t, err)

	fresh, err := h.chat.NewSession("custom")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, fresh.ID)

	active, ok := h.chat.Active("custom")
	require.True(t, ok)
	assert.Equal(t, fresh.ID, active.ID)

	sessions := h.chat.Sessions("custom")
	require.Len(t, sessions, 2)
	assert.Equal(t, fresh.ID, sessions[0].ID)

	back, err := h.chat.Switch("custom", first.ID)
	require.NoError(t, err)
	assert.Equal(t, "in the first session", back.Messages[1].Content)

	_, err = h.chat.Switch("custom", "sess-unknown")
	assert.ErrorIs(t, err, types.ErrSessionNotFound)
}

func TestPersistenceAcrossRestartChat(t *testing.T) {
	local := store.NewMemStore()
	h := newTestHubOn(local, "http://127.0.0.1:0")
	h.auth.LoginDemo()
	receipt, err := h.chat.Send("custom", "remember me")
	require.NoError(t, err)
	_, err = h.chat.Resolve(context.Background(), receipt)
	require.NoError(t, err)

	restarted := newTestHubOn(local, "http://127.0.0.1:0")
	sess, err := restarted.chat.Open(context.Background(), "custom")
	require.NoError(t, err)
	assert.Equal(t, "remember me", sess.Title)
	require.Len(t, sess.Messages, 3)
	assert.Equal(t, "remember me", sess.Messages[1].Content)
}

func TestOpenMergesRemoteHistory(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chat/history", r.URL.Path)
		json.NewEncoder(w).Encode([]map[string]any{
			{"id": "h2", "message": "and then?", "response": "then that", "timestamp": base.Add(time.Minute)},
			{"id": "h1", "message": "what happened", "response": "this", "timestamp": base},
		})
	}))
	defer srv.Close()

	local := store.NewMemStore()
	require.NoError(t, store.SetJSON(local, store.KeyUser, types.User{ID: "42"}))
	require.NoError(t, store.SetJSON(local, store.KeyToken, "real-token"))
	h := newTestHubOn(local, srv.URL)

	sess, err := h.chat.Open(context.Background(), "custom")
	require.NoError(t, err)
	require.Len(t, sess.Messages, 4)
	assert.Equal(t, "what happened", sess.Messages[0].Content)
	assert.Equal(t, "this", sess.Messages[1].Content)
	assert.Equal(t, "and then?", sess.Messages[2].Content)
	assert.Equal(t, "then that", sess.Messages[3].Content)
	assert.Equal(t, "what happened", sess.Title)
}
