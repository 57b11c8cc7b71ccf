package hub

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agenthub/internal/catalog"
	"agenthub/internal/types"
)

func TestConfigFlowRequiresLogin(t *testing.T) {
	h := newTestHub("http://127.0.0.1:0")
	agent, _ := catalog.Get("airflow")

	_, err := h.cfg.Open(agent)
	assert.ErrorIs(t, err, types.ErrNotAuthenticated)
	assert.ErrorIs(t, h.cfg.Save(agent, nil), types.ErrNotAuthenticated)
}

func TestSaveRejectsMissingRequired(t *testing.T) {
	h := newTestHub("http://127.0.0.1:0")
	h.auth.LoginDemo()
	agent, _ := catalog.Get("airflow")

	err := h.cfg.Save(agent, map[string]string{
		"url":      "https://airflow.example.com",
		"username": "  ", // whitespace counts as empty
	})

	var vErr *types.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.ElementsMatch(t, []string{"Username", "Password"}, vErr.MissingFields)

	// A failed validation persists nothing.
	_, configured := h.cfg.Lookup("airflow")
	assert.False(t, configured)
}

func TestSaveAndOpenRoundTrip(t *testing.T) {
	h := newTestHub("http://127.0.0.1:0")
	h.auth.LoginDemo()
	agent, _ := catalog.Get("airflow")

	draft := map[string]string{
		"url":      "https://airflow.example.com",
		"username": "admin",
		"password": "hunter2",
	}
	require.NoError(t, h.cfg.Save(agent, draft))

	saved, configured := h.cfg.Lookup("airflow")
	require.True(t, configured)
	assert.Equal(t, "admin", saved.Values["username"])

	reopened, err := h.cfg.Open(agent)
	require.NoError(t, err)
	assert.Equal(t, draft, reopened)
}

func TestSaveOptionalFieldsMayBeEmpty(t *testing.T) {
	h := newTestHub("http://127.0.0.1:0")
	h.auth.LoginDemo()
	agent, _ := catalog.Get("langchain")

	require.NoError(t, h.cfg.Save(agent, map[string]string{"apiKey": "sk-123"}))
}

func TestSaveRecordsNotification(t *testing.T) {
	h := newTestHub("http://127.0.0.1:0")
	h.auth.LoginDemo()
	agent, _ := catalog.Get("github")

	require.NoError(t, h.cfg.Save(agent, map[string]string{"token": "ghp_x"}))

	list := h.notifs.List()
	require.NotEmpty(t, list)
	assert.Equal(t, "Agent configured", list[0].Title)
	assert.Equal(t, types.CategoryAgentUpdate, list[0].Category)
}

func TestConfigIsPerUser(t *testing.T) {
	h := newTestHub("http://127.0.0.1:0")
	h.auth.LoginDemo()
	agent, _ := catalog.Get("github")
	require.NoError(t, h.cfg.Save(agent, map[string]string{"token": "ghp_x"}))

	// Another account on the same machine sees no configuration.
	h.auth.Logout()
	_, err := h.auth.Login(context.Background(), "user@example.com", "password")
	require.NoError(t, err)

	_, configured := h.cfg.Lookup("github")
	assert.False(t, configured)
}
