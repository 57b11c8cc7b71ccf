package hub

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agenthub/internal/store"
	"agenthub/internal/types"
	"agenthub/internal/utils"
)

func newTestApp(local *store.MemStore) *App {
	cfg := DefaultConfig()
	cfg.API.BaseURL = "http://127.0.0.1:0"
	return NewApp(cfg, local, store.NewMemStore(), utils.NewLoggerTo(io.Discard, "debug"))
}

func TestFirstRunOnlyOnce(t *testing.T) {
	local := store.NewMemStore()
	app := newTestApp(local)
	assert.True(t, app.FirstRun())
	assert.False(t, app.FirstRun())

	// The flag is durable, not per process.
	restarted := newTestApp(local)
	assert.False(t, restarted.FirstRun())
}

func TestStartWelcomesRestoredUser(t *testing.T) {
	local := store.NewMemStore()
	require.NoError(t, store.SetJSON(local, store.KeyUser, types.User{ID: "1", Name: "Regular User"}))
	require.NoError(t, store.SetJSON(local, store.KeyToken, types.DemoToken))

	app := newTestApp(local)
	app.Start(context.Background())
	app.Start(context.Background())

	welcomes := 0
	for _, n := range app.Notifs.List() {
		if n.Title == "Welcome back" {
			welcomes++
		}
	}
	assert.Equal(t, 1, welcomes)
}

func TestLoginTriggersWelcome(t *testing.T) {
	app := newTestApp(store.NewMemStore())
	app.Auth.LoginDemo()

	// The welcome flows through the auth event watcher goroutine.
	require.Eventually(t, func() bool {
		for _, n := range app.Notifs.List() {
			if n.Title == "Welcome back" {
				return true
			}
		}
		return false
	}, time.Second, 10*time.Millisecond)

	app.Auth.Logout()
	app.Auth.LoginDemo()
	time.Sleep(50 * time.Millisecond)

	welcomes := 0
	for _, n := range app.Notifs.List() {
		if n.Title == "Welcome back" {
			welcomes++
		}
	}
	assert.Equal(t, 1, welcomes)
}
