package hub

import (
	"io"

	"agenthub/internal/api"
	"agenthub/internal/store"
	"agenthub/internal/utils"
)

// testHub wires the service graph on a MemStore, with the simulated responder
// delay zeroed so chat tests run instantly.
type testHub struct {
	local  *store.MemStore
	client *api.Client
	notifs *NotificationsManager
	auth   *AuthManager
	cfg    *ConfigFlow
	chat   *ChatEngine
}

func newTestHub(baseURL string) *testHub {
	return newTestHubOn(store.NewMemStore(), baseURL)
}

// newTestHubOn builds the graph on an existing store, for restart scenarios.
func newTestHubOn(local *store.MemStore, baseURL string) *testHub {
	logger := utils.NewLoggerTo(io.Discard, "debug")
	client := api.NewClient(baseURL)
	notifs := NewNotificationsManager(local, logger)
	auth := NewAuthManager(local, client, notifs, logger)
	cfg := NewConfigFlow(local, auth, notifs, logger)
	chat := NewChatEngine(local, client, auth, cfg, notifs, logger)
	chat.SetSimulatedDelay(0)

	return &testHub{local: local, client: client, notifs: notifs, auth: auth, cfg: cfg, chat: chat}
}
