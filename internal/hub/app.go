package hub

import (
	"context"

	"agenthub/internal/api"
	"agenthub/internal/store"
	"agenthub/internal/types"
	"agenthub/internal/utils"
)

// App is the composition root: it wires the store, the API client and the
// services, and owns the small cross-service lifecycle rules (welcome
// notification, first-run tour). Services are passed explicitly; there are
// no package-level singletons.
type App struct {
	Config   Config
	Logger   *utils.Logger
	Local    store.Store
	Session  store.Store
	Client   *api.Client
	Auth     *AuthManager
	Notifs   *NotificationsManager
	Configs  *ConfigFlow
	Chat     *ChatEngine
	Settings *SettingsManager
}

// NewApp builds the service graph on top of the given stores. The session
// store holds state scoped to this process (welcome-shown flags); the local
// store holds everything durable.
func NewApp(cfg Config, local, session store.Store, logger *utils.Logger) *App {
	client := api.NewClient(cfg.API.BaseURL)
	notifs := NewNotificationsManager(local, logger)
	auth := NewAuthManager(local, client, notifs, logger)
	configs := NewConfigFlow(local, auth, notifs, logger)
	chat := NewChatEngine(local, client, auth, configs, notifs, logger)
	settings := NewSettingsManager(local, logger)

	app := &App{
		Config:   cfg,
		Logger:   logger,
		Local:    local,
		Session:  session,
		Client:   client,
		Auth:     auth,
		Notifs:   notifs,
		Configs:  configs,
		Chat:     chat,
		Settings: settings,
	}

	go app.watchAuth(auth.Subscribe())
	return app
}

// Start validates a restored token in the background; rendering never blocks
// on it. If a user was restored, the welcome flow runs as if they had just
// logged in.
func (a *App) Start(ctx context.Context) {
	if user, ok := a.Auth.User(); ok {
		a.welcome(user)
	}
	go a.Auth.ValidateToken(ctx)
}

// FirstRun reports whether the onboarding tour should be offered, and marks
// it seen so it is offered only once.
func (a *App) FirstRun() bool {
	if a.Settings.TourSeen() {
		return false
	}
	a.Settings.MarkTourSeen()
	return true
}

func (a *App) watchAuth(events <-chan types.AuthEvent) {
	for event := range events {
		if event.Kind == types.AuthLoggedIn {
			a.welcome(event.User)
		}
	}
}

// welcome posts the once-per-process welcome notification for a user. The
// seen flag lives in the session store, so a fresh start greets again.
func (a *App) welcome(user types.User) {
	key := store.WelcomeShownKey(user.ID)
	if _, shown := a.Session.Get(key); shown {
		return
	}
	_ = a.Session.Set(key, []byte("1"))
	a.Notifs.Add("Welcome back", "Hello "+user.Name+", your agents are ready.", types.CategorySystemAlert)
}
