package store

// Key builders for the state slices each service owns. Per-user values embed
// the user id so accounts on the same machine cannot collide.

const (
	KeyUser       = "user"
	KeyToken      = "token"
	KeyNotifs     = "notifications"
	KeyCategories = "notification_categories"
	KeySettings   = "settings"
)

func AgentConfigKey(userID, agentID string) string {
	return "agent_config_" + userID + "_" + agentID
}

func ChatSessionsKey(agentID string) string {
	return "chat_sessions_" + agentID
}

func WelcomeShownKey(userID string) string {
	return "welcome_shown_" + userID
}
