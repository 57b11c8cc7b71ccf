package hub

import (
	"strings"
	"sync"

	"agenthub/internal/store"
	"agenthub/internal/types"
	"agenthub/internal/utils"
)

// ConfigFlow validates and stores per-agent connection credentials, keyed by
// (user, agent). Saves are all-or-nothing: a failed validation leaves
// persisted state untouched.
type ConfigFlow struct {
	mu     sync.Mutex
	local  store.Store
	auth   *AuthManager
	notify Notifier
	logger *utils.Logger
}

func NewConfigFlow(local store.Store, auth *AuthManager, notify Notifier, logger *utils.Logger) *ConfigFlow {
	return &ConfigFlow{local: local, auth: auth, notify: notify, logger: logger}
}

// Open loads the existing configuration for (current user, agent) as an
// editable draft. An absent configuration yields an empty draft.
func (cf *ConfigFlow) Open(agent types.Agent) (map[string]string, error) {
	user, ok := cf.auth.User()
	if !ok {
		return nil, types.ErrNotAuthenticated
	}

	draft := make(map[string]string, len(agent.ConfigFields))
	var saved types.AgentConfig
	if store.GetJSON(cf.local, store.AgentConfigKey(user.ID, agent.ID), &saved) {
		for id, value := range saved.Values {
			draft[id] = value
		}
	}
	return draft, nil
}

// Save validates that every required field is non-empty, then persists the
// whole draft. Missing fields abort the save with a ValidationError listing
// their human labels.
func (cf *ConfigFlow) Save(agent types.Agent, draft map[string]string) error {
	user, ok := cf.auth.User()
	if !ok {
		return types.ErrNotAuthenticated
	}

	var missing []string
	for _, field := range agent.ConfigFields {
		if !field.Required {
			continue
		}
		if strings.TrimSpace(draft[field.ID]) == "" {
			missing = append(missing, field.Label)
		}
	}
	if len(missing) > 0 {
		return &types.ValidationError{MissingFields: missing}
	}

	values := make(map[string]string, len(draft))
	for id, value := range draft {
		values[id] = value
	}

	cf.mu.Lock()
	err := store.SetJSON(cf.local, store.AgentConfigKey(user.ID, agent.ID), types.AgentConfig{
		AgentID: agent.ID,
		Values:  values,
	})
	cf.mu.Unlock()
	if err != nil {
		return err
	}

	cf.notify.Add("Agent configured", agent.Name+" is ready to use", types.CategoryAgentUpdate)
	return nil
}

// Lookup returns the saved configuration for (current user, agent id), if
// any. Used by the chat engine to gate sending.
func (cf *ConfigFlow) Lookup(agentID string) (types.AgentConfig, bool) {
	user, ok := cf.auth.User()
	if !ok {
		return types.AgentConfig{}, false
	}
	var saved types.AgentConfig
	if !store.GetJSON(cf.local, store.AgentConfigKey(user.ID, agentID), &saved) {
		return types.AgentConfig{}, false
	}
	return saved, true
}
