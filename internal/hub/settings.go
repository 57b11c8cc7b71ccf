package hub

import (
	"strings"
	"sync"

	"agenthub/internal/store"
	"agenthub/internal/utils"
)

// Settings are the small app-level preferences that survive restarts: the
// last agent the user chatted with and whether the first-run tour ran.
type Settings struct {
	LastAgent string `json:"lastAgent"`
	TourSeen  bool   `json:"tourSeen"`
}

// SettingsManager persists Settings on every change.
type SettingsManager struct {
	mu       sync.Mutex
	local    store.Store
	logger   *utils.Logger
	settings Settings
}

func NewSettingsManager(local store.Store, logger *utils.Logger) *SettingsManager {
	sm := &SettingsManager{local: local, logger: logger}
	store.GetJSON(local, store.KeySettings, &sm.settings)
	return sm
}

func (sm *SettingsManager) LastAgent() string {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.settings.LastAgent
}

func (sm *SettingsManager) UpdateLastAgent(id string) {
	id = strings.TrimSpace(id)
	if id == "" {
		return
	}
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if sm.settings.LastAgent == id {
		return
	}
	sm.settings.LastAgent = id
	sm.saveLocked()
}

// TourSeen reports whether the first-run tour has already been shown.
func (sm *SettingsManager) TourSeen() bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.settings.TourSeen
}

// MarkTourSeen records that the tour ran; subsequent starts skip it.
func (sm *SettingsManager) MarkTourSeen() {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if sm.settings.TourSeen {
		return
	}
	sm.settings.TourSeen = true
	sm.saveLocked()
}

func (sm *SettingsManager) saveLocked() {
	if err := store.SetJSON(sm.local, store.KeySettings, sm.settings); err != nil {
		sm.logger.Warnf("failed to save settings: %v", err)
	}
}
