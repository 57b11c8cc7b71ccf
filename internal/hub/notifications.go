package hub

import (
	"sync"
	"time"

	"agenthub/internal/store"
	"agenthub/internal/types"
	"agenthub/internal/utils"
)

// NotificationsManager owns the notification list, the enabled-category set
// and the transient toast stream. Every mutation persists the full list and
// the category set before returning.
type NotificationsManager struct {
	mu     sync.RWMutex
	local  store.Store
	logger *utils.Logger

	notifications []types.Notification
	enabled       map[types.NotificationCategory]bool

	toasts chan types.Toast
}

// NewNotificationsManager loads persisted notifications and categories.
// Timestamps come back from JSON as RFC 3339 strings and unmarshal into
// time.Time directly. All categories start enabled.
func NewNotificationsManager(local store.Store, logger *utils.Logger) *NotificationsManager {
	nm := &NotificationsManager{
		local:   local,
		logger:  logger,
		enabled: make(map[types.NotificationCategory]bool),
		toasts:  make(chan types.Toast, 32),
	}
	for _, cat := range types.Categories() {
		nm.enabled[cat] = true
	}

	var stored []types.Notification
	if store.GetJSON(local, store.KeyNotifs, &stored) {
		nm.notifications = stored
	}
	var cats []types.NotificationCategory
	if store.GetJSON(local, store.KeyCategories, &cats) {
		for cat := range nm.enabled {
			nm.enabled[cat] = false
		}
		for _, cat := range cats {
			nm.enabled[cat] = true
		}
	}
	return nm
}

// Toasts is the transient notice stream consumed by the UI. The channel is
// buffered; when nobody is listening, toasts are dropped rather than queued
// forever.
func (nm *NotificationsManager) Toasts() <-chan types.Toast {
	return nm.toasts
}

// Toast emits a transient notice without recording a notification.
func (nm *NotificationsManager) Toast(title, message string, isError bool) {
	select {
	case nm.toasts <- types.Toast{Title: title, Message: message, IsError: isError}:
	default:
	}
}

// categoryEnabled is the gating predicate for Add.
func categoryEnabled(category types.NotificationCategory, enabled map[types.NotificationCategory]bool) bool {
	return enabled[category]
}

// Add records a notification if its category is enabled, prepending it to the
// list and emitting a toast. A disabled category silently drops the
// notification; that is not an error.
func (nm *NotificationsManager) Add(title, message string, category types.NotificationCategory) {
	nm.mu.Lock()
	if !categoryEnabled(category, nm.enabled) {
		nm.mu.Unlock()
		return
	}
	n := types.Notification{
		ID:        utils.NewID("notif"),
		Title:     title,
		Message:   message,
		Timestamp: time.Now().UTC(),
		Category:  category,
	}
	nm.notifications = append([]types.Notification{n}, nm.notifications...)
	nm.persistLocked()
	nm.mu.Unlock()

	nm.Toast(title, message, false)
}

// List returns notifications most-recent-first.
func (nm *NotificationsManager) List() []types.Notification {
	nm.mu.RLock()
	defer nm.mu.RUnlock()
	out := make([]types.Notification, len(nm.notifications))
	copy(out, nm.notifications)
	return out
}

// ListByCategory filters the list for the notifications page.
func (nm *NotificationsManager) ListByCategory(category types.NotificationCategory) []types.Notification {
	nm.mu.RLock()
	defer nm.mu.RUnlock()
	var out []types.Notification
	for _, n := range nm.notifications {
		if n.Category == category {
			out = append(out, n)
		}
	}
	return out
}

// UnreadCount is always derived from the list, never stored.
func (nm *NotificationsManager) UnreadCount() int {
	nm.mu.RLock()
	defer nm.mu.RUnlock()
	count := 0
	for _, n := range nm.notifications {
		if !n.Read {
			count++
		}
	}
	return count
}

// MarkRead flags one notification as read. Idempotent; unknown ids are a
// no-op.
func (nm *NotificationsManager) MarkRead(id string) {
	nm.mu.Lock()
	defer nm.mu.Unlock()
	changed := false
	for i := range nm.notifications {
		if nm.notifications[i].ID == id && !nm.notifications[i].Read {
			nm.notifications[i].Read = true
			changed = true
		}
	}
	if changed {
		nm.persistLocked()
	}
}

// MarkAllRead flags everything as read.
func (nm *NotificationsManager) MarkAllRead() {
	nm.mu.Lock()
	defer nm.mu.Unlock()
	changed := false
	for i := range nm.notifications {
		if !nm.notifications[i].Read {
			nm.notifications[i].Read = true
			changed = true
		}
	}
	if changed {
		nm.persistLocked()
	}
}

// Clear removes one notification. Unknown ids are a no-op.
func (nm *NotificationsManager) Clear(id string) {
	nm.mu.Lock()
	defer nm.mu.Unlock()
	kept := nm.notifications[:0]
	removed := false
	for _, n := range nm.notifications {
		if n.ID == id {
			removed = true
			continue
		}
		kept = append(kept, n)
	}
	nm.notifications = kept
	if removed {
		nm.persistLocked()
	}
}

// ClearAll empties the list.
func (nm *NotificationsManager) ClearAll() {
	nm.mu.Lock()
	defer nm.mu.Unlock()
	nm.notifications = nil
	nm.persistLocked()
}

// ToggleCategory flips whether a category records new notifications.
// Disabling never removes notifications already created.
func (nm *NotificationsManager) ToggleCategory(category types.NotificationCategory) {
	nm.mu.Lock()
	defer nm.mu.Unlock()
	nm.enabled[category] = !nm.enabled[category]
	nm.persistLocked()
}

// CategoryEnabled reports the current gate for one category.
func (nm *NotificationsManager) CategoryEnabled(category types.NotificationCategory) bool {
	nm.mu.RLock()
	defer nm.mu.RUnlock()
	return categoryEnabled(category, nm.enabled)
}

func (nm *NotificationsManager) persistLocked() {
	if err := store.SetJSON(nm.local, store.KeyNotifs, nm.notifications); err != nil {
		nm.logger.Warnf("failed to persist notifications: %v", err)
	}
	cats := make([]types.NotificationCategory, 0, len(nm.enabled))
	for _, cat := range types.Categories() {
		if nm.enabled[cat] {
			cats = append(cats, cat)
		}
	}
	if err := store.SetJSON(nm.local, store.KeyCategories, cats); err != nil {
		nm.logger.Warnf("failed to persist notification categories: %v", err)
	}
}
