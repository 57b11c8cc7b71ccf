package hub

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agenthub/internal/store"
	"agenthub/internal/types"
	"agenthub/internal/utils"
)

func newNotifs(local *store.MemStore) *NotificationsManager {
	return NewNotificationsManager(local, utils.NewLoggerTo(io.Discard, "debug"))
}

func TestAddPrependsNewest(t *testing.T) {
	nm := newNotifs(store.NewMemStore())
	nm.Add("first", "", types.CategorySystemAlert)
	nm.Add("second", "", types.CategorySystemAlert)

	list := nm.List()
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].Title)
	assert.Equal(t, "first", list[1].Title)
}

func TestDisabledCategoryDropsSilently(t *testing.T) {
	nm := newNotifs(store.NewMemStore())
	nm.ToggleCategory(types.CategoryReminder)
	require.False(t, nm.CategoryEnabled(types.CategoryReminder))

	nm.Add("skipped", "", types.CategoryReminder)
	assert.Empty(t, nm.List())

	nm.Add("kept", "", types.CategorySystemAlert)
	assert.Len(t, nm.List(), 1)
}

func TestToggleDoesNotRemoveExisting(t *testing.T) {
	nm := newNotifs(store.NewMemStore())
	nm.Add("before", "", types.CategoryReminder)
	nm.ToggleCategory(types.CategoryReminder)

	assert.Len(t, nm.List(), 1)
	assert.Len(t, nm.ListByCategory(types.CategoryReminder), 1)
}

func TestUnreadCountDerived(t *testing.T) {
	nm := newNotifs(store.NewMemStore())
	nm.Add("a", "", types.CategorySystemAlert)
	nm.Add("b", "", types.CategorySystemAlert)
	assert.Equal(t, 2, nm.UnreadCount())

	nm.MarkRead(nm.List()[0].ID)
	assert.Equal(t, 1, nm.UnreadCount())

	// Marking the same one twice changes nothing.
	nm.MarkRead(nm.List()[0].ID)
	assert.Equal(t, 1, nm.UnreadCount())

	nm.MarkAllRead()
	assert.Equal(t, 0, nm.UnreadCount())
}

func TestMarkReadUnknownIDIsNoop(t *testing.T) {
	nm := newNotifs(store.NewMemStore())
	nm.Add("a", "", types.CategorySystemAlert)
	nm.MarkRead("notif-does-not-exist")
	assert.Equal(t, 1, nm.UnreadCount())
}

func TestClear(t *testing.T) {
	nm := newNotifs(store.NewMemStore())
	nm.Add("a", "", types.CategorySystemAlert)
	nm.Add("b", "", types.CategorySystemAlert)

	nm.Clear(nm.List()[0].ID)
	list := nm.List()
	require.Len(t, list, 1)
	assert.Equal(t, "a", list[0].Title)

	nm.ClearAll()
	assert.Empty(t, nm.List())
}

func TestPersistenceAcrossRestart(t *testing.T) {
	local := store.NewMemStore()
	first := newNotifs(local)
	first.Add("kept", "body", types.CategoryAgentUpdate)
	first.ToggleCategory(types.CategoryReminder)

	second := newNotifs(local)
	list := second.List()
	require.Len(t, list, 1)
	assert.Equal(t, "kept", list[0].Title)
	assert.False(t, second.CategoryEnabled(types.CategoryReminder))
	assert.True(t, second.CategoryEnabled(types.CategoryAgentUpdate))
	assert.True(t, second.CategoryEnabled(types.CategorySystemAlert))
}

func TestToastStream(t *testing.T) {
	nm := newNotifs(store.NewMemStore())
	nm.Toast("hello", "world", true)

	toast := <-nm.Toasts()
	assert.Equal(t, "hello", toast.Title)
	assert.True(t, toast.IsError)

	// Add emits a toast alongside the stored notification.
	nm.Add("stored", "msg", types.CategorySystemAlert)
	toast = <-nm.Toasts()
	assert.Equal(t, "stored", toast.Title)
	assert.False(t, toast.IsError)
}
