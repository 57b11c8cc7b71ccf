package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/x/ansi"

	"agenthub/internal/types"
)

type agentItem struct {
	agent      types.Agent
	configured bool
}

func (i agentItem) Title() string {
	badge := "not configured"
	if i.configured {
		badge = "configured"
	}
	if !i.agent.RequiresConfig {
		badge = "ready"
	}
	return fmt.Sprintf("%s %s (%s)", i.agent.Icon, i.agent.Name, badge)
}
func (i agentItem) Description() string { return i.agent.Description }
func (i agentItem) FilterValue() string { return i.agent.ID + " " + i.agent.Name }

func buildAgentItems(agents []types.Agent, configured map[string]bool) []list.Item {
	items := make([]list.Item, 0, len(agents))
	for _, agent := range agents {
		items = append(items, agentItem{agent: agent, configured: configured[agent.ID]})
	}
	return items
}

type notifItem struct {
	data types.Notification
}

func (i notifItem) Title() string {
	marker := "●"
	if i.data.Read {
		marker = " "
	}
	return fmt.Sprintf("%s %s", marker, i.data.Title)
}
func (i notifItem) Description() string {
	return fmt.Sprintf("%s · %s · %s", i.data.Category, i.data.Timestamp.Local().Format(time.Stamp), previewText(i.data.Message, 60))
}
func (i notifItem) FilterValue() string { return i.data.Title + " " + i.data.Message }

func buildNotifItems(in []types.Notification) []list.Item {
	items := make([]list.Item, 0, len(in))
	for _, n := range in {
		items = append(items, notifItem{data: n})
	}
	return items
}

type sessionItem struct {
	data types.ChatSession
}

func (i sessionItem) Title() string {
	title := i.data.Title
	if title == "" {
		title = "New conversation"
	}
	return title
}
func (i sessionItem) Description() string {
	return fmt.Sprintf("%d messages · %s", len(i.data.Messages), i.data.LastActivity.Local().Format(time.Stamp))
}
func (i sessionItem) FilterValue() string { return i.data.Title }

func buildSessionItems(in []types.ChatSession) []list.Item {
	items := make([]list.Item, 0, len(in))
	for _, sess := range in {
		items = append(items, sessionItem{data: sess})
	}
	return items
}

func previewText(text string, limit int) string {
	text = ansi.Strip(strings.ReplaceAll(strings.TrimSpace(text), "\n", " "))
	runes := []rune(text)
	if limit <= 0 || len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
