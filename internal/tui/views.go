package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"agenthub/internal/types"
)

var tourSteps = []struct {
	title string
	body  string
}{
	{"Welcome to Agent Hub", "Chat with specialized agents for your infrastructure tools.\nPress enter to continue, esc to skip."},
	{"Pick an agent", "The dashboard lists every agent. Press enter to start chatting,\nor c to configure agents that need credentials first."},
	{"Stay in the loop", "The notifications tab collects agent and system updates.\nToggle categories with 1-3, mark things read with m."},
	{"That's it", "Press ? anywhere for the full key reference. Have fun!"},
}

func (m model) View() string {
	if m.width == 0 {
		return "loading..."
	}
	if !m.loggedIn {
		return m.loginView()
	}

	var body string
	switch {
	case m.wizard != nil:
		body = m.centered(m.wizard.view())
	case m.showTour:
		body = m.centered(m.tourView())
	case m.showSessions:
		body = m.centered(modalStyle.Render(m.sessionsList.View()))
	default:
		switch m.activeTab {
		case tabDashboard:
			body = m.agentsList.View()
		case tabChat:
			body = m.chatView()
		case tabNotifs:
			body = m.notifsView()
		case tabProfile:
			body = m.profileView()
		}
	}

	sections := []string{m.headerView(), m.tabBar(), body, m.toastLine()}
	if m.showHelp {
		sections = append(sections, m.help.FullHelpView(m.keys.FullHelp()))
	} else {
		sections = append(sections, footerStyle.Render(m.help.ShortHelpView(m.keys.ShortHelp())))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m model) loginView() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Agent Hub"))
	b.WriteString("\n\n")
	b.WriteString("Sign in to your account\n\n")
	b.WriteString(m.emailInput.View())
	b.WriteString("\n")
	b.WriteString(m.passwordInput.View())
	b.WriteString("\n\n")
	if m.loggingIn {
		b.WriteString(m.spin.View() + " signing in...")
	} else if m.loginErr != "" {
		b.WriteString(errStyle.Render(m.loginErr))
	}
	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render("enter sign in · ctrl+d demo mode · ctrl+q quit"))
	return m.centered(modalStyle.Render(b.String()))
}

func (m model) headerView() string {
	name := ""
	if user, ok := m.app.Auth.User(); ok {
		name = user.Name
		if user.IsDemo {
			name += " (demo)"
		}
	}
	left := headerStyle.Render("Agent Hub")
	right := dimStyle.Render(name)
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return " " + left + strings.Repeat(" ", gap) + right
}

func (m model) tabBar() string {
	parts := make([]string, 0, tabCount)
	for i, name := range tabNames {
		label := name
		if i == tabNotifs {
			if unread := m.app.Notifs.UnreadCount(); unread > 0 {
				label = fmt.Sprintf("%s (%d)", name, unread)
			}
		}
		if i == m.activeTab {
			parts = append(parts, activeTabSty.Render(label))
		} else {
			parts = append(parts, dimStyle.Render(label))
		}
	}
	return " " + strings.Join(parts, "  ·  ")
}

func (m model) chatView() string {
	if m.chatAgent.ID == "" {
		return dimStyle.Render("\n  Pick an agent from the dashboard to start chatting.")
	}
	title := m.chatSession.Title
	if title == "" {
		title = "New conversation"
	}
	header := fmt.Sprintf(" %s %s — %s", m.chatAgent.Icon, m.chatAgent.Name, dimStyle.Render(title))
	if m.chatOpening {
		header += " " + m.spin.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.chatViewport.View(),
		m.chatInput.View(),
		dimStyle.Render(" enter send · ctrl+n new session · ctrl+s sessions · esc back"),
	)
}

func (m *model) syncChatViewport(gotoBottom bool) {
	if m.chatSession.ID == "" || m.chatViewport.Width <= 0 {
		return
	}
	wrap := lipgloss.NewStyle().Width(m.chatViewport.Width - 4)
	var b strings.Builder
	for _, msg := range m.chatSession.Messages {
		label := m.chatAgent.Name
		style := agentBubbleSt
		if msg.Sender == types.SenderUser {
			label = "You"
			style = userBubbleSty
		}
		content := msg.Content
		if msg.Pending {
			content = m.spin.View() + " thinking..."
		}
		b.WriteString(style.Render(label) + dimStyle.Render(" · "+msg.Timestamp.Local().Format("15:04")))
		switch msg.Status {
		case types.StatusSending:
			b.WriteString(dimStyle.Render(" (sending)"))
		case types.StatusError:
			b.WriteString(errStyle.Render(" (failed)"))
		}
		b.WriteString("\n")
		b.WriteString(wrap.Render(content))
		b.WriteString("\n\n")
	}
	m.chatViewport.SetContent(b.String())
	if gotoBottom {
		m.chatViewport.GotoBottom()
	}
}

func (m model) notifsView() string {
	cats := types.Categories()
	parts := make([]string, 0, len(cats))
	for i, cat := range cats {
		state := "off"
		if m.app.Notifs.CategoryEnabled(cat) {
			state = "on"
		}
		parts = append(parts, fmt.Sprintf("%d:%s %s", i+1, cat, state))
	}
	bar := dimStyle.Render(" categories  " + strings.Join(parts, "  "))
	return lipgloss.JoinVertical(lipgloss.Left,
		m.notifsList.View(),
		bar,
		dimStyle.Render(" m read · M all read · x clear · X clear all · 1-3 toggle"),
	)
}

func (m model) profileView() string {
	var b strings.Builder
	b.WriteString(" Profile\n\n")
	b.WriteString(" Name:  " + m.nameInput.View() + "\n")
	b.WriteString(" Email: " + m.profEmailInput.View() + "\n\n")
	b.WriteString(dimStyle.Render(" up/down switch field · enter save · ctrl+o logout"))
	return b.String()
}

func (m model) tourView() string {
	step := tourSteps[m.tourStep]
	var b strings.Builder
	b.WriteString(headerStyle.Render(step.title))
	b.WriteString("\n\n")
	b.WriteString(step.body)
	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("step %d/%d", m.tourStep+1, len(tourSteps))))
	return modalStyle.Render(b.String())
}

// centered positions a block in the space below the header and tab bar.
func (m model) centered(block string) string {
	height := m.height - 7
	if height < lipgloss.Height(block) {
		height = lipgloss.Height(block)
	}
	return lipgloss.Place(m.width, height, lipgloss.Center, lipgloss.Center, block)
}

func (m model) toastLine() string {
	if m.toast == nil {
		return ""
	}
	text := m.toast.Title
	if m.toast.Message != "" {
		text += ": " + m.toast.Message
	}
	if m.toast.IsError {
		return " " + toastErrStyle.Render(text)
	}
	return " " + toastStyle.Render(text)
}
