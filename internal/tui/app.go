// Package tui renders the hub services as a terminal UI: login, agent
// dashboard, per-agent chat, notifications and profile, plus the
// configuration wizard and the first-run tour.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"agenthub/internal/catalog"
	"agenthub/internal/hub"
	"agenthub/internal/types"
)

const (
	tabDashboard = iota
	tabChat
	tabNotifs
	tabProfile
	tabCount
)

var tabNames = [tabCount]string{"Dashboard", "Chat", "Notifications", "Profile"}

var (
	headerStyle   = lipgloss.NewStyle().Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("160"))
	toastStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("36"))
	toastErrStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	activeTabSty  = lipgloss.NewStyle().Bold(true).Underline(true)
	userBubbleSty = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	agentBubbleSt = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	modalStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(1, 2)
)

type model struct {
	app        *hub.App
	keys       keyMap
	help       help.Model
	spin       spinner.Model
	authEvents <-chan types.AuthEvent
	width      int
	height     int

	loggedIn  bool
	activeTab int
	showHelp  bool

	// login view
	emailInput    textinput.Model
	passwordInput textinput.Model
	loginFocus    int
	loggingIn     bool
	loginErr      string

	// dashboard
	agentsList list.Model

	// chat
	chatAgent    types.Agent
	chatSession  types.ChatSession
	chatViewport viewport.Model
	chatInput    textarea.Model
	chatOpening  bool
	pendingSends int
	showSessions bool
	sessionsList list.Model

	// notifications
	notifsList list.Model

	// profile
	nameInput      textinput.Model
	profEmailInput textinput.Model
	profileFocus   int

	wizard *wizardState

	showTour bool
	tourStep int

	toast      *types.Toast
	toastUntil time.Time
}

type toastMsg types.Toast

type authMsg types.AuthEvent

type loginDoneMsg struct {
	user types.User
	err  error
}

type chatOpenedMsg struct {
	agent   types.Agent
	session types.ChatSession
	err     error
}

type chatResolvedMsg struct {
	session types.ChatSession
}

type tickMsg time.Time

// Run builds the program and blocks until the user quits.
func Run(app *hub.App) error {
	m := newModel(app)
	app.Start(context.Background())
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func newModel(app *hub.App) model {
	emailInput := textinput.New()
	emailInput.Placeholder = "email"
	emailInput.Focus()
	passwordInput := textinput.New()
	passwordInput.Placeholder = "password"
	passwordInput.EchoMode = textinput.EchoPassword

	chatInput := textarea.New()
	chatInput.Placeholder = "Type your message..."
	chatInput.Prompt = ""
	chatInput.ShowLineNumbers = false
	chatInput.SetHeight(3)

	nameInput := textinput.New()
	nameInput.Placeholder = "name"
	profEmailInput := textinput.New()
	profEmailInput.Placeholder = "email"

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = dimStyle

	m := model{
		app:            app,
		authEvents:     app.Auth.Subscribe(),
		keys:           defaultKeyMap,
		help:           help.New(),
		spin:           spin,
		emailInput:     emailInput,
		passwordInput:  passwordInput,
		chatInput:      chatInput,
		chatViewport:   viewport.New(0, 0),
		agentsList:     newListModel("Agents"),
		notifsList:     newListModel("Notifications"),
		sessionsList:   newListModel("Sessions"),
		nameInput:      nameInput,
		profEmailInput: profEmailInput,
	}

	if user, ok := app.Auth.User(); ok {
		m.loggedIn = true
		m.nameInput.SetValue(user.Name)
		m.profEmailInput.SetValue(user.Email)
	}
	m.refreshAgents()
	m.refreshNotifs()
	return m
}

func newListModel(title string) list.Model {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	// Single-key shortcuts (m, x, c) double as list input; filtering would
	// swallow them.
	l.SetFilteringEnabled(false)
	return l
}

func (m model) Init() tea.Cmd {
	return tea.Batch(listenToasts(m.app), listenAuth(m.authEvents), tickCmd(), m.spin.Tick)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case toastMsg:
		t := types.Toast(msg)
		m.toast = &t
		m.toastUntil = time.Now().Add(4 * time.Second)
		m.refreshNotifs()
		return m, listenToasts(m.app)

	case authMsg:
		if msg.Kind == types.AuthLoggedOut {
			m.loggedIn = false
			m.resetLoginForm()
		}
		return m, listenAuth(m.authEvents)

	case loginDoneMsg:
		m.loggingIn = false
		if msg.err != nil {
			m.loginErr = msg.err.Error()
			return m, nil
		}
		return m.enterMain(msg.user)

	case chatOpenedMsg:
		m.chatOpening = false
		if msg.err != nil {
			m.toastNow("Chat unavailable", msg.err.Error(), true)
			return m, nil
		}
		m.chatAgent = msg.agent
		m.chatSession = msg.session
		m.activeTab = tabChat
		m.chatInput.Focus()
		m.syncChatViewport(true)
		m.app.Settings.UpdateLastAgent(msg.agent.ID)
		return m, nil

	case chatResolvedMsg:
		if m.pendingSends > 0 {
			m.pendingSends--
		}
		if msg.session.ID == m.chatSession.ID {
			m.chatSession = msg.session
			m.syncChatViewport(true)
		}
		return m, nil

	case tickMsg:
		if m.toast != nil && time.Now().After(m.toastUntil) {
			m.toast = nil
		}
		return m, tickCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		if m.pendingSends > 0 || m.loggingIn || m.chatOpening {
			m.syncChatViewport(false)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	if !m.loggedIn {
		return m.updateLogin(msg)
	}
	if m.wizard != nil {
		return m.updateWizard(msg)
	}
	if m.showTour {
		return m.updateTour(msg)
	}
	if m.showSessions {
		return m.updateSessionPicker(msg)
	}

	switch {
	case key.Matches(msg, m.keys.NextTab) && m.activeTab != tabChat:
		m.activeTab = (m.activeTab + 1) % tabCount
		m.onTabChange()
		return m, nil
	case key.Matches(msg, m.keys.PrevTab):
		m.activeTab = (m.activeTab + tabCount - 1) % tabCount
		m.onTabChange()
		return m, nil
	case key.Matches(msg, m.keys.Help) && m.activeTab != tabChat && m.activeTab != tabProfile:
		m.showHelp = !m.showHelp
		return m, nil
	case key.Matches(msg, m.keys.Logout):
		m.app.Auth.Logout()
		return m, nil
	}

	switch m.activeTab {
	case tabDashboard:
		return m.updateDashboard(msg)
	case tabChat:
		return m.updateChat(msg)
	case tabNotifs:
		return m.updateNotifs(msg)
	case tabProfile:
		return m.updateProfile(msg)
	}
	return m, nil
}

func (m model) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "shift+tab", "up", "down":
		m.loginFocus = 1 - m.loginFocus
		if m.loginFocus == 0 {
			m.emailInput.Focus()
			m.passwordInput.Blur()
		} else {
			m.emailInput.Blur()
			m.passwordInput.Focus()
		}
		return m, nil
	case "enter":
		if m.loggingIn {
			return m, nil
		}
		m.loggingIn = true
		m.loginErr = ""
		return m, tea.Batch(m.spin.Tick, loginCmd(m.app, m.emailInput.Value(), m.passwordInput.Value()))
	case "ctrl+d":
		user := m.app.Auth.LoginDemo()
		return m.enterMain(user)
	}

	var cmd tea.Cmd
	if m.loginFocus == 0 {
		m.emailInput, cmd = m.emailInput.Update(msg)
	} else {
		m.passwordInput, cmd = m.passwordInput.Update(msg)
	}
	return m, cmd
}

func (m model) enterMain(user types.User) (tea.Model, tea.Cmd) {
	m.loggedIn = true
	m.loginErr = ""
	m.activeTab = tabDashboard
	m.nameInput.SetValue(user.Name)
	m.profEmailInput.SetValue(user.Email)
	m.refreshAgents()
	m.refreshNotifs()
	if m.app.FirstRun() {
		m.showTour = true
		m.tourStep = 0
	}
	return m, nil
}

func (m model) updateDashboard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Select):
		if item, ok := m.agentsList.SelectedItem().(agentItem); ok {
			m.chatOpening = true
			return m, tea.Batch(m.spin.Tick, openChatCmd(m.app, item.agent.ID))
		}
		return m, nil
	case key.Matches(msg, m.keys.Configure):
		if item, ok := m.agentsList.SelectedItem().(agentItem); ok {
			wizard, err := newWizard(m.app, item.agent)
			if err != nil {
				m.toastNow("Cannot configure", err.Error(), true)
				return m, nil
			}
			m.wizard = wizard
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.agentsList, cmd = m.agentsList.Update(msg)
	return m, cmd
}

func (m model) updateChat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.activeTab = tabDashboard
		m.chatInput.Blur()
		return m, nil
	case "enter":
		return m.startSend()
	case "shift+enter":
		m.chatInput.InsertString("\n")
		return m, nil
	case "ctrl+n":
		sess, err := m.app.Chat.NewSession(m.chatAgent.ID)
		if err == nil {
			m.chatSession = sess
			m.syncChatViewport(true)
		}
		return m, nil
	case "ctrl+s":
		m.showSessions = true
		m.sessionsList.SetItems(buildSessionItems(m.app.Chat.Sessions(m.chatAgent.ID)))
		m.sessionsList.Select(0)
		return m, nil
	case "pgup", "pgdown", "ctrl+u", "ctrl+d":
		var cmd tea.Cmd
		m.chatViewport, cmd = m.chatViewport.Update(msg)
		return m, cmd
	}
	var cmd tea.Cmd
	m.chatInput, cmd = m.chatInput.Update(msg)
	return m, cmd
}

func (m model) startSend() (tea.Model, tea.Cmd) {
	receipt, err := m.app.Chat.Send(m.chatAgent.ID, m.chatInput.Value())
	if err != nil {
		// Empty input is a silent no-op; other failures already toasted.
		return m, nil
	}
	m.chatInput.SetValue("")
	m.pendingSends++
	if sess, ok := m.app.Chat.Active(m.chatAgent.ID); ok {
		m.chatSession = sess
		m.syncChatViewport(true)
	}
	return m, tea.Batch(m.spin.Tick, resolveCmd(m.app, receipt))
}

func (m model) updateSessionPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.showSessions = false
		return m, nil
	case "enter":
		if item, ok := m.sessionsList.SelectedItem().(sessionItem); ok {
			if sess, err := m.app.Chat.Switch(m.chatAgent.ID, item.data.ID); err == nil {
				m.chatSession = sess
				m.syncChatViewport(true)
			}
		}
		m.showSessions = false
		return m, nil
	}
	var cmd tea.Cmd
	m.sessionsList, cmd = m.sessionsList.Update(msg)
	return m, cmd
}

func (m model) updateNotifs(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "m":
		if item, ok := m.notifsList.SelectedItem().(notifItem); ok {
			m.app.Notifs.MarkRead(item.data.ID)
			m.refreshNotifs()
		}
		return m, nil
	case "M":
		m.app.Notifs.MarkAllRead()
		m.refreshNotifs()
		return m, nil
	case "x":
		if item, ok := m.notifsList.SelectedItem().(notifItem); ok {
			m.app.Notifs.Clear(item.data.ID)
			m.refreshNotifs()
		}
		return m, nil
	case "X":
		m.app.Notifs.ClearAll()
		m.refreshNotifs()
		return m, nil
	case "1", "2", "3":
		cats := types.Categories()
		idx := int(msg.String()[0] - '1')
		if idx < len(cats) {
			m.app.Notifs.ToggleCategory(cats[idx])
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.notifsList, cmd = m.notifsList.Update(msg)
	return m, cmd
}

func (m model) updateProfile(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "down":
		m.profileFocus = 1 - m.profileFocus
		if m.profileFocus == 0 {
			m.nameInput.Focus()
			m.profEmailInput.Blur()
		} else {
			m.nameInput.Blur()
			m.profEmailInput.Focus()
		}
		return m, nil
	case "enter":
		_, err := m.app.Auth.UpdateProfile(types.User{
			Name:  m.nameInput.Value(),
			Email: m.profEmailInput.Value(),
		})
		if err != nil {
			m.toastNow("Update failed", err.Error(), true)
		}
		return m, nil
	}
	var cmd tea.Cmd
	if m.profileFocus == 0 {
		m.nameInput, cmd = m.nameInput.Update(msg)
	} else {
		m.profEmailInput, cmd = m.profEmailInput.Update(msg)
	}
	return m, cmd
}

func (m model) updateTour(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", " ":
		m.tourStep++
		if m.tourStep >= len(tourSteps) {
			m.showTour = false
		}
		return m, nil
	case "esc":
		m.showTour = false
		return m, nil
	}
	return m, nil
}

func (m *model) onTabChange() {
	m.chatInput.Blur()
	m.nameInput.Blur()
	m.profEmailInput.Blur()
	switch m.activeTab {
	case tabChat:
		m.chatInput.Focus()
	case tabNotifs:
		m.refreshNotifs()
	case tabProfile:
		m.profileFocus = 0
		m.nameInput.Focus()
	case tabDashboard:
		m.refreshAgents()
	}
}

func (m *model) refreshAgents() {
	configured := make(map[string]bool)
	for _, agent := range catalog.All() {
		if _, ok := m.app.Configs.Lookup(agent.ID); ok {
			configured[agent.ID] = true
		}
	}
	m.agentsList.SetItems(buildAgentItems(catalog.All(), configured))
}

func (m *model) refreshNotifs() {
	idx := m.notifsList.Index()
	m.notifsList.SetItems(buildNotifItems(m.app.Notifs.List()))
	if idx < len(m.notifsList.Items()) {
		m.notifsList.Select(idx)
	}
}

func (m *model) toastNow(title, message string, isErr bool) {
	m.toast = &types.Toast{Title: title, Message: message, IsError: isErr}
	m.toastUntil = time.Now().Add(4 * time.Second)
}

func (m *model) resetLoginForm() {
	m.passwordInput.SetValue("")
	m.loginFocus = 0
	m.emailInput.Focus()
	m.passwordInput.Blur()
}

func (m *model) layout() {
	bodyHeight := m.height - 7
	if bodyHeight < 3 {
		bodyHeight = 3
	}
	m.agentsList.SetSize(m.width-4, bodyHeight)
	m.notifsList.SetSize(m.width-4, bodyHeight-2)
	m.sessionsList.SetSize(m.width-8, bodyHeight-4)
	m.chatViewport.Width = m.width - 4
	m.chatViewport.Height = bodyHeight - 5
	m.chatInput.SetWidth(m.width - 6)
	m.syncChatViewport(false)
}

func listenToasts(app *hub.App) tea.Cmd {
	return func() tea.Msg {
		return toastMsg(<-app.Notifs.Toasts())
	}
}

func listenAuth(events <-chan types.AuthEvent) tea.Cmd {
	return func() tea.Msg {
		return authMsg(<-events)
	}
}

func loginCmd(app *hub.App, email, password string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()
		user, err := app.Auth.Login(ctx, email, password)
		return loginDoneMsg{user: user, err: err}
	}
}

func openChatCmd(app *hub.App, agentID string) tea.Cmd {
	return func() tea.Msg {
		agent, _ := catalog.Get(agentID)
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()
		session, err := app.Chat.Open(ctx, agentID)
		return chatOpenedMsg{agent: agent, session: session, err: err}
	}
}

func resolveCmd(app *hub.App, receipt hub.SendReceipt) tea.Cmd {
	return func() tea.Msg {
		session, _ := app.Chat.Resolve(context.Background(), receipt)
		return chatResolvedMsg{session: session}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
