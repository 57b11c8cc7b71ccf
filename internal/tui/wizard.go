package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"agenthub/internal/hub"
	"agenthub/internal/types"
)

const (
	wizardIntro = iota
	wizardFields
	wizardDone
)

// wizardState drives the three-step configuration modal: intro, credential
// fields, confirmation. Nothing is persisted until the save on step two
// succeeds.
type wizardState struct {
	app    *hub.App
	agent  types.Agent
	step   int
	inputs []textinput.Model
	focus  int
	errMsg string
}

func newWizard(app *hub.App, agent types.Agent) (*wizardState, error) {
	if len(agent.ConfigFields) == 0 {
		return nil, errors.New(agent.Name + " needs no configuration")
	}
	draft, err := app.Configs.Open(agent)
	if err != nil {
		return nil, err
	}

	inputs := make([]textinput.Model, len(agent.ConfigFields))
	for i, field := range agent.ConfigFields {
		in := textinput.New()
		in.Placeholder = field.Placeholder
		in.Prompt = field.Label + ": "
		if field.Kind == types.FieldPassword {
			in.EchoMode = textinput.EchoPassword
		}
		in.SetValue(draft[field.ID])
		inputs[i] = in
	}
	inputs[0].Focus()

	return &wizardState{app: app, agent: agent, inputs: inputs}, nil
}

func (m model) updateWizard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	w := m.wizard
	switch msg.String() {
	case "esc":
		m.wizard = nil
		m.refreshAgents()
		return m, nil
	case "enter":
		switch w.step {
		case wizardIntro:
			w.step = wizardFields
			return m, nil
		case wizardFields:
			if err := w.save(); err == nil {
				w.step = wizardDone
			}
			m.refreshAgents()
			return m, nil
		case wizardDone:
			agentID := w.agent.ID
			m.wizard = nil
			m.chatOpening = true
			return m, openChatCmd(m.app, agentID)
		}
	case "tab", "down":
		if w.step == wizardFields {
			w.setFocus(w.focus + 1)
		}
		return m, nil
	case "shift+tab", "up":
		if w.step == wizardFields {
			w.setFocus(w.focus - 1)
		}
		return m, nil
	}

	if w.step != wizardFields {
		return m, nil
	}
	var cmd tea.Cmd
	w.inputs[w.focus], cmd = w.inputs[w.focus].Update(msg)
	return m, cmd
}

func (w *wizardState) setFocus(next int) {
	count := len(w.inputs)
	w.inputs[w.focus].Blur()
	w.focus = ((next % count) + count) % count
	w.inputs[w.focus].Focus()
}

func (w *wizardState) save() error {
	draft := make(map[string]string, len(w.agent.ConfigFields))
	for i, field := range w.agent.ConfigFields {
		draft[field.ID] = w.inputs[i].Value()
	}

	err := w.app.Configs.Save(w.agent, draft)
	if err == nil {
		w.errMsg = ""
		return nil
	}

	var vErr *types.ValidationError
	if errors.As(err, &vErr) {
		w.errMsg = "Missing required fields: " + strings.Join(vErr.MissingFields, ", ")
	} else {
		w.errMsg = err.Error()
	}
	return err
}

func (w *wizardState) view() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Configure " + w.agent.Name))
	b.WriteString("\n\n")

	switch w.step {
	case wizardIntro:
		b.WriteString(w.agent.Description)
		b.WriteString("\n\nThis agent needs connection details before it can chat.\n")
		b.WriteString("Demo logins get simulated responses either way.\n\n")
		b.WriteString(dimStyle.Render("enter continue · esc cancel"))
	case wizardFields:
		for i := range w.inputs {
			b.WriteString(w.inputs[i].View())
			if w.agent.ConfigFields[i].Required {
				b.WriteString(dimStyle.Render(" *"))
			}
			b.WriteString("\n")
		}
		if w.errMsg != "" {
			b.WriteString("\n" + errStyle.Render(w.errMsg))
		}
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("tab next field · enter save · esc cancel"))
	case wizardDone:
		b.WriteString(w.agent.Name + " is configured and ready to use.\n\n")
		b.WriteString(dimStyle.Render("enter open chat · esc close"))
	}
	return modalStyle.Render(b.String())
}
