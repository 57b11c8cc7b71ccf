// Package types holds the shared data model: users, agents, notifications and
// chat records. Everything here is plain data; behavior lives in the hub
// services.
package types

import "time"

// User is the current session identity. Persisted on login, removed on logout.
type User struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	IsDemo bool   `json:"isDemo,omitempty"`
}

// DemoToken is the sentinel token for demo sessions. It skips remote
// validation and remote chat dispatch.
const DemoToken = "demo-token"

// AgentType classifies a catalog entry.
type AgentType string

const (
	AgentLangChain  AgentType = "langchain"
	AgentLangGraph  AgentType = "langgraph"
	AgentAirflow    AgentType = "airflow"
	AgentKubernetes AgentType = "kubernetes"
	AgentJenkins    AgentType = "jenkins"
	AgentGitHub     AgentType = "github"
	AgentCustom     AgentType = "custom"
)

// FieldKind is a rendering hint for a credential input. Values are stored as
// opaque strings regardless of kind.
type FieldKind string

const (
	FieldText     FieldKind = "text"
	FieldPassword FieldKind = "password"
	FieldNumber   FieldKind = "number"
	FieldURL      FieldKind = "url"
)

// ConfigField describes one credential input of an agent.
type ConfigField struct {
	ID          string    `json:"id"`
	Label       string    `json:"label"`
	Kind        FieldKind `json:"kind"`
	Required    bool      `json:"required"`
	Placeholder string    `json:"placeholder,omitempty"`
}

// Agent is a static catalog entry. Immutable at runtime.
type Agent struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Type         AgentType     `json:"type"`
	Description  string        `json:"description"`
	Icon         string        `json:"icon"`
	ConfigFields []ConfigField `json:"configFields"`

	// RequiresConfig gates chat: when true, sending is refused until a
	// configuration is on file for the current user.
	RequiresConfig bool `json:"requiresConfig"`
}

// AgentConfig holds the saved credential values for one (user, agent) pair.
// Saved all-or-nothing; re-saving overwrites.
type AgentConfig struct {
	AgentID string            `json:"agentId"`
	Values  map[string]string `json:"values"`
}

// NotificationCategory gates notification creation.
type NotificationCategory string

const (
	CategoryAgentUpdate NotificationCategory = "agent_update"
	CategorySystemAlert NotificationCategory = "system_alert"
	CategoryReminder    NotificationCategory = "reminder"
)

// Categories lists every known category, in display order.
func Categories() []NotificationCategory {
	return []NotificationCategory{CategoryAgentUpdate, CategorySystemAlert, CategoryReminder}
}

type Notification struct {
	ID        string               `json:"id"`
	Title     string               `json:"title"`
	Message   string               `json:"message"`
	Timestamp time.Time            `json:"timestamp"`
	Category  NotificationCategory `json:"category"`
	Read      bool                 `json:"read"`
}

// Toast is the transient user-facing notice emitted alongside notifications
// and by auth/chat operations.
type Toast struct {
	Title   string
	Message string
	IsError bool
}

// Sender identifies who authored a chat message.
type Sender string

const (
	SenderUser  Sender = "user"
	SenderAgent Sender = "agent"
)

// MessageStatus tracks an in-flight user message: sending -> sent, or
// sending -> error. Terminal either way.
type MessageStatus string

const (
	StatusSending MessageStatus = "sending"
	StatusSent    MessageStatus = "sent"
	StatusError   MessageStatus = "error"
)

type ChatMessage struct {
	ID        string        `json:"id"`
	Sender    Sender        `json:"sender"`
	Content   string        `json:"content"`
	Timestamp time.Time     `json:"timestamp"`
	Status    MessageStatus `json:"status,omitempty"`

	// Pending marks a provisional agent reply awaiting resolution. It is
	// replaced in place by exactly one terminal message.
	Pending bool `json:"pending,omitempty"`
}

// ChatSession is one conversation with an agent. Multiple sessions per agent
// are retained and browsable.
type ChatSession struct {
	ID           string        `json:"id"`
	AgentID      string        `json:"agentId"`
	Title        string        `json:"title"`
	Messages     []ChatMessage `json:"messages"`
	LastActivity time.Time     `json:"lastActivity"`
}

// AuthEventKind is emitted to auth subscribers on state transitions.
type AuthEventKind string

const (
	AuthLoggedIn  AuthEventKind = "logged-in"
	AuthLoggedOut AuthEventKind = "logged-out"
)

type AuthEvent struct {
	Kind AuthEventKind
	User User
}
