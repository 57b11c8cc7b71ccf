// Package catalog is the static registry of agent definitions. Entries are
// fixed at compile time; the app never creates or destroys agents.
package catalog

import "agenthub/internal/types"

var agents = []types.Agent{
	{
		ID:          "langchain",
		Name:        "LangChain Assistant",
		Type:        types.AgentLangChain,
		Description: "Process documents and chain LLM tasks",
		Icon:        "⚡",
		ConfigFields: []types.ConfigField{
			{ID: "apiKey", Label: "API Key", Kind: types.FieldPassword, Required: true, Placeholder: "Enter your API key"},
			{ID: "model", Label: "Model", Kind: types.FieldText, Required: false, Placeholder: "gpt-4"},
		},
		RequiresConfig: true,
	},
	{
		ID:          "langgraph",
		Name:        "LangGraph Analyzer",
		Type:        types.AgentLangGraph,
		Description: "Visualize and analyze language workflows",
		Icon:        "📊",
		ConfigFields: []types.ConfigField{
			{ID: "apiKey", Label: "API Key", Kind: types.FieldPassword, Required: true, Placeholder: "Enter your API key"},
			{ID: "endpoint", Label: "Endpoint URL", Kind: types.FieldURL, Required: false, Placeholder: "https://api.example.com"},
		},
		RequiresConfig: true,
	},
	{
		ID:          "airflow",
		Name:        "Airflow Manager",
		Type:        types.AgentAirflow,
		Description: "Manage and monitor data workflows",
		Icon:        "🔄",
		ConfigFields: []types.ConfigField{
			{ID: "url", Label: "Host URL", Kind: types.FieldURL, Required: true, Placeholder: "https://your-airflow-host.com"},
			{ID: "username", Label: "Username", Kind: types.FieldText, Required: true, Placeholder: "airflow"},
			{ID: "password", Label: "Password", Kind: types.FieldPassword, Required: true},
			{ID: "dagId", Label: "Default DAG ID", Kind: types.FieldText, Required: false, Placeholder: "example_dag"},
		},
		RequiresConfig: true,
	},
	{
		ID:          "kubernetes",
		Name:        "Kubernetes Helper",
		Type:        types.AgentKubernetes,
		Description: "Assist with Kubernetes operations",
		Icon:        "🚢",
		ConfigFields: []types.ConfigField{
			{ID: "apiServer", Label: "API Server URL", Kind: types.FieldURL, Required: true, Placeholder: "https://cluster.example.com:6443"},
			{ID: "token", Label: "Bearer Token", Kind: types.FieldPassword, Required: true},
			{ID: "namespace", Label: "Namespace", Kind: types.FieldText, Required: false, Placeholder: "default"},
		},
		RequiresConfig: true,
	},
	{
		ID:          "jenkins",
		Name:        "Jenkins Automator",
		Type:        types.AgentJenkins,
		Description: "Automate build and deployment processes",
		Icon:        "🔧",
		ConfigFields: []types.ConfigField{
			{ID: "url", Label: "Jenkins URL", Kind: types.FieldURL, Required: true, Placeholder: "https://jenkins.example.com"},
			{ID: "username", Label: "Username", Kind: types.FieldText, Required: true},
			{ID: "apiToken", Label: "API Token", Kind: types.FieldPassword, Required: true},
		},
		RequiresConfig: true,
	},
	{
		ID:          "github",
		Name:        "GitHub Assistant",
		Type:        types.AgentGitHub,
		Description: "Manage code repositories and workflows",
		Icon:        "🐙",
		ConfigFields: []types.ConfigField{
			{ID: "token", Label: "Personal Access Token", Kind: types.FieldPassword, Required: true},
			{ID: "org", Label: "Organization", Kind: types.FieldText, Required: false},
		},
		RequiresConfig: true,
	},
	{
		ID:          "custom",
		Name:        "Custom Agent",
		Type:        types.AgentCustom,
		Description: "Create your own custom agent",
		Icon:        "🧩",
		ConfigFields: []types.ConfigField{
			{ID: "endpoint", Label: "Endpoint URL", Kind: types.FieldURL, Required: false},
			{ID: "maxRetries", Label: "Max Retries", Kind: types.FieldNumber, Required: false, Placeholder: "3"},
		},
		// Exploration agent: chat works without any saved configuration.
		RequiresConfig: false,
	},
}

// All returns every catalog entry in display order.
func All() []types.Agent {
	out := make([]types.Agent, len(agents))
	copy(out, agents)
	return out
}

// Get looks up an agent by id.
func Get(id string) (types.Agent, bool) {
	for _, agent := range agents {
		if agent.ID == id {
			return agent, true
		}
	}
	return types.Agent{}, false
}
