package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllIsStable(t *testing.T) {
	first := All()
	require.Len(t, first, 7)

	// Mutating the returned slice must not touch the registry.
	first[0].Name = "mutated"
	second := All()
	assert.NotEqual(t, "mutated", second[0].Name)
}

func TestGet(t *testing.T) {
	agent, ok := Get("airflow")
	require.True(t, ok)
	assert.Equal(t, "Airflow Manager", agent.Name)

	_, ok = Get("nope")
	assert.False(t, ok)
}

func TestOnlyCustomSkipsConfig(t *testing.T) {
	for _, agent := range All() {
		if agent.ID == "custom" {
			assert.False(t, agent.RequiresConfig)
			continue
		}
		assert.True(t, agent.RequiresConfig, agent.ID)
		hasRequired := false
		for _, field := range agent.ConfigFields {
			if field.Required {
				hasRequired = true
			}
		}
		assert.True(t, hasRequired, agent.ID)
	}
}
