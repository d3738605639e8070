package adapter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry_Order(t *testing.T) {
	r := DefaultRegistry(nil)
	assert.Equal(t, []string{"cd35", "cd44", "rennes", "diro"}, r.AllNames())
}

func TestRegistry_Get(t *testing.T) {
	r := DefaultRegistry(nil)

	a, err := r.Get("cd44")
	require.NoError(t, err)
	assert.Equal(t, "CD44", a.Label())

	_, err = r.Get("cd56")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown source")
}

func TestRegistry_SelectKeepsRegistrationOrder(t *testing.T) {
	r := DefaultRegistry(nil)

	got, err := r.Select([]string{"rennes", "cd35"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "cd35", got[0].Key())
	assert.Equal(t, "rennes", got[1].Key())
}

func TestRegistry_SelectAll(t *testing.T) {
	r := DefaultRegistry(nil)

	got, err := r.Select(nil)
	require.NoError(t, err)
	assert.Len(t, got, 4)
}

func TestRegistry_SelectUnknown(t *testing.T) {
	_, err := DefaultRegistry(nil).Select([]string{"cd35", "nope"})
	require.Error(t, err)
}

func TestRegistry_RegisterReplaces(t *testing.T) {
	r := NewRegistry()
	r.Register(NewCD35())
	r.Register(NewCD44())
	r.Register(NewCD35())
	assert.Equal(t, []string{"cd35", "cd44"}, r.AllNames())
}

func TestSchemas_Declarative(t *testing.T) {
	for _, a := range DefaultRegistry(nil).All() {
		sp, ok := a.(SchemaProvider)
		require.True(t, ok, a.Key())
		s := sp.Schema()
		assert.Equal(t, a.Key(), s.Key)
		assert.NotEmpty(t, s.Fields)
		for _, f := range s.Fields {
			assert.NotEmpty(t, f.Keys, "%s.%s", s.Key, f.Name)
		}
	}
}
