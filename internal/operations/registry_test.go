package operations_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logview/internal/config"
	"logview/internal/operations"
)

func TestRegistry(t *testing.T) {
	registry := operations.NewRegistry()

	assert.Equal(t, 0, registry.Count())
	fns := registry.List()
	assert.NotNil(t, fns, "List() should return empty slice, not nil")
	assert.Empty(t, fns)
}

func TestRegistryRegister(t *testing.T) {
	registry := operations.NewRegistry()

	a := &stubFunction{id: "alpha"}
	b := &stubFunction{id: "beta"}
	c := &stubFunction{id: "gamma"}
	require.NoError(t, registry.Register(a))
	require.NoError(t, registry.Register(b))
	require.NoError(t, registry.Register(c))

	assert.Equal(t, 3, registry.Count())

	got, err := registry.Get("alpha")
	require.NoError(t, err)
	assert.Same(t, a, got)

	assert.Equal(t, []string{"alpha", "beta", "gamma"}, registry.ListIDs())
	assert.Equal(t, operations.Info{ID: "beta", Name: "BETA", Description: "stub beta"}, registry.Infos()[1])
}

func TestRegistryRegisterErrors(t *testing.T) {
	registry := operations.NewRegistry()

	tests := []struct {
		name    string
		fn      operations.Function
		wantErr string
	}{
		{name: "nil function", fn: nil, wantErr: "nil function"},
		{name: "empty id", fn: &stubFunction{}, wantErr: "ID cannot be empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := registry.Register(tt.fn)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("duplicate", func(t *testing.T) {
		require.NoError(t, registry.Register(&stubFunction{id: "dup"}))
		err := registry.Register(&stubFunction{id: "dup"})
		assert.ErrorIs(t, err, operations.ErrDuplicateFunction)
	})
}

func TestRegistryConcurrentAccess(t *testing.T) {
	registry := operations.NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_ = registry.Register(&stubFunction{id: fmt.Sprintf("fn-%d", i)})
		}(i)
		go func() {
			defer wg.Done()
			_ = registry.List()
			_ = registry.Count()
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, registry.Count())
}

func TestRegisterDefaults(t *testing.T) {
	registry := operations.NewRegistry()
	require.NoError(t, operations.RegisterDefaults(registry, operations.Defaults{
		Pipeline: config.DefaultPipeline(),
	}))

	assert.Equal(t, []string{
		operations.LogviewFunctionID,
		"wb_auto_uph",
		"die_attach_auto_uph",
		"pnp_auto_uph",
	}, registry.ListIDs())

	for _, info := range registry.Infos() {
		assert.NotEmpty(t, info.Name, info.ID)
		assert.NotEmpty(t, info.Description, info.ID)
	}

	err := operations.RegisterDefaults(registry, operations.Defaults{Pipeline: config.DefaultPipeline()})
	assert.ErrorIs(t, err, operations.ErrDuplicateFunction)
}
