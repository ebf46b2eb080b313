package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	name ProviderName
}

func (f *fakeProvider) Name() ProviderName {
	return f.name
}

func (f *fakeProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	return &ChatResponse{Content: "{}"}, nil
}

func TestRegistryRegisterAndGet(t *testing.T) {
	registry := NewProviderRegistry()
	provider := &fakeProvider{name: ProviderNameOpenAI}

	require.NoError(t, registry.Register(provider))
	assert.Equal(t, provider, registry.Get(ProviderNameOpenAI))
	assert.Nil(t, registry.Get(ProviderNameGemini))
	assert.Len(t, registry.List(), 1)
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	registry := NewProviderRegistry()
	require.NoError(t, registry.Register(&fakeProvider{name: ProviderNameGemini}))

	err := registry.Register(&fakeProvider{name: ProviderNameGemini})
	assert.Error(t, err)
}

func TestRegistryRejectsNil(t *testing.T) {
	registry := NewProviderRegistry()
	assert.Error(t, registry.Register(nil))
}
