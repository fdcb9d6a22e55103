package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	name      string
	available bool
	probeErr  error
	probed    bool
}

func (f *fakeProvider) Name() string    { return f.name }
func (f *fakeProvider) Available() bool { return f.available }

func (f *fakeProvider) Chat(ctx context.Context, req ChatRequest) (string, error) {
	return "answer from " + f.name, nil
}

func (f *fakeProvider) Probe(ctx context.Context) error {
	f.probed = true
	return f.probeErr
}

func newTestRegistry(available ...string) *Registry {
	up := make(map[string]bool, len(available))
	for _, name := range available {
		up[name] = true
	}
	providers := make([]Provider, 0, len(FallbackOrder))
	for _, name := range FallbackOrder {
		providers = append(providers, &fakeProvider{name: name, available: up[name]})
	}
	return NewRegistry(nil, providers...)
}

func TestRegistryGet(t *testing.T) {
	r := newTestRegistry(ProviderGemini)

	p, err := r.Get(ProviderGemini)
	require.NoError(t, err)
	assert.Equal(t, ProviderGemini, p.Name())

	_, err = r.Get("cohere")
	require.ErrorIs(t, err, ErrUnknownProvider)
}

func TestPreferenceOrder(t *testing.T) {
	tests := []struct {
		name      string
		available []string
		requested string
		want      []string
	}{
		{
			name:      "requested first then priority order",
			available: []string{ProviderGemini, ProviderOpenAI, ProviderClaude, ProviderMistral},
			requested: ProviderClaude,
			want:      []string{ProviderClaude, ProviderGemini, ProviderOpenAI, ProviderMistral},
		},
		{
			name:      "no request yields priority order",
			available: []string{ProviderGemini, ProviderOpenAI, ProviderClaude, ProviderMistral},
			requested: "",
			want:      []string{ProviderGemini, ProviderOpenAI, ProviderClaude, ProviderMistral},
		},
		{
			name:      "unavailable providers skipped",
			available: []string{ProviderOpenAI, ProviderMistral},
			requested: ProviderGemini,
			want:      []string{ProviderOpenAI, ProviderMistral},
		},
		{
			name:      "requested not duplicated",
			available: []string{ProviderGemini, ProviderOpenAI},
			requested: ProviderGemini,
			want:      []string{ProviderGemini, ProviderOpenAI},
		},
		{
			name:      "unknown requested name ignored",
			available: []string{ProviderOpenAI},
			requested: "cohere",
			want:      []string{ProviderOpenAI},
		},
		{
			name:      "nothing available",
			available: nil,
			requested: ProviderGemini,
			want:      []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRegistry(tt.available...)
			got := r.PreferenceOrder(tt.requested)
			names := make([]string, 0, len(got))
			for _, p := range got {
				names = append(names, p.Name())
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestAvailableNames(t *testing.T) {
	r := newTestRegistry(ProviderMistral, ProviderGemini)
	assert.Equal(t, []string{ProviderGemini, ProviderMistral}, r.AvailableNames())
}

func TestProbeAllMarksDead(t *testing.T) {
	gemini := &fakeProvider{name: ProviderGemini, available: true, probeErr: errors.New("dns failure")}
	openai := &fakeProvider{name: ProviderOpenAI, available: true}
	claude := &fakeProvider{name: ProviderClaude, available: false}
	r := NewRegistry(nil, gemini, openai, claude)

	r.ProbeAll(context.Background())

	assert.True(t, gemini.probed)
	assert.True(t, openai.probed)
	// Unconfigured providers are never probed.
	assert.False(t, claude.probed)

	assert.False(t, r.Available(ProviderGemini))
	assert.True(t, r.Available(ProviderOpenAI))
	assert.Equal(t, []string{ProviderOpenAI}, r.AvailableNames())

	order := r.PreferenceOrder(ProviderGemini)
	require.Len(t, order, 1)
	assert.Equal(t, ProviderOpenAI, order[0].Name())
}
