package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDisabled(t *testing.T) {
	tel, err := Init(Config{Enabled: false}, nil)
	require.NoError(t, err)
	assert.Nil(t, tel.meterProvider)
	assert.NoError(t, tel.Shutdown(context.Background()))
}

func TestInitEnabled(t *testing.T) {
	tel, err := Init(Config{Enabled: true}, nil)
	require.NoError(t, err)
	require.NotNil(t, tel.meterProvider)
	assert.NoError(t, tel.Shutdown(context.Background()))
}
