package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveAdapterLocal(t *testing.T) {
	adapter, err := resolveAdapter("local", t.TempDir())
	require.NoError(t, err)
	assert.NotNil(t, adapter)
}

func TestResolveAdapterRejectsOutOfScopeCorpora(t *testing.T) {
	_, err := resolveAdapter("biodiversity-heritage-library", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "external collaborator")
}
