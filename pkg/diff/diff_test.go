// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextEngineProducesUnifiedDiff(t *testing.T) {
	e := NewTextEngine(1)
	out, err := e.Diff("a.txt", "b.txt", []byte("line1\nline2\nline3\n"), []byte("line1\nchanged\nline3\n"))
	require.NoError(t, err)
	assert.Contains(t, out, "-line2")
	assert.Contains(t, out, "+changed")
	assert.Contains(t, out, "a.txt")
	assert.Contains(t, out, "b.txt")
}

func TestRegistryLookupByName(t *testing.T) {
	r := NewRegistry(EnginesFromConfig([]string{"text"}))
	e, ok := r.Lookup("text")
	require.True(t, ok)
	assert.Equal(t, "text", e.Name())

	_, ok = r.Lookup("binary")
	assert.False(t, ok, "expected no engine registered for unknown name")
}
