// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package uri

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFileURI(t *testing.T) {
	raw := "file://myhost/home/user/Desktop/note.md"
	p, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, SchemeFile, p.Scheme)
	assert.Equal(t, "myhost", p.Host)
	assert.Equal(t, "/home/user/Desktop/note.md", p.Path)
	assert.Equal(t, raw, p.String())
}

func TestParseVaultURI(t *testing.T) {
	p, err := Parse("vault:///Projects/A.md")
	require.NoError(t, err)
	assert.Equal(t, SchemeVault, p.Scheme)
	assert.Equal(t, "Projects/A.md", p.Path)
}

func TestParseHTTPS(t *testing.T) {
	p, err := Parse("https://example.com/a?b=c")
	require.NoError(t, err)
	assert.Equal(t, SchemeHTTPS, p.Scheme)
	assert.Equal(t, "https://example.com/a?b=c", p.String())
}

func TestParseUnknownScheme(t *testing.T) {
	_, err := Parse("ftp://host/path")
	assert.Error(t, err, "expected error for unknown scheme")
}

func TestPathToVaultURI(t *testing.T) {
	vaultURI, ok := PathToVaultURI("/vault/Projects/A.md", "/vault")
	assert.True(t, ok)
	assert.Equal(t, "vault:///Projects/A.md", vaultURI)

	_, ok = PathToVaultURI("/other/A.md", "/vault")
	assert.False(t, ok, "expected not-ok for path outside vault")
}

func TestToPath(t *testing.T) {
	p, _ := Parse("file://host/abs/path.txt")
	got, err := ToPath(p, "")
	require.NoError(t, err)
	assert.Equal(t, "/abs/path.txt", got)

	v, _ := Parse("vault:///rel/path.txt")
	got, err = ToPath(v, "/vault")
	require.NoError(t, err)
	assert.Equal(t, "/vault/rel/path.txt", got)

	_, err = ToPath(v, "")
	assert.Error(t, err, "expected error without vault base")
}
