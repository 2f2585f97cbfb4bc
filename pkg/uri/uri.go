// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package uri implements the three URI schemes the node and edge stores
// use: file://<host>/<abs-path>, vault:///<rel-path>, and plain
// https://|http:// URLs. It resolves between filesystem paths,
// vault-relative paths, and these URI forms.
package uri

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Scheme identifies which of the three URI forms a URI string is.
type Scheme string

const (
	SchemeFile    Scheme = "file"
	SchemeVault   Scheme = "vault"
	SchemeHTTP    Scheme = "http"
	SchemeHTTPS   Scheme = "https"
	SchemeUnknown Scheme = ""
)

// hostname caches the local short hostname used by File URIs.
var hostname = func() string {
	h, err := os.Hostname()
	if err != nil {
		return "localhost"
	}
	if i := strings.IndexByte(h, '.'); i >= 0 {
		h = h[:i]
	}
	return h
}()

// Hostname returns the local short hostname used to build file:// URIs.
func Hostname() string { return hostname }

// ParsedURI is a decoded URI in one of the three supported schemes.
type ParsedURI struct {
	Scheme Scheme
	Host   string // set for SchemeFile
	Path   string // absolute path (file), or relative path (vault)
	Raw    string // original string, preserved for http(s)
}

// Parse decodes a URI string into its scheme and components. Returns an
// error for anything that isn't file://, vault:///, http://, or https://.
func Parse(raw string) (ParsedURI, error) {
	switch {
	case strings.HasPrefix(raw, "file://"):
		rest := strings.TrimPrefix(raw, "file://")
		slash := strings.IndexByte(rest, '/')
		if slash < 0 {
			return ParsedURI{}, fmt.Errorf("uri: malformed file URI %q: missing path", raw)
		}
		host := rest[:slash]
		path := rest[slash:]
		decoded, err := url.PathUnescape(path)
		if err != nil {
			return ParsedURI{}, fmt.Errorf("uri: malformed file URI %q: %w", raw, err)
		}
		return ParsedURI{Scheme: SchemeFile, Host: host, Path: decoded, Raw: raw}, nil

	case strings.HasPrefix(raw, "vault:///"):
		rel := strings.TrimPrefix(raw, "vault:///")
		decoded, err := url.PathUnescape(rel)
		if err != nil {
			return ParsedURI{}, fmt.Errorf("uri: malformed vault URI %q: %w", raw, err)
		}
		return ParsedURI{Scheme: SchemeVault, Path: decoded, Raw: raw}, nil

	case strings.HasPrefix(raw, "https://"):
		return ParsedURI{Scheme: SchemeHTTPS, Raw: raw}, nil

	case strings.HasPrefix(raw, "http://"):
		return ParsedURI{Scheme: SchemeHTTP, Raw: raw}, nil

	default:
		return ParsedURI{}, fmt.Errorf("uri: unrecognized scheme in %q", raw)
	}
}

// String reconstructs the URI string for p.
func (p ParsedURI) String() string {
	switch p.Scheme {
	case SchemeFile:
		return fmt.Sprintf("file://%s%s", p.Host, escapePath(p.Path))
	case SchemeVault:
		return "vault:///" + escapePath(strings.TrimPrefix(p.Path, "/"))
	default:
		return p.Raw
	}
}

func escapePath(p string) string {
	segments := strings.Split(p, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}

// FromPath builds a file:// URI for an absolute filesystem path, using the
// local short hostname.
func FromPath(absPath string) string {
	return ParsedURI{Scheme: SchemeFile, Host: hostname, Path: filepath.ToSlash(absPath)}.String()
}

// FromVaultPath builds a vault:///<rel> URI for a path relative to the
// vault base.
func FromVaultPath(relPath string) string {
	return ParsedURI{Scheme: SchemeVault, Path: filepath.ToSlash(relPath)}.String()
}

// ToPath resolves a parsed URI back to a filesystem path. vaultBase is
// used to resolve vault:/// URIs; it is ignored for file:// URIs. Returns
// an error for http(s) URIs, which have no filesystem path.
func ToPath(p ParsedURI, vaultBase string) (string, error) {
	switch p.Scheme {
	case SchemeFile:
		return filepath.FromSlash(p.Path), nil
	case SchemeVault:
		if vaultBase == "" {
			return "", fmt.Errorf("uri: cannot resolve vault URI without a vault base path")
		}
		return filepath.Join(vaultBase, filepath.FromSlash(p.Path)), nil
	default:
		return "", fmt.Errorf("uri: %s URI has no filesystem path", p.Scheme)
	}
}

// PathToVaultURI rewrites an absolute filesystem path that falls inside
// vaultBase into a vault:///<rel> URI. Returns ok=false if path is not
// inside vaultBase.
func PathToVaultURI(absPath, vaultBase string) (vaultURI string, ok bool) {
	rel, err := filepath.Rel(vaultBase, absPath)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return FromVaultPath(rel), true
}

// IsMonitorableScheme reports whether scheme names one of the three URI
// forms this package understands (used at validation boundaries).
func IsMonitorableScheme(s Scheme) bool {
	switch s {
	case SchemeFile, SchemeVault, SchemeHTTP, SchemeHTTPS:
		return true
	default:
		return false
	}
}
