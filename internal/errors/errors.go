// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package errors defines the typed error kinds that every WKS operation
// surfaces through the command-protocol envelope instead of raw Go errors.
package errors

import (
	"fmt"

	"github.com/fatih/color"
)

// Kind classifies a UserError so callers (CLI, RPC, envelope) can react
// without re-parsing message text.
type Kind string

const (
	KindConfigInvalid      Kind = "ConfigInvalid"
	KindPathNotMonitored   Kind = "PathNotMonitored"
	KindNotFound           Kind = "NotFound"
	KindConflict           Kind = "Conflict"
	KindBackendUnavailable Kind = "BackendUnavailable"
	KindEngineFailure      Kind = "EngineFailure"
	KindTimeout            Kind = "Timeout"
	KindCancelled          Kind = "Cancelled"
	KindInvariant          Kind = "Invariant"
	KindAlreadyRunning     Kind = "AlreadyRunning"
	KindUnsupported        Kind = "Unsupported"
	KindInternal           Kind = "Internal"
	KindPermission         Kind = "Permission"
	KindInput              Kind = "Input"
	KindNetwork            Kind = "Network"
)

// UserError is the structured error type every WKS operation returns.
//
// Title is a short summary, Detail explains what went wrong, Suggestion
// tells the user what to do next, and Cause (optional) wraps the
// underlying error for %w chains and logging.
type UserError struct {
	Kind       Kind
	Title      string
	Detail     string
	Suggestion string
	Cause      error
}

func (e *UserError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Title, e.Detail, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Title, e.Detail)
}

func (e *UserError) Unwrap() error { return e.Cause }

// Format renders the error the way the CLI prints it to standard error:
// a "FAIL" banner, title, detail, suggestion, and cause. When color
// is true the banner and title are rendered in red.
func (e *UserError) Format(useColor bool) string {
	fail := "FAIL"
	if useColor {
		fail = color.New(color.FgRed, color.Bold).Sprint("FAIL")
	}
	title := e.Title
	if useColor {
		title = color.New(color.FgRed).Sprint(e.Title)
	}
	s := fmt.Sprintf("%s: %s\n  %s", fail, title, e.Detail)
	if e.Suggestion != "" {
		s += fmt.Sprintf("\n  Suggestion: %s", e.Suggestion)
	}
	if e.Cause != nil {
		s += fmt.Sprintf("\n  Cause: %v", e.Cause)
	}
	return s
}

func newErr(kind Kind, title, detail, suggestion string, cause error) *UserError {
	return &UserError{Kind: kind, Title: title, Detail: detail, Suggestion: suggestion, Cause: cause}
}

func NewConfigError(title, detail, suggestion string, cause error) *UserError {
	return newErr(KindConfigInvalid, title, detail, suggestion, cause)
}

func NewPathNotMonitoredError(title, detail, suggestion string, cause error) *UserError {
	return newErr(KindPathNotMonitored, title, detail, suggestion, cause)
}

func NewNotFoundError(title, detail, suggestion string, cause error) *UserError {
	return newErr(KindNotFound, title, detail, suggestion, cause)
}

func NewConflictError(title, detail, suggestion string, cause error) *UserError {
	return newErr(KindConflict, title, detail, suggestion, cause)
}

func NewDatabaseError(title, detail, suggestion string, cause error) *UserError {
	return newErr(KindBackendUnavailable, title, detail, suggestion, cause)
}

func NewEngineError(title, detail, suggestion string, cause error) *UserError {
	return newErr(KindEngineFailure, title, detail, suggestion, cause)
}

func NewTimeoutError(title, detail, suggestion string, cause error) *UserError {
	return newErr(KindTimeout, title, detail, suggestion, cause)
}

func NewCancelledError(title, detail, suggestion string, cause error) *UserError {
	return newErr(KindCancelled, title, detail, suggestion, cause)
}

func NewInvariantError(title, detail, suggestion string, cause error) *UserError {
	return newErr(KindInvariant, title, detail, suggestion, cause)
}

func NewAlreadyRunningError(title, detail, suggestion string, cause error) *UserError {
	return newErr(KindAlreadyRunning, title, detail, suggestion, cause)
}

func NewUnsupportedError(title, detail, suggestion string, cause error) *UserError {
	return newErr(KindUnsupported, title, detail, suggestion, cause)
}

func NewInternalError(title, detail, suggestion string, cause error) *UserError {
	return newErr(KindInternal, title, detail, suggestion, cause)
}

func NewPermissionError(title, detail, suggestion string, cause error) *UserError {
	return newErr(KindPermission, title, detail, suggestion, cause)
}

// NewInputError builds a validation-style error. Some call sites have no
// underlying cause (e.g. a missing confirmation flag).
func NewInputError(title, detail, suggestion string) *UserError {
	return newErr(KindInput, title, detail, suggestion, nil)
}

func NewNetworkError(title, detail, suggestion string, cause error) *UserError {
	return newErr(KindNetwork, title, detail, suggestion, cause)
}

// AsUserError unwraps err into a *UserError, wrapping it as an internal
// error if it is some other error type. Never returns nil for a non-nil err.
func AsUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	if ue, ok := err.(*UserError); ok {
		return ue
	}
	return NewInternalError("Unexpected error", err.Error(), "This is a bug. Please report it.", err)
}
