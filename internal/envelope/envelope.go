// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package envelope implements the uniform result envelope and the
// announce/progress/result/output execution pattern shared by the CLI and
// the MCP JSON-RPC server. Every command handler in this module returns an
// *Envelope instead of printing ad hoc text.
package envelope

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/kraklabs/wks/internal/errors"
	"github.com/kraklabs/wks/internal/ui"
	"gopkg.in/yaml.v3"
)

// MessageType classifies one entry in an Envelope's Messages list.
type MessageType string

const (
	MessageError   MessageType = "error"
	MessageWarning MessageType = "warning"
	MessageInfo    MessageType = "info"
	MessageStatus  MessageType = "status"
)

// Message is one structured note attached to an Envelope.
type Message struct {
	Type    MessageType `json:"type" yaml:"type"`
	Text    string      `json:"text" yaml:"text"`
	Details string      `json:"details,omitempty" yaml:"details,omitempty"`
}

// Envelope is the uniform result every WKS operation returns, whether
// invoked from the CLI or over MCP: success flag, a structured data
// payload, and a list of messages. Failure always means Success=false and
// at least one error Message. Fail and AddError leave Data empty; a batch
// handler may record partial counts in Data after calling AddError
// (LinkSync and DatabaseReset do).
type Envelope struct {
	Success  bool           `json:"success" yaml:"success"`
	Data     map[string]any `json:"data" yaml:"data"`
	Messages []Message      `json:"messages" yaml:"messages"`
}

// Ok builds a successful envelope.
func Ok(data map[string]any, messages ...Message) *Envelope {
	if data == nil {
		data = map[string]any{}
	}
	return &Envelope{Success: true, Data: data, Messages: messages}
}

// Fail builds a failed envelope from one or more errors. Data is always
// empty on failure.
func Fail(errs ...error) *Envelope {
	msgs := make([]Message, 0, len(errs))
	for _, e := range errs {
		ue := errors.AsUserError(e)
		msgs = append(msgs, Message{Type: MessageError, Text: ue.Title, Details: ue.Detail})
	}
	return &Envelope{Success: false, Data: map[string]any{}, Messages: msgs}
}

// AddWarning appends a warning message without flipping Success.
func (e *Envelope) AddWarning(text string) *Envelope {
	e.Messages = append(e.Messages, Message{Type: MessageWarning, Text: text})
	return e
}

// AddError appends an error message, flips Success to false, and resets
// Data to an empty map.
func (e *Envelope) AddError(text, details string) *Envelope {
	e.Messages = append(e.Messages, Message{Type: MessageError, Text: text, Details: details})
	e.Success = false
	e.Data = map[string]any{}
	return e
}

// DisplayFormat selects the stage-4 output encoding.
type DisplayFormat string

const (
	DisplayYAML DisplayFormat = "yaml"
	DisplayJSON DisplayFormat = "json"
)

// WriteOutput renders stage 4 (the structured payload) to standard output.
// Standard output stays empty when the envelope failed.
func WriteOutput(env *Envelope, format DisplayFormat) error {
	if !env.Success {
		return nil
	}
	switch format {
	case DisplayJSON:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(env)
	default:
		out, err := yaml.Marshal(env)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(out)
		return err
	}
}

// Announce renders stage 1 (a short line describing what is about to
// happen) to standard error.
func Announce(format string, args ...any) {
	ui.Info(fmt.Sprintf(format, args...))
}

// Result renders stage 3 (success/failure summary with counts) to
// standard error and returns the envelope unchanged, so callers can chain
// it directly into WriteOutput.
func Result(env *Envelope) *Envelope {
	if env.Success {
		ui.Success(summarize(env))
	} else {
		for _, m := range env.Messages {
			if m.Type == MessageError {
				ui.ErrorLine(m.Text)
			}
		}
	}
	for _, m := range env.Messages {
		if m.Type == MessageWarning {
			ui.Warning(m.Text)
		}
	}
	return env
}

func summarize(env *Envelope) string {
	if len(env.Data) == 0 {
		return "done"
	}
	return fmt.Sprintf("done (%d field(s) in result)", len(env.Data))
}

// ExitCode returns the process exit code for env: 0 when Success is true,
// non-zero otherwise.
func ExitCode(env *Envelope) int {
	if env.Success {
		return 0
	}
	return 1
}
