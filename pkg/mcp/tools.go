// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/kraklabs/wks/internal/config"
	"github.com/kraklabs/wks/internal/envelope"
	"github.com/kraklabs/wks/internal/ops"
)

type toolHandler func(ctx context.Context, s *Server, args map[string]any) *envelope.Envelope

// toolHandlers maps each wksm_<group>_<subcommand> name to its handler.
// Every handler delegates to internal/ops, the same layer cmd/wks calls,
// so CLI and MCP produce structurally identical envelopes.
var toolHandlers = map[string]toolHandler{
	"wksm_monitor_sync":   handleMonitorSync,
	"wksm_monitor_check":  handleMonitorCheck,
	"wksm_monitor_status": handleMonitorStatus,

	"wksm_vault_register": handleVaultRegister,
	"wksm_vault_sync":     handleVaultSync,
	"wksm_vault_check":    handleVaultCheck,
	"wksm_vault_status":   handleVaultStatus,

	"wksm_link_sync":  handleLinkSync,
	"wksm_link_check": handleLinkCheck,
	"wksm_link_show":  handleLinkShow,
	"wksm_link_prune": handleLinkPrune,

	"wksm_transform_run":   handleTransformRun,
	"wksm_transform_cat":   handleTransformCat,
	"wksm_transform_reset": handleTransformReset,
	"wksm_transform_audit": handleTransformAudit,

	"wksm_diff_run": handleDiffRun,

	"wksm_config_show":            handleConfigShow,
	"wksm_config_list_filter":     handleConfigListFilter,
	"wksm_config_add_filter":      handleConfigAddFilter,
	"wksm_config_remove_filter":   handleConfigRemoveFilter,
	"wksm_config_list_priority":   handleConfigListPriority,
	"wksm_config_set_priority":    handleConfigSetPriority,
	"wksm_config_remove_priority": handleConfigRemovePriority,

	"wksm_database_reset": handleDatabaseReset,

	"wksm_log_show":  handleLogShow,
	"wksm_log_prune": handleLogPrune,

	"wksm_daemon_status": handleDaemonStatus,
}

func (s *Server) callTool(ctx context.Context, params toolCallParams) *toolResult {
	handler, ok := toolHandlers[params.Name]
	if !ok {
		return &toolResult{
			Content: []content{{Type: "text", Text: fmt.Sprintf("unknown tool: %s", params.Name)}},
			IsError: true,
		}
	}
	env := handler(ctx, s, params.Arguments)
	text, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return &toolResult{
			Content: []content{{Type: "text", Text: fmt.Sprintf("cannot encode result: %v", err)}},
			IsError: true,
		}
	}
	return &toolResult{
		Content: []content{{Type: "text", Text: string(text)}},
		IsError: !env.Success,
	}
}

func strArg(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return v
}

func boolArg(args map[string]any, key string, fallback bool) bool {
	if v, ok := args[key].(bool); ok {
		return v
	}
	return fallback
}

func floatArg(args map[string]any, key string, fallback float64) float64 {
	switch v := args[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return fallback
	}
}

func strSliceArg(args map[string]any, key string) []string {
	raw, ok := args[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func mapArg(args map[string]any, key string) map[string]any {
	m, _ := args[key].(map[string]any)
	return m
}

func handleMonitorSync(_ context.Context, s *Server, args map[string]any) *envelope.Envelope {
	return ops.MonitorSync(s.app, strArg(args, "path"), boolArg(args, "recursive", false))
}

func handleMonitorCheck(_ context.Context, s *Server, args map[string]any) *envelope.Envelope {
	return ops.MonitorCheck(s.app, strArg(args, "path"))
}

func handleMonitorStatus(_ context.Context, s *Server, _ map[string]any) *envelope.Envelope {
	return ops.MonitorStatus(s.app)
}

func handleVaultRegister(_ context.Context, s *Server, _ map[string]any) *envelope.Envelope {
	return ops.VaultRegister(s.app)
}

func handleVaultSync(_ context.Context, s *Server, args map[string]any) *envelope.Envelope {
	return ops.VaultSync(s.app, strArg(args, "path"), boolArg(args, "remote", false))
}

func handleVaultCheck(_ context.Context, s *Server, args map[string]any) *envelope.Envelope {
	return ops.VaultCheck(s.app, strArg(args, "path"), boolArg(args, "remote", false))
}

func handleVaultStatus(_ context.Context, s *Server, _ map[string]any) *envelope.Envelope {
	return ops.VaultStatus(s.app)
}

func handleLinkSync(_ context.Context, s *Server, args map[string]any) *envelope.Envelope {
	return ops.LinkSync(s.app, strArg(args, "path"), strArg(args, "parser"), boolArg(args, "recursive", false))
}

func handleLinkCheck(_ context.Context, s *Server, args map[string]any) *envelope.Envelope {
	return ops.LinkCheck(s.app, strArg(args, "path"), strArg(args, "parser"), boolArg(args, "remote", false))
}

func handleLinkShow(_ context.Context, s *Server, args map[string]any) *envelope.Envelope {
	direction := strArg(args, "direction")
	if direction == "" {
		direction = "either"
	}
	return ops.LinkShow(s.app, strArg(args, "uri"), direction)
}

func handleLinkPrune(_ context.Context, s *Server, args map[string]any) *envelope.Envelope {
	return ops.LinkPrune(s.app, boolArg(args, "remote", false))
}

func handleTransformRun(_ context.Context, s *Server, args map[string]any) *envelope.Envelope {
	return ops.Transform(s.app, strArg(args, "engine"), strArg(args, "path"), mapArg(args, "options"))
}

func handleTransformCat(_ context.Context, s *Server, args map[string]any) *envelope.Envelope {
	rc, size, err := ops.Cat(s.app, strArg(args, "target"))
	if err != nil {
		return envelope.Fail(err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return envelope.Fail(err)
	}
	return envelope.Ok(map[string]any{
		"target":     strArg(args, "target"),
		"size_bytes": size,
		"content":    string(data),
	})
}

func handleTransformReset(_ context.Context, s *Server, _ map[string]any) *envelope.Envelope {
	return ops.TransformReset(s.app)
}

func handleTransformAudit(_ context.Context, s *Server, _ map[string]any) *envelope.Envelope {
	return ops.TransformAudit(s.app)
}

func handleDiffRun(_ context.Context, s *Server, args map[string]any) *envelope.Envelope {
	return ops.Diff(s.app, strArg(args, "engine"), strArg(args, "from"), strArg(args, "to"))
}

func handleConfigShow(_ context.Context, s *Server, _ map[string]any) *envelope.Envelope {
	return ops.ConfigShow(s.app)
}

func handleConfigListFilter(_ context.Context, s *Server, args map[string]any) *envelope.Envelope {
	return ops.ConfigListFilter(s.app, config.FilterListKind(strArg(args, "kind")))
}

func handleConfigAddFilter(_ context.Context, s *Server, args map[string]any) *envelope.Envelope {
	return ops.ConfigAddFilter(s.app, config.FilterListKind(strArg(args, "kind")), strArg(args, "value"))
}

func handleConfigRemoveFilter(_ context.Context, s *Server, args map[string]any) *envelope.Envelope {
	return ops.ConfigRemoveFilter(s.app, config.FilterListKind(strArg(args, "kind")), strArg(args, "value"))
}

func handleConfigListPriority(_ context.Context, s *Server, _ map[string]any) *envelope.Envelope {
	return ops.ConfigListPriority(s.app)
}

func handleConfigSetPriority(_ context.Context, s *Server, args map[string]any) *envelope.Envelope {
	return ops.ConfigSetPriority(s.app, strArg(args, "dir"), floatArg(args, "base_priority", 0))
}

func handleConfigRemovePriority(_ context.Context, s *Server, args map[string]any) *envelope.Envelope {
	return ops.ConfigRemovePriority(s.app, strArg(args, "dir"))
}

func handleDatabaseReset(_ context.Context, s *Server, args map[string]any) *envelope.Envelope {
	return ops.DatabaseReset(s.app, strSliceArg(args, "collections"))
}

func handleLogShow(_ context.Context, s *Server, args map[string]any) *envelope.Envelope {
	return ops.LogShow(s.app, strSliceArg(args, "levels"))
}

func handleLogPrune(_ context.Context, s *Server, _ map[string]any) *envelope.Envelope {
	return ops.LogPrune(s.app)
}

func handleDaemonStatus(_ context.Context, s *Server, _ map[string]any) *envelope.Envelope {
	return ops.DaemonStatus(s.app)
}

var toolDefinitions = []Tool{
	{Name: "wksm_monitor_sync", Description: "Walk a path and write its monitor nodes (priority-scored).",
		InputSchema: schema(req("path"), prop("path", "string"), prop("recursive", "boolean"))},
	{Name: "wksm_monitor_check", Description: "Report whether a path is monitored and its priority, without writing.",
		InputSchema: schema(req("path"), prop("path", "string"))},
	{Name: "wksm_monitor_status", Description: "Report the last monitor sync timestamp.",
		InputSchema: schema(nil)},

	{Name: "wksm_vault_register", Description: "Register the configured vault base path as a monitored include path.",
		InputSchema: schema(nil)},
	{Name: "wksm_vault_sync", Description: "Sync a file's links within the vault and mirror external targets.",
		InputSchema: schema(req("path"), prop("path", "string"), prop("remote", "boolean"))},
	{Name: "wksm_vault_check", Description: "Check a file's links within the vault without writing.",
		InputSchema: schema(req("path"), prop("path", "string"), prop("remote", "boolean"))},
	{Name: "wksm_vault_status", Description: "Report vault edge counts and invariant violations.",
		InputSchema: schema(nil)},

	{Name: "wksm_link_sync", Description: "Parse a file (or, recursively, a directory) and replace its edge set.",
		InputSchema: schema(req("path"), prop("path", "string"), prop("parser", "string"), prop("recursive", "boolean"))},
	{Name: "wksm_link_check", Description: "Parse a file and classify its links without writing.",
		InputSchema: schema(req("path"), prop("path", "string"), prop("parser", "string"), prop("remote", "boolean"))},
	{Name: "wksm_link_show", Description: "List edges touching a URI (direction: from, to, or either).",
		InputSchema: schema(req("uri"), prop("uri", "string"), prop("direction", "string"))},
	{Name: "wksm_link_prune", Description: "Remove edges whose source or target no longer exists.",
		InputSchema: schema(nil, prop("remote", "boolean"))},

	{Name: "wksm_transform_run", Description: "Run (or reuse) a cached transform of a file through a named engine.",
		InputSchema: schema(req("engine", "path"), prop("engine", "string"), prop("path", "string"), prop("options", "object"))},
	{Name: "wksm_transform_cat", Description: "Fetch a cached transform artifact by checksum or source path.",
		InputSchema: schema(req("target"), prop("target", "string"))},
	{Name: "wksm_transform_reset", Description: "Delete every cached transform artifact and row.",
		InputSchema: schema(nil)},
	{Name: "wksm_transform_audit", Description: "Reconcile the transform cache rows against the artifact directory.",
		InputSchema: schema(nil)},

	{Name: "wksm_diff_run", Description: "Render a unified diff between two files through a configured diff engine.",
		InputSchema: schema(req("from", "to"), prop("engine", "string"), prop("from", "string"), prop("to", "string"))},

	{Name: "wksm_config_show", Description: "Show the active configuration document.",
		InputSchema: schema(nil)},
	{Name: "wksm_config_list_filter", Description: "List one monitor filter rule list.",
		InputSchema: schema(req("kind"), prop("kind", "string"))},
	{Name: "wksm_config_add_filter", Description: "Add a value to a monitor filter rule list.",
		InputSchema: schema(req("kind", "value"), prop("kind", "string"), prop("value", "string"))},
	{Name: "wksm_config_remove_filter", Description: "Remove a value from a monitor filter rule list.",
		InputSchema: schema(req("kind", "value"), prop("kind", "string"), prop("value", "string"))},
	{Name: "wksm_config_list_priority", Description: "List every managed directory and its base priority.",
		InputSchema: schema(nil)},
	{Name: "wksm_config_set_priority", Description: "Set (or add) a managed directory's base priority.",
		InputSchema: schema(req("dir", "base_priority"), prop("dir", "string"), prop("base_priority", "number"))},
	{Name: "wksm_config_remove_priority", Description: "Remove a managed directory.",
		InputSchema: schema(req("dir"), prop("dir", "string"))},

	{Name: "wksm_database_reset", Description: "Delete every document from the named collections (default: all).",
		InputSchema: schema(nil, propArray("collections", "string"))},

	{Name: "wksm_log_show", Description: "Show the log lines kept after retention pruning, optionally filtered by level.",
		InputSchema: schema(nil, propArray("levels", "string"))},
	{Name: "wksm_log_prune", Description: "Delete log entries older than the configured retention window.",
		InputSchema: schema(nil)},

	{Name: "wksm_daemon_status", Description: "Read the daemon's heartbeat file without starting anything.",
		InputSchema: schema(nil)},
}

func schema(required []string, props ...map[string]any) map[string]any {
	properties := map[string]any{}
	for _, p := range props {
		for k, v := range p {
			properties[k] = v
		}
	}
	s := map[string]any{"type": "object", "properties": properties}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

func req(names ...string) []string { return names }

func prop(name, jsonType string) map[string]any {
	return map[string]any{name: map[string]any{"type": jsonType}}
}

func propArray(name, itemType string) map[string]any {
	return map[string]any{name: map[string]any{"type": "array", "items": map[string]any{"type": itemType}}}
}
