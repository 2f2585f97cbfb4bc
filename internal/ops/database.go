// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package ops

import (
	"github.com/kraklabs/wks/internal/app"
	"github.com/kraklabs/wks/internal/envelope"
	"github.com/kraklabs/wks/pkg/db"
)

// DatabaseReset deletes every document from the named collections
// ("nodes", "edges", "transform"), or all three when names is empty.
// Resetting "transform" goes through the transform cache, so the cached
// artifact files are removed along with the rows.
func DatabaseReset(a *app.App, names []string) *envelope.Envelope {
	if len(names) == 0 {
		names = []string{"nodes", "edges", "transform"}
	}
	env := envelope.Ok(map[string]any{})
	deleted := map[string]int{}
	for _, name := range names {
		var col db.Collection
		switch name {
		case "nodes":
			col = a.Nodes
		case "edges":
			col = a.Edges
		case "transform":
			n, err := a.Transform.Count(db.Filter{})
			if err == nil {
				_, err = a.TransformCache.Reset()
			}
			if err != nil {
				env.AddError("Reset failed for "+name, err.Error())
				continue
			}
			deleted[name] = n
			continue
		default:
			env.AddError("Unknown collection", name)
			continue
		}
		n, err := col.DeleteMany(db.Filter{})
		if err != nil {
			env.AddError("Reset failed for "+name, err.Error())
			continue
		}
		deleted[name] = n
	}
	env.Data["deleted"] = deleted
	return env
}
