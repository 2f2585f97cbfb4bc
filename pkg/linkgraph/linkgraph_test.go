// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package linkgraph

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/kraklabs/wks/pkg/db"
)

func TestMarkdownParserExtractsWikiLinksAndEmbeds(t *testing.T) {
	content := []byte("[[B]]\n![[img.png]]\n")
	links, err := markdownParser{}.Parse(content)
	if err != nil {
		t.Fatal(err)
	}
	if len(links) != 2 {
		t.Fatalf("got %d links, want 2: %+v", len(links), links)
	}
	if links[0].Target != "B" || links[0].Line != 1 {
		t.Fatalf("got %+v", links[0])
	}
	if links[1].Target != "img.png" || links[1].Line != 2 {
		t.Fatalf("got %+v", links[1])
	}
}

func TestRawParserExtractsURLsOnly(t *testing.T) {
	content := []byte("see https://example.com/a and plain text\n[[not a url]]\n")
	links, err := rawParser{}.Parse(content)
	if err != nil {
		t.Fatal(err)
	}
	if len(links) != 1 || links[0].Target != "https://example.com/a" {
		t.Fatalf("got %+v", links)
	}
}

func TestVaultSyncProducesExpectedEdges(t *testing.T) {
	// Projects/A.md with a wikilink [[B]] and an embedded image ![[img.png]].
	vaultDir := t.TempDir()
	projDir := filepath.Join(vaultDir, "Projects")
	if err := os.MkdirAll(projDir, 0o755); err != nil {
		t.Fatal(err)
	}
	source := filepath.Join(projDir, "A.md")
	if err := os.WriteFile(source, []byte("[[B]]\n![[img.png]]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	col, _ := db.NewMockDriver().Open("edges")
	eng := New(col, vaultDir)

	result, err := eng.Sync(source, "", false)
	if err != nil {
		t.Fatal(err)
	}
	if result.EdgesWritten != 2 {
		t.Fatalf("got %+v", result)
	}

	docs, err := col.Find(db.Filter{"from_uri": "vault:///Projects/A.md"})
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 2 {
		t.Fatalf("got %d docs, want 2", len(docs))
	}

	// Re-sync must be byte-identical: same IDs, same field values.
	before := make(map[string]db.Document, len(docs))
	for _, d := range docs {
		before[fmt.Sprint(d["_id"])] = d
	}
	if _, err := eng.Sync(source, "", false); err != nil {
		t.Fatal(err)
	}
	after, _ := col.Find(db.Filter{"from_uri": "vault:///Projects/A.md"})
	if len(after) != 2 {
		t.Fatalf("got %d docs after resync, want 2", len(after))
	}
	for _, d := range after {
		prior, ok := before[fmt.Sprint(d["_id"])]
		if !ok {
			t.Fatalf("edge %v did not exist before resync: ids changed", d["_id"])
		}
		if prior["to_uri"] != d["to_uri"] || prior["line_number"] != d["line_number"] {
			t.Fatalf("resync changed fields: %+v vs %+v", prior, d)
		}
	}
}

func TestShowFindsEdgesByDirection(t *testing.T) {
	col, _ := db.NewMockDriver().Open("edges")
	eng := New(col, "")
	col.UpdateOne(db.Filter{"_id": "1"}, db.Document{"_id": "1", "from_uri": "vault:///A.md", "to_uri": "vault:///B.md"}, true)

	fromDocs, err := eng.Show("vault:///A.md", "from")
	if err != nil || len(fromDocs) != 1 {
		t.Fatalf("from: docs=%d err=%v", len(fromDocs), err)
	}
	toDocs, err := eng.Show("vault:///B.md", "to")
	if err != nil || len(toDocs) != 1 {
		t.Fatalf("to: docs=%d err=%v", len(toDocs), err)
	}
}
