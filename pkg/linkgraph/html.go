// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package linkgraph

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/html"
)

// htmlParser extracts href/src attribute values via a Tree-sitter HTML
// grammar.
type htmlParser struct{}

func (htmlParser) Name() string { return "html" }

func (htmlParser) Parse(content []byte) ([]Link, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(html.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	var links []Link
	walkHTML(tree.RootNode(), content, &links)
	return links, nil
}

func walkHTML(n *sitter.Node, src []byte, links *[]Link) {
	if n == nil {
		return
	}
	if n.Type() == "attribute" {
		if link, ok := attributeLink(n, src); ok {
			*links = append(*links, link)
		}
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		walkHTML(n.Child(i), src, links)
	}
}

func attributeLink(n *sitter.Node, src []byte) (Link, bool) {
	var name, value string
	var valueNode *sitter.Node
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch child.Type() {
		case "attribute_name":
			name = child.Content(src)
		case "attribute_value", "quoted_attribute_value":
			valueNode = child
			value = strings.Trim(child.Content(src), `"'`)
		}
	}
	if valueNode == nil || (name != "href" && name != "src") {
		return Link{}, false
	}
	point := valueNode.StartPoint()
	return Link{
		Line:   int(point.Row) + 1,
		Column: int(point.Column) + 1,
		Target: value,
	}, true
}
