// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package linkgraph

import (
	"bufio"
	"bytes"
	"regexp"
)

var (
	wikiLinkRE = regexp.MustCompile(`(!?)\[\[([^\]|#]+)(?:#[^\]|]*)?(?:\|([^\]]*))?\]\]`)
	mdLinkRE   = regexp.MustCompile(`\[([^\]]*)\]\(([^)\s]+)(?:\s+"[^"]*")?\)`)
)

// markdownParser extracts Obsidian-style wiki links ([[target]],
// ![[embed]]) and standard Markdown links ([name](target)).
type markdownParser struct{}

func (markdownParser) Name() string { return "markdown" }

func (markdownParser) Parse(content []byte) ([]Link, error) {
	var links []Link
	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()

		for _, m := range wikiLinkRE.FindAllStringSubmatchIndex(text, -1) {
			target := text[m[4]:m[5]]
			name := ""
			if m[6] >= 0 {
				name = text[m[6]:m[7]]
			}
			links = append(links, Link{Line: line, Column: m[0] + 1, Target: target, Name: name})
		}
		for _, m := range mdLinkRE.FindAllStringSubmatchIndex(text, -1) {
			name := text[m[2]:m[3]]
			target := text[m[4]:m[5]]
			links = append(links, Link{Line: line, Column: m[0] + 1, Target: target, Name: name})
		}
	}
	return links, scanner.Err()
}
