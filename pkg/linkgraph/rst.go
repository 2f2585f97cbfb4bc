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
	rstInlineRE  = regexp.MustCompile("`([^`<]+)<([^>]+)>`_+")
	rstTargetRE  = regexp.MustCompile(`^\.\.\s+_([^:]+):\s+(\S+)`)
)

// rstParser extracts reStructuredText hyperlink references: inline
// `name <target>`_ references and explicit ".. _name: target" targets.
type rstParser struct{}

func (rstParser) Name() string { return "rst" }

func (rstParser) Parse(content []byte) ([]Link, error) {
	var links []Link
	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()

		for _, m := range rstInlineRE.FindAllStringSubmatchIndex(text, -1) {
			name := text[m[2]:m[3]]
			target := text[m[4]:m[5]]
			links = append(links, Link{Line: line, Column: m[0] + 1, Target: target, Name: name})
		}
		if m := rstTargetRE.FindStringSubmatchIndex(text); m != nil {
			name := text[m[2]:m[3]]
			target := text[m[4]:m[5]]
			links = append(links, Link{Line: line, Column: m[0] + 1, Target: target, Name: name})
		}
	}
	return links, scanner.Err()
}
