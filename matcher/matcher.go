// Copyright 2026 The BranchGeo Authors
// SPDX-License-Identifier: Apache-2.0

// Package matcher finds the postal address of a named branch in a page that
// lists several locations.
//
// The heading that carries the branch name is located first; the address is
// then searched only within the card, row or section that holds the heading,
// so that addresses of neighbouring branches are not picked up. Only when
// that fails the rest of the page after the heading is scanned.
package matcher

import (
	"github.com/jcodagnone/branchgeo/utils/htmlutils"
	"golang.org/x/net/html"
)

// Match is the outcome of looking a branch up in a document. An empty Address
// means that either the name or its address could not be found.
type Match struct {
	MatchedName string `json:"matched_name"`
	Address     string `json:"address"`
	Street      string `json:"street"`
	City        string `json:"city"`
	State       string `json:"state"`
	Zip         string `json:"zip"`
}

// Found reports whether an address was resolved.
func (m Match) Found() bool {
	return m.Address != ""
}

// Find looks up the branch name in doc and returns its address.
func Find(doc *html.Node, name string) Match {
	var m Match

	candidates := findBranchNodes(doc, name)
	if len(candidates) == 0 {
		return m
	}

	m.MatchedName = candidates[0].text

	address := ""

	for i := range candidates {
		c := &candidates[i]
		container := findContainer(c.node)

		address = findAddressInScope(container, c)
		if address == "" && container != nil {
			if next := htmlutils.NextElementSibling(container); next != nil {
				address = findAddressInScope(next, c)
			}
		}

		if address != "" {
			m.MatchedName = c.text

			break
		}
	}

	if address == "" {
		address = findAddressAfter(doc, &candidates[0])
	}

	if address = cleanAddress(address); address == "" {
		return m
	}

	m.Address = address
	parseAddress(&m)

	return m
}

// FindAll looks up every name, in order.
func FindAll(doc *html.Node, names []string) []Match {
	ret := make([]Match, 0, len(names))
	for _, name := range names {
		ret = append(ret, Find(doc, name))
	}

	return ret
}
