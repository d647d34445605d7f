// Copyright 2026 The BranchGeo Authors
// SPDX-License-Identifier: Apache-2.0

package matcher

import (
	"sort"
	"strings"

	"github.com/jcodagnone/branchgeo/utils/htmlutils"
	"github.com/jcodagnone/branchgeo/utils/textutils"
	"golang.org/x/net/html"
)

const (
	// longer texts are paragraphs, not headings.
	maxHeadingLen = 200

	// share of the branch name words that must be present in a heading.
	fuzzyThreshold = 0.85

	// how many headings are tried before giving up on container scoping.
	maxCandidates = 5
)

var headingTags = []string{
	"h1", "h2", "h3", "h4", "h5", "h6",
	"strong", "b", "span", "a", "div", "p", "li", "td", "dt", "label",
}

var headingClassHints = []string{"heading", "hdr", "title", "name"}

var containerTags = []string{
	"article", "section", "table", "tbody", "tr", "li", "ul", "ol", "address",
}

var containerClassHints = []string{
	"row", "container", "wrap", "card", "location", "branch", "elementor", "widget",
}

// branchNode is an element whose text names the branch. label is the part of
// text that holds the name; whatever surrounds it may be the address itself.
type branchNode struct {
	node  *html.Node
	text  string
	label string
	exact bool
}

// nameLabel returns the occurrence of name within text, or the whole text.
func nameLabel(text, name string) string {
	name = strings.TrimSpace(name)
	lower := strings.ToLower(text)

	// lower casing must not move byte offsets.
	if name == "" || len(lower) != len(text) {
		return text
	}

	if i := strings.Index(lower, strings.ToLower(name)); i != -1 && len(name) <= len(text)-i {
		return text[i : i+len(name)]
	}

	return text
}

func hasClassHint(n *html.Node, hints []string) bool {
	classes := htmlutils.Classes(n)
	if classes == "" {
		return false
	}

	for _, hint := range hints {
		if strings.Contains(classes, hint) {
			return true
		}
	}

	return false
}

func isHeadingLike(n *html.Node) bool {
	return htmlutils.IsElement(n, headingTags...) ||
		(n.Type == html.ElementNode && hasClassHint(n, headingClassHints))
}

func isContainerLike(n *html.Node) bool {
	return htmlutils.IsElement(n, containerTags...) ||
		(n.Type == html.ElementNode && hasClassHint(n, containerClassHints))
}

// fuzzyMatch reports whether the heading words cover the branch name words.
func fuzzyMatch(target, candidate map[string]struct{}) bool {
	if len(target) == 0 || len(candidate) == 0 {
		return false
	}

	inter := 0

	for w := range target {
		if _, ok := candidate[w]; ok {
			inter++
		}
	}

	return inter == len(target) || float64(inter)/float64(len(target)) >= fuzzyThreshold
}

// dropAncestors keeps only the innermost nodes: a node that contains another
// node of the list is removed.
func dropAncestors(nodes []branchNode) []branchNode {
	var ret []branchNode

	for _, a := range nodes {
		if !containsAny(a.node, nodes) {
			ret = append(ret, a)
		}
	}

	return ret
}

// containsAny reports whether n strictly contains a node of the list.
func containsAny(n *html.Node, nodes []branchNode) bool {
	for _, b := range nodes {
		if n != b.node && htmlutils.Contains(n, b.node) {
			return true
		}
	}

	return false
}

// findBranchNodes returns the elements that may carry the branch name, best
// first: exact matches in document order, then partial matches from the most
// specific (shortest) to the least.
func findBranchNodes(doc *html.Node, name string) []branchNode {
	target := textutils.Normalize(name)
	if target == "" {
		return nil
	}

	targetTokens := textutils.Tokens(name)

	var exact, fuzzy []branchNode

	htmlutils.Walk(doc, func(n *html.Node) bool {
		if !isHeadingLike(n) {
			return true
		}

		text := htmlutils.Text(n)
		if text == "" || len(text) > maxHeadingLen {
			return true
		}

		if textutils.Normalize(text) == target {
			exact = append(exact, branchNode{node: n, text: text, label: text, exact: true})
		} else if fuzzyMatch(targetTokens, textutils.Tokens(text)) {
			fuzzy = append(fuzzy, branchNode{node: n, text: text, label: nameLabel(text, name)})
		}

		return true
	})

	exact = dropAncestors(exact)

	var partial []branchNode

	// a partial match wrapping an exact one adds nothing.
	for _, f := range dropAncestors(fuzzy) {
		if !containsAny(f.node, exact) {
			partial = append(partial, f)
		}
	}

	sortByLength(partial)

	ret := append(exact, partial...)
	if len(ret) == 0 {
		ret = findBranchTextRuns(doc, target, targetTokens, name)
	}

	if len(ret) > maxCandidates {
		ret = ret[:maxCandidates]
	}

	return ret
}

// findBranchTextRuns looks for the name in bare text nodes, such as text
// placed right under <body>, when no element carries it.
func findBranchTextRuns(doc *html.Node, target string, targetTokens map[string]struct{}, name string) []branchNode {
	var exact, partial []branchNode

	htmlutils.Walk(doc, func(n *html.Node) bool {
		if htmlutils.Invisible(n) {
			return false
		}

		if n.Type != html.TextNode {
			return true
		}

		text := htmlutils.Text(n)
		if text == "" || len(text) > maxHeadingLen {
			return true
		}

		if textutils.Normalize(text) == target {
			exact = append(exact, branchNode{node: n, text: text, label: text, exact: true})
		} else if fuzzyMatch(targetTokens, textutils.Tokens(text)) {
			partial = append(partial, branchNode{node: n, text: text, label: nameLabel(text, name)})
		}

		return true
	})

	sortByLength(partial)

	return append(exact, partial...)
}

// findContainer walks up from the branch heading to the smallest ancestor that
// looks like a card, row or section and holds more than the heading itself.
func findContainer(branch *html.Node) *html.Node {
	headingLen := len(htmlutils.Text(branch))

	for n := branch; n.Parent != nil; n = n.Parent {
		p := n.Parent
		if p.Type != html.ElementNode || htmlutils.IsElement(p, "html", "body") {
			break
		}

		if isContainerLike(p) && len(htmlutils.Text(p)) > headingLen+5 {
			return p
		}
	}

	if p := branch.Parent; p != nil && p.Type == html.ElementNode && !htmlutils.IsElement(p, "html", "body") {
		return p
	}

	return nil
}

func sortByLength(nodes []branchNode) {
	sort.SliceStable(nodes, func(i, j int) bool {
		return len(nodes[i].text) < len(nodes[j].text)
	})
}
