// Copyright 2026 The BranchGeo Authors
// SPDX-License-Identifier: Apache-2.0

package matcher

import (
	"regexp"
	"strings"

	"github.com/jcodagnone/branchgeo/utils/htmlutils"
	"github.com/jcodagnone/branchgeo/utils/textutils"
	"golang.org/x/net/html"
)

const (
	minAddressScore = 8
	minAddressLen   = 8
	maxAddressLen   = 500
)

var (
	// street line, city, two letter state and ZIP, for addresses whose parts
	// live in different nodes.
	addressRegex = regexp.MustCompile(`(?i)\d{1,6}[\w\s.\-]*(?:street|st|avenue|ave|blvd|boulevard|road|rd|drive|dr|lane|ln|way|court|ct|place|pl|suite|ste)[\w\s.\-]*` +
		`[\s,]+[\w\s.\-]+[\s,]+\b[A-Za-z]{2}\b[\s,]+\d{5}(?:-\d{4})?`)
	simpleAddressRegex = regexp.MustCompile(`(?i)[\w\s.\-]{3,80},?\s*[A-Za-z]{2}\s*,?\s*\d{5}(?:-\d{4})?`)

	streetNumberRegex = regexp.MustCompile(`\b\d{1,6}\s+\w+`)
	cityStateZipRegex = regexp.MustCompile(`(?i),\s*[A-Z]{2}\s*\d{5}(-\d{4})?`)
	zipRegex          = regexp.MustCompile(`\b\d{5}(?:-\d{4})?\b`)

	addressLabelRegex = regexp.MustCompile(`(?i)\baddress:\s*`)
	punctuationRegex  = regexp.MustCompile(`[.,;]+(\s*[.,;])+`)
	parseRegex        = regexp.MustCompile(`(?is)^(.*),\s*([A-Z]{2})\s*(\d{5}(?:-\d{4})?)\s*$`)
)

var streetSuffixes = map[string]struct{}{
	"st": {}, "street": {}, "ave": {}, "avenue": {}, "rd": {}, "road": {},
	"blvd": {}, "boulevard": {}, "ln": {}, "lane": {}, "dr": {}, "drive": {},
	"hwy": {}, "highway": {}, "pkwy": {}, "parkway": {}, "ct": {}, "court": {},
	"cir": {}, "circle": {}, "ter": {}, "terrace": {}, "way": {}, "pl": {},
	"place": {}, "sq": {}, "square": {}, "suite": {}, "ste": {},
}

var penaltyLabels = []string{"hours", "phone", "fax", "toll free", "email"}

var addressTags = []string{
	"p", "div", "td", "strong", "b", "em", "a", "span", "li", "dd", "address",
}

// separators left behind once the branch name is cut from a line.
const separators = " \t-–—:|,•·"

func hasStreetSuffix(text string) bool {
	for w := range textutils.Tokens(text) {
		if _, ok := streetSuffixes[w]; ok {
			return true
		}
	}

	return false
}

// scoreAddress rates how much text looks like a postal address.
func scoreAddress(text string, labelled bool) int {
	if text == "" || len(text) > maxAddressLen {
		return -20
	}

	score := 0
	lower := strings.ToLower(text)
	suffix := hasStreetSuffix(text)
	cityStateZip := cityStateZipRegex.MatchString(text)

	if streetNumberRegex.MatchString(text) {
		score += 6
	}

	if suffix {
		score += 6
	}

	if cityStateZip {
		score += 6
	}

	if labelled {
		score += 4
	}

	for _, label := range penaltyLabels {
		if strings.Contains(lower, label) {
			if !cityStateZip && !suffix {
				score -= 10
			}

			break
		}
	}

	if len(text) > 300 && strings.Count(lower, "http")+strings.Count(lower, "<") > 2 {
		score -= 10
	}

	return score
}

// hasAddressLabel reports whether the element right before n says "address".
func hasAddressLabel(n *html.Node) bool {
	prev := htmlutils.PrevElementSibling(n)

	return prev != nil && strings.Contains(strings.ToLower(htmlutils.Text(prev)), "address")
}

// candidateText is the visible text of n without the branch name, when n
// holds the branch heading.
func candidateText(n *html.Node, b *branchNode) string {
	text := htmlutils.Text(n)
	if b == nil || b.label == "" || !htmlutils.Contains(n, b.node) {
		return text
	}

	before, after, found := strings.Cut(text, b.label)
	if !found {
		return text
	}

	return strings.Trim(strings.TrimSpace(before)+" "+strings.TrimSpace(after), separators)
}

// extractAddress pulls one address out of a run of text.
func extractAddress(text string) string {
	if m := addressRegex.FindString(text); m != "" {
		return strings.TrimSpace(m)
	}

	return strings.TrimSpace(simpleAddressRegex.FindString(text))
}

// findAddressInScope scores every address-shaped element of scope, the scope
// included, and returns the best text.
func findAddressInScope(scope *html.Node, b *branchNode) string {
	if scope == nil {
		return ""
	}

	var (
		best      string
		bestScore = -100
		branch    *html.Node
	)

	if b != nil {
		branch = b.node
	}

	seen := branch == nil || !htmlutils.Contains(scope, branch)

	consider := func(n *html.Node, isScope bool) bool {
		text := candidateText(n, b)
		if len(text) < minAddressLen {
			return false
		}

		score := scoreAddress(text, hasAddressLabel(n))

		if !isScope && branch != nil {
			switch {
			case htmlutils.Contains(n, branch):
				score += 2
			case !seen:
				// belongs to whatever was listed before this branch.
				score -= 2
			}
		}

		if score >= minAddressScore && (score > bestScore || (score == bestScore && len(text) < len(best))) {
			best, bestScore = text, score

			return true
		}

		return false
	}

	htmlutils.Walk(scope, func(n *html.Node) bool {
		if n == branch {
			seen = true
		}

		if n != scope && htmlutils.IsElement(n, addressTags...) {
			consider(n, false)
		}

		return true
	})

	bestIsScope := consider(scope, true)

	// the address may be split across nodes; the text of the whole scope
	// puts the parts back together.
	full := candidateText(scope, b)
	if len(full) >= 15 {
		if extracted := extractAddress(full); extracted != "" && scoreAddress(extracted, false) >= minAddressScore {
			switch {
			case zipRegex.MatchString(extracted) && (best == "" || bestIsScope || !zipRegex.MatchString(best)):
				best = extracted
			case best == "":
				best = extracted
			}
		}
	}

	return best
}

// findAddressAfter scans the whole document for the first address-shaped
// element at or after branch.
func findAddressAfter(doc *html.Node, b *branchNode) string {
	var (
		seen  bool
		found *html.Node
	)

	branch := b.node

	htmlutils.Walk(doc, func(n *html.Node) bool {
		if found != nil {
			return false
		}

		if n == branch {
			seen = true
		}

		if !seen || !(n == branch || htmlutils.IsElement(n, addressTags...)) {
			return true
		}

		text := candidateText(n, b)
		if len(text) >= minAddressLen && scoreAddress(text, hasAddressLabel(n)) >= minAddressScore {
			found = n

			return false
		}

		return true
	})

	if found == nil {
		return ""
	}

	if best := findAddressInScope(found, b); best != "" {
		return best
	}

	return candidateText(found, b)
}

// cleanAddress drops labels and repeated punctuation.
func cleanAddress(raw string) string {
	s := addressLabelRegex.ReplaceAllString(raw, "")
	s = punctuationRegex.ReplaceAllString(s, ",")

	return strings.Trim(strings.TrimSpace(s), separators)
}

// parseAddress splits a US style "street, city, ST 12345" address.
func parseAddress(m *Match) {
	parts := parseRegex.FindStringSubmatch(m.Address)
	if parts == nil {
		m.Street = m.Address

		return
	}

	street := strings.TrimRight(strings.TrimSpace(parts[1]), ",")
	m.State = strings.ToUpper(strings.TrimSpace(parts[2]))
	m.Zip = strings.TrimSpace(parts[3])

	if i := strings.LastIndex(street, ","); i != -1 {
		m.City = strings.TrimSpace(street[i+1:])
		street = strings.TrimSpace(street[:i])
	}

	m.Street = street
}
