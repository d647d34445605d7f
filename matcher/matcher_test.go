// Copyright 2026 The BranchGeo Authors
// SPDX-License-Identifier: Apache-2.0

package matcher

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func parse(t *testing.T, input string) *html.Node {
	t.Helper()

	n, err := html.Parse(strings.NewReader(input))
	require.NoError(t, err)

	return n
}

func TestFind(t *testing.T) {
	tests := []struct {
		name     string
		branch   string
		input    string
		expected Match
	}{
		{
			name:   "heading with address split in strong lines",
			branch: "Main Branch",
			input: `
<div class="branch-card">
  <h3>Main Branch</h3>
  <strong>123 Main Street</strong><br/>
  <strong>Springfield, IL 62701</strong>
</div>`,
			expected: Match{
				MatchedName: "Main Branch",
				Address:     "123 Main Street Springfield, IL 62701",
				Street:      "123 Main Street Springfield",
				State:       "IL",
				Zip:         "62701",
			},
		},
		{
			name:   "span heading with address label",
			branch: "Downtown Office",
			input: `
<section class="contact-wrap">
  <span class="contact-hdr-back">Downtown Office</span>
  <p><strong>Address:</strong></p>
  <p>456 Oak Ave, Chicago, IL 60601</p>
</section>`,
			expected: Match{
				MatchedName: "Downtown Office",
				Address:     "456 Oak Ave, Chicago, IL 60601",
				Street:      "456 Oak Ave",
				City:        "Chicago",
				State:       "IL",
				Zip:         "60601",
			},
		},
		{
			name:   "page builder widget with address in a link",
			branch: "Westside Branch",
			input: `
<div class="elementor-widget">
  <h3 class="elementor-heading-title">Westside Branch</h3>
  <div class="elementor-text-editor">
    <a href="/locations"><strong>789 West Rd, Denver, CO 80202</strong></a>
  </div>
</div>`,
			expected: Match{
				MatchedName: "Westside Branch",
				Address:     "789 West Rd, Denver, CO 80202",
				Street:      "789 West Rd",
				City:        "Denver",
				State:       "CO",
				Zip:         "80202",
			},
		},
		{
			name:   "name and address on the same line",
			branch: "Main Branch",
			input: `
<ul>
  <li>Main Branch — 123 Main St</li>
  <li>West Branch — 9 Elm Road</li>
</ul>`,
			expected: Match{
				MatchedName: "Main Branch — 123 Main St",
				Address:     "123 Main St",
				Street:      "123 Main St",
			},
		},
		{
			name:   "name and address in a bare paragraph",
			branch: "Main Branch",
			input:  `<p>Main Branch — 123 Main St</p>`,
			expected: Match{
				MatchedName: "Main Branch — 123 Main St",
				Address:     "123 Main St",
				Street:      "123 Main St",
			},
		},
		{
			name:   "case insensitive name",
			branch: "main branch",
			input: `
<div class="card">
  <h4>MAIN BRANCH</h4>
  <p>1 Center Plaza Way, Austin, TX 78701</p>
  <p>Phone: 512-555-0100</p>
</div>`,
			expected: Match{
				MatchedName: "MAIN BRANCH",
				Address:     "1 Center Plaza Way, Austin, TX 78701",
				Street:      "1 Center Plaza Way",
				City:        "Austin",
				State:       "TX",
				Zip:         "78701",
			},
		},
		{
			name:   "address of the neighbouring card is ignored",
			branch: "South Branch",
			input: `
<div class="locations">
  <div class="card"><h3>North Branch</h3><p>10 North Ave, Albany, NY 12207</p></div>
  <div class="card"><h3>South Branch</h3><p>20 South St, Albany, NY 12208</p></div>
</div>`,
			expected: Match{
				MatchedName: "South Branch",
				Address:     "20 South St, Albany, NY 12208",
				Street:      "20 South St",
				City:        "Albany",
				State:       "NY",
				Zip:         "12208",
			},
		},
		{
			name:   "menu entry before the branch card",
			branch: "Main Branch",
			input: `
<nav><ul>
  <li><a href="#north">North Branch</a></li>
  <li><a href="#main">Main Branch</a></li>
</ul></nav>
<section class="branch-card">
  <h2>Main Branch</h2>
  <p>123 Main St, Springfield, IL 62701</p>
</section>`,
			expected: Match{
				MatchedName: "Main Branch",
				Address:     "123 Main St, Springfield, IL 62701",
				Street:      "123 Main St",
				City:        "Springfield",
				State:       "IL",
				Zip:         "62701",
			},
		},
		{
			name:   "address in the next sibling",
			branch: "North Branch",
			input: `
<div><h2>North Branch</h2></div>
<div><p>12 Elm Street, Dover, DE 19901</p></div>`,
			expected: Match{
				MatchedName: "North Branch",
				Address:     "12 Elm Street, Dover, DE 19901",
				Street:      "12 Elm Street",
				City:        "Dover",
				State:       "DE",
				Zip:         "19901",
			},
		},
		{
			name:   "address further down the page",
			branch: "Harbor Branch",
			input: `
<h2>Harbor Branch</h2>
<p>Open daily</p>
<p>77 Dock Road, Portland, ME 04101</p>`,
			expected: Match{
				MatchedName: "Harbor Branch",
				Address:     "77 Dock Road, Portland, ME 04101",
				Street:      "77 Dock Road",
				City:        "Portland",
				State:       "ME",
				Zip:         "04101",
			},
		},
		{
			name:   "address label is dropped",
			branch: "Eastside",
			input: `
<ul>
  <li class="location"><strong>Eastside</strong> <span>Address: 5 Pine Ln, Salem, OR 97301</span></li>
</ul>`,
			expected: Match{
				MatchedName: "Eastside",
				Address:     "5 Pine Ln, Salem, OR 97301",
				Street:      "5 Pine Ln",
				City:        "Salem",
				State:       "OR",
				Zip:         "97301",
			},
		},
		{
			name:   "name and address in a bare body text",
			branch: "Main Branch",
			input:  `<body>Main Branch — 123 Main St</body>`,
			expected: Match{
				MatchedName: "Main Branch — 123 Main St",
				Address:     "123 Main St",
				Street:      "123 Main St",
			},
		},
		{
			name:   "name in an unlisted inline element",
			branch: "Harbor Branch",
			input: `<body><font>Harbor Branch</font>
<p>77 Dock Road, Portland, ME 04101</p></body>`,
			expected: Match{
				MatchedName: "Harbor Branch",
				Address:     "77 Dock Road, Portland, ME 04101",
				Street:      "77 Dock Road",
				City:        "Portland",
				State:       "ME",
				Zip:         "04101",
			},
		},
		{
			name:     "script text is not a branch",
			branch:   "Main Branch",
			input:    `<body><script>var branch = "Main Branch";</script></body>`,
			expected: Match{},
		},
		{
			name:     "name not in the page",
			branch:   "Airport Branch",
			input:    `<div class="card"><h3>Main Branch</h3><p>123 Main St</p></div>`,
			expected: Match{},
		},
		{
			name:   "name without address",
			branch: "Mobile Branch",
			input:  `<div class="card"><h3>Mobile Branch</h3><p>Visits schools every week</p></div>`,
			expected: Match{
				MatchedName: "Mobile Branch",
			},
		},
		{
			name:     "empty name",
			branch:   " -- ",
			input:    `<h3>Main Branch</h3>`,
			expected: Match{},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := Find(parse(t, test.input), test.branch)
			if diff := cmp.Diff(test.expected, got); diff != "" {
				t.Errorf("Find(%q) mismatch (-want +got):\n%s", test.branch, diff)
			}
		})
	}
}

func TestFindAll(t *testing.T) {
	doc := parse(t, `
<div class="card"><h3>North Branch</h3><p>10 North Ave, Albany, NY 12207</p></div>
<div class="card"><h3>South Branch</h3><p>20 South St, Albany, NY 12208</p></div>`)

	got := FindAll(doc, []string{"South Branch", "Nowhere", "North Branch"})
	require.Len(t, got, 3)
	assert.Equal(t, "20 South St, Albany, NY 12208", got[0].Address)
	assert.False(t, got[1].Found())
	assert.Equal(t, "10 North Ave, Albany, NY 12207", got[2].Address)
}

func TestFuzzyMatch(t *testing.T) {
	tokens := func(words ...string) map[string]struct{} {
		ret := make(map[string]struct{})
		for _, w := range words {
			ret[w] = struct{}{}
		}

		return ret
	}

	assert.True(t, fuzzyMatch(tokens("main", "branch"), tokens("main", "branch", "office")))
	assert.False(t, fuzzyMatch(tokens("main", "branch"), tokens("west", "branch")))
	assert.True(t, fuzzyMatch(
		tokens("a", "b", "c", "d", "e", "f", "g"),
		tokens("a", "b", "c", "d", "e", "f"),
	), "6 of 7 words is above the threshold")
	assert.False(t, fuzzyMatch(tokens(), tokens("main")))
	assert.False(t, fuzzyMatch(tokens("main"), tokens()))
}

func TestScoreAddress(t *testing.T) {
	tests := []struct {
		text     string
		labelled bool
		expected int
	}{
		{"123 Main Street", false, 12},
		{"Springfield, IL 62701", false, 6},
		{"456 Oak Ave, Chicago, IL 60601", true, 22},
		{"Phone: 555-1234", false, -10},
		{"Hours: Mon-Fri 9 to 5", false, -4},
		{"", false, -20},
		{strings.Repeat("x", 501), false, -20},
	}

	for _, test := range tests {
		assert.Equal(t, test.expected, scoreAddress(test.text, test.labelled), test.text)
	}
}

func TestCleanAddress(t *testing.T) {
	assert.Equal(t, "5 Pine Ln, Salem, OR 97301", cleanAddress("Address: 5 Pine Ln,, Salem, OR 97301"))
	assert.Equal(t, "123 Main St", cleanAddress(" — 123 Main St, "))
	assert.Equal(t, "", cleanAddress(""))
}

func TestParseAddress(t *testing.T) {
	m := Match{Address: "100 Congress Ave, Suite 200, Austin, tx 78701-1234"}
	parseAddress(&m)

	assert.Equal(t, "100 Congress Ave, Suite 200", m.Street)
	assert.Equal(t, "Austin", m.City)
	assert.Equal(t, "TX", m.State)
	assert.Equal(t, "78701-1234", m.Zip)

	m = Match{Address: "Av. 18 de Julio 1234, Montevideo"}
	parseAddress(&m)

	assert.Equal(t, "Av. 18 de Julio 1234, Montevideo", m.Street)
	assert.Empty(t, m.City)
	assert.Empty(t, m.State)
}

func TestFindContainer(t *testing.T) {
	doc := parse(t, `<div class="row"><div><h3 id="h">Main Branch</h3></div><p>123 Main St</p></div>`)

	var heading *html.Node

	var walk func(*html.Node)

	walk = func(n *html.Node) {
		for _, a := range n.Attr {
			if a.Key == "id" && a.Val == "h" {
				heading = n
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	require.NotNil(t, heading)

	container := findContainer(heading)
	require.NotNil(t, container)
	assert.Equal(t, "div", container.Data)
	assert.Equal(t, "row", container.Attr[0].Val)
}
