// Copyright 2026 The BranchGeo Authors
// SPDX-License-Identifier: Apache-2.0

// Package htmlutils provides utility functions for working with HTML.
package htmlutils

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// elements whose text never reaches the screen.
var invisible = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
	"head":     true,
	"svg":      true,
}

// Node2string appends the visible text below n to sb. Text nodes are trimmed
// and joined with a single space; <br> behaves as a separator.
func Node2string(n *html.Node, sb *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		tmp := strings.Join(strings.Fields(n.Data), " ")
		if tmp == "" {
			return
		}

		if sb.Len() != 0 {
			sb.WriteByte(' ')
		}

		sb.WriteString(tmp)
	case html.ElementNode:
		if invisible[n.Data] {
			return
		}

		fallthrough
	default:
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			Node2string(child, sb)
		}
	}
}

// Invisible reports whether n is an element whose text never reaches the screen.
func Invisible(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode && invisible[n.Data]
}

// Text returns the visible, whitespace collapsed text below n.
func Text(n *html.Node) string {
	if n == nil {
		return ""
	}

	sb := strings.Builder{}
	Node2string(n, &sb)

	return sb.String()
}

// IsElement reports whether n is an element with one of the given tag names.
func IsElement(n *html.Node, tags ...string) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}

	for _, tag := range tags {
		if strings.EqualFold(n.Data, tag) {
			return true
		}
	}

	return len(tags) == 0
}

// Attr returns the value of the attribute key, or the empty string.
func Attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}

	return ""
}

// Classes returns the lower-cased class attribute of n.
func Classes(n *html.Node) string {
	return strings.ToLower(Attr(n, "class"))
}

// Walk visits n and its descendants in document order. Returning false from
// fn skips the children of the visited node.
func Walk(n *html.Node, fn func(*html.Node) bool) {
	if n == nil {
		return
	}

	if !fn(n) {
		return
	}

	for child := n.FirstChild; child != nil; child = child.NextSibling {
		Walk(child, fn)
	}
}

// NextElementSibling returns the next sibling of n that is an element.
func NextElementSibling(n *html.Node) *html.Node {
	for s := n.NextSibling; s != nil; s = s.NextSibling {
		if s.Type == html.ElementNode {
			return s
		}
	}

	return nil
}

// PrevElementSibling returns the previous sibling of n that is an element.
func PrevElementSibling(n *html.Node) *html.Node {
	for s := n.PrevSibling; s != nil; s = s.PrevSibling {
		if s.Type == html.ElementNode {
			return s
		}
	}

	return nil
}

// Contains reports whether child is n or one of its descendants.
func Contains(n, child *html.Node) bool {
	for c := child; c != nil; c = c.Parent {
		if c == n {
			return true
		}
	}

	return false
}

// Validates that response seems to be an HTML response. Servers that do not
// declare a media type get the benefit of the doubt.
func hasHTMLContentType(media string) bool {
	if media == "" {
		return true
	}

	for _, expectedMedia := range []string{"text/html", "application/xhtml+xml"} {
		if strings.EqualFold(
			expectedMedia,
			media[0:min(len(media), len(expectedMedia))],
		) {
			return true
		}
	}

	return false
}

// AsReader converts an HTTP response body to an io.Reader with the correct charset.
func AsReader(resp *http.Response) (io.Reader, error) {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	media := resp.Header.Get("Content-Type")
	if !hasHTMLContentType(media) {
		return nil, fmt.Errorf("media type is %s", media)
	}

	rr, err := charset.NewReader(resp.Body, media)
	if err != nil {
		return nil, err
	}

	return rr, nil
}

// AsNode parses an io.Reader as an HTML node.
func AsNode(r io.Reader) (*html.Node, error) {
	n, err := html.Parse(r)
	if nil != err {
		return nil, fmt.Errorf("parsing body as HTML: %w", err)
	}

	return n, nil
}
