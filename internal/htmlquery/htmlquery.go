// Package htmlquery is a small typed query layer over goquery.
//
// Callers work with Node values instead of raw selections so that parsing
// code states exactly which capabilities it relies on: first/all match,
// attribute lookup, text, class tokens and the next element sibling.
package htmlquery

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Node is a single element in a parsed document.
type Node interface {
	// FindFirst returns the first descendant matching selector.
	FindFirst(selector string) (Node, bool)
	// FindAll returns every descendant matching selector in document order.
	FindAll(selector string) []Node
	// Attr returns the value of the named attribute.
	Attr(name string) (string, bool)
	// Text returns the combined text of the node and its descendants.
	Text() string
	// HasClass reports whether class is one of the node's class tokens.
	HasClass(class string) bool
	// HasClassPrefix reports whether any class token starts with prefix.
	HasClassPrefix(prefix string) bool
	// Next returns the next element sibling.
	Next() (Node, bool)
	// Empty reports whether the node has no child elements and no
	// non-whitespace text.
	Empty() bool
}

type node struct {
	sel *goquery.Selection
}

// Parse reads an HTML document and returns its root.
func Parse(r io.Reader) (Node, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return node{sel: doc.Selection}, nil
}

func (n node) FindFirst(selector string) (Node, bool) {
	found := n.sel.Find(selector).First()
	if found.Length() == 0 {
		return nil, false
	}
	return node{sel: found}, true
}

func (n node) FindAll(selector string) []Node {
	found := n.sel.Find(selector)
	nodes := make([]Node, 0, found.Length())
	found.Each(func(_ int, s *goquery.Selection) {
		nodes = append(nodes, node{sel: s})
	})
	return nodes
}

func (n node) Attr(name string) (string, bool) {
	return n.sel.Attr(name)
}

func (n node) Text() string {
	return n.sel.Text()
}

func (n node) HasClass(class string) bool {
	return n.sel.HasClass(class)
}

func (n node) HasClassPrefix(prefix string) bool {
	classes, ok := n.sel.Attr("class")
	if !ok {
		return false
	}
	for _, c := range strings.Fields(classes) {
		if strings.HasPrefix(c, prefix) {
			return true
		}
	}
	return false
}

func (n node) Next() (Node, bool) {
	next := n.sel.Next()
	if next.Length() == 0 {
		return nil, false
	}
	return node{sel: next}, true
}

func (n node) Empty() bool {
	return n.sel.Children().Length() == 0 && strings.TrimSpace(n.sel.Text()) == ""
}
