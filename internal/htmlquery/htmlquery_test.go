package htmlquery

import (
	"strings"
	"testing"
)

const page = `
<html><body>
	<div class="outer">
		<div class="item first" data-id="1">One <b>bold</b></div>
		<div class="item" data-id="2">Two</div>
		<div class="agenda-row-style-key other">Three</div>
		<div class="empty">   </div>
	</div>
</body></html>`

func mustParse(t *testing.T, html string) Node {
	t.Helper()
	root, err := Parse(strings.NewReader(html))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return root
}

func TestFindFirstAndAll(t *testing.T) {
	root := mustParse(t, page)

	first, ok := root.FindFirst("div.item")
	if !ok {
		t.Fatal("FindFirst(div.item) found nothing")
	}
	if id, _ := first.Attr("data-id"); id != "1" {
		t.Errorf("first data-id = %q, want 1", id)
	}
	if got := strings.TrimSpace(first.Text()); got != "One bold" {
		t.Errorf("Text() = %q, want %q", got, "One bold")
	}

	all := root.FindAll("div.item")
	if len(all) != 2 {
		t.Fatalf("FindAll(div.item) = %d nodes, want 2", len(all))
	}
	if id, _ := all[1].Attr("data-id"); id != "2" {
		t.Errorf("second data-id = %q, want 2", id)
	}

	if _, ok := root.FindFirst("div.missing"); ok {
		t.Error("FindFirst(div.missing) found a node")
	}
	if got := root.FindAll("span"); len(got) != 0 {
		t.Errorf("FindAll(span) = %d nodes, want 0", len(got))
	}
}

func TestAttrMissing(t *testing.T) {
	root := mustParse(t, page)
	n, _ := root.FindFirst("div.outer")
	if _, ok := n.Attr("data-id"); ok {
		t.Error("Attr(data-id) found on div.outer")
	}
}

func TestClasses(t *testing.T) {
	root := mustParse(t, page)
	n, ok := root.FindFirst("div.other")
	if !ok {
		t.Fatal("div.other not found")
	}

	if !n.HasClass("other") {
		t.Error("HasClass(other) = false")
	}
	if n.HasClass("agenda-row-style") {
		t.Error("HasClass matched a partial token")
	}
	if !n.HasClassPrefix("agenda-row-") {
		t.Error("HasClassPrefix(agenda-row-) = false")
	}
	if n.HasClassPrefix("row-") {
		t.Error("HasClassPrefix(row-) matched mid-token")
	}
}

func TestNext(t *testing.T) {
	root := mustParse(t, page)
	first, _ := root.FindFirst("div.first")

	next, ok := first.Next()
	if !ok {
		t.Fatal("Next() found nothing")
	}
	if id, _ := next.Attr("data-id"); id != "2" {
		t.Errorf("Next() data-id = %q, want 2", id)
	}

	last, _ := root.FindFirst("div.empty")
	if _, ok := last.Next(); ok {
		t.Error("Next() on last child found a sibling")
	}
}

func TestEmpty(t *testing.T) {
	root := mustParse(t, page)

	empty, _ := root.FindFirst("div.empty")
	if !empty.Empty() {
		t.Error("Empty() = false for whitespace-only div")
	}

	full, _ := root.FindFirst("div.first")
	if full.Empty() {
		t.Error("Empty() = true for div with content")
	}
}
