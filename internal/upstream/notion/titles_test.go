package notion

import "testing"

func TestPagesFromSearchPropertyTitle(t *testing.T) {
	body := []byte(`{"results":[{
		"id": "page-1",
		"url": "https://notion.so/page-1",
		"icon": {"type": "emoji", "emoji": "📝"},
		"properties": {
			"Name": {"id": "title", "title": [{"type": "text", "text": {"content": "Groceries"}}]}
		}
	}]}`)

	pages, ok := pagesFromSearch(body)
	if !ok {
		t.Fatal("expected results array to parse")
	}
	if len(pages) != 1 {
		t.Fatalf("got %d pages, want 1", len(pages))
	}
	p := pages[0]
	if p.ID != "page-1" || p.Title != "Groceries" || p.Icon != "📝" || p.URL != "https://notion.so/page-1" {
		t.Fatalf("unexpected page: %+v", p)
	}
}

func TestPagesFromSearchParentFallback(t *testing.T) {
	body := []byte(`{"results":[{
		"id": "page-2",
		"url": "https://notion.so/page-2",
		"properties": {"Status": {"select": {"name": "Done"}}},
		"parent": {"type": "page", "page": {"title": "Projects"}}
	}]}`)

	pages, ok := pagesFromSearch(body)
	if !ok || len(pages) != 1 {
		t.Fatalf("got %v ok=%v", pages, ok)
	}
	if pages[0].Title != "Projects" {
		t.Fatalf("title = %q, want Projects", pages[0].Title)
	}
}

func TestPagesFromSearchDropsUntitledEntries(t *testing.T) {
	body := []byte(`{"results":[
		{"id": "no-title", "properties": {"Status": {"select": {"name": "Done"}}}},
		{"id": "page-3", "properties": {"Name": {"title": [{"text": {"content": "Keep"}}]}}}
	]}`)

	pages, ok := pagesFromSearch(body)
	if !ok {
		t.Fatal("expected results array to parse")
	}
	if len(pages) != 1 || pages[0].ID != "page-3" {
		t.Fatalf("expected only the titled entry, got %+v", pages)
	}
}

func TestPagesFromSearchSkipsMalformedEntry(t *testing.T) {
	body := []byte(`{"results":[
		{"id": "weird", "properties": {"Name": {"title": "not-an-array"}}},
		{"id": "page-4", "properties": {"Name": {"title": [{"text": {"content": "Fine"}}]}}}
	]}`)

	pages, ok := pagesFromSearch(body)
	if !ok || len(pages) != 1 || pages[0].Title != "Fine" {
		t.Fatalf("got %+v ok=%v", pages, ok)
	}
}

func TestPagesFromSearchMissingResults(t *testing.T) {
	if _, ok := pagesFromSearch([]byte(`{"object":"list"}`)); ok {
		t.Fatal("missing results array must be reported")
	}
}

func TestPagesFromSearchEmptyResults(t *testing.T) {
	pages, ok := pagesFromSearch([]byte(`{"results":[]}`))
	if !ok || len(pages) != 0 {
		t.Fatalf("got %v ok=%v", pages, ok)
	}
}
