package notion

import "github.com/tidwall/gjson"

// titleStrategy attempts to extract a title from one raw search result.
// Strategies are total: they either find a title or report absence, never
// fail. "No title found" is a valid terminal outcome and the entry is
// dropped from the listing.
type titleStrategy func(entry gjson.Result) (string, bool)

var titleStrategies = []titleStrategy{
	titleFromProperties,
	titleFromParent,
}

// titleFromProperties scans the page's property bag for a title-typed
// field and takes the first rich-text segment's plain content.
func titleFromProperties(entry gjson.Result) (string, bool) {
	title := ""
	entry.Get("properties").ForEach(func(_, prop gjson.Result) bool {
		segments := prop.Get("title")
		if !segments.IsArray() {
			return true
		}
		content := segments.Get("0.text.content")
		if content.Type != gjson.String {
			return true
		}
		title = content.String()
		return false
	})
	return title, title != ""
}

// titleFromParent falls back to the inherited parent page title.
func titleFromParent(entry gjson.Result) (string, bool) {
	parent := entry.Get("parent.page.title")
	if parent.Type != gjson.String || parent.String() == "" {
		return "", false
	}
	return parent.String(), true
}

func extractTitle(entry gjson.Result) (string, bool) {
	for _, strategy := range titleStrategies {
		if title, ok := strategy(entry); ok {
			return title, true
		}
	}
	return "", false
}

// pageFromResult flattens one search result entry. Entries without a
// resolvable title are skipped without failing the whole listing.
func pageFromResult(entry gjson.Result) (Page, bool) {
	title, ok := extractTitle(entry)
	if !ok {
		return Page{}, false
	}
	return Page{
		ID:    entry.Get("id").String(),
		Title: title,
		Icon:  entry.Get("icon.emoji").String(),
		URL:   entry.Get("url").String(),
	}, true
}

// pagesFromSearch flattens the full search response body.
func pagesFromSearch(body []byte) ([]Page, bool) {
	results := gjson.GetBytes(body, "results")
	if !results.IsArray() {
		return nil, false
	}
	pages := make([]Page, 0, len(results.Array()))
	for _, entry := range results.Array() {
		if page, ok := pageFromResult(entry); ok {
			pages = append(pages, page)
		}
	}
	return pages, true
}
