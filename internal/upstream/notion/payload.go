package notion

import (
	"time"

	"github.com/tidwall/sjson"
)

// searchPayload asks for page objects, newest edits first.
func searchPayload() []byte {
	body := []byte(`{}`)
	body, _ = sjson.SetBytes(body, "filter.value", "page")
	body, _ = sjson.SetBytes(body, "filter.property", "object")
	body, _ = sjson.SetBytes(body, "sort.direction", "descending")
	body, _ = sjson.SetBytes(body, "sort.timestamp", "last_edited_time")
	return body
}

// noteTimestamp renders the local wall clock as "[DD Mon yy, HH:MM:SS]".
func noteTimestamp(at time.Time) string {
	return at.Format("[02 Jan 06, 15:04:05]")
}

// appendPayload builds one bold paragraph block carrying the timestamped
// note, ready to PATCH as a child of the target page.
func appendPayload(text string, at time.Time) []byte {
	content := noteTimestamp(at) + " " + text

	body := []byte(`{"children":[{"object":"block","type":"paragraph"}]}`)
	body, _ = sjson.SetBytes(body, "children.0.paragraph.rich_text.0.type", "text")
	body, _ = sjson.SetBytes(body, "children.0.paragraph.rich_text.0.text.content", content)
	body, _ = sjson.SetBytes(body, "children.0.paragraph.rich_text.0.annotations.bold", true)
	body, _ = sjson.SetBytes(body, "children.0.paragraph.rich_text.0.annotations.color", "default")
	return body
}
