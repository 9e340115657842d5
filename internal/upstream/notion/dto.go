package notion

// Page is a flattened summary of a Notion page from the search endpoint.
type Page struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Icon  string `json:"icon,omitempty"`
	URL   string `json:"url"`
}
