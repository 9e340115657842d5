package constants

// Version information (injected at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// Notion API wire constants.
const (
	NotionAPIVersion     = "2022-06-28"
	DefaultNotionBaseURL = "https://api.notion.com"
)

// GetFullVersion returns the combined version string for startup logs.
func GetFullVersion() string {
	return Version + " (" + GitCommit + ") built at " + BuildTime
}
